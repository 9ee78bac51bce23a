// Package main runs the seminar certificate admin HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-webinar/certdesk/config"
	"github.com/aura-webinar/certdesk/internal/certificates"
	"github.com/aura-webinar/certdesk/internal/designer"
	"github.com/aura-webinar/certdesk/internal/emaillogs"
	"github.com/aura-webinar/certdesk/internal/gateway"
	"github.com/aura-webinar/certdesk/internal/middleware"
	"github.com/aura-webinar/certdesk/internal/realtime"
	"github.com/aura-webinar/certdesk/internal/store"
	"github.com/aura-webinar/certdesk/internal/worker"
	"github.com/aura-webinar/certdesk/pkg/queue"
	"github.com/aura-webinar/certdesk/pkg/redis"
	"github.com/aura-webinar/certdesk/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		newLogger("info").Fatal("load config", zap.Error(err))
	}
	logger := newLogger(cfg.Log.Level)
	defer logger.Sync()

	ctx := context.Background()
	bgCtx, bgCancel := context.WithCancel(ctx)
	defer bgCancel()

	// Optional Redis: certificate job queue and cross-instance realtime bus
	var (
		enqueuer  certificates.Enqueuer
		bus       realtime.Bus
		processor *worker.CertificateProcessor
	)
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		jobQueue := queue.NewQueue(rdb.Client, logger)
		enqueuer = jobQueue
		bus = realtime.NewRedisPubSub(rdb.Client, logger)
		processor = worker.NewCertificateProcessor(jobQueue, worker.LogSender{From: cfg.Email.FromAddress, Logger: logger}, logger)
	} else {
		logger.Info("redis not configured, certificate delivery is simulated inline")
	}

	// Optional S3 for generated certificate artwork
	var images designer.ImageStore
	if cfg.AWS.Enabled() {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:             cfg.AWS.Region,
			AccessKeyID:        cfg.AWS.AccessKeyID,
			SecretAccessKey:    cfg.AWS.SecretAccessKey,
			CertificatesBucket: cfg.AWS.CertificatesBucket,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			images = s3Client
		}
	}

	var generator designer.Generator
	if cfg.Designer.Enabled() {
		generator = designer.NewHTTPGenerator(designer.HTTPGeneratorConfig{
			Endpoint: cfg.Designer.Endpoint,
			APIKey:   cfg.Designer.APIKey,
			Model:    cfg.Designer.Model,
			Timeout:  time.Duration(cfg.Designer.TimeoutSec) * time.Second,
		})
	} else {
		logger.Info("designer endpoint not configured, template generation disabled")
	}

	hub := realtime.NewHub(logger, bus)
	if err := hub.Start(); err != nil {
		logger.Fatal("realtime bus", zap.Error(err))
	}
	defer hub.Close()

	emailLogsRepo := emaillogs.NewRepository()
	dispatcher := certificates.NewDispatcher(emailLogsRepo, enqueuer, logger)
	api := gateway.NewSimulated(store.NewSeeded(), gateway.Options{
		Delay:     cfg.Gateway.Delay(),
		BulkDelay: cfg.Gateway.BulkDelay(),
	}, hub, dispatcher, logger)

	limiter := middleware.NewRateLimiter(cfg.Designer.RatePerMin, cfg.Designer.Burst)
	go limiter.Run(bgCtx, time.Minute)

	router := newRouter(routerDeps{
		api:         api,
		emailLogs:   emailLogsRepo,
		designer:    designer.NewService(generator, images, logger),
		hub:         hub,
		limiter:     limiter,
		corsOrigins: cfg.Server.CORSAllowedOrigins,
		logger:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (certificate emails)
	if processor != nil {
		go processor.Run(bgCtx)
		logger.Info("certificate worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	waitForGateway(shutdownCtx, api, logger)
	bgCancel()
	logger.Info("server stopped")
}

// waitForGateway lets calls already accepted by the gateway land before exit.
func waitForGateway(ctx context.Context, api gateway.Service, logger *zap.Logger) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for api.InFlight() > 0 {
		select {
		case <-ctx.Done():
			logger.Warn("gateway calls still in flight at shutdown", zap.Int("in_flight", api.InFlight()))
			return
		case <-ticker.C:
		}
	}
}

func newLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, _ := config.Build()
	return logger
}
