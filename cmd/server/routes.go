package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/certdesk/internal/analytics"
	"github.com/aura-webinar/certdesk/internal/attendees"
	"github.com/aura-webinar/certdesk/internal/certificates"
	"github.com/aura-webinar/certdesk/internal/designer"
	"github.com/aura-webinar/certdesk/internal/emaillogs"
	"github.com/aura-webinar/certdesk/internal/gateway"
	"github.com/aura-webinar/certdesk/internal/middleware"
	"github.com/aura-webinar/certdesk/internal/realtime"
	"github.com/aura-webinar/certdesk/internal/registrations"
	"github.com/aura-webinar/certdesk/internal/seminars"
	"github.com/aura-webinar/certdesk/pkg/response"
)

type routerDeps struct {
	api         gateway.Service
	emailLogs   *emaillogs.Repository
	designer    *designer.Service
	hub         *realtime.Hub
	limiter     *middleware.RateLimiter
	corsOrigins string
	logger      *zap.Logger
}

func newRouter(d routerDeps) *gin.Engine {
	seminarHandler := seminars.NewHandler(d.api, d.logger)
	registrationHandler := registrations.NewHandler(d.api, d.logger)
	attendeeHandler := attendees.NewHandler(d.api, d.logger)
	analyticsHandler := analytics.NewHandler(d.api, d.logger)
	emailLogsHandler := emaillogs.NewHandler(d.emailLogs)
	certificateHandler := certificates.NewHandler(d.api, d.designer, d.logger)
	designerHandler := designer.NewHandler(d.designer, d.logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(d.corsOrigins))
	router.Use(middleware.Logger(d.logger))

	// Health
	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "in_flight": d.api.InFlight()})
	})

	// Seminars
	router.GET("/seminars", seminarHandler.List)
	router.POST("/seminars", seminarHandler.Create)
	router.GET("/seminars/:id", seminarHandler.GetByID)
	router.GET("/seminars/:id/summary", analyticsHandler.GetBySeminar)

	// Public registration
	router.POST("/seminars/:id/register", registrationHandler.Register)
	router.POST("/attendees", registrationHandler.Create)

	// Attendance and certificates
	router.GET("/seminars/:id/attendees", attendeeHandler.ListBySeminar)
	router.GET("/attendees/:id", attendeeHandler.GetByID)
	router.PATCH("/attendees/:id/status", attendeeHandler.UpdateStatus)
	router.POST("/seminars/:id/certificates/send", attendeeHandler.SendCertificates)
	router.GET("/seminars/:id/certificates/emails", emailLogsHandler.ListBySeminar)
	router.GET("/attendees/:id/certificate", certificateHandler.Get)

	// Certificate designer
	router.GET("/certificates/template", designerHandler.GetTemplate)
	router.POST("/certificates/template/generate", d.limiter.Middleware(), designerHandler.Generate)

	// WebSocket (seminar_id in query; omitted means every seminar)
	router.GET("/ws", realtime.ServeWs(d.hub, d.logger))

	return router
}
