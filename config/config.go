package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Gateway  GatewayConfig
	Redis    RedisConfig
	AWS      AWSConfig
	Designer DesignerConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// LogConfig selects the zap level (debug, info, warn, error).
type LogConfig struct {
	Level string
}

// GatewayConfig holds the simulated latencies in milliseconds.
type GatewayConfig struct {
	DelayMS     int
	BulkDelayMS int
}

// Delay returns the per-call latency.
func (c GatewayConfig) Delay() time.Duration { return time.Duration(c.DelayMS) * time.Millisecond }

// BulkDelay returns the bulk certificate send latency.
func (c GatewayConfig) BulkDelay() time.Duration {
	return time.Duration(c.BulkDelayMS) * time.Millisecond
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether Redis is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// AWSConfig holds AWS credentials and the certificate artwork bucket.
type AWSConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	CertificatesBucket string
}

// Enabled reports whether S3 storage is configured.
func (c AWSConfig) Enabled() bool { return c.CertificatesBucket != "" }

// DesignerConfig holds the image generation endpoint used for certificate backgrounds.
type DesignerConfig struct {
	Endpoint   string
	APIKey     string
	Model      string
	TimeoutSec int
	RatePerMin int
	Burst      int
}

// Enabled reports whether the designer endpoint is configured.
func (c DesignerConfig) Enabled() bool { return c.Endpoint != "" }

// EmailConfig holds the sender identity used by the certificate worker.
type EmailConfig struct {
	FromAddress string
	FromName    string
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 90),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Gateway: GatewayConfig{
			DelayMS:     getEnvInt("GATEWAY_DELAY_MS", 500),
			BulkDelayMS: getEnvInt("GATEWAY_BULK_DELAY_MS", 1500),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:             getEnv("AWS_REGION", "ap-southeast-1"),
			AccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
			CertificatesBucket: getEnv("AWS_S3_CERTIFICATES_BUCKET", ""),
		},
		Designer: DesignerConfig{
			Endpoint:   getEnv("DESIGNER_ENDPOINT", ""),
			APIKey:     getEnv("DESIGNER_API_KEY", ""),
			Model:      getEnv("DESIGNER_MODEL", ""),
			TimeoutSec: getEnvInt("DESIGNER_TIMEOUT_SEC", 60),
			RatePerMin: getEnvInt("DESIGNER_RATE_PER_MIN", 6),
			Burst:      getEnvInt("DESIGNER_BURST", 2),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@certdesk.local"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Seminar Certificates"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Gateway.DelayMS < 0 || c.Gateway.BulkDelayMS < 0 {
		return fmt.Errorf("gateway delays must not be negative")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown LOG_LEVEL %q", c.Log.Level)
	}
	return nil
}

// AllowedOrigins returns the configured CORS origins as a list.
func (c ServerConfig) AllowedOrigins() []string {
	return splitTrim(c.CORSAllowedOrigins, ",")
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
