// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"PORT" envDefault:"5000"`

	// Database (PostgreSQL)
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Cache (Redis)
	RedisURL      string        `env:"REDIS_URL,required,notEmpty"`
	OwnerCacheTTL time.Duration `env:"OWNER_CACHE_TTL" envDefault:"5m"`

	// Session tokens
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	// Google sign-in; routes are mounted only when both credentials are set
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" envDefault:"http://localhost:5000/api/auth/google/callback"`
	FrontendURL        string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Email notifications
	EmailService string `env:"EMAIL_SERVICE"`
	EmailUser    string `env:"EMAIL_USER"`
	EmailPass    string `env:"EMAIL_PASS"`
	EmailFrom    string `env:"EMAIL_FROM"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins; "*" allows any origin
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// IANA zone for month boundaries in analytics; empty uses the host zone
	AnalyticsTimezone string `env:"ANALYTICS_TIMEZONE"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	analyticsLocation *time.Location
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// EmailEnabled reports whether SMTP delivery is configured. Without it,
// notifications are only logged.
func (c *Config) EmailEnabled() bool {
	return c.EmailUser != "" && (c.EmailService != "" || c.SMTPHost != "")
}

// AnalyticsLocation returns the zone used to bucket submissions by month.
func (c *Config) AnalyticsLocation() *time.Location {
	if c.analyticsLocation == nil {
		return time.Local
	}
	return c.analyticsLocation
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or a value is invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.AnalyticsTimezone != "" {
		loc, err := time.LoadLocation(cfg.AnalyticsTimezone)
		if err != nil {
			return nil, fmt.Errorf("invalid ANALYTICS_TIMEZONE %q: %w", cfg.AnalyticsTimezone, err)
		}
		cfg.analyticsLocation = loc
	}

	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be positive, got %d", cfg.MaxRequestBodySize)
	}

	return cfg, nil
}
