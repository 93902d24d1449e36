// Package main is the entrypoint for the Formpost API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/formpost/formpost/internal/auth"
	"github.com/formpost/formpost/internal/cache"
	"github.com/formpost/formpost/internal/config"
	"github.com/formpost/formpost/internal/handler"
	"github.com/formpost/formpost/internal/metrics"
	"github.com/formpost/formpost/internal/notify"
	"github.com/formpost/formpost/internal/oauth"
	"github.com/formpost/formpost/internal/repository"
	"github.com/formpost/formpost/internal/server"
	"github.com/formpost/formpost/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.MigrateOnStart {
		if err := repo.Migrate(ctx, logger); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
	}

	// Cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cfg.OwnerCacheTTL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Metrics
	var (
		recorder    metrics.Recorder = metrics.NewNoop()
		snapshotter metrics.Snapshotter
	)
	if cfg.MetricsEnabled {
		mem := metrics.NewInMemory()
		recorder, snapshotter = mem, mem
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to configure email", "error", err)
		_ = cacheClient.Close()
		repo.Close()
		os.Exit(1)
	}

	// Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	tenants := service.NewTenantResolver(repo, cacheClient, recorder, logger)
	accounts := service.NewAccountService(repo, tokens, recorder, logger)
	submissions := service.NewSubmissionService(tenants, repo, notifier, recorder, logger)
	analytics := service.NewAnalyticsService(repo, cfg.AnalyticsLocation(), recorder)
	themes := service.NewThemeService(repo, tenants)

	// Handlers
	rt := routes{
		root:        handler.New(),
		health:      handler.NewHealthHandler(repo, cacheClient, logger),
		metrics:     handler.NewMetricsHandler(snapshotter),
		account:     handler.NewAccountHandler(accounts, logger),
		submission:  handler.NewSubmissionHandler(submissions, logger),
		analytics:   handler.NewAnalyticsHandler(analytics, logger),
		theme:       handler.NewThemeHandler(themes, logger),
		tokens:      tokens,
		corsOrigins: cfg.GetCORSAllowedOrigins(),
		maxBody:     cfg.MaxRequestBodySize,
		development: cfg.IsDevelopment(),
	}
	if cfg.GoogleEnabled() {
		google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		rt.oauth = handler.NewOAuthHandler(google, cacheClient, accounts, cfg.FrontendURL, logger)
	}

	r := setupRouter(rt, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Closed in reverse: Redis first, then the pool
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"google_login", cfg.GoogleEnabled(),
		"email", cfg.EmailEnabled(),
		"analytics_zone", cfg.AnalyticsLocation().String(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newNotifier returns an SMTP notifier when email is configured and a
// logging notifier otherwise.
func newNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
	if !cfg.EmailEnabled() {
		logger.Warn("email not configured, submissions will only be logged")
		return notify.NewLogNotifier(logger), nil
	}

	n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Service:  cfg.EmailService,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.EmailFrom,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("email notifications enabled", "smtp_addr", n.Addr())
	return n, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
