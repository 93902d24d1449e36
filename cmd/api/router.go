package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/formpost/formpost/internal/handler"
	"github.com/formpost/formpost/internal/middleware"
)

// routes carries the handlers and HTTP settings mounted by setupRouter.
// A nil oauth handler leaves the Google routes unmounted.
type routes struct {
	root       *handler.Handler
	health     *handler.HealthHandler
	metrics    *handler.MetricsHandler
	account    *handler.AccountHandler
	submission *handler.SubmissionHandler
	analytics  *handler.AnalyticsHandler
	theme      *handler.ThemeHandler
	oauth      *handler.OAuthHandler

	tokens      middleware.TokenVerifier
	corsOrigins []string
	maxBody     int64
	development bool
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(rt routes, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = rt.corsOrigins

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: rt.development}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(rt.maxBody))

	// Health and metrics (no auth required)
	r.Get("/healthz", rt.health.Healthz)
	r.Get("/readyz", rt.health.Readyz)
	r.Get("/metrics", rt.metrics.Metrics)

	r.Get("/", rt.root.Hello)

	authMw := middleware.Auth(middleware.AuthConfig{
		Logger:   logger,
		Verifier: rt.tokens,
	})

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/register", rt.account.Register)
		r.Post("/login", rt.account.Login)
		r.Post("/submit", rt.submission.Submit)
		r.Get("/theme/{siteKey}", rt.theme.GetPublic)

		if rt.oauth != nil {
			r.Get("/auth/google", rt.oauth.Start)
			r.Get("/auth/google/callback", rt.oauth.Callback)
		}

		// Owner session required
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/theme", rt.theme.Set)
			r.Get("/theme", rt.theme.Get)

			r.With(middleware.RequireSiteKey()).Get("/submissions", rt.submission.List)
			r.With(middleware.RequireSiteKey()).Get("/analytics", rt.analytics.Summary)
		})
	})

	r.NotFound(rt.root.NotFound)
	r.MethodNotAllowed(rt.root.MethodNotAllowed)

	return r
}
