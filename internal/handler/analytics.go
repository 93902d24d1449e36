package handler

import (
	"log/slog"
	"net/http"

	"github.com/formpost/formpost/internal/middleware"
	"github.com/formpost/formpost/internal/service"
)

// AnalyticsHandler handles analytics API requests.
type AnalyticsHandler struct {
	svc    *service.AnalyticsService
	logger *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc:    svc,
		logger: logger.With("component", "handler.analytics"),
	}
}

// Summary handles GET /api/analytics?siteKey=.
// Expects RequireSiteKey to have authorized the site key.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	siteKey := r.URL.Query().Get(middleware.SiteKeyParam)

	summary, err := h.svc.Summary(r.Context(), siteKey)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute analytics", "site_key", siteKey, "error", err)
		writeInternal(w, "Failed to fetch analytics", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
