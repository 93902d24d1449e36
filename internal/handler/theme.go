package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formpost/formpost/internal/auth"
	"github.com/formpost/formpost/internal/handler/dto"
	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/service"
)

// ThemeHandler handles theme configuration.
type ThemeHandler struct {
	svc    *service.ThemeService
	logger *slog.Logger
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(svc *service.ThemeService, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{
		svc:    svc,
		logger: logger.With("component", "handler.theme"),
	}
}

// Set handles POST /api/theme.
func (h *ThemeHandler) Set(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "No token provided")
		return
	}

	var req dto.ThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Set(r.Context(), claims.OwnerID, req.Theme); err != nil {
		if errors.Is(err, service.ErrOwnerNotFound) {
			writeError(w, http.StatusNotFound, CodeOwnerNotFound, "Owner not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to save theme", "owner_id", claims.OwnerID, "error", err)
		writeInternal(w, "Failed to save theme", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// Get handles GET /api/theme.
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "No token provided")
		return
	}

	theme, err := h.svc.Get(r.Context(), claims.OwnerID)
	h.writeTheme(w, r, theme, err)
}

// GetPublic handles GET /api/theme/{siteKey}.
func (h *ThemeHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	theme, err := h.svc.GetPublic(r.Context(), chi.URLParam(r, "siteKey"))
	h.writeTheme(w, r, theme, err)
}

func (h *ThemeHandler) writeTheme(w http.ResponseWriter, r *http.Request, theme model.Fields, err error) {
	if err != nil {
		if errors.Is(err, service.ErrOwnerNotFound) {
			writeError(w, http.StatusNotFound, CodeOwnerNotFound, "Owner not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to fetch theme", "error", err)
		writeInternal(w, "Failed to fetch theme", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ThemeResponse{Theme: theme})
}
