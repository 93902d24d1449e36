package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/formpost/formpost/internal/handler/dto"
	"github.com/formpost/formpost/internal/middleware"
	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/service"
)

// SubmissionHandler handles form ingestion and submission listing.
type SubmissionHandler struct {
	svc    *service.SubmissionService
	logger *slog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(svc *service.SubmissionService, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		svc:    svc,
		logger: logger.With("component", "handler.submission"),
	}
}

// Submit handles POST /api/submit.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	input := model.Fields{}
	if !decodeJSON(w, r, &input) {
		return
	}

	sub, err := h.svc.Submit(r.Context(), input)
	if err != nil {
		var notifyErr *service.NotifyError
		switch {
		case errors.Is(err, service.ErrMissingSiteKey):
			writeError(w, http.StatusBadRequest, CodeValidation, "siteKey is required")
		case errors.Is(err, service.ErrInvalidCreatedAt):
			writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		case errors.Is(err, service.ErrSiteKeyNotFound):
			writeError(w, http.StatusNotFound, CodeInvalidSiteKey, "Invalid siteKey")
		case errors.As(err, &notifyErr):
			writeJSON(w, http.StatusInternalServerError, dto.NotifyFailureResponse{
				ErrorResponse: dto.ErrorResponse{
					Error:   "Failed to send email",
					Code:    CodeNotifyFailed,
					Details: notifyErr.Err.Error(),
				},
				Stored:       true,
				SubmissionID: notifyErr.SubmissionID,
			})
		default:
			h.logger.ErrorContext(r.Context(), "submission failed", "error", err)
			writeInternal(w, "Failed to save submission", err)
		}
		return
	}

	h.logger.InfoContext(r.Context(), "submission_received",
		"submission_id", sub.ID,
		"site_key", sub.SiteKey,
		"field_count", len(sub.Fields),
	)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// List handles GET /api/submissions?siteKey=.
// Expects RequireSiteKey to have authorized the site key.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	siteKey := r.URL.Query().Get(middleware.SiteKeyParam)

	subs, err := h.svc.List(r.Context(), siteKey)
	if err != nil {
		if errors.Is(err, service.ErrMissingSiteKey) {
			writeError(w, http.StatusBadRequest, CodeValidation, "siteKey is required")
			return
		}
		h.logger.ErrorContext(r.Context(), "list submissions failed", "site_key", siteKey, "error", err)
		writeInternal(w, "Failed to fetch submissions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SubmissionListResponse{Submissions: subs})
}
