package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/formpost/formpost/internal/handler/dto"
	"github.com/formpost/formpost/internal/service"
)

// AccountHandler handles registration and password login.
type AccountHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger.With("component", "handler.account"),
	}
}

// Register handles POST /api/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	siteKey, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			writeError(w, http.StatusBadRequest, CodeValidation, "Email and password are required")
		case errors.Is(err, service.ErrEmailExists):
			writeError(w, http.StatusBadRequest, CodeEmailExists, "Email already registered")
		default:
			h.logger.ErrorContext(r.Context(), "registration failed", "error", err)
			writeInternal(w, "Registration failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.RegisterResponse{SiteKey: siteKey})
}

// Login handles POST /api/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			writeError(w, http.StatusBadRequest, CodeValidation, "Email and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, CodeInvalidCredentials, "Invalid credentials")
		default:
			h.logger.ErrorContext(r.Context(), "login failed", "error", err)
			writeInternal(w, "Login failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: result.Token, SiteKey: result.SiteKey})
}
