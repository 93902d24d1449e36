package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/formpost/formpost/internal/auth"
	"github.com/formpost/formpost/internal/oauth"
	"github.com/formpost/formpost/internal/service"
)

// OAuthProvider is an external identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

// StateStore keeps single-use OAuth state values.
type StateStore interface {
	SaveOAuthState(ctx context.Context, state string) error
	ConsumeOAuthState(ctx context.Context, state string) error
}

// OAuthHandler handles federated login through Google.
type OAuthHandler struct {
	provider    OAuthProvider
	states      StateStore
	accounts    *service.AccountService
	frontendURL string
	logger      *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler. Successful logins are
// redirected to frontendURL + "/oauth-callback".
func NewOAuthHandler(provider OAuthProvider, states StateStore, accounts *service.AccountService, frontendURL string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		provider:    provider,
		states:      states,
		accounts:    accounts,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger.With("component", "handler.oauth"),
	}
}

// Start handles GET /api/auth/google.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.fail(w, r, "generate state", err)
		return
	}
	if err := h.states.SaveOAuthState(r.Context(), state); err != nil {
		h.fail(w, r, "save state", err)
		return
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/auth/google/callback.
// Every failure redirects to "/".
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		h.logger.InfoContext(r.Context(), "consent denied", "reason", e)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := h.states.ConsumeOAuthState(r.Context(), q.Get("state")); err != nil {
		h.fail(w, r, "consume state", err)
		return
	}

	profile, err := h.provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.fail(w, r, "exchange code", err)
		return
	}

	result, err := h.accounts.FederatedLogin(r.Context(), profile.Subject, profile.Email)
	if err != nil {
		h.fail(w, r, "federated login", err)
		return
	}

	target := h.frontendURL + "/oauth-callback?token=" + url.QueryEscape(result.Token) +
		"&siteKey=" + url.QueryEscape(result.SiteKey)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request, step string, err error) {
	h.logger.WarnContext(r.Context(), "google login failed", "step", step, "error", err)
	http.Redirect(w, r, "/", http.StatusFound)
}
