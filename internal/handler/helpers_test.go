package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/formpost/formpost/internal/auth"
	"github.com/formpost/formpost/internal/metrics"
	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/repository/memstore"
	"github.com/formpost/formpost/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []model.Fields
	err  error
}

func (n *stubNotifier) Send(_ context.Context, _ *model.Owner, fields model.Fields) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, fields)
	return n.err
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func mustJSONValue(t *testing.T, raw string) model.Value {
	t.Helper()
	v, err := model.JSONValue(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("JSONValue(%s): %v", raw, err)
	}
	return v
}

var errSMTPDown = errors.New("dial tcp: connection refused")

type testEnv struct {
	store    *memstore.Store
	notifier *stubNotifier
	recorder *metrics.InMemoryRecorder
	tokens   *auth.TokenIssuer
	accounts *service.AccountService

	account    *AccountHandler
	submission *SubmissionHandler
	analytics  *AnalyticsHandler
	theme      *ThemeHandler
}

func newTestEnv() *testEnv {
	logger := discardLogger()
	env := &testEnv{
		store:    memstore.New(),
		notifier: &stubNotifier{},
		recorder: metrics.NewInMemory(),
		tokens:   auth.NewTokenIssuer("handler-test-secret", time.Hour),
	}
	tenants := service.NewTenantResolver(env.store, nil, env.recorder, logger)
	env.accounts = service.NewAccountService(env.store, env.tokens, env.recorder, logger)
	subs := service.NewSubmissionService(tenants, env.store, env.notifier, env.recorder, logger)
	analytics := service.NewAnalyticsService(env.store, time.UTC, env.recorder)
	themes := service.NewThemeService(env.store, tenants)

	env.account = NewAccountHandler(env.accounts, logger)
	env.submission = NewSubmissionHandler(subs, logger)
	env.analytics = NewAnalyticsHandler(analytics, logger)
	env.theme = NewThemeHandler(themes, logger)
	return env
}

// register creates a password owner and returns it with a session token.
func (e *testEnv) register(t *testing.T, email string) (*model.Owner, *model.TokenClaims) {
	t.Helper()
	ctx := context.Background()
	siteKey, err := e.accounts.Register(ctx, email, "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	owner, err := e.store.GetOwnerBySiteKey(ctx, siteKey)
	if err != nil {
		t.Fatalf("GetOwnerBySiteKey: %v", err)
	}
	return owner, &model.TokenClaims{OwnerID: owner.ID, SiteKey: owner.SiteKey, Email: owner.Email}
}

type request struct {
	method string
	target string
	body   string
	claims *model.TokenClaims
	params map[string]string
}

func serve(t *testing.T, h http.HandlerFunc, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	ctx := req.Context()
	if r.claims != nil {
		ctx = auth.ContextWithClaims(ctx, r.claims)
	}
	if len(r.params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range r.params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	rec := httptest.NewRecorder()
	h(rec, req.WithContext(ctx))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["code"] != code {
		t.Errorf("code = %v, want %s", body["code"], code)
	}
	if message != "" && body["error"] != message {
		t.Errorf("error = %v, want %q", body["error"], message)
	}
}
