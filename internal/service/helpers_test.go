package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/formpost/formpost/internal/auth"
	"github.com/formpost/formpost/internal/cache"
	"github.com/formpost/formpost/internal/metrics"
	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/repository/memstore"
)

type sentMessage struct {
	owner  *model.Owner
	fields model.Fields
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *stubNotifier) Send(_ context.Context, owner *model.Owner, fields model.Fields) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{owner: owner, fields: fields})
	return n.err
}

// mapCache is an in-memory OwnerCache.
type mapCache struct {
	mu     sync.Mutex
	owners map[string]*model.Owner
	err    error
}

func newMapCache() *mapCache {
	return &mapCache{owners: make(map[string]*model.Owner)}
}

func (c *mapCache) GetOwner(_ context.Context, siteKey string) (*model.Owner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	o, ok := c.owners[siteKey]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	cp := *o
	return &cp, nil
}

func (c *mapCache) SetOwner(_ context.Context, owner *model.Owner) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	cp := *owner
	c.owners[owner.SiteKey] = &cp
	return nil
}

func (c *mapCache) AddOwner(_ context.Context, owner *model.Owner) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if _, ok := c.owners[owner.SiteKey]; !ok {
		cp := *owner
		c.owners[owner.SiteKey] = &cp
	}
	return nil
}

func (c *mapCache) DeleteOwner(_ context.Context, siteKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.owners, siteKey)
	return c.err
}

var errBoom = errors.New("boom")

type testEnv struct {
	store     *memstore.Store
	cache     *mapCache
	notifier  *stubNotifier
	recorder  *metrics.InMemoryRecorder
	tokens    *auth.TokenIssuer
	tenants   *TenantResolver
	accounts  *AccountService
	subs      *SubmissionService
	analytics *AnalyticsService
	themes    *ThemeService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    memstore.New(),
		cache:    newMapCache(),
		notifier: &stubNotifier{},
		recorder: metrics.NewInMemory(),
		tokens:   auth.NewTokenIssuer("test-secret", time.Hour),
	}
	env.tenants = NewTenantResolver(env.store, env.cache, env.recorder, nil)
	env.accounts = NewAccountService(env.store, env.tokens, env.recorder, nil)
	env.subs = NewSubmissionService(env.tenants, env.store, env.notifier, env.recorder, nil)
	env.analytics = NewAnalyticsService(env.store, time.UTC, env.recorder)
	env.themes = NewThemeService(env.store, env.tenants)
	return env
}

func (e *testEnv) register(ctx context.Context, email string) (*model.Owner, error) {
	siteKey, err := e.accounts.Register(ctx, email, "password123")
	if err != nil {
		return nil, err
	}
	return e.store.GetOwnerBySiteKey(ctx, siteKey)
}
