package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/formpost/formpost/internal/cache"
	"github.com/formpost/formpost/internal/metrics"
	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/repository"
)

// TenantResolver maps public site keys to owners.
// Owners returned from the cache carry no credentials.
type TenantResolver struct {
	owners  OwnerStore
	cache   OwnerCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewTenantResolver creates a TenantResolver. cache may be nil.
func NewTenantResolver(owners OwnerStore, c OwnerCache, recorder metrics.Recorder, logger *slog.Logger) *TenantResolver {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantResolver{
		owners:  owners,
		cache:   c,
		metrics: recorder,
		logger:  logger.With("component", "tenant"),
	}
}

// Resolve returns the owner of siteKey or ErrSiteKeyNotFound.
func (r *TenantResolver) Resolve(ctx context.Context, siteKey string) (*model.Owner, error) {
	if siteKey == "" {
		return nil, ErrMissingSiteKey
	}

	if r.cache != nil {
		owner, err := r.cache.GetOwner(ctx, siteKey)
		if err == nil {
			r.metrics.IncTenantCacheHit()
			return owner, nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			r.metrics.IncTenantCacheMiss()
		} else {
			// Redis error - fall through to the store
			r.logger.WarnContext(ctx, "owner cache lookup failed", "error", err)
		}
	}

	owner, err := r.owners.GetOwnerBySiteKey(ctx, siteKey)
	if err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, ErrSiteKeyNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.AddOwner(ctx, owner); err != nil {
			r.logger.WarnContext(ctx, "owner cache backfill failed", "error", err)
		}
	}

	return owner, nil
}

// Refresh writes owner through to the cache after a change. If the write
// fails the entry is dropped instead.
func (r *TenantResolver) Refresh(ctx context.Context, owner *model.Owner) {
	if r.cache == nil {
		return
	}
	err := r.cache.SetOwner(ctx, owner)
	if err == nil {
		return
	}
	r.logger.WarnContext(ctx, "owner cache refresh failed", "error", err)
	if err := r.cache.DeleteOwner(ctx, owner.SiteKey); err != nil {
		r.logger.WarnContext(ctx, "owner cache invalidation failed", "error", err)
	}
}
