package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/formpost/formpost/internal/model"
)

const (
	// ownerKeyPrefix is the Redis key prefix for owners looked up by site key.
	ownerKeyPrefix = "owner:sitekey:"

	// DefaultOwnerTTL is the time-to-live for cached owners.
	DefaultOwnerTTL = 5 * time.Minute
)

// cachedOwner is the Redis representation of an owner.
// Credentials are never written to the cache.
type cachedOwner struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	SiteKey   string       `json:"site_key"`
	Theme     model.Fields `json:"theme"`
	CreatedAt time.Time    `json:"created_at"`
}

func ownerKey(siteKey string) string {
	return ownerKeyPrefix + siteKey
}

func encodeOwner(o *model.Owner) ([]byte, error) {
	return json.Marshal(cachedOwner{
		ID:        o.ID,
		Email:     o.Email,
		SiteKey:   o.SiteKey,
		Theme:     o.ThemeOrEmpty(),
		CreatedAt: o.CreatedAt,
	})
}

func decodeOwner(data []byte) (*model.Owner, error) {
	var cached cachedOwner
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	if cached.SiteKey == "" {
		return nil, errors.New("cached owner without site key")
	}
	theme := cached.Theme
	if theme == nil {
		theme = model.Fields{}
	}
	return &model.Owner{
		ID:        cached.ID,
		Email:     cached.Email,
		SiteKey:   cached.SiteKey,
		Theme:     theme,
		CreatedAt: cached.CreatedAt,
	}, nil
}

// GetOwner retrieves a cached owner by site key.
// Returns ErrCacheMiss if not found or the entry is unreadable.
func (c *Cache) GetOwner(ctx context.Context, siteKey string) (*model.Owner, error) {
	data, err := c.client.Get(ctx, ownerKey(siteKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	owner, err := decodeOwner(data)
	if err != nil {
		// Corrupted cache entry - treat as miss
		return nil, ErrCacheMiss
	}
	return owner, nil
}

// SetOwner caches an owner under its site key.
func (c *Cache) SetOwner(ctx context.Context, owner *model.Owner) error {
	data, err := encodeOwner(owner)
	if err != nil {
		return fmt.Errorf("marshal owner: %w", err)
	}
	return c.client.Set(ctx, ownerKey(owner.SiteKey), data, c.ownerTTL).Err()
}

// AddOwner caches an owner only if no entry exists for its site key.
// Read-path backfills use it so they never overwrite a fresher write.
func (c *Cache) AddOwner(ctx context.Context, owner *model.Owner) error {
	data, err := encodeOwner(owner)
	if err != nil {
		return fmt.Errorf("marshal owner: %w", err)
	}
	return c.client.SetNX(ctx, ownerKey(owner.SiteKey), data, c.ownerTTL).Err()
}

// DeleteOwner removes a cached owner.
func (c *Cache) DeleteOwner(ctx context.Context, siteKey string) error {
	return c.client.Del(ctx, ownerKey(siteKey)).Err()
}
