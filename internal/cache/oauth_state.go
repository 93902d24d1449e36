package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	oauthStatePrefix = "oauth:state:"

	// OAuthStateTTL bounds how long a login attempt may take.
	OAuthStateTTL = 10 * time.Minute
)

// ErrStateNotFound is returned when an OAuth state is unknown, expired or already used.
var ErrStateNotFound = errors.New("oauth state not found")

// SaveOAuthState records a pending OAuth state value.
func (c *Cache) SaveOAuthState(ctx context.Context, state string) error {
	return c.client.Set(ctx, oauthStatePrefix+state, "1", OAuthStateTTL).Err()
}

// ConsumeOAuthState deletes the state and reports whether it was pending.
func (c *Cache) ConsumeOAuthState(ctx context.Context, state string) error {
	if state == "" {
		return ErrStateNotFound
	}
	_, err := c.client.GetDel(ctx, oauthStatePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("redis getdel failed: %w", err)
	}
	return nil
}
