// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table with the down migrations (newest first)
// and recreates them with the up migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	if err != nil {
		return fmt.Errorf("list down migrations: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(downs)))

	for _, name := range downs {
		if err := execFile(ctx, pool, name); err != nil {
			return err
		}
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}

	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list up migrations: %w", err)
	}
	sort.Strings(ups)

	for _, name := range ups {
		if err := execFile(ctx, pool, name); err != nil {
			return err
		}
	}
	return nil
}

func execFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	body, err := fs.ReadFile(migrations.FS, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(body)); err != nil {
		return fmt.Errorf("apply %s: %w", strings.TrimSuffix(name, ".sql"), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestOwner creates a password owner with sensible defaults.
func NewTestOwner(t testing.TB) *model.Owner {
	t.Helper()
	id := ulid.Make().String()
	return &model.Owner{
		ID:           id,
		Email:        UniqueEmail("owner"),
		SiteKey:      UniqueSiteKey(),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGg",
		Theme:        model.Fields{},
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestSubmission creates a submission for siteKey at createdAt.
func NewTestSubmission(t testing.TB, siteKey string, createdAt time.Time) *model.Submission {
	t.Helper()
	return &model.Submission{
		ID:        ulid.Make().String(),
		SiteKey:   siteKey,
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
		Fields: model.Fields{
			"name":    model.StringValue("Ada"),
			"message": model.StringValue("hello"),
		},
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueSiteKey generates a unique site key for tests.
func UniqueSiteKey() string {
	return strings.ToLower(ulid.Make().String())
}
