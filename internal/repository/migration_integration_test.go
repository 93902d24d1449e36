//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formpost/formpost/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	for _, table := range []string{"owners", "submissions"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, repo.Pool(), table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_OwnersTableSchema(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	for _, col := range []string{"id", "email", "site_key", "password_hash", "google_id", "theme", "created_at"} {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, repo.Pool(), "owners", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in owners table", col)
			}
		})
	}
}

func TestIntegrationMigration_CredentialCheck(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	_, err := repo.Pool().Exec(ctx,
		`INSERT INTO owners (id, email, site_key) VALUES ('x', 'x@example.com', 'x')`)
	if err == nil {
		t.Fatal("owner without password or google id should be rejected")
	}
}

func TestIntegrationMigration_MigrateIdempotent(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	if _, err := repo.Pool().Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		t.Fatalf("drop schema_migrations: %v", err)
	}

	// Tables already exist; IF NOT EXISTS keeps the first run safe.
	for i := 0; i < 2; i++ {
		if err := repo.Migrate(ctx, nil); err != nil {
			t.Fatalf("Migrate run %d failed: %v", i+1, err)
		}
	}

	names, err := UpMigrations()
	if err != nil {
		t.Fatalf("UpMigrations failed: %v", err)
	}

	var applied int
	if err := repo.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if applied != len(names) {
		t.Errorf("applied = %d, want %d", applied, len(names))
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
