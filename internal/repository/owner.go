package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/formpost/formpost/internal/model"
)

// Common errors for owner repository operations.
var (
	ErrOwnerNotFound = errors.New("owner not found")
	ErrEmailExists   = errors.New("email already exists")
	ErrSiteKeyExists = errors.New("site key already exists")
)

const ownerColumns = `id, email, site_key, password_hash, google_id, theme, created_at`

// CreateOwner inserts a new owner. Duplicate emails and site keys are
// reported as ErrEmailExists and ErrSiteKeyExists.
func (r *Repository) CreateOwner(ctx context.Context, owner *model.Owner) error {
	theme, err := marshalJSONB(owner.ThemeOrEmpty())
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}

	query := `
		INSERT INTO owners (id, email, site_key, password_hash, google_id, theme, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		owner.ID,
		owner.Email,
		owner.SiteKey,
		nullString(owner.PasswordHash),
		nullString(owner.GoogleID),
		theme,
		owner.CreatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "owners_site_key_key" {
				return ErrSiteKeyExists
			}
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create owner: %w", err)
	}

	return nil
}

// GetOwnerByID retrieves an owner by ID.
func (r *Repository) GetOwnerByID(ctx context.Context, id string) (*model.Owner, error) {
	return r.getOwner(ctx, "id", id)
}

// GetOwnerByEmail retrieves an owner by email address.
func (r *Repository) GetOwnerByEmail(ctx context.Context, email string) (*model.Owner, error) {
	return r.getOwner(ctx, "email", email)
}

// GetOwnerBySiteKey retrieves the owner a site key belongs to.
// This is the hot path for public submissions.
func (r *Repository) GetOwnerBySiteKey(ctx context.Context, siteKey string) (*model.Owner, error) {
	return r.getOwner(ctx, "site_key", siteKey)
}

// UpdateOwnerTheme replaces the owner's theme mapping.
func (r *Repository) UpdateOwnerTheme(ctx context.Context, siteKey string, theme model.Fields) error {
	encoded, err := marshalJSONB(theme)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `UPDATE owners SET theme = $2 WHERE site_key = $1`, siteKey, encoded)
	if err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOwnerNotFound
	}
	return nil
}

// column is always one of the fixed names passed by the getters above.
func (r *Repository) getOwner(ctx context.Context, column, value string) (*model.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE ` + column + ` = $1`

	owner, err := scanOwner(r.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to get owner by %s: %w", column, err)
	}
	return owner, nil
}

func scanOwner(row pgx.Row) (*model.Owner, error) {
	var (
		owner        model.Owner
		passwordHash *string
		googleID     *string
		theme        []byte
	)

	if err := row.Scan(
		&owner.ID,
		&owner.Email,
		&owner.SiteKey,
		&passwordHash,
		&googleID,
		&theme,
		&owner.CreatedAt,
	); err != nil {
		return nil, err
	}

	if passwordHash != nil {
		owner.PasswordHash = *passwordHash
	}
	if googleID != nil {
		owner.GoogleID = *googleID
	}
	owner.Theme = model.Fields{}
	if len(theme) > 0 {
		if err := json.Unmarshal(theme, &owner.Theme); err != nil {
			return nil, fmt.Errorf("decode theme: %w", err)
		}
	}

	return &owner, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
