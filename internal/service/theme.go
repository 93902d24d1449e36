package service

import (
	"context"
	"errors"

	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/repository"
)

// ThemeService reads and replaces owner themes.
type ThemeService struct {
	owners  OwnerStore
	tenants *TenantResolver
}

// NewThemeService creates a new ThemeService.
func NewThemeService(owners OwnerStore, tenants *TenantResolver) *ThemeService {
	return &ThemeService{owners: owners, tenants: tenants}
}

// Get returns the theme of the owner with ownerID.
func (s *ThemeService) Get(ctx context.Context, ownerID string) (model.Fields, error) {
	owner, err := s.owner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return owner.ThemeOrEmpty(), nil
}

// Set replaces the whole theme of the owner with ownerID and refreshes the
// cached owner. A nil theme stores an empty mapping.
func (s *ThemeService) Set(ctx context.Context, ownerID string, theme model.Fields) error {
	owner, err := s.owner(ctx, ownerID)
	if err != nil {
		return err
	}
	if theme == nil {
		theme = model.Fields{}
	}

	if err := s.owners.UpdateOwnerTheme(ctx, owner.SiteKey, theme); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return ErrOwnerNotFound
		}
		return err
	}
	updated := *owner
	updated.Theme = theme
	s.tenants.Refresh(ctx, &updated)
	return nil
}

// GetPublic returns the theme for a site key without authentication.
func (s *ThemeService) GetPublic(ctx context.Context, siteKey string) (model.Fields, error) {
	owner, err := s.tenants.Resolve(ctx, siteKey)
	if err != nil {
		if errors.Is(err, ErrSiteKeyNotFound) || errors.Is(err, ErrMissingSiteKey) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return owner.ThemeOrEmpty(), nil
}

func (s *ThemeService) owner(ctx context.Context, ownerID string) (*model.Owner, error) {
	owner, err := s.owners.GetOwnerByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return owner, nil
}
