package service

import (
	"context"
	"time"

	"github.com/formpost/formpost/internal/model"
)

// OwnerStore persists tenant accounts.
type OwnerStore interface {
	CreateOwner(ctx context.Context, owner *model.Owner) error
	GetOwnerByID(ctx context.Context, id string) (*model.Owner, error)
	GetOwnerByEmail(ctx context.Context, email string) (*model.Owner, error)
	GetOwnerBySiteKey(ctx context.Context, siteKey string) (*model.Owner, error)
	UpdateOwnerTheme(ctx context.Context, siteKey string, theme model.Fields) error
}

// SubmissionStore persists form submissions.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	ListSubmissions(ctx context.Context, siteKey string) ([]*model.Submission, error)
	SubmissionStats(ctx context.Context, siteKey string) (model.SubmissionStats, error)
	CountSubmissionsInRanges(ctx context.Context, siteKey string, bounds []time.Time) ([]int64, error)
}

// OwnerCache caches owners by site key. A nil OwnerCache disables caching.
type OwnerCache interface {
	GetOwner(ctx context.Context, siteKey string) (*model.Owner, error)
	SetOwner(ctx context.Context, owner *model.Owner) error
	AddOwner(ctx context.Context, owner *model.Owner) error
	DeleteOwner(ctx context.Context, siteKey string) error
}
