// Package memstore is an in-memory implementation of the owner and
// submission stores, used by tests and local tooling.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/formpost/formpost/internal/analytics"
	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/repository"
)

// Store keeps owners and submissions in memory. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	owners      map[string]*model.Owner // by id
	submissions []*model.Submission

	// FailCreateSubmission makes CreateSubmission return this error when set.
	FailCreateSubmission error
}

// New returns an empty Store.
func New() *Store {
	return &Store{owners: make(map[string]*model.Owner)}
}

func cloneOwner(o *model.Owner) *model.Owner {
	cp := *o
	cp.Theme = o.Theme.Clone()
	return &cp
}

// CreateOwner stores a copy of owner, enforcing unique email and site key.
func (s *Store) CreateOwner(_ context.Context, owner *model.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.owners {
		if o.Email == owner.Email {
			return repository.ErrEmailExists
		}
		if o.SiteKey == owner.SiteKey {
			return repository.ErrSiteKeyExists
		}
	}
	s.owners[owner.ID] = cloneOwner(owner)
	return nil
}

// GetOwnerByID implements the owner store.
func (s *Store) GetOwnerByID(_ context.Context, id string) (*model.Owner, error) {
	return s.find(func(o *model.Owner) bool { return o.ID == id })
}

// GetOwnerByEmail implements the owner store.
func (s *Store) GetOwnerByEmail(_ context.Context, email string) (*model.Owner, error) {
	return s.find(func(o *model.Owner) bool { return o.Email == email })
}

// GetOwnerBySiteKey implements the owner store.
func (s *Store) GetOwnerBySiteKey(_ context.Context, siteKey string) (*model.Owner, error) {
	return s.find(func(o *model.Owner) bool { return o.SiteKey == siteKey })
}

// UpdateOwnerTheme implements the owner store.
func (s *Store) UpdateOwnerTheme(_ context.Context, siteKey string, theme model.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.owners {
		if o.SiteKey == siteKey {
			o.Theme = theme.Clone()
			return nil
		}
	}
	return repository.ErrOwnerNotFound
}

func (s *Store) find(match func(*model.Owner) bool) (*model.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.owners {
		if match(o) {
			return cloneOwner(o), nil
		}
	}
	return nil, repository.ErrOwnerNotFound
}

// OwnerCount returns the number of stored owners.
func (s *Store) OwnerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.owners)
}

// CreateSubmission implements the submission store.
func (s *Store) CreateSubmission(_ context.Context, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreateSubmission != nil {
		return s.FailCreateSubmission
	}
	cp := *sub
	cp.Fields = sub.Fields.Clone()
	s.submissions = append(s.submissions, &cp)
	return nil
}

// ListSubmissions returns a site key's submissions, newest first.
func (s *Store) ListSubmissions(_ context.Context, siteKey string) ([]*model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Submission, 0)
	for _, sub := range s.submissions {
		if sub.SiteKey == siteKey {
			cp := *sub
			cp.Fields = sub.Fields.Clone()
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SubmissionStats implements the submission store.
func (s *Store) SubmissionStats(_ context.Context, siteKey string) (model.SubmissionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats model.SubmissionStats
	for _, sub := range s.submissions {
		if sub.SiteKey != siteKey {
			continue
		}
		stats.Count++
		if stats.Latest == nil || sub.CreatedAt.After(*stats.Latest) {
			ts := sub.CreatedAt
			stats.Latest = &ts
		}
	}
	return stats, nil
}

// CountSubmissionsInRanges implements the submission store.
func (s *Store) CountSubmissionsInRanges(_ context.Context, siteKey string, bounds []time.Time) ([]int64, error) {
	if len(bounds) < 2 {
		return nil, repository.ErrInvalidBuckets
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var times []time.Time
	for _, sub := range s.submissions {
		if sub.SiteKey == siteKey {
			times = append(times, sub.CreatedAt)
		}
	}
	return analytics.CountInRanges(bounds, times), nil
}
