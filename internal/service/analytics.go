package service

import (
	"context"
	"time"

	"github.com/formpost/formpost/internal/analytics"
	"github.com/formpost/formpost/internal/metrics"
	"github.com/formpost/formpost/internal/model"
)

// AnalyticsService computes per-tenant submission aggregates.
type AnalyticsService struct {
	store   SubmissionStore
	loc     *time.Location
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. Month boundaries are
// computed in loc; nil means the host's local time.
func NewAnalyticsService(store SubmissionStore, loc *time.Location, recorder metrics.Recorder) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AnalyticsService{
		store:   store,
		loc:     loc,
		metrics: recorder,
		now:     time.Now,
	}
}

// Summary returns the all-time count, the latest submission time and a
// six-month histogram ending with the current month.
func (s *AnalyticsService) Summary(ctx context.Context, siteKey string) (*model.Analytics, error) {
	if siteKey == "" {
		return nil, ErrMissingSiteKey
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveAnalyticsDuration(time.Since(start))
	}()

	stats, err := s.store.SubmissionStats(ctx, siteKey)
	if err != nil {
		return nil, err
	}

	buckets := analytics.Window(s.now(), s.loc)
	counts, err := s.store.CountSubmissionsInRanges(ctx, siteKey, analytics.Boundaries(buckets))
	if err != nil {
		return nil, err
	}

	return &model.Analytics{
		Count:            stats.Count,
		LatestSubmission: stats.Latest,
		ChartData:        analytics.Chart(buckets, counts),
	}, nil
}
