package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/formpost/formpost/internal/model"
)

func TestAnalytics_ZeroSubmissions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.analytics.now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }

	got, err := env.analytics.Summary(ctx, "k1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	want := &model.Analytics{
		Count:            0,
		LatestSubmission: nil,
		ChartData: []model.MonthlyCount{
			{Month: "Jan"}, {Month: "Feb"}, {Month: "Mar"},
			{Month: "Apr"}, {Month: "May"}, {Month: "Jun"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalytics_SingleSubmission(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	env.analytics.now = func() time.Time { return now }

	_ = env.store.CreateSubmission(ctx, &model.Submission{ID: "s1", SiteKey: "k1", CreatedAt: now})

	got, err := env.analytics.Summary(ctx, "k1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if got.Count != 1 || got.LatestSubmission == nil || !got.LatestSubmission.Equal(now) {
		t.Errorf("count/latest = %d/%v", got.Count, got.LatestSubmission)
	}
	var total int64
	for _, p := range got.ChartData {
		total += p.Submissions
	}
	if total != 1 || got.ChartData[5].Submissions != 1 {
		t.Errorf("chart = %+v, want single point in current month", got.ChartData)
	}
}

func TestAnalytics_OutsideWindow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	now := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	env.analytics.now = func() time.Time { return now }

	times := []time.Time{
		time.Date(2024, 8, 31, 23, 59, 59, 0, time.UTC), // before window
		time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), // future month
	}
	for i, ts := range times {
		_ = env.store.CreateSubmission(ctx, &model.Submission{ID: string(rune('a' + i)), SiteKey: "k1", CreatedAt: ts})
	}

	got, err := env.analytics.Summary(ctx, "k1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if got.Count != int64(len(times)) {
		t.Errorf("Count = %d, want %d", got.Count, len(times))
	}
	want := []model.MonthlyCount{
		{Month: "Sep", Submissions: 1},
		{Month: "Oct", Submissions: 0},
		{Month: "Nov", Submissions: 0},
		{Month: "Dec", Submissions: 1},
		{Month: "Jan", Submissions: 1},
		{Month: "Feb", Submissions: 0},
	}
	if diff := cmp.Diff(want, got.ChartData); diff != "" {
		t.Errorf("chart mismatch (-want +got):\n%s", diff)
	}
}
