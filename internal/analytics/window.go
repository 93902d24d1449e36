// Package analytics computes per-tenant submission aggregates over calendar months.
package analytics

import (
	"time"

	"github.com/formpost/formpost/internal/model"
)

// WindowMonths is the number of calendar months reported in chart data.
const WindowMonths = 6

// Bucket is one calendar month of the reporting window.
type Bucket struct {
	Year  int
	Month time.Month
	Label string
	Start time.Time
	End   time.Time // exclusive
}

// Window returns the WindowMonths calendar months ending with the month
// containing now, oldest first, with boundaries computed in loc.
func Window(now time.Time, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	current := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

	buckets := make([]Bucket, WindowMonths)
	for i := 0; i < WindowMonths; i++ {
		start := current.AddDate(0, i-(WindowMonths-1), 0)
		buckets[i] = Bucket{
			Year:  start.Year(),
			Month: start.Month(),
			Label: start.Format("Jan"),
			Start: start,
			End:   start.AddDate(0, 1, 0),
		}
	}
	return buckets
}

// Boundaries returns the ascending bucket edges: every bucket start followed
// by the end of the last bucket.
func Boundaries(buckets []Bucket) []time.Time {
	if len(buckets) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(buckets)+1)
	for _, b := range buckets {
		out = append(out, b.Start)
	}
	return append(out, buckets[len(buckets)-1].End)
}

// Chart pairs buckets with their counts. Missing counts are reported as zero.
func Chart(buckets []Bucket, counts []int64) []model.MonthlyCount {
	out := make([]model.MonthlyCount, len(buckets))
	for i, b := range buckets {
		var n int64
		if i < len(counts) {
			n = counts[i]
		}
		out[i] = model.MonthlyCount{Month: b.Label, Submissions: n}
	}
	return out
}

// CountInRanges counts timestamps per half-open range [bounds[i], bounds[i+1]).
// Timestamps outside every range are ignored.
func CountInRanges(bounds []time.Time, times []time.Time) []int64 {
	if len(bounds) < 2 {
		return nil
	}
	counts := make([]int64, len(bounds)-1)
	for _, ts := range times {
		for i := range counts {
			if !ts.Before(bounds[i]) && ts.Before(bounds[i+1]) {
				counts[i]++
				break
			}
		}
	}
	return counts
}
