package model

import "time"

// MonthlyCount is one point of the submissions histogram.
type MonthlyCount struct {
	Month       string `json:"month"` // Short month name, e.g. "Jan"
	Submissions int64  `json:"submissions"`
}

// Analytics summarizes a tenant's submissions.
type Analytics struct {
	Count            int64          `json:"count"`
	LatestSubmission *time.Time     `json:"latestSubmission"`
	ChartData        []MonthlyCount `json:"chartData"`
}

// SubmissionStats holds the all-time aggregates of a tenant's submissions.
type SubmissionStats struct {
	Count  int64
	Latest *time.Time
}
