package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/formpost/formpost/internal/model"
)

// ErrInvalidBuckets is returned when range boundaries cannot form a bucket.
var ErrInvalidBuckets = errors.New("at least two ascending boundaries required")

// CreateSubmission stores a submission. The site key must reference an owner.
func (r *Repository) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	fields, err := marshalJSONB(sub.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
		INSERT INTO submissions (id, site_key, created_at, fields)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.pool.Exec(ctx, query, sub.ID, sub.SiteKey, sub.CreatedAt, fields); err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// ListSubmissions returns all submissions of a site key, newest first.
func (r *Repository) ListSubmissions(ctx context.Context, siteKey string) ([]*model.Submission, error) {
	query := `
		SELECT id, site_key, created_at, fields
		FROM submissions
		WHERE site_key = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, siteKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]*model.Submission, 0)
	for rows.Next() {
		var (
			sub    model.Submission
			fields []byte
		)
		if err := rows.Scan(&sub.ID, &sub.SiteKey, &sub.CreatedAt, &fields); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		sub.Fields = model.Fields{}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &sub.Fields); err != nil {
				return nil, fmt.Errorf("decode submission %s: %w", sub.ID, err)
			}
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return subs, nil
}

// SubmissionStats returns the total count and latest timestamp for a site key.
func (r *Repository) SubmissionStats(ctx context.Context, siteKey string) (model.SubmissionStats, error) {
	var stats model.SubmissionStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM submissions WHERE site_key = $1`, siteKey,
	).Scan(&stats.Count, &stats.Latest)
	if err != nil {
		return model.SubmissionStats{}, fmt.Errorf("failed to get submission stats: %w", err)
	}
	return stats, nil
}

// CountSubmissionsInRanges counts submissions in each half-open range
// [bounds[i], bounds[i+1]). The result has len(bounds)-1 entries.
func (r *Repository) CountSubmissionsInRanges(ctx context.Context, siteKey string, bounds []time.Time) ([]int64, error) {
	if len(bounds) < 2 {
		return nil, ErrInvalidBuckets
	}
	for i := 1; i < len(bounds); i++ {
		if !bounds[i].After(bounds[i-1]) {
			return nil, ErrInvalidBuckets
		}
	}

	// width_bucket returns i for bounds[i-1] <= created_at < bounds[i] (1-based).
	query := `
		SELECT width_bucket(created_at, $2::timestamptz[]) AS bucket, COUNT(*)
		FROM submissions
		WHERE site_key = $1
		  AND created_at >= $3
		  AND created_at < $4
		GROUP BY bucket
	`

	rows, err := r.pool.Query(ctx, query, siteKey, bounds, bounds[0], bounds[len(bounds)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	counts := make([]int64, len(bounds)-1)
	for rows.Next() {
		var bucket int
		var n int64
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		if bucket >= 1 && bucket <= len(counts) {
			counts[bucket-1] = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate buckets: %w", err)
	}

	return counts, nil
}
