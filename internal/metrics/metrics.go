// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Label values accepted by the labeled Recorder methods.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	RejectValidation     = "validation"
	RejectUnknownSiteKey = "unknown_site_key"
	RejectStoreError     = "store_error"

	MethodPassword = "password"
	MethodGoogle   = "google"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Submission ingest metrics
	IncSubmissionAccepted()
	IncSubmissionRejected(reason string) // reason: "validation", "unknown_site_key", "store_error"
	IncNotificationSent(status string)   // status: "success" or "failed"
	ObserveIngestDuration(duration time.Duration)

	// Account metrics
	IncOwnerRegistered(method string) // method: "password" or "google"
	IncLoginAttempt(status string)    // status: "success" or "failed"

	// Tenant lookup cache
	IncTenantCacheHit()
	IncTenantCacheMiss()

	ObserveAnalyticsDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
