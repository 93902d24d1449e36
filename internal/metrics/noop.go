package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSubmissionAccepted is a no-op.
func (n *NoopRecorder) IncSubmissionAccepted() {}

// IncSubmissionRejected is a no-op.
func (n *NoopRecorder) IncSubmissionRejected(reason string) {}

// IncNotificationSent is a no-op.
func (n *NoopRecorder) IncNotificationSent(status string) {}

// ObserveIngestDuration is a no-op.
func (n *NoopRecorder) ObserveIngestDuration(duration time.Duration) {}

// IncOwnerRegistered is a no-op.
func (n *NoopRecorder) IncOwnerRegistered(method string) {}

// IncLoginAttempt is a no-op.
func (n *NoopRecorder) IncLoginAttempt(status string) {}

// IncTenantCacheHit is a no-op.
func (n *NoopRecorder) IncTenantCacheHit() {}

// IncTenantCacheMiss is a no-op.
func (n *NoopRecorder) IncTenantCacheMiss() {}

// ObserveAnalyticsDuration is a no-op.
func (n *NoopRecorder) ObserveAnalyticsDuration(duration time.Duration) {}
