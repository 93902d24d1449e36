package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SubmissionsAccepted      uint64
	SubmissionsRejected      map[string]uint64
	NotificationsSent        uint64
	NotificationsFailed      uint64
	IngestDurationCount      uint64
	IngestDurationTotalNs    int64
	OwnersRegistered         map[string]uint64
	LoginSuccesses           uint64
	LoginFailures            uint64
	TenantCacheHits          uint64
	TenantCacheMisses        uint64
	AnalyticsDurationCount   uint64
	AnalyticsDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics endpoint.
type InMemoryRecorder struct {
	submissionsAccepted      uint64
	rejectedValidation       uint64
	rejectedUnknownSiteKey   uint64
	rejectedStoreError       uint64
	notificationsSent        uint64
	notificationsFailed      uint64
	ingestDurationCount      uint64
	ingestDurationTotalNs    int64
	registeredPassword       uint64
	registeredGoogle         uint64
	loginSuccesses           uint64
	loginFailures            uint64
	tenantCacheHits          uint64
	tenantCacheMisses        uint64
	analyticsDurationCount   uint64
	analyticsDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SubmissionsAccepted: atomic.LoadUint64(&m.submissionsAccepted),
		SubmissionsRejected: map[string]uint64{
			RejectValidation:     atomic.LoadUint64(&m.rejectedValidation),
			RejectUnknownSiteKey: atomic.LoadUint64(&m.rejectedUnknownSiteKey),
			RejectStoreError:     atomic.LoadUint64(&m.rejectedStoreError),
		},
		NotificationsSent:     atomic.LoadUint64(&m.notificationsSent),
		NotificationsFailed:   atomic.LoadUint64(&m.notificationsFailed),
		IngestDurationCount:   atomic.LoadUint64(&m.ingestDurationCount),
		IngestDurationTotalNs: atomic.LoadInt64(&m.ingestDurationTotalNs),
		OwnersRegistered: map[string]uint64{
			MethodPassword: atomic.LoadUint64(&m.registeredPassword),
			MethodGoogle:   atomic.LoadUint64(&m.registeredGoogle),
		},
		LoginSuccesses:           atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:            atomic.LoadUint64(&m.loginFailures),
		TenantCacheHits:          atomic.LoadUint64(&m.tenantCacheHits),
		TenantCacheMisses:        atomic.LoadUint64(&m.tenantCacheMisses),
		AnalyticsDurationCount:   atomic.LoadUint64(&m.analyticsDurationCount),
		AnalyticsDurationTotalNs: atomic.LoadInt64(&m.analyticsDurationTotalNs),
	}
}

// IncSubmissionAccepted increments the accepted submissions counter.
func (m *InMemoryRecorder) IncSubmissionAccepted() {
	atomic.AddUint64(&m.submissionsAccepted, 1)
}

// IncSubmissionRejected increments the rejection counter for reason.
// Unknown reasons are ignored.
func (m *InMemoryRecorder) IncSubmissionRejected(reason string) {
	switch reason {
	case RejectValidation:
		atomic.AddUint64(&m.rejectedValidation, 1)
	case RejectUnknownSiteKey:
		atomic.AddUint64(&m.rejectedUnknownSiteKey, 1)
	case RejectStoreError:
		atomic.AddUint64(&m.rejectedStoreError, 1)
	}
}

// IncNotificationSent counts notification outcomes.
func (m *InMemoryRecorder) IncNotificationSent(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.notificationsSent, 1)
		return
	}
	atomic.AddUint64(&m.notificationsFailed, 1)
}

// ObserveIngestDuration records submission handling time.
func (m *InMemoryRecorder) ObserveIngestDuration(duration time.Duration) {
	atomic.AddUint64(&m.ingestDurationCount, 1)
	atomic.AddInt64(&m.ingestDurationTotalNs, duration.Nanoseconds())
}

// IncOwnerRegistered counts new owners by registration method.
func (m *InMemoryRecorder) IncOwnerRegistered(method string) {
	switch method {
	case MethodPassword:
		atomic.AddUint64(&m.registeredPassword, 1)
	case MethodGoogle:
		atomic.AddUint64(&m.registeredGoogle, 1)
	}
}

// IncLoginAttempt counts login outcomes.
func (m *InMemoryRecorder) IncLoginAttempt(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.loginSuccesses, 1)
		return
	}
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncTenantCacheHit increments the tenant cache hit counter.
func (m *InMemoryRecorder) IncTenantCacheHit() {
	atomic.AddUint64(&m.tenantCacheHits, 1)
}

// IncTenantCacheMiss increments the tenant cache miss counter.
func (m *InMemoryRecorder) IncTenantCacheMiss() {
	atomic.AddUint64(&m.tenantCacheMisses, 1)
}

// ObserveAnalyticsDuration records analytics computation time.
func (m *InMemoryRecorder) ObserveAnalyticsDuration(duration time.Duration) {
	atomic.AddUint64(&m.analyticsDurationCount, 1)
	atomic.AddInt64(&m.analyticsDurationTotalNs, duration.Nanoseconds())
}
