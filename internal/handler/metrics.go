package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/formpost/formpost/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler. A nil snapshotter means
// metrics are disabled.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "formpost_submissions_accepted_total %d\n", snap.SubmissionsAccepted)
	writeLabeled(w, "formpost_submissions_rejected_total", "reason", snap.SubmissionsRejected)
	writeMetric(w, "formpost_ingest_duration_seconds_count %d\n", snap.IngestDurationCount)
	writeMetric(w, "formpost_ingest_duration_seconds_sum %.6f\n", float64(snap.IngestDurationTotalNs)/1e9)

	writeMetric(w, "formpost_notifications_total{status=\"success\"} %d\n", snap.NotificationsSent)
	writeMetric(w, "formpost_notifications_total{status=\"failed\"} %d\n", snap.NotificationsFailed)

	writeLabeled(w, "formpost_owners_registered_total", "method", snap.OwnersRegistered)
	writeMetric(w, "formpost_login_attempts_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "formpost_login_attempts_total{status=\"failed\"} %d\n", snap.LoginFailures)

	writeMetric(w, "formpost_tenant_cache_hits_total %d\n", snap.TenantCacheHits)
	writeMetric(w, "formpost_tenant_cache_misses_total %d\n", snap.TenantCacheMisses)

	writeMetric(w, "formpost_analytics_duration_seconds_count %d\n", snap.AnalyticsDurationCount)
	writeMetric(w, "formpost_analytics_duration_seconds_sum %.6f\n", float64(snap.AnalyticsDurationTotalNs)/1e9)
}

// writeLabeled writes one sample per label value, in label order.
func writeLabeled(w http.ResponseWriter, name, label string, values map[string]uint64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
