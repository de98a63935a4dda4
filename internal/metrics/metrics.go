// Package metrics exposes Prometheus instrumentation for sync runs and
// provider calls. Collectors register on the default registry; the
// schedule command serves them over HTTP when --metrics-addr is set.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

var (
	// SyncPagesFetched counts processed feed pages per class.
	SyncPagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohort_sync_pages_fetched_total",
			Help: "Total number of progression pages processed",
		},
		[]string{"class_id"},
	)

	// SyncRecords counts feed records by outcome.
	SyncRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohort_sync_records_total",
			Help: "Total number of progression records seen during sync",
		},
		[]string{"class_id", "outcome"}, // "new", "duplicate"
	)

	// ClassSyncs counts finished class syncs by mode and result.
	ClassSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohort_class_syncs_total",
			Help: "Total number of class syncs",
		},
		[]string{"mode", "result"}, // mode: "full", "incremental"; result: "ok", "auth", "fetch", "storage", "canceled", "error"
	)

	// SyncDuration observes class sync wall time.
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cohort_sync_duration_seconds",
			Help:    "Duration of class syncs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"mode"},
	)

	// SyncLastSuccess is the unix time of the last successful class sync.
	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cohort_sync_last_success_timestamp",
			Help: "Unix timestamp of last successful class sync",
		},
	)

	// ProviderRequests counts provider HTTP calls by operation and status class.
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohort_provider_requests_total",
			Help: "Total number of LMS provider requests",
		},
		[]string{"operation", "status"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cohort_circuit_breaker_state",
			Help: "Provider circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Mode returns the metric label for a sync mode.
func Mode(full bool) string {
	if full {
		return "full"
	}
	return "incremental"
}

// ErrorKind classifies a sync error for metric labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAuth):
		return "auth"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	case errors.Is(err, domain.ErrFetch):
		return "fetch"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// RecordClassSync records the outcome of one class sync.
func RecordClassSync(full bool, started time.Time, err error) {
	mode := Mode(full)
	SyncDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
	ClassSyncs.WithLabelValues(mode, ErrorKind(err)).Inc()
	if err == nil {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordPage records one processed page.
func RecordPage(classID string, newRecords, duplicates int) {
	SyncPagesFetched.WithLabelValues(classID).Inc()
	SyncRecords.WithLabelValues(classID, "new").Add(float64(newRecords))
	SyncRecords.WithLabelValues(classID, "duplicate").Add(float64(duplicates))
}
