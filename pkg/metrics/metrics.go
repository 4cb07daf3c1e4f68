package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records order/item store operation outcomes.
type StoreMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	bulkChunks  *prometheus.CounterVec
	feedApplied *prometheus.CounterVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_op_duration_seconds",
		Help:    "Duration of order store operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_op_success",
		Help: "Successful order store operations.",
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_op_failure",
		Help: "Failed order store operations.",
	}, []string{"op"})
	bulkChunks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_bulk_chunk_failures",
		Help: "Bulk operation chunks that failed mid-run.",
	}, []string{"op"})
	feedApplied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_applied",
		Help: "Realtime item events merged into local state.",
	}, []string{"type"})
	reg.MustRegister(duration, success, failure, bulkChunks, feedApplied)
	return &StoreMetrics{
		duration:    duration,
		success:     success,
		failure:     failure,
		bulkChunks:  bulkChunks,
		feedApplied: feedApplied,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *StoreMetrics) ObserveDuration(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *StoreMetrics) IncSuccess(op string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *StoreMetrics) IncFailure(op string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncBulkChunkFailure counts a failed chunk inside a bulk operation.
func (m *StoreMetrics) IncBulkChunkFailure(op string) {
	if m == nil || m.bulkChunks == nil {
		return
	}
	m.bulkChunks.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFeedApplied counts a realtime event merged into local state.
func (m *StoreMetrics) IncFeedApplied(eventType string) {
	if m == nil || m.feedApplied == nil {
		return
	}
	m.feedApplied.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
