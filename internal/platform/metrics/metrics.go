package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the audit trail service.
type Metrics struct {
	EventsLogged     *prometheus.CounterVec
	WriteFailures    prometheus.Counter
	QueryFailures    prometheus.Counter
	QueryDuration    *prometheus.HistogramVec
	WriteDuration    prometheus.Histogram
	MalformedSkipped prometheus.Counter
	IndexesEnsured   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EventsLogged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "graphtrail_audit_events_logged_total",
			Help: "Total number of audit events written, labeled by event type",
		}, []string{"event_type"}),
		WriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "graphtrail_audit_write_failures_total",
			Help: "Total number of audit event writes rejected or failed by the store",
		}),
		QueryFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "graphtrail_audit_query_failures_total",
			Help: "Total number of audit queries rejected or failed by the store",
		}),
		QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphtrail_audit_query_duration_seconds",
			Help:    "Latency of audit queries in seconds, labeled by query",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"query"}),
		WriteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphtrail_audit_write_duration_seconds",
			Help:    "Latency of single audit event writes in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		}),
		MalformedSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "graphtrail_audit_malformed_records_skipped_total",
			Help: "Total number of stored records skipped because they could not be decoded",
		}),
		IndexesEnsured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "graphtrail_audit_indexes_ensured_total",
			Help: "Total number of successful index setup passes",
		}),
	}
}

// IncEventsLogged increments the events logged counter for an event type.
func (m *Metrics) IncEventsLogged(eventType string) {
	m.EventsLogged.WithLabelValues(eventType).Inc()
}

// IncWriteFailures increments the write failure counter by 1.
func (m *Metrics) IncWriteFailures() {
	m.WriteFailures.Inc()
}

// IncQueryFailures increments the query failure counter by 1.
func (m *Metrics) IncQueryFailures() {
	m.QueryFailures.Inc()
}

// ObserveQueryDuration records the latency for a given query.
func (m *Metrics) ObserveQueryDuration(query string, durationSeconds float64) {
	m.QueryDuration.WithLabelValues(query).Observe(durationSeconds)
}

// ObserveWriteDuration records the latency for a single event write.
func (m *Metrics) ObserveWriteDuration(durationSeconds float64) {
	m.WriteDuration.Observe(durationSeconds)
}

// IncMalformedSkipped increments the skipped record counter by 1.
func (m *Metrics) IncMalformedSkipped() {
	m.MalformedSkipped.Inc()
}

// IncIndexesEnsured increments the index setup counter by 1.
func (m *Metrics) IncIndexesEnsured() {
	m.IndexesEnsured.Inc()
}
