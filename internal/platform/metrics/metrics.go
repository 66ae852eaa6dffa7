package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AuditRecordsWritten *prometheus.CounterVec
	AuditRecordsSkipped *prometheus.CounterVec
	AuditWriteFailures  prometheus.Counter
	LoginsTotal         *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics on the given registry. Tests pass a fresh
// prometheus.NewRegistry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuditRecordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_audit_records_written_total",
			Help: "Audit records successfully appended, by action.",
		}, []string{"action"}),
		AuditRecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_audit_records_skipped_total",
			Help: "Audit records skipped before write, by reason.",
		}, []string{"reason"}),
		AuditWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "folio_audit_write_failures_total",
			Help: "Audit appends that failed and were absorbed.",
		}),
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}
