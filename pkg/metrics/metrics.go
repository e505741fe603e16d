package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// In-memory store calls by operation
	StoreOperations *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Calls to the BPJS and SATUSEHAT endpoints
	IntegrationCalls   *prometheus.CounterVec
	IntegrationLatency *prometheus.HistogramVec

	// Redis metrics
	EventsPublished *prometheus.CounterVec
	EventsConsumed  *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of in-memory store operations",
		}, []string{"operation"}),

		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		IntegrationCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "integration",
			Name:      "calls_total",
			Help:      "Total number of BPJS and SATUSEHAT calls",
		}, []string{"service", "action", "outcome"}),
		IntegrationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "integration",
			Name:      "call_duration_seconds",
			Help:      "Duration of BPJS and SATUSEHAT calls",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"service", "action"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of audit events published to the broker",
		}, []string{"status"}),
		EventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "consumed_total",
			Help:      "Total number of audit events read from the broker",
		}, []string{"type", "status"}),
	}
}
