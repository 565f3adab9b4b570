package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the entitlement module.
// All methods are nil-safe so components can run without metrics in tests.
type Metrics struct {
	// Evaluation outcomes by event kind, outcome kind and reason
	Outcomes *prometheus.CounterVec

	// Full evaluation latency including store reads and effects
	EvaluateLatency *prometheus.HistogramVec

	// Store operation latency by backend and operation
	StoreLatency *prometheus.HistogramVec

	// Store failures by backend and operation
	StoreErrors *prometheus.CounterVec

	// WFC setting writes that failed, by operation
	ApplierFailures *prometheus.CounterVec

	// Entitlement queries currently waiting for a result
	PendingQueries prometheus.Gauge

	// Query completions by result (stored, failed, expired)
	QueryCompletions *prometheus.CounterVec

	// Duplicate triggers folded into an in-flight evaluation
	DedupedTriggers prometheus.Counter
}

// New registers the module metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "imsse_entitlement_outcomes_total",
			Help: "Evaluation outcomes by trigger, outcome and reason",
		}, []string{"event", "outcome", "reason"}),

		EvaluateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imsse_entitlement_evaluate_duration_seconds",
			Help:    "Duration of one trigger evaluation including store access",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"event"}),

		StoreLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imsse_entitlement_store_duration_seconds",
			Help:    "Duration of entitlement store operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"backend", "op"}),

		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "imsse_entitlement_store_errors_total",
			Help: "Entitlement store operation failures",
		}, []string{"backend", "op"}),

		ApplierFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "imsse_wfc_apply_failures_total",
			Help: "Failed WFC setting writes by operation",
		}, []string{"op"}),

		PendingQueries: f.NewGauge(prometheus.GaugeOpts{
			Name: "imsse_entitlement_pending_queries",
			Help: "Entitlement queries scheduled and not yet completed",
		}),

		QueryCompletions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "imsse_entitlement_query_completions_total",
			Help: "Entitlement query completions by result",
		}, []string{"result"}),

		DedupedTriggers: f.NewCounter(prometheus.CounterOpts{
			Name: "imsse_entitlement_deduped_triggers_total",
			Help: "Triggers that shared an in-flight evaluation",
		}),
	}
}

// IncrementOutcome records one evaluation outcome.
func (m *Metrics) IncrementOutcome(event, outcome, reason string) {
	if m != nil {
		m.Outcomes.WithLabelValues(event, outcome, reason).Inc()
	}
}

// ObserveEvaluateLatency records the duration of one evaluation.
func (m *Metrics) ObserveEvaluateLatency(event string, d time.Duration) {
	if m != nil {
		m.EvaluateLatency.WithLabelValues(event).Observe(d.Seconds())
	}
}

// ObserveStore records a store operation and whether it failed.
func (m *Metrics) ObserveStore(backend, op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreLatency.WithLabelValues(backend, op).Observe(d.Seconds())
	if err != nil {
		m.StoreErrors.WithLabelValues(backend, op).Inc()
	}
}

// IncrementApplierFailure records a failed WFC write.
func (m *Metrics) IncrementApplierFailure(op string) {
	if m != nil {
		m.ApplierFailures.WithLabelValues(op).Inc()
	}
}

// SetPendingQueries reports the number of pending queries.
func (m *Metrics) SetPendingQueries(n int) {
	if m != nil {
		m.PendingQueries.Set(float64(n))
	}
}

// IncrementQueryCompletion records how a query ended.
func (m *Metrics) IncrementQueryCompletion(result string) {
	if m != nil {
		m.QueryCompletions.WithLabelValues(result).Inc()
	}
}

// IncrementDeduped records a trigger folded into an in-flight evaluation.
func (m *Metrics) IncrementDeduped() {
	if m != nil {
		m.DedupedTriggers.Inc()
	}
}
