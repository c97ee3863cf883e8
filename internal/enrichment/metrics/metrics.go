package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the enrichment worker.
type Metrics struct {
	// Attempts by outcome: success, retryable_source, source_rejected,
	// quota_denied, circuit_open, state_unavailable, abandoned
	Attempts *prometheus.CounterVec

	// Circuit position: 0 closed, 1 open, 2 half-open
	CircuitState *prometheus.GaugeVec

	FetchLatency prometheus.Histogram

	// Jobs by final result: enriched, cached, duplicate, failed
	Jobs *prometheus.CounterVec
}

// New registers the enrichment metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wildside_enrichment_attempts_total",
			Help: "Overpass enrichment attempts by outcome",
		}, []string{"outcome"}),

		CircuitState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wildside_enrichment_circuit_state",
			Help: "Circuit breaker state guarding the Overpass source (0 closed, 1 open, 2 half-open)",
		}, []string{"breaker"}),

		FetchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wildside_enrichment_fetch_duration_seconds",
			Help:    "Duration of admitted Overpass fetches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		Jobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wildside_enrichment_jobs_total",
			Help: "Enrichment jobs by final result",
		}, []string{"result"}),
	}
}

// IncrementAttempt records one attempt outcome.
func (m *Metrics) IncrementAttempt(outcome string) {
	if m != nil {
		m.Attempts.WithLabelValues(outcome).Inc()
	}
}

// SetCircuitState records the breaker position.
func (m *Metrics) SetCircuitState(breaker string, state int) {
	if m != nil {
		m.CircuitState.WithLabelValues(breaker).Set(float64(state))
	}
}

// ObserveFetchLatency records how long an admitted fetch took.
func (m *Metrics) ObserveFetchLatency(d time.Duration) {
	if m != nil {
		m.FetchLatency.Observe(d.Seconds())
	}
}

// IncrementJob records a finished job.
func (m *Metrics) IncrementJob(result string) {
	if m != nil {
		m.Jobs.WithLabelValues(result).Inc()
	}
}
