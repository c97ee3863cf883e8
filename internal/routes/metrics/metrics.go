package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

// Metrics provides observability for route submission and cache use.
type Metrics struct {
	CacheLookups *prometheus.CounterVec

	// Submissions by result: accepted, replayed, conflict, invalid, failed
	Submissions *prometheus.CounterVec

	// Queue deliveries by result: enriched, retried, dropped
	Deliveries *prometheus.CounterVec
}

var _ ports.RouteMetrics = (*Metrics)(nil)

// New registers the route metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wildside_route_cache_lookups_total",
			Help: "Route cache lookups by result (hit or miss)",
		}, []string{"result"}),

		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wildside_route_submissions_total",
			Help: "Route submissions by result",
		}, []string{"result"}),

		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wildside_route_queue_deliveries_total",
			Help: "Route jobs consumed from the queue by result",
		}, []string{"result"}),
	}
}

// RecordCacheHit satisfies ports.RouteMetrics.
func (m *Metrics) RecordCacheHit(context.Context) error {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
	return nil
}

// RecordCacheMiss satisfies ports.RouteMetrics.
func (m *Metrics) RecordCacheMiss(context.Context) error {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
	return nil
}

func (m *Metrics) IncrementSubmission(result string) {
	if m != nil {
		m.Submissions.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementDelivery(result string) {
	if m != nil {
		m.Deliveries.WithLabelValues(result).Inc()
	}
}
