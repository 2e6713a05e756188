package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// External link lookups by outcome (found, not_found, missing_id, storage_error, cache_hit)
	LookupRequests *prometheus.CounterVec

	// Bearer tokens seen on lookups (absent, valid, rejected)
	LinkTokens *prometheus.CounterVec

	// Link issuance
	LinksIssued      prometheus.Counter
	LinkSignFailures *prometheus.CounterVec

	// Document store
	StoreQueryLatency prometheus.Histogram
	StoreUp           prometheus.Gauge
}

// NewMetrics registers the application metrics with reg.
// main passes prometheus.DefaultRegisterer; tests pass a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LookupRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessionlink_lookup_requests_total",
			Help: "Total number of external session lookups by outcome",
		}, []string{"outcome"}),

		LinkTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessionlink_link_tokens_total",
			Help: "Bearer link tokens presented on lookups by verification outcome",
		}, []string{"outcome"}),

		LinksIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessionlink_links_issued_total",
			Help: "Total number of signed links issued",
		}),

		LinkSignFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessionlink_link_sign_failures_total",
			Help: "Link signing requests refused by reason",
		}, []string{"reason"}),

		StoreQueryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sessionlink_store_query_duration_seconds",
			Help:    "Document store lookup latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		StoreUp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sessionlink_store_up",
			Help: "1 if the last document store ping succeeded, 0 otherwise",
		}),
	}
}

func (m *Metrics) recordLookup(outcome string) {
	if m == nil {
		return
	}
	m.LookupRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordTokenOutcome(outcome string) {
	if m == nil {
		return
	}
	m.LinkTokens.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeStoreLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.StoreQueryLatency.Observe(d.Seconds())
}

// RecordLinkIssued records a successfully signed link
func (m *Metrics) RecordLinkIssued() {
	if m == nil {
		return
	}
	m.LinksIssued.Inc()
}

// RecordLinkSignFailure records a refused signing request
func (m *Metrics) RecordLinkSignFailure(reason string) {
	if m == nil {
		return
	}
	m.LinkSignFailures.WithLabelValues(reason).Inc()
}

// SetStoreUp records the result of a store health probe
func (m *Metrics) SetStoreUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.StoreUp.Set(1)
	} else {
		m.StoreUp.Set(0)
	}
}
