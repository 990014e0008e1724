// Package metrics exposes prometheus instrumentation for catalog traffic,
// the detail cache and backend count writes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moviefinder"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	catalogRequests *prometheus.CounterVec
	catalogDuration *prometheus.HistogramVec
	detailCache     *prometheus.CounterVec
	countWrites     *prometheus.CounterVec
}

// New builds the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		catalogRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}), // outcome=ok|http_error|transport_error|decode_error
		catalogDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		detailCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_cache_total",
			Help:      "Movie detail cache lookups by result",
		}, []string{"result"}), // result=hit|miss
		countWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_count_writes_total",
			Help:      "Search count increments sent to the trending backend",
		}, []string{"outcome"}), // outcome=ok|error
	}
}

func (m *Metrics) ObserveCatalogRequest(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.catalogRequests.WithLabelValues(endpoint, outcome).Inc()
	m.catalogDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveDetailCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.detailCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCountWrite(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.countWrites.WithLabelValues(outcome).Inc()
}
