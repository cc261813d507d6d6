// Package metrics defines the prometheus collectors shared by the caches,
// the upstream clients and the batch orchestrator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "moodflix"

// Metrics groups all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheLookups     *prometheus.CounterVec
	cacheWrites      *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	batchItems       *prometheus.CounterVec
	batches          prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil reg skips registration (useful in tests).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache name and result (hit, miss).",
		}, []string{"cache", "result"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Cache writes by cache name.",
		}, []string{"cache"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Ids processed by the batch orchestrator by outcome (resolved, dropped).",
		}, []string{"outcome"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches issued by the batch orchestrator.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.cacheLookups,
			m.cacheWrites,
			m.upstreamRequests,
			m.upstreamDuration,
			m.batchItems,
			m.batches,
		)
	}
	return m
}

// CacheLookup records a cache read.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// CacheWrite records a cache write.
func (m *Metrics) CacheWrite(cache string) {
	if m == nil {
		return
	}
	m.cacheWrites.WithLabelValues(cache).Inc()
}

// Upstream records a finished upstream request.
func (m *Metrics) Upstream(upstream, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(upstream, outcome).Inc()
	m.upstreamDuration.WithLabelValues(upstream).Observe(elapsed.Seconds())
}

// Batch records one batch and the outcome of its items.
func (m *Metrics) Batch(resolved, dropped int) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.batchItems.WithLabelValues("resolved").Add(float64(resolved))
	m.batchItems.WithLabelValues("dropped").Add(float64(dropped))
}
