package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks listing cache effectiveness and resolve latency per kind.
type Metrics struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the catalog metrics against the provided registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atrium_catalog_cache_hits_total",
		Help: "Listing cache hits partitioned by entity kind.",
	}, []string{"kind"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atrium_catalog_cache_misses_total",
		Help: "Listing cache misses partitioned by entity kind.",
	}, []string{"kind"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atrium_catalog_resolve_duration_seconds",
		Help:    "Duration of listing recomputations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	registerer.MustRegister(hits, misses, duration)
	return &Metrics{hits: hits, misses: misses, duration: duration}
}

// CacheHit records a listing served from cache.
func (m *Metrics) CacheHit(kind Kind) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(string(kind)).Inc()
}

// CacheMiss records a listing that had to be recomputed.
func (m *Metrics) CacheMiss(kind Kind) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(string(kind)).Inc()
}

// ObserveResolve records how long a recomputation took.
func (m *Metrics) ObserveResolve(kind Kind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}
