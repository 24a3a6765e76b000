package boot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks boot payload builds.
type Metrics struct {
	builds   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the boot metrics against the provided registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atrium_boot_builds_total",
		Help: "Boot payload builds partitioned by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atrium_boot_build_duration_seconds",
		Help:    "Duration of boot payload builds.",
		Buckets: prometheus.DefBuckets,
	})
	registerer.MustRegister(builds, duration)
	return &Metrics{builds: builds, duration: duration}
}

// ObserveBuild records one build with its outcome and elapsed time.
func (m *Metrics) ObserveBuild(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
