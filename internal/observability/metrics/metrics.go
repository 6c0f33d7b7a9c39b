// Package metrics exposes Prometheus counters for stream builds. A nil
// *BuildMetrics is valid and records nothing, so the engine can run without
// a registry in tests and embedded use.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BuildMetrics aggregates everything the engine reports per build attempt.
type BuildMetrics struct {
	BuildsTotal    *prometheus.CounterVec
	OpenFailures   *prometheus.CounterVec
	FallbacksTotal prometheus.Counter
	Downgrades     prometheus.Counter
	BuildDuration  prometheus.Histogram
	ActiveStreams  prometheus.Gauge
}

// New registers the build metrics on the given registerer.
func New(reg prometheus.Registerer) *BuildMetrics {
	factory := promauto.With(reg)
	return &BuildMetrics{
		BuildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audiogate_builds_total",
			Help: "Stream build attempts by direction, path, and outcome",
		}, []string{"direction", "path", "outcome"}),
		OpenFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audiogate_open_failures_total",
			Help: "Transport open failures by path and result code",
		}, []string{"path", "code"}),
		FallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "audiogate_fallbacks_total",
			Help: "Builds that fell back from the low-latency to the buffered path",
		}),
		Downgrades: factory.NewCounter(prometheus.CounterOpts{
			Name: "audiogate_sharing_downgrades_total",
			Help: "Exclusive sharing requests silently downgraded to shared",
		}),
		BuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "audiogate_build_duration_seconds",
			Help:    "End-to-end build latency including policy query and open",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		ActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "audiogate_active_streams",
			Help: "Streams successfully handed to callers and not yet released",
		}),
	}
}

// ObserveBuild records one finished build.
func (m *BuildMetrics) ObserveBuild(direction, path, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.BuildsTotal.WithLabelValues(direction, path, outcome).Inc()
	m.BuildDuration.Observe(seconds)
}

// ObserveOpenFailure records one failed transport open.
func (m *BuildMetrics) ObserveOpenFailure(path, code string) {
	if m == nil {
		return
	}
	m.OpenFailures.WithLabelValues(path, code).Inc()
}

// ObserveFallback records one low-latency to buffered fallback.
func (m *BuildMetrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.FallbacksTotal.Inc()
}

// ObserveDowngrade records one silent sharing-mode downgrade.
func (m *BuildMetrics) ObserveDowngrade() {
	if m == nil {
		return
	}
	m.Downgrades.Inc()
}

// StreamHandedOff bumps the active-stream gauge after a successful build.
func (m *BuildMetrics) StreamHandedOff() {
	if m == nil {
		return
	}
	m.ActiveStreams.Inc()
}

// StreamReleased decrements the active-stream gauge.
func (m *BuildMetrics) StreamReleased() {
	if m == nil {
		return
	}
	m.ActiveStreams.Dec()
}
