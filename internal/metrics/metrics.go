// Package metrics exposes slicing throughput as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Source results used as the "result" label.
const (
	ResultOK          = "ok"
	ResultSourceError = "source_error"
	ResultOutputError = "output_error"
	ResultInvalid     = "invalid"
	ResultInterrupted = "interrupted"
)

const (
	namespace       = "gridslicer"
	subsystemSlicer = "slicer"
)

// Metrics groups the collectors of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	sourcesTotal   *prometheus.CounterVec
	tilesTotal     prometheus.Counter
	bytesTotal     prometheus.Counter
	sourceDuration prometheus.Histogram
	secondsPerMB   prometheus.Histogram
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sourcesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemSlicer,
				Name:      "sources_total",
				Help:      "Total number of source grids processed by result",
			},
			[]string{"result"},
		),
		tilesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSlicer,
			Name:      "tiles_written_total",
			Help:      "Total number of tile files written",
		}),
		bytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSlicer,
			Name:      "source_bytes_total",
			Help:      "Total size in bytes of the source grids processed",
		}),
		sourceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemSlicer,
			Name:      "source_duration_seconds",
			Help:      "Time spent slicing one source grid",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16), // 10ms to ~5min
		}),
		secondsPerMB: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemSlicer,
			Name:      "seconds_per_megabyte",
			Help:      "Slicing time normalized by source size",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}

	m.registry.MustRegister(
		m.sourcesTotal, m.tilesTotal, m.bytesTotal, m.sourceDuration, m.secondsPerMB,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSource records the outcome of one source grid.
func (m *Metrics) ObserveSource(result string, tiles int, sizeBytes int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sourcesTotal.WithLabelValues(result).Inc()
	m.tilesTotal.Add(float64(tiles))
	m.bytesTotal.Add(float64(sizeBytes))
	m.sourceDuration.Observe(elapsed.Seconds())
	if sizeBytes > 0 {
		m.secondsPerMB.Observe(elapsed.Seconds() / (float64(sizeBytes) / 1e6))
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
