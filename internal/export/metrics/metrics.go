package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the export module.
type Metrics struct {
	// Export outcomes by type and result
	ExportsTotal *prometheus.CounterVec

	// End-to-end bundle generation latency
	GenerateLatency prometheus.Histogram

	// Generated bundle sizes in bytes
	BundleSize prometheus.Histogram
}

// New creates a new Metrics instance with all export module metrics registered.
func New() *Metrics {
	return &Metrics{
		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "annexops_exports_total",
			Help: "Total export attempts by export type and result",
		}, []string{"export_type", "result"}), // result: "success", "error"

		GenerateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "annexops_export_generate_duration_seconds",
			Help:    "Duration of full export generation including bundle assembly and upload",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		BundleSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "annexops_export_bundle_size_bytes",
			Help:    "Size of generated export bundles",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

// IncrementExports records an export attempt outcome.
func (m *Metrics) IncrementExports(exportType, result string) {
	if m != nil {
		m.ExportsTotal.WithLabelValues(exportType, result).Inc()
	}
}

// ObserveGenerateLatency records the total generation duration.
func (m *Metrics) ObserveGenerateLatency(d time.Duration) {
	if m != nil {
		m.GenerateLatency.Observe(d.Seconds())
	}
}

// ObserveBundleSize records the size of a generated bundle.
func (m *Metrics) ObserveBundleSize(bytes int64) {
	if m != nil {
		m.BundleSize.Observe(float64(bytes))
	}
}
