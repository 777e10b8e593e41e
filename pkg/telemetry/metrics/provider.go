package metrics

import (
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks provider calls made for tracked completions.
//
// Metrics:
//   - costkatana_core_provider_latency_seconds: Provider API latency
//   - costkatana_core_provider_errors_total: Provider error count by type
type ProviderMetrics struct {
	latency *prometheus.HistogramVec
	errors  *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_latency_seconds",
				Help:      "Provider API call latency in seconds",
				// LLM latencies range from 100ms to minutes
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0, 180.0},
			},
			[]string{"provider", "model"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_errors_total",
				Help:      "Total number of provider errors by type",
			},
			[]string{"provider", "error_type"},
		),
	}

	registry.MustRegister(pm.latency, pm.errors)

	return pm
}

// RecordLatency observes a provider call latency in seconds.
func (pm *ProviderMetrics) RecordLatency(provider, model string, latency float64) {
	pm.latency.WithLabelValues(provider, model).Observe(latency)
}

// RecordError counts a provider error.
func (pm *ProviderMetrics) RecordError(provider, errorType string) {
	pm.errors.WithLabelValues(provider, errorType).Inc()
}
