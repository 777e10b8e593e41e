package metrics

import (
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UsageMetrics tracks usage records and estimates.
type UsageMetrics struct {
	recordsTotal   *prometheus.CounterVec
	tokensPerUsage *prometheus.HistogramVec
	estimatesTotal *prometheus.CounterVec
}

// NewUsageMetrics creates and registers usage metrics with the provided registry.
func NewUsageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UsageMetrics {
	um := &UsageMetrics{
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_records_total",
				Help:      "Total number of tracked usage records",
			},
			[]string{"provider", "model"},
		),

		tokensPerUsage: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_tokens",
				Help:      "Total tokens per tracked record",
				Buckets:   cfg.TokenCountBuckets,
			},
			[]string{"provider", "model"},
		),

		estimatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_estimates_total",
				Help:      "Total number of pre-request cost estimates",
			},
			[]string{"provider", "model"},
		),
	}

	registry.MustRegister(um.recordsTotal, um.tokensPerUsage, um.estimatesTotal)

	return um
}

// RecordUsage counts a record and observes its token total.
func (um *UsageMetrics) RecordUsage(provider, model string, tokens int) {
	um.recordsTotal.WithLabelValues(provider, model).Inc()
	um.tokensPerUsage.WithLabelValues(provider, model).Observe(float64(tokens))
}

// RecordEstimate counts a cost estimate.
func (um *UsageMetrics) RecordEstimate(provider, model string) {
	um.estimatesTotal.WithLabelValues(provider, model).Inc()
}
