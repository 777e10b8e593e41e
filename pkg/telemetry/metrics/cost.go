package metrics

import (
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CostMetrics tracks cost of tracked usage.
//
// Metrics:
//   - costkatana_core_cost_total: Total cost in USD by provider and model
//   - costkatana_core_cost_per_request: Cost distribution per record
//   - costkatana_core_cost_per_token: Last observed cost per token
type CostMetrics struct {
	costTotal      *prometheus.CounterVec
	costPerRequest *prometheus.HistogramVec
	costPerToken   *prometheus.GaugeVec
}

// NewCostMetrics creates and registers cost metrics with the provided registry.
func NewCostMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CostMetrics {
	cm := &CostMetrics{
		costTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_total",
				Help:      "Total cost in USD by provider and model",
			},
			[]string{"provider", "model"},
		),

		costPerRequest: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_per_request",
				Help:      "Cost distribution per request in USD",
				Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"provider", "model"},
		),

		costPerToken: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_per_token",
				Help:      "Cost per token in USD by provider and model",
			},
			[]string{"provider", "model"},
		),
	}

	registry.MustRegister(cm.costTotal, cm.costPerRequest, cm.costPerToken)

	return cm
}

// RecordRequestCost records the cost of a single request. Zero costs are
// ignored.
func (cm *CostMetrics) RecordRequestCost(provider, model string, costUSD float64) {
	if costUSD <= 0 {
		return
	}

	cm.costTotal.WithLabelValues(provider, model).Add(costUSD)
	cm.costPerRequest.WithLabelValues(provider, model).Observe(costUSD)
}

// UpdateCostPerToken sets the cost per token for a provider/model.
func (cm *CostMetrics) UpdateCostPerToken(provider, model string, costPerToken float64) {
	cm.costPerToken.WithLabelValues(provider, model).Set(costPerToken)
}
