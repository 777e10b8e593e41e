package metrics

import (
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// OptimizerMetrics tracks suggestion generation and the AI-assisted pass.
type OptimizerMetrics struct {
	suggestionsTotal *prometheus.CounterVec
	aiCallsTotal     *prometheus.CounterVec
}

// NewOptimizerMetrics creates and registers optimizer metrics.
func NewOptimizerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *OptimizerMetrics {
	om := &OptimizerMetrics{
		suggestionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "suggestions_total",
				Help:      "Total optimization suggestions generated by type",
			},
			[]string{"type"},
		),

		aiCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ai_optimizer_calls_total",
				Help:      "AI-assisted optimization calls by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(om.suggestionsTotal, om.aiCallsTotal)

	return om
}

// RecordSuggestion counts a suggestion.
func (om *OptimizerMetrics) RecordSuggestion(suggestionType string) {
	om.suggestionsTotal.WithLabelValues(suggestionType).Inc()
}

// RecordAICall counts an AI call outcome.
func (om *OptimizerMetrics) RecordAICall(outcome string) {
	om.aiCallsTotal.WithLabelValues(outcome).Inc()
}
