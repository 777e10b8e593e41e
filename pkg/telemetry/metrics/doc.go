// Package metrics provides Prometheus metrics for the CostKatana library.
//
// # Metrics Categories
//
//   - Usage Metrics: tracked records, tokens per record
//   - Cost Metrics: total cost and cost per record by provider/model
//   - Optimizer Metrics: suggestions by type, AI pass outcomes
//   - Provider Metrics: tracked completion latency and errors
//   - Storage Metrics: operation errors and retention pruning
//   - Cache Metrics: token count cache hits and misses
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordUsage("openai", "gpt-4o", 1500, 0.0042)
//	collector.RecordSuggestion("prompt")
//	collector.RecordAIOptimization("breaker_open")
//
//	http.Handle("/metrics", collector.Handler())
//
// All recording methods are no-ops on a nil *Collector or when metrics are
// disabled, so components accept an optional collector.
//
// # Cardinality
//
// Model names come from callers. Once 10,000 distinct label sets have been
// seen, new models are aggregated under "other".
package metrics
