// Package analyzer aggregates usage records into cost analytics.
//
// An Analyzer holds a working set of records. AnalyzeUsage filters it and
// computes totals, per-model and per-provider breakdowns, a daily series
// and the most expensive prompts. The same computation is available over
// any slice via Analyze.
//
// Besides the snapshot, the analyzer offers:
//
//   - CostProjection: linear extrapolation of the average cost per record
//   - OptimizationOpportunities: models flagged as expensive, with a fixed
//     savings percentage
//   - Anomalies: records whose cost is more than N population standard
//     deviations from the mean (at least 10 records required)
//
// An empty record set yields EmptyAnalytics: zero totals and empty, non-nil
// lists.
package analyzer
