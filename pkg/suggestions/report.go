package suggestions

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/analyzer"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// reportTopSuggestions is the number of suggestions listed in a report.
const reportTopSuggestions = 5

// GenerateReport renders a Markdown cost report: totals, cost by provider,
// model usage and the top suggestions.
func (e *Engine) GenerateReport(ctx context.Context, records []*usage.UsageRecord) (string, error) {
	suggestions, err := e.GenerateSuggestions(ctx, records)
	if err != nil {
		return "", fmt.Errorf("generate suggestions: %w", err)
	}
	stats := analyzer.Analyze(records, 0)

	var b strings.Builder
	b.WriteString("# Cost Optimization Report\n\n")

	if len(records) == 0 {
		b.WriteString("No usage recorded.\n")
		return b.String(), nil
	}

	first, last := records[0].Timestamp, records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Period: %s to %s\n", first.UTC().Format("2006-01-02"), last.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "- Total requests: %d\n", stats.TotalRequests)
	fmt.Fprintf(&b, "- Total tokens: %d\n", stats.TotalTokens)
	fmt.Fprintf(&b, "- Total cost: $%.4f\n", stats.TotalCost)
	fmt.Fprintf(&b, "- Average cost per request: $%.6f\n\n", stats.AverageCostPerRequest)

	b.WriteString("## Cost by Provider\n\n")
	b.WriteString("| Provider | Requests | Cost | Share |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for _, p := range stats.CostByProvider {
		fmt.Fprintf(&b, "| %s | %d | $%.4f | %.1f%% |\n", p.Provider, p.RequestCount, p.Cost, p.Percentage)
	}
	b.WriteString("\n")

	b.WriteString("## Models\n\n")
	b.WriteString("| Provider | Model | Requests | Tokens | Cost |\n")
	b.WriteString("|---|---|---:|---:|---:|\n")
	for _, m := range stats.MostUsedModels {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | $%.4f |\n", m.Provider, m.Model, m.RequestCount, m.TotalTokens, m.TotalCost)
	}
	b.WriteString("\n")

	b.WriteString("## Top Suggestions\n\n")
	if len(suggestions) == 0 {
		b.WriteString("No suggestions.\n")
		return b.String(), nil
	}
	if len(suggestions) > reportTopSuggestions {
		suggestions = suggestions[:reportTopSuggestions]
	}
	for i, s := range suggestions {
		fmt.Fprintf(&b, "%d. **%s** (%.1f%% estimated savings, confidence %.0f%%): %s\n",
			i+1, s.Type, s.EstimatedSavings, s.Confidence*100, s.Explanation)
		if s.Implementation != "" {
			fmt.Fprintf(&b, "   - %s\n", s.Implementation)
		}
	}
	return b.String(), nil
}
