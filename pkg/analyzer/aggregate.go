package analyzer

import (
	"sort"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// DefaultTopExpensivePrompts is the length of TopExpensivePrompts.
const DefaultTopExpensivePrompts = 10

const dayFormat = "2006-01-02"

// Analyze computes analytics over records. topN bounds
// TopExpensivePrompts; non-positive uses DefaultTopExpensivePrompts.
func Analyze(records []*usage.UsageRecord, topN int) UsageAnalytics {
	if len(records) == 0 {
		return EmptyAnalytics()
	}
	if topN <= 0 {
		topN = DefaultTopExpensivePrompts
	}

	a := UsageAnalytics{TotalRequests: len(records)}
	for _, r := range records {
		a.TotalCost += r.EstimatedCost
		a.TotalTokens += r.TotalTokens
	}
	a.AverageTokensPerRequest = float64(a.TotalTokens) / float64(len(records))
	a.AverageCostPerRequest = a.TotalCost / float64(len(records))

	a.MostUsedModels = ModelBreakdown(records)
	a.CostByProvider = providerBreakdown(records, a.TotalCost)
	a.UsageOverTime = dailySeries(records)
	a.TopExpensivePrompts = topExpensive(records, topN)
	return a
}

// ModelBreakdown groups records by (provider, model), most requested first.
// Ties order by total cost descending, then provider and model name.
func ModelBreakdown(records []*usage.UsageRecord) []ModelUsage {
	type key struct {
		provider usage.Provider
		model    string
	}
	idx := make(map[key]int)
	out := make([]ModelUsage, 0)

	for _, r := range records {
		k := key{r.Provider, r.Model}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, ModelUsage{Provider: r.Provider, Model: r.Model})
		}
		out[i].RequestCount++
		out[i].TotalTokens += r.TotalTokens
		out[i].TotalCost += r.EstimatedCost
	}

	for i := range out {
		out[i].AverageCostPerRequest = out[i].TotalCost / float64(out[i].RequestCount)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RequestCount != out[j].RequestCount {
			return out[i].RequestCount > out[j].RequestCount
		}
		if out[i].TotalCost != out[j].TotalCost {
			return out[i].TotalCost > out[j].TotalCost
		}
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Model < out[j].Model
	})
	return out
}

func providerBreakdown(records []*usage.UsageRecord, total float64) []ProviderCost {
	idx := make(map[usage.Provider]int)
	out := make([]ProviderCost, 0)

	for _, r := range records {
		i, ok := idx[r.Provider]
		if !ok {
			i = len(out)
			idx[r.Provider] = i
			out = append(out, ProviderCost{Provider: r.Provider})
		}
		out[i].Cost += r.EstimatedCost
		out[i].RequestCount++
	}

	if total > 0 {
		for i := range out {
			out[i].Percentage = out[i].Cost / total * 100
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost > out[j].Cost
		}
		return out[i].Provider < out[j].Provider
	})
	return out
}

func dailySeries(records []*usage.UsageRecord) []DailyUsage {
	idx := make(map[string]int)
	out := make([]DailyUsage, 0)

	for _, r := range records {
		day := r.Timestamp.UTC().Format(dayFormat)
		i, ok := idx[day]
		if !ok {
			i = len(out)
			idx[day] = i
			out = append(out, DailyUsage{Date: day})
		}
		out[i].Cost += r.EstimatedCost
		out[i].Tokens += r.TotalTokens
		out[i].Requests++
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func topExpensive(records []*usage.UsageRecord, n int) []ExpensivePrompt {
	sorted := make([]*usage.UsageRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EstimatedCost > sorted[j].EstimatedCost
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]ExpensivePrompt, len(sorted))
	for i, r := range sorted {
		out[i] = ExpensivePrompt{
			RecordID:  r.ID,
			Prompt:    r.Prompt,
			Provider:  r.Provider,
			Model:     r.Model,
			Cost:      r.EstimatedCost,
			Tokens:    r.TotalTokens,
			UserID:    r.UserID,
			Timestamp: r.Timestamp,
		}
	}
	return out
}
