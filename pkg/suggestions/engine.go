package suggestions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/analyzer"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/optimizer"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/pricing"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

const (
	// patternKeyRunes is the prefix length of a normalized prompt used to
	// group repeated prompts.
	patternKeyRunes = 100

	// maxBatchPrompts bounds the prompts checked for batching per user.
	maxBatchPrompts = 5

	longPromptSavings     = 20.0
	longPromptConfidence  = 0.7
	verboseSavings        = 25.0
	verboseConfidence     = 0.6
	modelUsageConfidence  = 0.75
	opportunityConfidence = 0.8
	fallbackModelSavings  = 50.0
)

// Engine turns a set of usage records into a ranked list of suggestions.
type Engine struct {
	optimizer *optimizer.Optimizer
	analyzer  *analyzer.Analyzer
	resolver  *pricing.Resolver
	config    config.SuggestionsConfig
	logger    *logging.Logger
	metrics   *metrics.Collector
}

// New creates an engine. Zero thresholds take their defaults. resolver may
// be nil, in which case cheaper models are picked by name alone.
func New(opt *optimizer.Optimizer, an *analyzer.Analyzer, resolver *pricing.Resolver, cfg config.SuggestionsConfig, logger *logging.Logger, collector *metrics.Collector) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	if opt == nil {
		opt = optimizer.New(config.OptimizerConfig{}, nil, logger)
	}
	if an == nil {
		an = analyzer.New(config.AnalyzerConfig{}, logger)
	}
	applyDefaults(&cfg)

	return &Engine{
		optimizer: opt,
		analyzer:  an,
		resolver:  resolver,
		config:    cfg,
		logger:    logger.Named("suggestions"),
		metrics:   collector,
	}
}

func applyDefaults(cfg *config.SuggestionsConfig) {
	if cfg.HighCostThreshold <= 0 {
		cfg.HighCostThreshold = config.DefaultHighCostThreshold
	}
	if cfg.MaxHighCostRecords <= 0 {
		cfg.MaxHighCostRecords = config.DefaultMaxHighCostRecords
	}
	if cfg.FrequencyThreshold <= 0 {
		cfg.FrequencyThreshold = config.DefaultFrequencyThreshold
	}
	if cfg.BatchingWindow <= 0 {
		cfg.BatchingWindow = config.DefaultBatchingWindow
	}
	if cfg.BatchingMinRequests <= 0 {
		cfg.BatchingMinRequests = config.DefaultBatchingMinRequests
	}
	if cfg.TokenThreshold <= 0 {
		cfg.TokenThreshold = config.DefaultTokenThreshold
	}
	if cfg.ModelUsageMinRequests <= 0 {
		cfg.ModelUsageMinRequests = config.DefaultModelUsageMinRequests
	}
	if cfg.CostPerTokenThreshold <= 0 {
		cfg.CostPerTokenThreshold = config.DefaultCostPerTokenThreshold
	}
	if cfg.VerboseRatio <= 0 {
		cfg.VerboseRatio = config.DefaultVerboseRatio
	}
	if cfg.VerboseShare <= 0 {
		cfg.VerboseShare = config.DefaultVerboseShare
	}
}

// GenerateSuggestions runs every stage over records, removes duplicates by
// (type, explanation) and sorts by estimated savings, highest first.
func (e *Engine) GenerateSuggestions(ctx context.Context, records []*usage.UsageRecord) ([]usage.OptimizationSuggestion, error) {
	out := make([]usage.OptimizationSuggestion, 0)
	if len(records) == 0 {
		return out, nil
	}

	highCost, err := e.highCostSuggestions(ctx, records)
	if err != nil {
		return nil, err
	}
	out = append(out, highCost...)

	patterns, err := e.patternSuggestions(records)
	if err != nil {
		return nil, err
	}
	out = append(out, patterns...)

	out = append(out, e.modelUsageSuggestions(records)...)
	out = append(out, e.tokenEfficiencySuggestions(records)...)
	out = append(out, e.opportunitySuggestions(records)...)

	out = dedup(out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EstimatedSavings > out[j].EstimatedSavings
	})

	for _, s := range out {
		e.metrics.RecordSuggestion(string(s.Type))
	}
	e.logger.DebugContext(ctx, "suggestions generated", "records", len(records), "suggestions", len(out))
	return out, nil
}

// highCostSuggestions optimizes the prompts of the most expensive records
// above the threshold.
func (e *Engine) highCostSuggestions(ctx context.Context, records []*usage.UsageRecord) ([]usage.OptimizationSuggestion, error) {
	expensive := make([]*usage.UsageRecord, 0)
	for _, r := range records {
		if r.EstimatedCost > e.config.HighCostThreshold {
			expensive = append(expensive, r)
		}
	}
	sort.SliceStable(expensive, func(i, j int) bool {
		return expensive[i].EstimatedCost > expensive[j].EstimatedCost
	})
	if len(expensive) > e.config.MaxHighCostRecords {
		expensive = expensive[:e.config.MaxHighCostRecords]
	}

	var out []usage.OptimizationSuggestion
	for _, r := range expensive {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prompt, err := e.optimizer.OptimizePrompt(ctx, r.Prompt, r.Model, r.Provider, "")
		if err != nil {
			e.logger.DebugContext(ctx, "skipping prompt optimization for record", "record_id", r.ID, "error", err)
		} else {
			out = append(out, prompt...)
		}

		if s := e.optimizer.SuggestModelDowngrade(r.Model, e.optimizer.ClassifyPrompt(r.Prompt)); s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

// patternSuggestions finds repeated prompts worth caching and users whose
// recent requests could be batched.
func (e *Engine) patternSuggestions(records []*usage.UsageRecord) ([]usage.OptimizationSuggestion, error) {
	var out []usage.OptimizationSuggestion

	type pattern struct {
		count      int
		completion int
	}
	var order []string
	patterns := make(map[string]*pattern)
	for _, r := range records {
		key := patternKey(r.Prompt)
		if key == "" {
			continue
		}
		p, ok := patterns[key]
		if !ok {
			p = &pattern{}
			patterns[key] = p
			order = append(order, key)
		}
		p.count++
		p.completion += r.CompletionTokens
	}
	for _, key := range order {
		p := patterns[key]
		if p.count < e.config.FrequencyThreshold {
			continue
		}
		s := e.optimizer.SuggestCaching(p.count, float64(p.completion)/float64(p.count))
		s.OriginalPrompt = key
		out = append(out, s)
	}

	for _, user := range byUser(records) {
		recent := e.recentWindow(user)
		if len(recent) < e.config.BatchingMinRequests {
			continue
		}
		if len(recent) > maxBatchPrompts {
			recent = recent[len(recent)-maxBatchPrompts:]
		}
		latest := recent[len(recent)-1]

		prompts := make([]string, 0, len(recent))
		for _, r := range recent {
			prompts = append(prompts, r.Prompt)
		}
		s, err := e.optimizer.SuggestBatching(prompts, latest.Model, latest.Provider)
		if err != nil {
			return nil, fmt.Errorf("batching check for user %q: %w", latest.UserID, err)
		}
		if s != nil && s.EstimatedSavings > 0 {
			out = append(out, *s)
		}
	}
	return out, nil
}

// recentWindow returns the records of one user, sorted by time, that fall
// inside the batching window ending at the user's latest record.
func (e *Engine) recentWindow(records []*usage.UsageRecord) []*usage.UsageRecord {
	sorted := append([]*usage.UsageRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	cutoff := sorted[len(sorted)-1].Timestamp.Add(-e.config.BatchingWindow)

	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Timestamp.After(cutoff)
	})
	return sorted[i:]
}

// modelUsageSuggestions flags heavily used models with a high blended cost
// per token.
func (e *Engine) modelUsageSuggestions(records []*usage.UsageRecord) []usage.OptimizationSuggestion {
	var out []usage.OptimizationSuggestion
	for _, m := range analyzer.ModelBreakdown(records) {
		if m.RequestCount <= e.config.ModelUsageMinRequests || m.TotalTokens == 0 {
			continue
		}
		perToken := m.TotalCost / float64(m.TotalTokens)
		if perToken <= e.config.CostPerTokenThreshold {
			continue
		}

		alt, savings := e.cheaperModel(m.Provider, m.Model, perToken)
		s := usage.NewSuggestion(usage.SuggestionModel, savings, modelUsageConfidence,
			fmt.Sprintf("%s handled %d requests at $%.6f per token; consider %s.", m.Model, m.RequestCount, perToken, alt))
		s.Implementation = fmt.Sprintf("Route routine %s traffic to %s.", m.Model, alt)
		s.Tradeoffs = "Output quality may drop for complex requests."
		out = append(out, s)
	}
	return out
}

// cheaperModel picks the cheapest priced model of the same provider below
// perToken. Without pricing it falls back to the optimizer's downgrade
// table.
func (e *Engine) cheaperModel(provider usage.Provider, model string, perToken float64) (string, float64) {
	if e.resolver != nil {
		var best *pricing.Entry
		bestPrice := perToken
		for _, entry := range e.resolver.Table().Models(provider) {
			if entry.ModelID == model {
				continue
			}
			price := (entry.PricePerInputToken() + entry.PricePerOutputToken()) / 2
			if price > 0 && price < bestPrice {
				best, bestPrice = &entry, price
			}
		}
		if best != nil {
			return best.ModelID, (perToken - bestPrice) / perToken * 100
		}
	}

	h := e.optimizer.Heuristics()
	return h.DowngradeTarget(model), fallbackModelSavings
}

// tokenEfficiencySuggestions flags long requests and verbose responses.
func (e *Engine) tokenEfficiencySuggestions(records []*usage.UsageRecord) []usage.OptimizationSuggestion {
	var out []usage.OptimizationSuggestion

	long, verbose := 0, 0
	for _, r := range records {
		if r.TotalTokens > e.config.TokenThreshold {
			long++
		}
		if r.PromptTokens > 0 && float64(r.CompletionTokens)/float64(r.PromptTokens) > e.config.VerboseRatio {
			verbose++
		}
	}

	if long > 0 {
		s := usage.NewSuggestion(usage.SuggestionPrompt, longPromptSavings, longPromptConfidence,
			fmt.Sprintf("%d requests used more than %d tokens.", long, e.config.TokenThreshold))
		s.Implementation = "Trim context, summarize conversation history and drop unused instructions."
		s.Tradeoffs = "Removing context can reduce answer accuracy."
		out = append(out, s)
	}

	if float64(verbose) > e.config.VerboseShare*float64(len(records)) {
		s := usage.NewSuggestion(usage.SuggestionPrompt, verboseSavings, verboseConfidence,
			fmt.Sprintf("%d of %d responses are more than %.0fx longer than their prompts.", verbose, len(records), e.config.VerboseRatio))
		s.Implementation = "Set max_tokens and ask for concise answers."
		s.Tradeoffs = "Responses may be cut off."
		out = append(out, s)
	}
	return out
}

// opportunitySuggestions converts analyzer opportunities.
func (e *Engine) opportunitySuggestions(records []*usage.UsageRecord) []usage.OptimizationSuggestion {
	var out []usage.OptimizationSuggestion
	for _, o := range e.analyzer.OpportunitiesFor(records) {
		s := usage.NewSuggestion(usage.SuggestionModel, o.SavingsPercent, opportunityConfidence, o.Description)
		if o.Alternative != "" {
			s.Implementation = fmt.Sprintf("Switch to %s where quality allows.", o.Alternative)
		}
		out = append(out, s)
	}
	return out
}

// patternKey normalizes a prompt: lowercase, squeezed whitespace, first
// patternKeyRunes runes.
func patternKey(prompt string) string {
	key := strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
	if utf8.RuneCountInString(key) <= patternKeyRunes {
		return key
	}
	return string([]rune(key)[:patternKeyRunes])
}

// byUser groups records of identified users, in first-seen order.
func byUser(records []*usage.UsageRecord) [][]*usage.UsageRecord {
	idx := make(map[string]int)
	var out [][]*usage.UsageRecord
	for _, r := range records {
		if r.UserID == "" {
			continue
		}
		i, ok := idx[r.UserID]
		if !ok {
			i = len(out)
			idx[r.UserID] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], r)
	}
	return out
}

func dedup(in []usage.OptimizationSuggestion) []usage.OptimizationSuggestion {
	type key struct {
		t           usage.SuggestionType
		explanation string
	}
	seen := make(map[key]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		k := key{s.Type, s.Explanation}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
