package optimizer

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/processing/tokens"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/query"
)

// Optimizer produces prompt, batching, caching and model suggestions. It is
// safe for concurrent use.
type Optimizer struct {
	counter tokens.Counter
	logger  *logging.Logger

	mu              sync.RWMutex
	heuristics      Heuristics
	filler          *regexp.Regexp
	ai              *AIClient
	maxPromptLength int
}

// New creates an optimizer. cfg may replace the filler words and tier
// keywords of the default heuristics. A nil counter uses the heuristic
// counter.
func New(cfg config.OptimizerConfig, counter tokens.Counter, logger *logging.Logger) *Optimizer {
	if counter == nil {
		counter = tokens.NewHeuristicCounter(nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	h := DefaultHeuristics()
	if len(cfg.FillerWords) > 0 {
		h.FillerWords = append([]string(nil), cfg.FillerWords...)
	}
	for tier, keywords := range cfg.TierKeywords {
		if tier >= 1 && tier <= 3 {
			h.TierKeywords[tier] = append([]string(nil), keywords...)
		}
	}

	o := &Optimizer{
		counter:         counter,
		logger:          logger.Named("optimizer"),
		maxPromptLength: config.DefaultMaxPromptLength,
	}
	o.SetHeuristics(h)
	return o
}

// SetHeuristics replaces the heuristics table.
func (o *Optimizer) SetHeuristics(h Heuristics) {
	filler := compileFillerPattern(h.FillerWords)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.heuristics = h
	o.filler = filler
}

// Heuristics returns the active heuristics table.
func (o *Optimizer) Heuristics() Heuristics {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.heuristics
}

// SetAIClient enables the AI-assisted pass. nil disables it.
func (o *Optimizer) SetAIClient(ai *AIClient) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ai = ai
}

// SetMaxPromptLength sets the prompt length limit enforced by
// OptimizePrompt. n <= 0 disables the check.
func (o *Optimizer) SetMaxPromptLength(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.maxPromptLength = n
}

func (o *Optimizer) snapshot() (Heuristics, *regexp.Regexp, *AIClient, int) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.heuristics, o.filler, o.ai, o.maxPromptLength
}

// OptimizePrompt runs the local passes and, when an AI client is set, the
// AI-assisted pass. Results are sorted by confidence, highest first. AI
// failures never fail the call; they only yield no AI suggestions.
//
// extra is optional context forwarded to the AI pass.
func (o *Optimizer) OptimizePrompt(ctx context.Context, prompt, model string, provider usage.Provider, extra string) ([]usage.OptimizationSuggestion, error) {
	h, filler, ai, maxLen := o.snapshot()

	if err := query.ValidatePrompt(prompt, maxLen); err != nil {
		return nil, err
	}

	original, err := o.counter.CountTokens(prompt, provider, model)
	if err != nil {
		return nil, fmt.Errorf("count prompt tokens: %w", err)
	}
	savings := func(optimized string) (float64, error) {
		n, err := o.counter.CountTokens(optimized, provider, model)
		if err != nil {
			return 0, fmt.Errorf("count optimized tokens: %w", err)
		}
		return percentSaved(original, n), nil
	}

	var out []usage.OptimizationSuggestion

	if squeezed := squeezeWhitespace(prompt); len(squeezed) < len(prompt) {
		pct, err := savings(squeezed)
		if err != nil {
			return nil, err
		}
		s := usage.NewSuggestion(usage.SuggestionPrompt, pct, h.Confidence.Whitespace,
			"Normalize whitespace: collapse repeated spaces and line breaks.")
		s.OriginalPrompt = prompt
		s.OptimizedPrompt = squeezed
		s.Implementation = "Send the whitespace-normalized prompt."
		out = append(out, s)
	}

	if stripped, ok := stripFiller(prompt, filler, h.FillerRatio); ok {
		pct, err := savings(stripped)
		if err != nil {
			return nil, err
		}
		s := usage.NewSuggestion(usage.SuggestionPrompt, pct, h.Confidence.Filler,
			"Remove filler words that add tokens without changing the instruction.")
		s.OriginalPrompt = prompt
		s.OptimizedPrompt = stripped
		s.Implementation = "Drop hedging words such as " + strings.Join(firstN(h.FillerWords, 3), ", ") + "."
		s.Tradeoffs = "Tone may become more direct."
		out = append(out, s)
	}

	if utf8.RuneCountInString(prompt) > h.BulletThreshold {
		s := usage.NewSuggestion(usage.SuggestionPrompt, h.Savings.Bullet, h.Confidence.Bullet,
			"Restructure this long prompt as concise bullet points.")
		s.OriginalPrompt = prompt
		s.Implementation = "List requirements as short bullet points instead of prose paragraphs."
		s.Tradeoffs = "Nuance carried by full sentences may be lost."
		out = append(out, s)
	}

	if deduped, found := dedupSentences(prompt); found {
		pct, err := savings(deduped)
		if err != nil {
			return nil, err
		}
		s := usage.NewSuggestion(usage.SuggestionPrompt, pct, h.Confidence.Dedup,
			"Remove sentences that are repeated verbatim.")
		s.OriginalPrompt = prompt
		s.OptimizedPrompt = deduped
		s.Implementation = "Keep the first occurrence of each duplicated sentence."
		out = append(out, s)
	}

	if ai != nil {
		res := ai.suggest(ctx, aiRequest{
			prompt:   prompt,
			model:    model,
			provider: provider,
			context:  extra,
			original: original,
			counter:  o.counter,
			h:        h,
		})
		if res.err != nil {
			o.logger.WarnContext(ctx, "AI optimization unavailable", "model", model, "error", res.err)
		}
		out = append(out, res.suggestions...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out, nil
}

// SuggestBatching compares sending prompts separately against one batched
// prompt. It returns nil for fewer than two prompts. The savings are not
// clamped and are negative when batching costs more.
func (o *Optimizer) SuggestBatching(prompts []string, model string, provider usage.Provider) (*usage.OptimizationSuggestion, error) {
	if len(prompts) < 2 {
		return nil, nil
	}
	h, _, _, _ := o.snapshot()

	individual := 0
	for _, p := range prompts {
		n, err := o.counter.CountTokens(p, provider, model)
		if err != nil {
			return nil, fmt.Errorf("count prompt tokens: %w", err)
		}
		individual += n + h.RequestOverheadTokens
	}

	joined := strings.Join(prompts, h.BatchSeparator)
	batched, err := o.counter.CountTokens(joined, provider, model)
	if err != nil {
		return nil, fmt.Errorf("count batched tokens: %w", err)
	}
	batched += h.RequestOverheadTokens

	s := usage.NewSuggestion(usage.SuggestionBatching, percentSaved(individual, batched), h.Confidence.Batching,
		fmt.Sprintf("Batch %d similar requests into one call (%d tokens instead of %d).", len(prompts), batched, individual))
	s.OptimizedPrompt = joined
	s.Implementation = "Combine the prompts with a clear separator and ask for one answer per item."
	s.Tradeoffs = "One failure affects every batched item and latency rises for the first item."
	return &s, nil
}

// SuggestCaching recommends caching responses of a repeated prompt.
// avgResponseTokens only appears in the explanation.
func (o *Optimizer) SuggestCaching(frequency int, avgResponseTokens float64) usage.OptimizationSuggestion {
	h, _, _, _ := o.snapshot()

	pct := h.Savings.CachingLow
	if frequency > h.CachingFrequency {
		pct = h.Savings.CachingHigh
	}

	s := usage.NewSuggestion(usage.SuggestionCaching, pct, h.Confidence.Caching,
		fmt.Sprintf("Cache responses for a prompt repeated %d times (about %.0f response tokens each).", frequency, avgResponseTokens))
	s.Implementation = "Key a response cache on the normalized prompt text."
	s.Tradeoffs = "Cached answers can go stale."
	return s
}

// SuggestModelDowngrade suggests a cheaper model for simple tasks on a
// model above tier 1. It returns nil otherwise.
func (o *Optimizer) SuggestModelDowngrade(model string, complexity Complexity) *usage.OptimizationSuggestion {
	h, _, _, _ := o.snapshot()

	if complexity != Simple || h.Tier(model) <= 1 {
		return nil
	}

	target := h.DowngradeTarget(model)
	s := usage.NewSuggestion(usage.SuggestionModel, h.Savings.Downgrade, h.Confidence.Downgrade,
		fmt.Sprintf("Use %s instead of %s for simple tasks.", target, model))
	s.Implementation = fmt.Sprintf("Route simple requests to %s.", target)
	s.Tradeoffs = "Smaller models are weaker at multi-step reasoning."
	return &s
}

// ClassifyPrompt estimates the complexity of a prompt with the active
// heuristics.
func (o *Optimizer) ClassifyPrompt(prompt string) Complexity {
	h, _, _, _ := o.snapshot()
	return h.Classify(prompt)
}

func percentSaved(original, optimized int) float64 {
	if original <= 0 {
		return 0
	}
	return float64(original-optimized) / float64(original) * 100
}

func firstN(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
