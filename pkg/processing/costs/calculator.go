package costs

import (
	"fmt"
	"math"
	"sync"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/pricing"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/processing/tokens"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

const (
	minDefaultCompletion = 100
	maxDefaultCompletion = 1000
)

// CalculateCost prices promptTokens and completionTokens at entry.
// Negative counts are treated as zero.
func CalculateCost(promptTokens, completionTokens int, entry pricing.Entry) CostEstimate {
	promptTokens = max(promptTokens, 0)
	completionTokens = max(completionTokens, 0)

	divisor := entry.Unit.Divisor()
	promptCost := float64(promptTokens) / divisor * entry.InputPrice
	completionCost := float64(completionTokens) / divisor * entry.OutputPrice

	currency := entry.Currency
	if currency == "" {
		currency = pricing.DefaultCurrency
	}

	return CostEstimate{
		PromptCost:     promptCost,
		CompletionCost: completionCost,
		TotalCost:      promptCost + completionCost,
		Currency:       currency,
		Model:          entry.ModelID,
		Provider:       entry.Provider,
		Breakdown: Breakdown{
			PromptTokens:            promptTokens,
			CompletionTokens:        completionTokens,
			PricePerPromptToken:     entry.PricePerInputToken(),
			PricePerCompletionToken: entry.PricePerOutputToken(),
		},
	}
}

// DefaultCompletionTokens estimates the completion length of a prompt:
// a third of the prompt, clamped to [100, 1000].
func DefaultCompletionTokens(promptTokens int) int {
	return min(max(promptTokens/3, minDefaultCompletion), maxDefaultCompletion)
}

// Round rounds v to places decimal places. Display only.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Calculator resolves pricing and counts tokens to produce estimates. It is
// safe for concurrent use.
type Calculator struct {
	resolver *pricing.Resolver
	counter  tokens.Counter
	logger   *logging.Logger
	metrics  *metrics.Collector

	mu sync.RWMutex
}

// NewCalculator creates a calculator. A nil resolver uses the built-in
// table and a nil counter uses the heuristic counter.
func NewCalculator(resolver *pricing.Resolver, counter tokens.Counter, logger *logging.Logger, collector *metrics.Collector) *Calculator {
	if resolver == nil {
		resolver = pricing.NewResolver(nil, nil)
	}
	if counter == nil {
		counter = tokens.NewHeuristicCounter(nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Calculator{
		resolver: resolver,
		counter:  counter,
		logger:   logger.Named("costs"),
		metrics:  collector,
	}
}

// Calculate prices known token counts for model at provider.
func (c *Calculator) Calculate(provider usage.Provider, model string, promptTokens, completionTokens int) (*CostEstimate, error) {
	c.mu.RLock()
	entry, err := c.resolver.Resolve(provider, model)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	est := CalculateCost(promptTokens, completionTokens, entry)
	if est.Model == "" {
		est.Model = model
	}
	if est.Provider == "" {
		est.Provider = provider
	}
	return &est, nil
}

// EstimateCost counts the tokens in prompt and prices them. A nil
// expectedCompletionTokens uses DefaultCompletionTokens.
func (c *Calculator) EstimateCost(prompt string, provider usage.Provider, model string, expectedCompletionTokens *int) (*CostEstimate, error) {
	promptTokens, err := c.counter.CountTokens(prompt, provider, model)
	if err != nil {
		return nil, fmt.Errorf("failed to count prompt tokens: %w", err)
	}

	completion := 0
	if expectedCompletionTokens != nil {
		completion = *expectedCompletionTokens
	} else {
		completion = DefaultCompletionTokens(promptTokens)
	}

	est, err := c.Calculate(provider, model, promptTokens, completion)
	if err != nil {
		return nil, err
	}

	c.metrics.RecordEstimate(string(provider), model)
	c.logger.Debug("cost estimated",
		"provider", provider,
		"model", model,
		"prompt_tokens", promptTokens,
		"completion_tokens", completion,
		"total_cost", est.TotalCost,
	)
	return est, nil
}

// CountTokens counts text with the calculator's counter.
func (c *Calculator) CountTokens(text string, provider usage.Provider, model string) (int, error) {
	return c.counter.CountTokens(text, provider, model)
}

// UpdateOverrides replaces the pricing overrides.
func (c *Calculator) UpdateOverrides(overrides pricing.Overrides) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolver.SetOverrides(overrides)
	c.logger.Info("pricing overrides updated", "count", len(overrides))
}

// Resolver returns the pricing resolver.
func (c *Calculator) Resolver() *pricing.Resolver {
	return c.resolver
}

// Counter returns the token counter.
func (c *Calculator) Counter() tokens.Counter {
	return c.counter
}
