package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/processing/tokens"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// AI pass outcomes recorded in metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeBreakerOpen = "breaker_open"
	OutcomeRateLimited = "rate_limited"
	OutcomeParseError  = "parse_error"
)

const systemPrompt = "You are an expert at reducing LLM prompt cost. " +
	"Rewrite prompts to use fewer tokens without changing their intent. " +
	"Answer with a single JSON object and nothing else."

// AIClient asks a designated model to rewrite prompts. Calls go through a
// rate limiter and a circuit breaker so a failing model stops being called.
type AIClient struct {
	provider    providers.Provider
	model       string
	maxTokens   int
	temperature float64

	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewAIClient wraps p. Zero fields of cfg take their defaults; a
// RequestsPerSecond below zero disables rate limiting.
func NewAIClient(p providers.Provider, cfg config.OptimizerConfig, logger *logging.Logger, collector *metrics.Collector) (*AIClient, error) {
	if p == nil {
		return nil, errors.New("optimizer: AI client requires a provider")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultOptimizerModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = config.DefaultOptimizerMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = config.DefaultOptimizerTemperature
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = config.DefaultOptimizerRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = config.DefaultOptimizerBurst
	}
	if cfg.BreakerFailures <= 0 {
		cfg.BreakerFailures = config.DefaultOptimizerBreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = config.DefaultOptimizerBreakerTimeout
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond < 0 {
		limit = rate.Inf
	}

	log := logger.Named("optimizer.ai")
	failures := uint32(cfg.BreakerFailures)

	return &AIClient{
		provider:    p,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "optimizer-" + p.GetName(),
			Timeout: cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		limiter: rate.NewLimiter(limit, cfg.Burst),
		logger:  log,
		metrics: collector,
	}, nil
}

// Model returns the model the client asks for rewrites.
func (c *AIClient) Model() string {
	return c.model
}

type aiRequest struct {
	prompt   string
	model    string
	provider usage.Provider
	context  string
	original int
	counter  tokens.Counter
	h        Heuristics
}

// aiResult carries the AI pass output. err is set when the pass produced
// nothing because of a failure; suggestions is then empty.
type aiResult struct {
	suggestions []usage.OptimizationSuggestion
	err         error
}

type aiResponse struct {
	Suggestions []aiRewrite     `json:"suggestions"`
	GeneralTips json.RawMessage `json:"generalTips"`
}

type aiRewrite struct {
	OptimizedPrompt string   `json:"optimizedPrompt"`
	Explanation     string   `json:"explanation"`
	Confidence      *float64 `json:"confidence"`
}

func (c *AIClient) suggest(ctx context.Context, req aiRequest) aiResult {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.RecordAIOptimization(OutcomeRateLimited)
		return aiResult{err: fmt.Errorf("rate limiter: %w", err)}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.provider.SendCompletion(ctx, &providers.CompletionRequest{
			Model: c.model,
			Messages: []providers.Message{
				{Role: providers.RoleSystem, Content: systemPrompt},
				{Role: providers.RoleUser, Content: buildMetaPrompt(req)},
			},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.RecordAIOptimization(OutcomeBreakerOpen)
		} else {
			c.metrics.RecordAIOptimization(OutcomeError)
		}
		return aiResult{err: err}
	}

	resp, _ := out.(*providers.CompletionResponse)
	if resp == nil {
		c.metrics.RecordAIOptimization(OutcomeError)
		return aiResult{err: &providers.ProviderError{Provider: c.provider.GetName(), Message: "empty completion response"}}
	}
	parsed, err := parseAIResponse(resp.Content)
	if err != nil {
		c.metrics.RecordAIOptimization(OutcomeParseError)
		c.logger.DebugContext(ctx, "unparseable AI response", "content_length", len(resp.Content))
		return aiResult{err: err}
	}

	var suggestions []usage.OptimizationSuggestion
	for _, rw := range parsed.Suggestions {
		if strings.TrimSpace(rw.OptimizedPrompt) == "" {
			continue
		}
		n, err := req.counter.CountTokens(rw.OptimizedPrompt, req.provider, req.model)
		if err != nil {
			c.metrics.RecordAIOptimization(OutcomeError)
			return aiResult{err: fmt.Errorf("count rewrite tokens: %w", err)}
		}
		confidence := req.h.Confidence.AIDefault
		if rw.Confidence != nil {
			confidence = *rw.Confidence
		}
		explanation := rw.Explanation
		if explanation == "" {
			explanation = "AI-rewritten prompt."
		}
		s := usage.NewSuggestion(usage.SuggestionPrompt, percentSaved(req.original, n), confidence, explanation)
		s.OriginalPrompt = req.prompt
		s.OptimizedPrompt = rw.OptimizedPrompt
		s.Implementation = "Replace the prompt with the rewritten version."
		suggestions = append(suggestions, s)
	}

	if tips := parsed.tips(); len(tips) > 0 {
		s := usage.NewSuggestion(usage.SuggestionPrompt, 0, req.h.Confidence.AITips, strings.Join(tips, " "))
		s.OriginalPrompt = req.prompt
		s.Implementation = "Apply the general tips when writing similar prompts."
		suggestions = append(suggestions, s)
	}

	c.metrics.RecordAIOptimization(OutcomeSuccess)
	return aiResult{suggestions: suggestions}
}

func buildMetaPrompt(req aiRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Optimize the following prompt for the model %s.\n", req.model)
	if req.context != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.context)
	}
	b.WriteString("\nPrompt:\n\"\"\"\n")
	b.WriteString(req.prompt)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString(`Respond with JSON of the form {"suggestions":[{"optimizedPrompt":"...","explanation":"...","confidence":0.0}],"generalTips":["..."]}.`)
	return b.String()
}

// parseAIResponse extracts the JSON object between the first '{' and the
// last '}' of content.
func parseAIResponse(content string) (*aiResponse, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in AI response")
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(content[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("decode AI response: %w", err)
	}
	return &resp, nil
}

// tips accepts generalTips as either a string or a list of strings.
func (r *aiResponse) tips() []string {
	if len(r.GeneralTips) == 0 {
		return nil
	}
	var one string
	if err := json.Unmarshal(r.GeneralTips, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			return []string{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(r.GeneralTips, &many); err != nil {
		return nil
	}
	out := many[:0]
	for _, t := range many {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
