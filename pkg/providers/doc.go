// Package providers defines the LLM provider abstraction used for tracked
// completions and for the optimizer's AI-assisted pass.
//
// # Overview
//
// A Provider sends a normalized CompletionRequest and returns a
// CompletionResponse carrying the provider-reported TokenUsage, which the
// client prices and records. Adapters live in subpackages:
//
//   - openai: Chat Completions, also Azure OpenAI and compatible servers
//   - anthropic: Messages API
//
// Adapters are built from configuration by the providerfactory package.
//
// # HTTP behavior
//
// HTTPProvider holds the shared client: pooled connections, one fixed
// timeout (3 minutes by default) and a retry budget that defaults to zero.
// When retries are configured, network failures and 5xx responses are
// retried with exponential backoff. 4xx responses are never retried.
//
// # Errors
//
// Failures are returned as typed errors so callers can branch with
// errors.As:
//
//	resp, err := provider.SendCompletion(ctx, req)
//	var rl *providers.RateLimitError
//	if errors.As(err, &rl) {
//	    time.Sleep(rl.RetryAfter)
//	}
//
// Every error type implements ErrorType, which the metrics collector uses as
// the error label.
package providers
