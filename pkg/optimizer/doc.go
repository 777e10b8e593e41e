// Package optimizer turns prompts and usage patterns into cost-saving
// suggestions.
//
// Local passes run on every prompt: whitespace normalization, filler word
// removal, bullet-point restructuring of long prompts and duplicate
// sentence removal. Each pass works on the original prompt, and savings are
// measured with a tokens.Counter.
//
// When an AIClient is set, a designated model is asked for rewrites. The
// call is rate limited and guarded by a circuit breaker; failures are
// logged and counted but never surface as errors.
//
//	opt := optimizer.New(cfg.Optimizer, counter, logger)
//	suggestions, err := opt.OptimizePrompt(ctx, prompt, "gpt-4o", usage.ProviderOpenAI, "")
//
// The rules are driven by a Heuristics table, see DefaultHeuristics.
package optimizer
