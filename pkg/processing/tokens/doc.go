// Package tokens counts tokens in prompt text.
//
// Three Counter implementations are provided:
//
//   - HeuristicCounter: ceil(characters / k) with a per-provider k, about
//     4 characters per token for GPT-style models and 3.5 for Claude
//   - TiktokenCounter: exact BPE counts for OpenAI and Azure OpenAI models,
//     falling back to the heuristic for other providers
//   - CachingCounter: memoizes any Counter in a bounded in-process cache
//
// NewCounter builds the configured combination:
//
//	counter, err := tokens.NewCounter(cfg.Tokens, logger, collector)
//	n, err := counter.CountTokens(prompt, usage.ProviderOpenAI, "gpt-4o")
//
// Counting is deterministic. The only I/O is tiktoken's one-time download
// of an encoding, and a failed download degrades to the heuristic.
package tokens
