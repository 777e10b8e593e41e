// Package pricing holds per-model token prices and resolves the effective
// price for a (provider, model) pair.
//
// The built-in table is compiled into the binary and never mutated. Callers
// layer Overrides on top, keyed by exact model id; an override always wins
// over the table:
//
//	resolver := pricing.NewResolver(pricing.Builtin(), overrides)
//	entry, err := resolver.Resolve(usage.ProviderOpenAI, "gpt-4o")
//
// A table holds at most one entry per (provider, model id). NewTable rejects
// duplicates instead of letting lookup order decide.
package pricing
