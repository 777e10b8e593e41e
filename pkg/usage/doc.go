// Package usage defines the CostKatana data model: usage records, query
// filters, optimization suggestions, and the storage contract shared by
// every backend.
//
// # Records
//
// A UsageRecord is one completed LLM call. TotalTokens always equals
// PromptTokens + CompletionTokens; Normalize enforces it along with a
// generated ID and a default timestamp.
//
//	rec := &usage.UsageRecord{
//	    Provider:         usage.ProviderOpenAI,
//	    Model:            "gpt-4o",
//	    PromptTokens:     1200,
//	    CompletionTokens: 300,
//	    EstimatedCost:    0.006,
//	    UserID:           "user-42",
//	}
//	rec.Normalize(time.Now())
//
// # Storage
//
// Storage is the three-operation capability set every backend provides:
// Save, Load, and Clear. Retention sweeps are expressed with these three
// operations (see storage.Purge), so custom backends need nothing more.
//
// # Errors
//
// Each error class has its own type with Unwrap support:
//
//   - StorageError: backend failures
//   - QueryError: invalid filters
//   - ValidationError: invalid caller input
//   - RetentionError: retention sweep failures
//   - ExportError: export failures
package usage
