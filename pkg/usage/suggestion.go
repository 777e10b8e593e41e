package usage

import "github.com/google/uuid"

// SuggestionType classifies an optimization suggestion.
type SuggestionType string

// Suggestion types.
const (
	SuggestionPrompt   SuggestionType = "prompt"
	SuggestionModel    SuggestionType = "model"
	SuggestionBatching SuggestionType = "batching"
	SuggestionCaching  SuggestionType = "caching"
)

// OptimizationSuggestion is a proposed change with an estimated saving.
type OptimizationSuggestion struct {
	ID   string         `json:"id"`
	Type SuggestionType `json:"type"`

	OriginalPrompt  string `json:"originalPrompt,omitempty"`
	OptimizedPrompt string `json:"optimizedPrompt,omitempty"`

	// EstimatedSavings is a percentage. Batching estimates may be negative.
	EstimatedSavings float64 `json:"estimatedSavings"`

	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence"`

	Explanation    string `json:"explanation"`
	Implementation string `json:"implementation,omitempty"`
	Tradeoffs      string `json:"tradeoffs,omitempty"`
}

// NewSuggestion creates a suggestion with a fresh ID.
func NewSuggestion(t SuggestionType, savings, confidence float64, explanation string) OptimizationSuggestion {
	return OptimizationSuggestion{
		ID:               uuid.NewString(),
		Type:             t,
		EstimatedSavings: savings,
		Confidence:       clamp01(confidence),
		Explanation:      explanation,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
