package costs

import (
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// CostEstimate is the price of a (prompt, completion) token pair.
type CostEstimate struct {
	PromptCost     float64        `json:"promptCost"`
	CompletionCost float64        `json:"completionCost"`
	TotalCost      float64        `json:"totalCost"`
	Currency       string         `json:"currency"`
	Model          string         `json:"model"`
	Provider       usage.Provider `json:"provider"`
	Breakdown      Breakdown      `json:"breakdown"`
}

// Breakdown carries the inputs behind a CostEstimate.
type Breakdown struct {
	PromptTokens            int     `json:"promptTokens"`
	CompletionTokens        int     `json:"completionTokens"`
	PricePerPromptToken     float64 `json:"pricePerPromptToken"`
	PricePerCompletionToken float64 `json:"pricePerCompletionToken"`
}
