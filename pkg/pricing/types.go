package pricing

import (
	"fmt"
	"strings"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Unit is the token denomination a price is quoted against.
type Unit string

const (
	PerToken    Unit = "per-token"
	Per1KTokens Unit = "per-1k-tokens"
	Per1MTokens Unit = "per-1m-tokens"
)

// DefaultCurrency is assumed when an entry names none.
const DefaultCurrency = "USD"

// Divisor returns the number of tokens one price unit covers.
func (u Unit) Divisor() float64 {
	switch u {
	case PerToken:
		return 1
	case Per1KTokens:
		return 1e3
	default:
		return 1e6
	}
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case PerToken, Per1KTokens, Per1MTokens:
		return true
	}
	return false
}

// ParseUnit accepts the canonical unit names plus the short forms
// "token", "1k" and "1m".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "per-token", "token", "per_token":
		return PerToken, nil
	case "per-1k-tokens", "1k", "per_1k_tokens", "per-1k":
		return Per1KTokens, nil
	case "per-1m-tokens", "1m", "per_1m_tokens", "per-1m", "":
		return Per1MTokens, nil
	default:
		return "", fmt.Errorf("unknown pricing unit %q", s)
	}
}

// Entry is the price of one model at one provider.
type Entry struct {
	ModelID       string         `json:"modelId" yaml:"model_id"`
	ModelName     string         `json:"modelName,omitempty" yaml:"model_name,omitempty"`
	Provider      usage.Provider `json:"provider" yaml:"provider"`
	InputPrice    float64        `json:"inputPrice" yaml:"input_price"`
	OutputPrice   float64        `json:"outputPrice" yaml:"output_price"`
	Unit          Unit           `json:"unit" yaml:"unit"`
	Currency      string         `json:"currency" yaml:"currency"`
	ContextWindow int            `json:"contextWindow,omitempty" yaml:"context_window,omitempty"`
	Capabilities  []string       `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	IsLatest      bool           `json:"isLatest,omitempty" yaml:"is_latest,omitempty"`
}

// PricePerInputToken returns InputPrice converted to a single token.
func (e Entry) PricePerInputToken() float64 {
	return e.InputPrice / e.Unit.Divisor()
}

// PricePerOutputToken returns OutputPrice converted to a single token.
func (e Entry) PricePerOutputToken() float64 {
	return e.OutputPrice / e.Unit.Divisor()
}

type entryKey struct {
	provider usage.Provider
	model    string
}
