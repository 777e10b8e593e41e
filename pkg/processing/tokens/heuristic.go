package tokens

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// DefaultCharsPerToken is the characters-per-token ratio per provider.
// AWS Bedrock is resolved per model, see HeuristicCounter.
var DefaultCharsPerToken = map[usage.Provider]float64{
	usage.ProviderOpenAI:      4,
	usage.ProviderAzureOpenAI: 4,
	usage.ProviderAnthropic:   3.5,
	usage.ProviderGoogle:      4,
	usage.ProviderCohere:      4,
	usage.ProviderMistral:     4,
	usage.ProviderAWSBedrock:  4,
}

const (
	fallbackCharsPerToken = 4.0
	claudeCharsPerToken   = 3.5
)

// HeuristicCounter estimates ceil(runeCount / k).
type HeuristicCounter struct {
	providers map[usage.Provider]float64

	// prefixes are model id prefixes, longest first.
	prefixes []prefixRatio
}

type prefixRatio struct {
	prefix string
	ratio  float64
}

// NewHeuristicCounter creates a heuristic counter. overrides keys are
// provider names or model id prefixes; a matching model prefix wins over
// the provider ratio. Non-positive ratios are ignored.
func NewHeuristicCounter(overrides map[string]float64) *HeuristicCounter {
	h := &HeuristicCounter{
		providers: make(map[usage.Provider]float64, len(DefaultCharsPerToken)),
	}
	for p, r := range DefaultCharsPerToken {
		h.providers[p] = r
	}

	for key, ratio := range overrides {
		if ratio <= 0 {
			continue
		}
		if p := usage.Provider(key); p.Valid() {
			h.providers[p] = ratio
			continue
		}
		h.prefixes = append(h.prefixes, prefixRatio{prefix: key, ratio: ratio})
	}
	sort.Slice(h.prefixes, func(i, j int) bool {
		if len(h.prefixes[i].prefix) != len(h.prefixes[j].prefix) {
			return len(h.prefixes[i].prefix) > len(h.prefixes[j].prefix)
		}
		return h.prefixes[i].prefix < h.prefixes[j].prefix
	})
	return h
}

// CountTokens never fails. Empty text is 0 tokens.
func (h *HeuristicCounter) CountTokens(text string, provider usage.Provider, model string) (int, error) {
	if text == "" {
		return 0, nil
	}
	n := utf8.RuneCountInString(text)
	return int(math.Ceil(float64(n) / h.CharsPerToken(provider, model))), nil
}

// CharsPerToken returns the ratio used for provider and model.
func (h *HeuristicCounter) CharsPerToken(provider usage.Provider, model string) float64 {
	for _, p := range h.prefixes {
		if strings.HasPrefix(model, p.prefix) {
			return p.ratio
		}
	}

	if provider == usage.ProviderAWSBedrock && isClaudeModel(model) {
		return claudeCharsPerToken
	}
	if r, ok := h.providers[provider]; ok {
		return r
	}
	return fallbackCharsPerToken
}

func isClaudeModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "anthropic.") || strings.Contains(m, "claude")
}
