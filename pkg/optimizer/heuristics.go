package optimizer

import "strings"

// Heuristics is the data table behind every rule in this package. Swap it
// with SetHeuristics to tune behavior without touching the passes.
type Heuristics struct {
	// FillerWords are removed by whole-word, case-insensitive match.
	FillerWords []string

	// TierKeywords maps a tier (1 cheapest, 3 premium) to model-name
	// substrings. Tiers are checked in ascending order.
	TierKeywords map[int][]string

	// Downgrades name the cheaper model suggested per model family. The
	// first entry whose Match is a substring of the model wins; an empty
	// Match matches everything.
	Downgrades []Downgrade

	// BulletThreshold is the prompt length, in characters, above which the
	// bullet-point restructure is suggested.
	BulletThreshold int

	// FillerRatio is the maximum optimized:original length ratio for the
	// filler pass to be emitted.
	FillerRatio float64

	// BatchSeparator joins prompts in the batched estimate.
	BatchSeparator string

	// RequestOverheadTokens is the fixed per-request token overhead used by
	// the batching estimate.
	RequestOverheadTokens int

	// SimplePromptChars and ComplexPromptChars bound prompt classification.
	SimplePromptChars  int
	ComplexPromptChars int

	// CachingFrequency is the repeat count above which caching savings are
	// high.
	CachingFrequency int

	Savings    Savings
	Confidence Confidence
}

// Downgrade maps a model family to its cheaper alternative.
type Downgrade struct {
	Match  string
	Target string
}

// Savings holds the fixed percentages of rule-based suggestions.
type Savings struct {
	Bullet      float64
	Downgrade   float64
	CachingHigh float64
	CachingLow  float64
}

// Confidence holds the confidence reported per suggestion kind.
type Confidence struct {
	Whitespace float64
	Filler     float64
	Bullet     float64
	Dedup      float64
	AIDefault  float64
	AITips     float64
	Downgrade  float64
	Batching   float64
	Caching    float64
}

// DefaultFillerWords are the hedging words removed by the filler pass.
var DefaultFillerWords = []string{
	"basically", "actually", "really", "just", "very",
	"quite", "rather", "somewhat", "fairly", "pretty",
}

// DefaultHeuristics returns the built-in table. Each call returns a fresh
// copy.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		FillerWords: append([]string(nil), DefaultFillerWords...),
		TierKeywords: map[int][]string{
			1: {"gpt-3.5", "gpt-4o-mini", "gpt-4.1-mini", "gpt-4.1-nano", "haiku", "flash", "command-light", "mistral-small", "mistral-tiny", "llama-3.1-8b", "titan-text-lite"},
			2: {"gpt-4o", "gpt-4-turbo", "gpt-4.1", "sonnet", "gemini-1.5-pro", "gemini-pro", "command-r", "mistral-medium", "titan-text-express"},
			3: {"gpt-4", "o1", "o3", "opus", "mistral-large", "gemini-ultra"},
		},
		Downgrades: []Downgrade{
			{Match: "claude", Target: "claude-3-haiku-20240307"},
			{Match: "gemini", Target: "gemini-1.5-flash"},
			{Match: "mistral", Target: "mistral-small-latest"},
			{Match: "command", Target: "command-light"},
			{Match: "llama", Target: "llama-3.1-8b-instruct"},
			{Match: "titan", Target: "amazon.titan-text-lite-v1"},
			{Match: "", Target: "gpt-4o-mini"},
		},
		BulletThreshold:       500,
		FillerRatio:           0.95,
		BatchSeparator:        "\n\n---\n\n",
		RequestOverheadTokens: 10,
		SimplePromptChars:     200,
		ComplexPromptChars:    2000,
		CachingFrequency:      5,
		Savings: Savings{
			Bullet:      15,
			Downgrade:   50,
			CachingHigh: 20,
			CachingLow:  10,
		},
		Confidence: Confidence{
			Whitespace: 0.95,
			Filler:     0.8,
			Bullet:     0.5,
			Dedup:      0.9,
			AIDefault:  0.7,
			AITips:     0.6,
			Downgrade:  0.7,
			Batching:   0.75,
			Caching:    0.85,
		},
	}
}

// Tier returns the complexity tier of a model, or 0 when no keyword
// matches.
func (h Heuristics) Tier(model string) int {
	m := strings.ToLower(model)
	for tier := 1; tier <= 3; tier++ {
		for _, kw := range h.TierKeywords[tier] {
			if kw != "" && strings.Contains(m, strings.ToLower(kw)) {
				return tier
			}
		}
	}
	return 0
}

// DowngradeTarget returns the cheaper model suggested for model.
func (h Heuristics) DowngradeTarget(model string) string {
	m := strings.ToLower(model)
	for _, d := range h.Downgrades {
		if strings.Contains(m, strings.ToLower(d.Match)) {
			return d.Target
		}
	}
	return ""
}
