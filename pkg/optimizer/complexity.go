package optimizer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Complexity is the coarse difficulty of a task.
type Complexity string

// Complexity levels.
const (
	Simple   Complexity = "simple"
	Moderate Complexity = "moderate"
	Complex  Complexity = "complex"
)

// ParseComplexity parses a complexity level, case-insensitively.
func ParseComplexity(s string) (Complexity, error) {
	switch c := Complexity(strings.ToLower(strings.TrimSpace(s))); c {
	case Simple, Moderate, Complex:
		return c, nil
	default:
		return "", fmt.Errorf("unknown complexity %q (expected simple, moderate or complex)", s)
	}
}

// Classify estimates the complexity of a prompt: simple when short and free
// of code fences, complex when very long, moderate otherwise.
func (h Heuristics) Classify(prompt string) Complexity {
	n := utf8.RuneCountInString(prompt)
	switch {
	case n > h.ComplexPromptChars:
		return Complex
	case n < h.SimplePromptChars && !strings.Contains(prompt, "```"):
		return Simple
	default:
		return Moderate
	}
}
