package optimizer

import (
	"regexp"
	"strings"
)

// sentencePattern matches a sentence with its terminal punctuation, or a
// trailing fragment without one.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)

// squeezeWhitespace collapses whitespace runs to single spaces and trims.
func squeezeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// compileFillerPattern builds the whole-word, case-insensitive matcher for
// words. It returns nil when words is empty.
func compileFillerPattern(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// removeFiller strips filler words and re-normalizes whitespace.
func removeFiller(s string, pattern *regexp.Regexp) string {
	if pattern == nil {
		return s
	}
	return squeezeWhitespace(pattern.ReplaceAllString(s, ""))
}

// stripFiller removes filler words from s. It reports false when s has no
// filler word or the result is longer than ratio of the original length.
func stripFiller(s string, pattern *regexp.Regexp, ratio float64) (string, bool) {
	if pattern == nil || !pattern.MatchString(s) {
		return s, false
	}
	stripped := removeFiller(s, pattern)
	return stripped, float64(len(stripped)) <= ratio*float64(len(s))
}

// dedupSentences removes exact duplicate sentences, keeping the first
// occurrence. It reports whether any duplicate was found.
func dedupSentences(s string) (string, bool) {
	sentences := sentencePattern.FindAllString(s, -1)
	seen := make(map[string]struct{}, len(sentences))
	kept := make([]string, 0, len(sentences))
	dup := false

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if _, ok := seen[sentence]; ok {
			dup = true
			continue
		}
		seen[sentence] = struct{}{}
		kept = append(kept, sentence)
	}

	if !dup {
		return s, false
	}
	return strings.Join(kept, " "), true
}
