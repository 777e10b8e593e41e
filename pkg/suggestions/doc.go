// Package suggestions ranks cost-saving suggestions for a set of usage
// records.
//
// GenerateSuggestions runs five stages in order: prompt optimization of the
// most expensive records, repeated-prompt and batching detection, heavily
// used expensive models, token efficiency, and the analyzer's model
// opportunities. Duplicates are dropped and the result is sorted by
// estimated savings.
package suggestions
