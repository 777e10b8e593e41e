// Package query validates usage filters and request inputs before they
// reach storage or the estimation pipeline.
package query

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// MaxLimit is the largest accepted Filter.Limit.
const MaxLimit = 100000

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.@:-]{1,128}$`)

// ValidateFilter checks f and returns a *usage.QueryError wrapping the
// first *usage.ValidationError found. A nil filter is valid.
func ValidateFilter(f *usage.Filter) error {
	if f == nil {
		return nil
	}

	if err := ValidateDateRange(f.StartDate, f.EndDate); err != nil {
		return usage.NewQueryError(f, err)
	}
	if f.Limit < 0 || f.Limit > MaxLimit {
		return usage.NewQueryError(f, &usage.ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxLimit, f.Limit),
		})
	}
	if f.UserID != "" {
		if err := ValidateUserID(f.UserID); err != nil {
			return usage.NewQueryError(f, err)
		}
	}
	if f.Provider != "" && !f.Provider.Valid() {
		return usage.NewQueryError(f, &usage.ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("unknown provider %q", f.Provider),
		})
	}
	return nil
}

// ValidateUserID checks the user id format.
func ValidateUserID(id string) error {
	if !userIDPattern.MatchString(id) {
		return &usage.ValidationError{
			Field:   "userId",
			Message: "must be 1-128 characters of letters, digits or _.@:-",
		}
	}
	return nil
}

// ValidatePrompt requires a non-blank prompt of at most maxLen characters.
// maxLen <= 0 disables the length check.
func ValidatePrompt(prompt string, maxLen int) error {
	if strings.TrimSpace(prompt) == "" {
		return &usage.ValidationError{Field: "prompt", Message: "must not be empty"}
	}
	if maxLen > 0 {
		if n := utf8.RuneCountInString(prompt); n > maxLen {
			return &usage.ValidationError{
				Field:   "prompt",
				Message: fmt.Sprintf("length %d exceeds maximum %d", n, maxLen),
			}
		}
	}
	return nil
}

// ValidateDateRange requires start <= end when both are set.
func ValidateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return &usage.ValidationError{
			Field:   "startDate",
			Message: fmt.Sprintf("start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339)),
		}
	}
	return nil
}
