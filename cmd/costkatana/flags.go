package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// parseTimeFlag accepts RFC3339 timestamps or plain dates. An until date
// covers the whole day.
func parseTimeFlag(name, value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, &usage.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%q is neither RFC3339 nor YYYY-MM-DD", value),
		}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// parseRange parses --since and --until.
func parseRange(since, until string) (*time.Time, *time.Time, error) {
	start, err := parseTimeFlag("since", since, false)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseTimeFlag("until", until, true)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// parseProviderFlag resolves an optional --provider value.
func parseProviderFlag(value string) (usage.Provider, error) {
	if value == "" {
		return "", nil
	}
	return usage.ParseProvider(value)
}

// readPrompt returns the joined positional args, or stdin when the only
// argument is "-" or there are none.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return string(data), nil
}
