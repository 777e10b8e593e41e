// Package testutil holds builders and fakes shared by package tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// BaseTime is the timestamp of the first record built by Records.
var BaseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// RecordOption customizes a record built by Record.
type RecordOption func(*usage.UsageRecord)

// Record returns a normalized openai/gpt-4o record costing 0.002 with 100
// prompt and 50 completion tokens, then applies opts.
func Record(opts ...RecordOption) *usage.UsageRecord {
	rec := &usage.UsageRecord{
		Provider:         usage.ProviderOpenAI,
		Model:            "gpt-4o",
		PromptTokens:     100,
		CompletionTokens: 50,
		EstimatedCost:    0.002,
		Prompt:           "Summarize the quarterly report.",
		Timestamp:        BaseTime,
		UserID:           "alice",
	}
	for _, opt := range opts {
		opt(rec)
	}
	rec.Normalize(BaseTime)
	return rec
}

// Records builds n records one minute apart starting at BaseTime, each
// with a distinct ID.
func Records(n int, opts ...RecordOption) []*usage.UsageRecord {
	out := make([]*usage.UsageRecord, 0, n)
	for i := 0; i < n; i++ {
		ts := BaseTime.Add(time.Duration(i) * time.Minute)
		all := append([]RecordOption{WithID(fmt.Sprintf("rec-%03d", i)), WithTimestamp(ts)}, opts...)
		out = append(out, Record(all...))
	}
	return out
}

// WithID sets the record ID.
func WithID(id string) RecordOption {
	return func(r *usage.UsageRecord) { r.ID = id }
}

// WithUser sets the user ID.
func WithUser(userID string) RecordOption {
	return func(r *usage.UsageRecord) { r.UserID = userID }
}

// WithModel sets provider and model.
func WithModel(provider usage.Provider, model string) RecordOption {
	return func(r *usage.UsageRecord) {
		r.Provider = provider
		r.Model = model
	}
}

// WithCost sets the estimated cost.
func WithCost(cost float64) RecordOption {
	return func(r *usage.UsageRecord) { r.EstimatedCost = cost }
}

// WithTokens sets prompt and completion tokens.
func WithTokens(prompt, completion int) RecordOption {
	return func(r *usage.UsageRecord) {
		r.PromptTokens = prompt
		r.CompletionTokens = completion
	}
}

// WithPrompt sets the prompt text.
func WithPrompt(prompt string) RecordOption {
	return func(r *usage.UsageRecord) { r.Prompt = prompt }
}

// WithTimestamp sets the timestamp.
func WithTimestamp(ts time.Time) RecordOption {
	return func(r *usage.UsageRecord) { r.Timestamp = ts }
}
