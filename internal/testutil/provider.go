package testutil

import (
	"context"
	"sync"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
)

// FakeProvider is an in-process providers.Provider. It returns Response or
// Err and records every request. A nil Response with a nil Err answers
// (nil, nil).
type FakeProvider struct {
	Name     string
	Type     string
	Response *providers.CompletionResponse
	Err      error

	mu       sync.Mutex
	requests []*providers.CompletionRequest
	closed   bool
}

// NewFakeProvider returns a fake that answers with content and 10/20 tokens.
func NewFakeProvider(name, content string) *FakeProvider {
	return &FakeProvider{
		Name: name,
		Type: "fake",
		Response: &providers.CompletionResponse{
			ID:           "fake-1",
			Content:      content,
			FinishReason: providers.FinishReasonStop,
			Usage: providers.TokenUsage{
				PromptTokens:     10,
				CompletionTokens: 20,
				TotalTokens:      30,
			},
		},
	}
}

// SendCompletion records req and returns the canned result.
func (f *FakeProvider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	resp, err := f.Response, f.Err
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil || resp == nil {
		return nil, err
	}
	out := *resp
	if out.Model == "" {
		out.Model = req.Model
	}
	return &out, nil
}

// GetName returns the provider name.
func (f *FakeProvider) GetName() string { return f.Name }

// GetType returns the provider type.
func (f *FakeProvider) GetType() string { return f.Type }

// Close marks the provider closed.
func (f *FakeProvider) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Requests returns the requests received so far.
func (f *FakeProvider) Requests() []*providers.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*providers.CompletionRequest(nil), f.requests...)
}

// Closed reports whether Close was called.
func (f *FakeProvider) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
