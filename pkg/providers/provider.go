package providers

import "context"

// Provider is implemented by every LLM adapter. It is used both for tracked
// completions and for the optimizer's AI-assisted pass.
//
// Example usage:
//
//	provider, err := providerfactory.New("openai", cfg.Providers["openai"], logger)
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	resp, err := provider.SendCompletion(ctx, &providers.CompletionRequest{
//	    Model:    "gpt-4o-mini",
//	    Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hello!"}},
//	})
type Provider interface {
	// SendCompletion sends a completion request and returns the normalized
	// response. Implementations respect context cancellation.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// GetName returns the provider's configured name.
	GetName() string

	// GetType returns the wire protocol (openai, anthropic).
	GetType() string

	// Close releases pooled connections.
	Close() error
}

// ValidateRequest checks the fields every adapter requires.
func ValidateRequest(req *CompletionRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Message: "request cannot be nil"}
	}
	if req.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Messages) == 0 {
		return &ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	return nil
}
