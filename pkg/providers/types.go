package providers

import (
	"strings"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
)

// Message is a single chat message. Adapters transform it to their wire
// format.
type Message struct {
	// Role identifies the sender (system, user, assistant).
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// TokenUsage is the token consumption reported by the provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionRequest is a provider-agnostic chat completion request.
type CompletionRequest struct {
	// Model is the model identifier (e.g., "gpt-4o", "claude-3-haiku-20240307").
	Model string `json:"model"`

	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// Temperature controls randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens bounds the completion.
	MaxTokens int `json:"max_tokens,omitempty"`

	// TopP controls nucleus sampling.
	TopP float64 `json:"top_p,omitempty"`

	// Stop sequences that halt generation.
	Stop []string `json:"stop,omitempty"`

	// User is an optional end-user identifier forwarded to the provider.
	User string `json:"user,omitempty"`
}

// Prompt returns the concatenated content of the non-system messages, the
// text that is tracked as the prompt of a usage record.
func (r *CompletionRequest) Prompt() string {
	var b strings.Builder
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Content)
	}
	return b.String()
}

// CompletionResponse is the normalized provider response.
type CompletionResponse struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	Content      string     `json:"content"`
	FinishReason string     `json:"finish_reason"`
	Usage        TokenUsage `json:"usage"`

	// Created is the Unix timestamp when the response was created.
	Created int64 `json:"created"`
}

// ProviderConfig contains the settings an adapter needs. It is derived from
// config.ProviderConfig plus the entry's name.
type ProviderConfig struct {
	// Name is the configured provider name (the key in config.Providers).
	Name string

	// Type is the wire protocol (openai, anthropic).
	Type string

	// BaseURL is the API endpoint base URL.
	BaseURL string

	// APIKey is the authentication key.
	APIKey string

	// Timeout is the fixed client timeout.
	Timeout time.Duration

	// MaxRetries is the retry budget for transient failures.
	MaxRetries int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool.
	IdleConnTimeout time.Duration
}

// ConfigFrom builds an adapter configuration from a config file entry.
func ConfigFrom(name string, cfg config.ProviderConfig) ProviderConfig {
	pc := ProviderConfig{
		Name:       name,
		Type:       cfg.Type,
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}
	if pc.Type == "" {
		pc.Type = name
	}
	return pc
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonToolCalls     = "tool_calls"
	FinishReasonContentFilter = "content_filter"
)

// Provider type constants
const (
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
)
