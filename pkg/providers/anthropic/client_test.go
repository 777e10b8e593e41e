package anthropic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/internal/testutil"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
)

func TestAnthropicProvider_SendCompletion(t *testing.T) {
	mock := testutil.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/messages", testutil.MockResponse{
		Body: testutil.AnthropicResponse("Hello, world!", "claude-3-haiku-20240307"),
	})

	provider, err := NewProvider(providers.ProviderConfig{
		Name:    "anthropic",
		Type:    "anthropic",
		BaseURL: mock.URL(),
		APIKey:  "sk-ant-test",
		Timeout: 5 * time.Second,
	}, logging.Nop())
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	req := &providers.CompletionRequest{
		Model: "claude-3-haiku-20240307",
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: "Be brief."},
			{Role: providers.RoleUser, Content: "Hello"},
		},
	}

	resp, err := provider.SendCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}

	if resp.Content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", resp.Content)
	}
	if resp.Usage.PromptTokens != 10 || resp.Usage.CompletionTokens != 20 || resp.Usage.TotalTokens != 30 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
	if resp.FinishReason != providers.FinishReasonStop {
		t.Errorf("expected stop, got %q", resp.FinishReason)
	}

	last, _ := mock.LastRequest()
	if last.Header.Get("x-api-key") != "sk-ant-test" {
		t.Errorf("expected x-api-key header, got %q", last.Header.Get("x-api-key"))
	}
	if last.Header.Get("anthropic-version") != DefaultAnthropicVersion {
		t.Errorf("expected anthropic-version header, got %q", last.Header.Get("anthropic-version"))
	}

	var sent MessagesRequest
	if err := mock.DecodeLastBody(&sent); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if sent.System != "Be brief." {
		t.Errorf("expected system prompt lifted, got %q", sent.System)
	}
	if sent.MaxTokens != DefaultMaxTokens {
		t.Errorf("expected default max_tokens %d, got %d", DefaultMaxTokens, sent.MaxTokens)
	}
	if len(sent.Messages) != 1 || sent.Messages[0].Role != providers.RoleUser {
		t.Errorf("unexpected messages %+v", sent.Messages)
	}
}

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewProvider(providers.ProviderConfig{Name: "anthropic"}, nil)

	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "api_key" {
		t.Errorf("expected api_key ConfigError, got %v", err)
	}
}

func TestAnthropicProvider_MessageAlternation(t *testing.T) {
	tests := []struct {
		name     string
		messages []providers.Message
		wantErr  bool
	}{
		{
			name: "valid alternation",
			messages: []providers.Message{
				{Role: providers.RoleUser, Content: "Hello"},
				{Role: providers.RoleAssistant, Content: "Hi"},
				{Role: providers.RoleUser, Content: "How are you?"},
			},
		},
		{
			name: "consecutive user messages",
			messages: []providers.Message{
				{Role: providers.RoleUser, Content: "Hello"},
				{Role: providers.RoleUser, Content: "Again"},
			},
			wantErr: true,
		},
		{
			name: "starts with assistant",
			messages: []providers.Message{
				{Role: providers.RoleAssistant, Content: "Hi"},
			},
			wantErr: true,
		},
		{
			name: "system only",
			messages: []providers.Message{
				{Role: providers.RoleSystem, Content: "rules"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transformRequest(&providers.CompletionRequest{Model: "claude-3-haiku-20240307", Messages: tt.messages})
			if (err != nil) != tt.wantErr {
				t.Errorf("transformRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ve *providers.ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestNormalizeStopReason(t *testing.T) {
	tests := map[string]string{
		"end_turn":      providers.FinishReasonStop,
		"stop_sequence": providers.FinishReasonStop,
		"max_tokens":    providers.FinishReasonLength,
		"tool_use":      providers.FinishReasonToolCalls,
		"refusal":       "refusal",
	}
	for in, want := range tests {
		if got := normalizeStopReason(in); got != want {
			t.Errorf("normalizeStopReason(%q) = %q, want %q", in, got, want)
		}
	}
}
