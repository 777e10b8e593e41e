package providers

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestProviderError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &ProviderError{
			Provider:   "openai",
			StatusCode: 500,
			Message:    "internal error",
		}

		expected := `provider "openai" error (status 500): internal error`
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("without status code", func(t *testing.T) {
		err := &ProviderError{
			Provider: "openai",
			Message:  "connection failed",
		}

		expected := `provider "openai" error: connection failed`
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("network timeout")
		err := &ProviderError{
			Provider: "openai",
			Message:  "request failed",
			Cause:    cause,
		}

		if !errors.Is(err, cause) {
			t.Error("expected error to wrap cause")
		}
	})
}

func TestRateLimitError(t *testing.T) {
	t.Run("with retry after", func(t *testing.T) {
		err := &RateLimitError{
			Provider:   "openai",
			RetryAfter: 10 * time.Second,
			Message:    "Too many requests",
		}

		errStr := err.Error()
		if !strings.Contains(errStr, "rate limit exceeded") {
			t.Errorf("expected error to contain 'rate limit exceeded', got %q", errStr)
		}
		if !strings.Contains(errStr, "10s") {
			t.Errorf("expected error to contain retry duration, got %q", errStr)
		}
	})

	t.Run("without retry after", func(t *testing.T) {
		err := &RateLimitError{
			Provider: "openai",
			Message:  "Too many requests",
		}

		expected := `provider "openai" rate limit exceeded: Too many requests`
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})
}

func TestTimeoutError(t *testing.T) {
	cause := errors.New("deadline")
	err := &TimeoutError{
		Provider: "anthropic",
		Timeout:  30 * time.Second,
		Cause:    cause,
	}

	if got := err.Error(); got != `provider "anthropic" request timeout after 30s` {
		t.Errorf("unexpected message %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to wrap cause")
	}
}

func TestParseError(t *testing.T) {
	cause := errors.New("invalid JSON")
	err := &ParseError{
		Provider:    "openai",
		RawResponse: `{"invalid": json}`,
		Cause:       cause,
	}

	if !strings.Contains(err.Error(), "parse error") {
		t.Errorf("expected error to contain 'parse error', got %q", err.Error())
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("expected unwrapped error to be %v", cause)
	}
}

func TestValidationAndConfigError(t *testing.T) {
	v := &ValidationError{Field: "model", Message: "model is required"}
	if v.Error() != `validation error for field "model": model is required` {
		t.Errorf("unexpected message %q", v.Error())
	}

	c := &ConfigError{Provider: "openai", Field: "api_key", Message: "required"}
	if c.Error() != `provider "openai" configuration error for field "api_key": required` {
		t.Errorf("unexpected message %q", c.Error())
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  interface{ ErrorType() string }
		want string
	}{
		{"server", &ProviderError{StatusCode: 503}, "server"},
		{"client", &ProviderError{StatusCode: 404}, "client"},
		{"network", &ProviderError{}, "network"},
		{"auth", &AuthError{}, "auth"},
		{"rate limit", &RateLimitError{}, "rate_limit"},
		{"timeout", &TimeoutError{}, "timeout"},
		{"parse", &ParseError{}, "parse"},
		{"validation", &ValidationError{}, "validation"},
		{"config", &ConfigError{}, "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.ErrorType(); got != tt.want {
				t.Errorf("ErrorType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name  string
		req   *CompletionRequest
		field string
	}{
		{"nil", nil, "request"},
		{"missing model", &CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}}, "model"},
		{"no messages", &CompletionRequest{Model: "gpt-4o"}, "messages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}

	ok := &CompletionRequest{Model: "gpt-4o", Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	if err := ValidateRequest(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
