package anthropic

import (
	"context"
	"net/http"
	"strings"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
)

const (
	// DefaultBaseURL is the public Anthropic API root.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAnthropicVersion is the API version to use
	DefaultAnthropicVersion = "2023-06-01"
)

// Provider is the Anthropic Messages API adapter.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Anthropic provider instance.
func NewProvider(cfg providers.ProviderConfig, logger *logging.Logger) (*Provider, error) {
	if cfg.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "anthropic",
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required for Anthropic",
		}
	}

	p := &Provider{HTTPProvider: providers.NewHTTPProvider(cfg, logger)}
	p.Logger().Debug("Anthropic provider initialized", "base_url", cfg.BaseURL)
	return p, nil
}

// SendCompletion sends a completion request to Anthropic.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := providers.ValidateRequest(req); err != nil {
		return nil, err
	}

	anthropicReq, err := transformRequest(req)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"x-api-key":         p.GetConfig().APIKey,
		"anthropic-version": DefaultAnthropicVersion,
		"Content-Type":      "application/json",
	}

	var anthropicResp MessagesResponse
	url := p.GetConfig().BaseURL + "/v1/messages"
	if err := p.DoJSONRequest(ctx, http.MethodPost, url, anthropicReq, &anthropicResp, headers); err != nil {
		return nil, err
	}

	resp := transformResponse(&anthropicResp)
	p.Logger().DebugContext(ctx, "completion request succeeded",
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)
	return resp, nil
}
