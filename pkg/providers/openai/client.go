package openai

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
)

const (
	// DefaultBaseURL is the public OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultAzureAPIVersion is sent as api-version for Azure deployments
	// when the base URL does not carry one.
	DefaultAzureAPIVersion = "2024-06-01"
)

// Provider is the OpenAI chat completions adapter. It also serves Azure
// OpenAI deployments and OpenAI-compatible servers through BaseURL.
type Provider struct {
	*providers.HTTPProvider
	azure bool
}

// NewProvider creates an OpenAI provider. An empty base URL defaults to the
// public API. Base URLs on *.openai.azure.com, or a config of type
// "azure-openai", switch to Azure's api-key header and deployment routing.
func NewProvider(cfg providers.ProviderConfig, logger *logging.Logger) (*Provider, error) {
	if cfg.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "openai",
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	azure := cfg.Type == "azure-openai" || isAzureHost(cfg.BaseURL)
	if cfg.APIKey == "" && (azure || cfg.BaseURL == DefaultBaseURL) {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required for OpenAI",
		}
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(cfg, logger),
		azure:        azure,
	}

	p.Logger().Debug("OpenAI provider initialized",
		"base_url", cfg.BaseURL,
		"azure", azure,
	)
	return p, nil
}

// SendCompletion sends a chat completions request.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := providers.ValidateRequest(req); err != nil {
		return nil, err
	}

	var chatResp ChatResponse
	if err := p.DoJSONRequest(ctx, http.MethodPost, p.endpoint(req.Model), transformRequest(req), &chatResp, p.headers()); err != nil {
		return nil, err
	}

	resp, err := transformResponse(&chatResp)
	if err != nil {
		return nil, &providers.ParseError{Provider: p.GetName(), Cause: err}
	}

	p.Logger().DebugContext(ctx, "completion request succeeded",
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)
	return resp, nil
}

// IsAzure reports whether the provider talks to an Azure deployment.
func (p *Provider) IsAzure() bool {
	return p.azure
}

func (p *Provider) endpoint(model string) string {
	base := p.GetConfig().BaseURL
	if !p.azure {
		return base + "/chat/completions"
	}

	u, err := url.Parse(base)
	if err != nil {
		return base + "/chat/completions"
	}
	if !strings.Contains(u.Path, "/deployments/") {
		u.Path = strings.TrimRight(u.Path, "/") + "/openai/deployments/" + model
	}
	u.Path += "/chat/completions"
	q := u.Query()
	if q.Get("api-version") == "" {
		q.Set("api-version", DefaultAzureAPIVersion)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (p *Provider) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	key := p.GetConfig().APIKey
	if key == "" {
		return h
	}
	if p.azure {
		h["api-key"] = key
	} else {
		h["Authorization"] = "Bearer " + key
	}
	return h
}

func isAzureHost(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), ".openai.azure.com")
}
