package providerfactory

import (
	"fmt"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers/anthropic"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers/openai"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
)

// TypeMistral is served by the OpenAI adapter on MistralBaseURL.
const TypeMistral = "mistral"

// MistralBaseURL is the default base URL of the mistral type.
const MistralBaseURL = "https://api.mistral.ai/v1"

// New creates the adapter for a configured provider entry. The type comes
// from cfg.Type and falls back to the entry name.
//
// Supported types:
//   - "openai": OpenAI Chat Completions and compatible servers
//   - "azure-openai": Azure OpenAI deployments
//   - "anthropic": Anthropic Messages API
//   - "mistral": Mistral's OpenAI-compatible chat API
//
// Example:
//
//	provider, err := providerfactory.New("anthropic", cfg.Providers["anthropic"], logger)
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
func New(name string, cfg config.ProviderConfig, logger *logging.Logger) (providers.Provider, error) {
	pc := providers.ConfigFrom(name, cfg)

	var (
		provider providers.Provider
		err      error
	)
	switch pc.Type {
	case providers.TypeOpenAI, "azure-openai":
		provider, err = openai.NewProvider(pc, logger)
	case providers.TypeAnthropic:
		provider, err = anthropic.NewProvider(pc, logger)
	case TypeMistral:
		if pc.BaseURL == "" {
			pc.BaseURL = MistralBaseURL
		}
		if pc.APIKey == "" {
			return nil, &providers.ConfigError{Provider: name, Field: "api_key", Message: "API key is required for Mistral"}
		}
		provider, err = openai.NewProvider(pc, logger)
	default:
		return nil, &providers.ConfigError{
			Provider: name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: openai, azure-openai, anthropic, mistral)", pc.Type),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", name, err)
	}

	return provider, nil
}
