package usage

import (
	"fmt"
	"strings"
)

// Provider identifies an LLM provider.
type Provider string

// Supported providers.
const (
	ProviderOpenAI      Provider = "openai"
	ProviderAnthropic   Provider = "anthropic"
	ProviderAWSBedrock  Provider = "aws-bedrock"
	ProviderGoogle      Provider = "google"
	ProviderCohere      Provider = "cohere"
	ProviderAzureOpenAI Provider = "azure-openai"
	ProviderMistral     Provider = "mistral"
)

// AllProviders lists every supported provider in display order.
var AllProviders = []Provider{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderAWSBedrock,
	ProviderGoogle,
	ProviderCohere,
	ProviderAzureOpenAI,
	ProviderMistral,
}

var providerAliases = map[string]Provider{
	"bedrock": ProviderAWSBedrock,
	"aws":     ProviderAWSBedrock,
	"gemini":  ProviderGoogle,
	"vertex":  ProviderGoogle,
	"azure":   ProviderAzureOpenAI,
}

// ParseProvider resolves a provider name or alias, case-insensitively.
func ParseProvider(s string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range AllProviders {
		if string(p) == name {
			return p, nil
		}
	}
	if p, ok := providerAliases[name]; ok {
		return p, nil
	}
	return "", &ValidationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q", s)}
}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	for _, known := range AllProviders {
		if p == known {
			return true
		}
	}
	return false
}

func (p Provider) String() string {
	return string(p)
}
