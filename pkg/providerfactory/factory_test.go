package providerfactory

import (
	"errors"
	"testing"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers/anthropic"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers/openai"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		cfg      config.ProviderConfig
		wantType string
		wantErr  bool
	}{
		{
			name:     "openai by name",
			entry:    "openai",
			cfg:      config.ProviderConfig{APIKey: "sk-test"},
			wantType: "openai",
		},
		{
			name:     "anthropic by type",
			entry:    "claude",
			cfg:      config.ProviderConfig{Type: "anthropic", APIKey: "sk-ant-test"},
			wantType: "anthropic",
		},
		{
			name:     "azure",
			entry:    "azure",
			cfg:      config.ProviderConfig{Type: "azure-openai", BaseURL: "https://acme.openai.azure.com", APIKey: "k"},
			wantType: "azure-openai",
		},
		{
			name:     "mistral",
			entry:    "mistral",
			cfg:      config.ProviderConfig{APIKey: "m-test"},
			wantType: "mistral",
		},
		{
			name:    "mistral without key",
			entry:   "mistral",
			cfg:     config.ProviderConfig{},
			wantErr: true,
		},
		{
			name:    "unsupported type",
			entry:   "cohere",
			cfg:     config.ProviderConfig{APIKey: "k"},
			wantErr: true,
		},
		{
			name:    "missing key",
			entry:   "anthropic",
			cfg:     config.ProviderConfig{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.entry, tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var cfgErr *providers.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected ConfigError in chain, got %T", err)
				}
				return
			}
			defer p.Close()

			if p.GetName() != tt.entry {
				t.Errorf("expected name %q, got %q", tt.entry, p.GetName())
			}
			if p.GetType() != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, p.GetType())
			}
		})
	}
}

func TestNew_AdapterTypes(t *testing.T) {
	p, err := New("openai", config.ProviderConfig{APIKey: "k"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*openai.Provider); !ok {
		t.Errorf("expected *openai.Provider, got %T", p)
	}

	p, err = New("anthropic", config.ProviderConfig{APIKey: "k"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*anthropic.Provider); !ok {
		t.Errorf("expected *anthropic.Provider, got %T", p)
	}
}
