package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid defaults", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "tape" }, wantField: "storage.backend"},
		{name: "unknown sqlite driver", mutate: func(c *Config) {
			c.Storage.Backend = "sqlite"
			c.Storage.SQLite.Driver = "postgres"
		}, wantField: "storage.sqlite.driver"},
		{name: "idle above open", mutate: func(c *Config) {
			c.Storage.Backend = "sqlite"
			c.Storage.SQLite.MaxIdleConns = 50
		}, wantField: "storage.sqlite.max_idle_conns"},
		{name: "negative retention", mutate: func(c *Config) { c.Retention.Days = -3 }, wantField: "retention.days"},
		{name: "bad cron", mutate: func(c *Config) { c.Retention.PruneSchedule = "every day" }, wantField: "retention.prune_schedule"},
		{name: "custom pricing without provider", mutate: func(c *Config) {
			c.Pricing.Custom = map[string]CustomPricingConfig{"m": {InputPrice: 1, Unit: "per-token"}}
		}, wantField: "pricing.custom.m.provider"},
		{name: "custom pricing bad unit", mutate: func(c *Config) {
			c.Pricing.Custom = map[string]CustomPricingConfig{"m": {Provider: "openai", Unit: "per-word"}}
		}, wantField: "pricing.custom.m.unit"},
		{name: "unknown counter", mutate: func(c *Config) { c.Tokens.Counter = "bpe" }, wantField: "tokens.counter"},
		{name: "ai without provider", mutate: func(c *Config) { c.Optimizer.AIEnabled = true }, wantField: "optimizer.provider"},
		{name: "verbose share out of range", mutate: func(c *Config) { c.Suggestions.VerboseShare = 2 }, wantField: "suggestions.verbose_share"},
		{name: "backend without key", mutate: func(c *Config) { c.Backend.Enabled = true }, wantField: "backend.api_key"},
		{name: "bad provider url", mutate: func(c *Config) {
			c.Providers = map[string]ProviderConfig{"openai": {Type: "openai", BaseURL: "not a url"}}
		}, wantField: "providers.openai.base_url"},
		{name: "unsupported provider type", mutate: func(c *Config) {
			c.Providers = map[string]ProviderConfig{"x": {Type: "palm"}}
		}, wantField: "providers.x.type"},
		{name: "bad log level", mutate: func(c *Config) { c.Telemetry.Logging.Level = "chatty" }, wantField: "telemetry.logging.level"},
		{name: "unknown sampler", mutate: func(c *Config) { c.Telemetry.Tracing.Sampler = "half" }, wantField: "telemetry.tracing.sampler"},
		{name: "sample ratio above one", mutate: func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, wantField: "telemetry.tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if !verr.Has(tt.wantField) {
				t.Errorf("Validate() errors = %v, want field %q", verr.Errors, tt.wantField)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if !strings.Contains(single.Error(), "a: bad") {
		t.Errorf("Error() = %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(multi.Error(), "2 errors") {
		t.Errorf("Error() = %q, want error count", multi.Error())
	}
}
