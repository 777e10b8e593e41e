package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Has reports whether a field error was recorded for field.
func (e ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Known enumerations.
var (
	validStorageBackends = []string{"memory", "file", "sqlite", "redis", "custom"}
	validSQLiteDrivers   = []string{"sqlite", "sqlite3"}
	validTokenCounters   = []string{"heuristic", "tiktoken"}
	validPricingUnits    = []string{"per-token", "per-1k-tokens", "per-1m-tokens"}
	validProviderTypes   = []string{"openai", "anthropic", "azure-openai", "mistral"}
	validLogLevels       = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats      = []string{"json", "text", "console"}
	validSamplers        = []string{"always", "never", "ratio"}
)

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validatePricing(&cfg.Pricing)...)
	errs = append(errs, validateTokens(&cfg.Tokens)...)
	errs = append(errs, validateOptimizer(cfg)...)
	errs = append(errs, validateSuggestions(&cfg.Suggestions)...)
	errs = append(errs, validateAnalyzer(&cfg.Analyzer)...)
	errs = append(errs, validateBackend(&cfg.Backend)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if cfg.Validation.MaxPromptLength < 0 {
		errs = append(errs, FieldError{Field: "validation.max_prompt_length", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateStorage(s *StorageConfig) []FieldError {
	var errs []FieldError

	if !oneOf(s.Backend, validStorageBackends) {
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validStorageBackends, ", "), s.Backend),
		})
	}

	switch s.Backend {
	case "file":
		if s.File.Path == "" {
			errs = append(errs, FieldError{Field: "storage.file.path", Message: "is required for the file backend"})
		}
	case "sqlite":
		if s.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "storage.sqlite.path", Message: "is required for the sqlite backend"})
		}
		if !oneOf(s.SQLite.Driver, validSQLiteDrivers) {
			errs = append(errs, FieldError{Field: "storage.sqlite.driver", Message: fmt.Sprintf("unknown driver %q", s.SQLite.Driver)})
		}
		if s.SQLite.MaxOpenConns < 1 {
			errs = append(errs, FieldError{Field: "storage.sqlite.max_open_conns", Message: "must be at least 1"})
		}
		if s.SQLite.MaxIdleConns > s.SQLite.MaxOpenConns {
			errs = append(errs, FieldError{Field: "storage.sqlite.max_idle_conns", Message: "must not exceed max_open_conns"})
		}
	case "redis":
		if s.Redis.Address == "" {
			errs = append(errs, FieldError{Field: "storage.redis.address", Message: "is required for the redis backend"})
		}
		if s.Redis.DB < 0 {
			errs = append(errs, FieldError{Field: "storage.redis.db", Message: "must not be negative"})
		}
	}

	return errs
}

func validateRetention(r *RetentionConfig) []FieldError {
	var errs []FieldError

	if r.Days < 0 {
		errs = append(errs, FieldError{Field: "retention.days", Message: "must not be negative"})
	}
	if r.PruneSchedule != "" {
		if _, err := cron.ParseStandard(r.PruneSchedule); err != nil {
			errs = append(errs, FieldError{Field: "retention.prune_schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	if r.ArchiveBeforeDelete && r.ArchivePath == "" {
		errs = append(errs, FieldError{Field: "retention.archive_path", Message: "is required when archive_before_delete is set"})
	}

	return errs
}

func validatePricing(p *PricingConfig) []FieldError {
	var errs []FieldError

	for model, entry := range p.Custom {
		field := "pricing.custom." + model
		if entry.Provider == "" {
			errs = append(errs, FieldError{Field: field + ".provider", Message: "is required"})
		}
		if entry.InputPrice < 0 {
			errs = append(errs, FieldError{Field: field + ".input_price", Message: "must not be negative"})
		}
		if entry.OutputPrice < 0 {
			errs = append(errs, FieldError{Field: field + ".output_price", Message: "must not be negative"})
		}
		if entry.Unit != "" && !oneOf(entry.Unit, validPricingUnits) {
			errs = append(errs, FieldError{Field: field + ".unit", Message: fmt.Sprintf("unknown unit %q", entry.Unit)})
		}
	}

	return errs
}

func validateTokens(t *TokensConfig) []FieldError {
	var errs []FieldError

	if !oneOf(t.Counter, validTokenCounters) {
		errs = append(errs, FieldError{Field: "tokens.counter", Message: fmt.Sprintf("must be heuristic or tiktoken, got %q", t.Counter)})
	}
	if t.CacheSize < 0 {
		errs = append(errs, FieldError{Field: "tokens.cache_size", Message: "must not be negative"})
	}
	for key, ratio := range t.CharsPerToken {
		if ratio <= 0 {
			errs = append(errs, FieldError{Field: "tokens.chars_per_token." + key, Message: "must be positive"})
		}
	}

	return errs
}

func validateOptimizer(cfg *Config) []FieldError {
	o := &cfg.Optimizer
	var errs []FieldError

	if o.RequestsPerSecond < 0 {
		errs = append(errs, FieldError{Field: "optimizer.requests_per_second", Message: "must not be negative"})
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, FieldError{Field: "optimizer.temperature", Message: "must be between 0 and 2"})
	}
	if o.BreakerFailures < 1 {
		errs = append(errs, FieldError{Field: "optimizer.breaker_failures", Message: "must be at least 1"})
	}
	for tier := range o.TierKeywords {
		if tier < 1 || tier > 3 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("optimizer.tier_keywords.%d", tier), Message: "tier must be 1, 2 or 3"})
		}
	}
	if o.AIEnabled {
		if _, ok := cfg.Providers[o.Provider]; !ok {
			errs = append(errs, FieldError{Field: "optimizer.provider", Message: fmt.Sprintf("provider %q is not configured", o.Provider)})
		}
		if o.Model == "" {
			errs = append(errs, FieldError{Field: "optimizer.model", Message: "is required when ai_enabled is set"})
		}
	}

	return errs
}

func validateSuggestions(s *SuggestionsConfig) []FieldError {
	var errs []FieldError

	if s.HighCostThreshold < 0 {
		errs = append(errs, FieldError{Field: "suggestions.high_cost_threshold", Message: "must not be negative"})
	}
	if s.FrequencyThreshold < 2 {
		errs = append(errs, FieldError{Field: "suggestions.frequency_threshold", Message: "must be at least 2"})
	}
	if s.BatchingWindow < 0 {
		errs = append(errs, FieldError{Field: "suggestions.batching_window", Message: "must not be negative"})
	}
	if s.VerboseShare < 0 || s.VerboseShare > 1 {
		errs = append(errs, FieldError{Field: "suggestions.verbose_share", Message: "must be between 0 and 1"})
	}

	return errs
}

func validateAnalyzer(a *AnalyzerConfig) []FieldError {
	var errs []FieldError

	if a.AnomalyThreshold <= 0 {
		errs = append(errs, FieldError{Field: "analyzer.anomaly_threshold", Message: "must be positive"})
	}
	if a.AssumedDailyRequests < 0 {
		errs = append(errs, FieldError{Field: "analyzer.assumed_daily_requests", Message: "must not be negative"})
	}
	for i, m := range a.ExpensiveModels {
		if m.Model == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("analyzer.expensive_models[%d].model", i), Message: "is required"})
		}
	}

	return errs
}

func validateBackend(b *BackendConfig) []FieldError {
	if !b.Enabled {
		return nil
	}

	var errs []FieldError
	if u, err := url.Parse(b.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{Field: "backend.base_url", Message: fmt.Sprintf("invalid URL %q", b.BaseURL)})
	}
	if b.APIKey == "" {
		errs = append(errs, FieldError{Field: "backend.api_key", Message: "is required when backend sync is enabled"})
	}
	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	for name, p := range providers {
		field := "providers." + name
		if p.Type != "" && !oneOf(p.Type, validProviderTypes) {
			errs = append(errs, FieldError{Field: field + ".type", Message: fmt.Sprintf("unsupported provider type %q", p.Type)})
		}
		if p.BaseURL != "" {
			if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" {
				errs = append(errs, FieldError{Field: field + ".base_url", Message: fmt.Sprintf("invalid URL %q", p.BaseURL)})
			}
		}
		if p.MaxRetries < 0 {
			errs = append(errs, FieldError{Field: field + ".max_retries", Message: "must not be negative"})
		}
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !oneOf(strings.ToLower(t.Logging.Level), validLogLevels) {
		errs = append(errs, FieldError{Field: "telemetry.logging.level", Message: fmt.Sprintf("unknown level %q", t.Logging.Level)})
	}
	if !oneOf(strings.ToLower(t.Logging.Format), validLogFormats) {
		errs = append(errs, FieldError{Field: "telemetry.logging.format", Message: fmt.Sprintf("unknown format %q", t.Logging.Format)})
	}
	if !oneOf(t.Tracing.Sampler, validSamplers) {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sampler", Message: fmt.Sprintf("unknown sampler %q", t.Tracing.Sampler)})
	}
	if t.Tracing.SampleRatio < 0 || t.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0 and 1"})
	}
	if t.Tracing.Enabled && t.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "is required when tracing is enabled"})
	}

	return errs
}

func oneOf(value string, options []string) bool {
	for _, o := range options {
		if value == o {
			return true
		}
	}
	return false
}
