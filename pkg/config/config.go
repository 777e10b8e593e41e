package config

import "time"

// Config is the root configuration structure for the CostKatana library.
type Config struct {
	// Storage selects and configures the usage storage backend.
	Storage StorageConfig `yaml:"storage"`

	// Retention controls how long usage records are kept.
	Retention RetentionConfig `yaml:"retention"`

	// Pricing contains custom pricing that overrides the built-in table.
	Pricing PricingConfig `yaml:"pricing"`

	// Tokens configures token counting.
	Tokens TokensConfig `yaml:"tokens"`

	// Optimizer configures the prompt optimizer, including the optional
	// AI-assisted pass.
	Optimizer OptimizerConfig `yaml:"optimizer"`

	// Suggestions contains the thresholds used by the suggestion engine.
	Suggestions SuggestionsConfig `yaml:"suggestions"`

	// Analyzer contains the thresholds used by the cost analyzer.
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Validation contains input validation limits.
	Validation ValidationConfig `yaml:"validation"`

	// Backend configures the optional hosted backend sync.
	Backend BackendConfig `yaml:"backend"`

	// Providers contains LLM provider credentials keyed by provider name
	// (e.g., "openai", "anthropic").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig selects the storage variant.
type StorageConfig struct {
	// Backend is the storage variant.
	// Options: "memory", "file", "sqlite", "redis"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// File configures the JSON file backend.
	File FileStorageConfig `yaml:"file"`

	// SQLite configures the SQLite adapter.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Redis configures the Redis adapter.
	Redis RedisConfig `yaml:"redis"`
}

// FileStorageConfig configures the JSON file backend.
type FileStorageConfig struct {
	// Path is the JSON file holding all records.
	// Default: "costkatana-usage.json"
	Path string `yaml:"path"`
}

// SQLiteConfig configures the SQLite adapter.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver name.
	// Options: "sqlite3" (mattn/go-sqlite3, cgo), "sqlite" (modernc.org, pure Go)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RedisConfig configures the Redis adapter.
type RedisConfig struct {
	// Address is the Redis server host:port.
	// Default: "localhost:6379"
	Address string `yaml:"address"`

	// Password is the optional AUTH password.
	Password string `yaml:"password"`

	// DB is the logical database number.
	DB int `yaml:"db"`

	// KeyPrefix namespaces every key written by the adapter.
	// Default: "costkatana"
	KeyPrefix string `yaml:"key_prefix"`

	// DialTimeout bounds connection establishment.
	// Default: 5s
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// RetentionConfig controls record retention.
type RetentionConfig struct {
	// Days is the number of days records are kept. Zero keeps records forever.
	// Default: 0
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for background pruning.
	// Empty disables the scheduler; pruning still happens on every save.
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete writes removed records to ArchivePath as JSON.
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory receiving archives.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`
}

// PricingConfig contains pricing overrides.
type PricingConfig struct {
	// Custom maps a model id to caller-supplied pricing. Custom entries
	// take precedence over the built-in table.
	Custom map[string]CustomPricingConfig `yaml:"custom"`

	// OverridesFile is an optional YAML file with more custom entries in the
	// same shape as Custom. Entries in Custom win over the file.
	OverridesFile string `yaml:"overrides_file"`
}

// CustomPricingConfig is the pricing of a single model.
type CustomPricingConfig struct {
	// Provider is the provider serving the model.
	Provider string `yaml:"provider"`

	// InputPrice is the price of prompt tokens in Unit.
	InputPrice float64 `yaml:"input_price"`

	// OutputPrice is the price of completion tokens in Unit.
	OutputPrice float64 `yaml:"output_price"`

	// Unit is the pricing unit.
	// Options: "per-token", "per-1k-tokens", "per-1m-tokens"
	// Default: "per-1m-tokens"
	Unit string `yaml:"unit"`

	// Currency is the price currency.
	// Default: "USD"
	Currency string `yaml:"currency"`

	// ContextWindow is the model context size in tokens (informational).
	ContextWindow int `yaml:"context_window"`
}

// TokensConfig configures token counting.
type TokensConfig struct {
	// Counter selects the token counter.
	// Options: "heuristic", "tiktoken"
	// Default: "heuristic"
	Counter string `yaml:"counter"`

	// CacheSize is the number of counts memoized. Zero disables the cache.
	// Default: 10000
	CacheSize int `yaml:"cache_size"`

	// CharsPerToken overrides the heuristic ratio. Keys are provider names
	// or model id prefixes; model prefixes win.
	CharsPerToken map[string]float64 `yaml:"chars_per_token"`
}

// OptimizerConfig configures the prompt optimizer.
type OptimizerConfig struct {
	// AIEnabled turns on the AI-assisted optimization pass.
	// Default: false
	AIEnabled bool `yaml:"ai_enabled"`

	// Provider names the entry in Providers used for the AI pass.
	// Default: "anthropic"
	Provider string `yaml:"provider"`

	// Model is the model asked to rewrite prompts.
	// Default: "claude-3-haiku-20240307"
	Model string `yaml:"model"`

	// MaxTokens bounds the AI response.
	// Default: 2000
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for the AI pass.
	// Default: 0.3
	Temperature float64 `yaml:"temperature"`

	// RequestsPerSecond rate-limits AI calls.
	// Default: 2
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the limiter burst size.
	// Default: 4
	Burst int `yaml:"burst"`

	// BreakerFailures is the number of consecutive failures that open the
	// circuit breaker.
	// Default: 5
	BreakerFailures int `yaml:"breaker_failures"`

	// BreakerTimeout is how long the breaker stays open.
	// Default: 30s
	BreakerTimeout time.Duration `yaml:"breaker_timeout"`

	// FillerWords replaces the built-in filler word list when set.
	FillerWords []string `yaml:"filler_words"`

	// TierKeywords replaces the model-name substrings of a complexity tier.
	// Keys are tiers 1 (cheapest) to 3 (premium).
	TierKeywords map[int][]string `yaml:"tier_keywords"`
}

// SuggestionsConfig contains suggestion engine thresholds.
type SuggestionsConfig struct {
	// HighCostThreshold is the per-request cost (USD) above which a record
	// is analyzed individually.
	// Default: 0.01
	HighCostThreshold float64 `yaml:"high_cost_threshold"`

	// MaxHighCostRecords caps how many high-cost records are analyzed.
	// Default: 5
	MaxHighCostRecords int `yaml:"max_high_cost_records"`

	// FrequencyThreshold is how often a prompt pattern must repeat before
	// caching is suggested.
	// Default: 3
	FrequencyThreshold int `yaml:"frequency_threshold"`

	// BatchingWindow is the trailing window in which a user's requests are
	// considered for batching.
	// Default: 1h
	BatchingWindow time.Duration `yaml:"batching_window"`

	// BatchingMinRequests is the number of requests inside the window that
	// triggers a batching check.
	// Default: 3
	BatchingMinRequests int `yaml:"batching_min_requests"`

	// TokenThreshold flags requests with more total tokens.
	// Default: 2000
	TokenThreshold int `yaml:"token_threshold"`

	// ModelUsageMinRequests is the usage count above which a model's cost per
	// token is examined.
	// Default: 100
	ModelUsageMinRequests int `yaml:"model_usage_min_requests"`

	// CostPerTokenThreshold is the blended USD cost per token above which a
	// heavily used model is flagged.
	// Default: 0.00001
	CostPerTokenThreshold float64 `yaml:"cost_per_token_threshold"`

	// VerboseRatio is the completion:prompt token ratio considered verbose.
	// Default: 3
	VerboseRatio float64 `yaml:"verbose_ratio"`

	// VerboseShare is the fraction of verbose requests that triggers a
	// suggestion.
	// Default: 0.1
	VerboseShare float64 `yaml:"verbose_share"`
}

// AnalyzerConfig contains cost analyzer thresholds.
type AnalyzerConfig struct {
	// ExpensiveModels lists (provider, model substring) pairs that are
	// always reported as optimization opportunities.
	ExpensiveModels []ExpensiveModelConfig `yaml:"expensive_models"`

	// ExpensiveSavingsPercent is the savings reported for expensive models.
	// Default: 70
	ExpensiveSavingsPercent float64 `yaml:"expensive_savings_percent"`

	// HighAverageCost is the average cost per request (USD) above which a
	// model is flagged.
	// Default: 0.1
	HighAverageCost float64 `yaml:"high_average_cost"`

	// HighAverageSavingsPercent is the savings reported for high-average
	// models.
	// Default: 30
	HighAverageSavingsPercent float64 `yaml:"high_average_savings_percent"`

	// AnomalyThreshold is the default deviation, in standard deviations, for
	// anomaly detection.
	// Default: 2
	AnomalyThreshold float64 `yaml:"anomaly_threshold"`

	// AssumedDailyRequests fixes the daily volume used by cost projection.
	// Zero derives it from the observed records.
	AssumedDailyRequests float64 `yaml:"assumed_daily_requests"`

	// TopExpensivePrompts is the number of prompts in the top expensive list.
	// Default: 10
	TopExpensivePrompts int `yaml:"top_expensive_prompts"`
}

// ExpensiveModelConfig names an expensive model and its cheaper alternative.
type ExpensiveModelConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Exclude     string `yaml:"exclude"`
	Alternative string `yaml:"alternative"`
}

// ValidationConfig contains input limits.
type ValidationConfig struct {
	// MaxPromptLength is the maximum prompt length in characters.
	// Default: 100000
	MaxPromptLength int `yaml:"max_prompt_length"`
}

// BackendConfig configures sync to the hosted CostKatana backend.
type BackendConfig struct {
	// Enabled turns on sync after every tracked record.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// BaseURL is the backend root URL.
	// Default: "https://cost-katana-backend.store"
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the backend.
	APIKey string `yaml:"api_key"`

	// ProjectID is attached to every synced record when set.
	ProjectID string `yaml:"project_id"`

	// Timeout bounds a single sync call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// ProviderConfig contains configuration for a single LLM provider.
type ProviderConfig struct {
	// Type is the wire protocol: "openai" or "anthropic". Defaults to the
	// map key when that is a known type.
	Type string `yaml:"type"`

	// BaseURL is the base URL for the provider's API endpoint.
	// Example: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key for the provider.
	APIKey string `yaml:"api_key"`

	// Timeout is the maximum duration for requests to this provider.
	// Default: 3m
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retry attempts for failed requests.
	// Default: 0
	MaxRetries int `yaml:"max_retries"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// Prefix is the component name attached to every entry.
	// Default: "costkatana"
	Prefix string `yaml:"prefix"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys and bearer tokens in logs.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "costkatana"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "core"
	Subsystem string `yaml:"subsystem"`

	// TokenCountBuckets defines histogram buckets for token counts.
	// Default: [100, 500, 1000, 5000, 10000, 50000, 100000]
	TokenCountBuckets []float64 `yaml:"token_count_buckets"`
}

// TracingConfig configures OpenTelemetry spans around provider calls,
// tracking and backend sync.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the collector connection.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service.name resource attribute.
	// Default: "costkatana"
	ServiceName string `yaml:"service_name"`
}
