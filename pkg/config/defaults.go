package config

import "time"

// Default values for configuration fields.
const (
	// Storage defaults
	DefaultStorageBackend      = "memory"
	DefaultFileStoragePath     = "costkatana-usage.json"
	DefaultSQLitePath          = "data/usage.db"
	DefaultSQLiteDriver        = "sqlite"
	DefaultSQLiteMaxOpenConns  = 10
	DefaultSQLiteMaxIdleConns  = 5
	DefaultSQLiteWALMode       = true
	DefaultSQLiteBusyTimeout   = 5 * time.Second
	DefaultRedisAddress        = "localhost:6379"
	DefaultRedisKeyPrefix      = "costkatana"
	DefaultRedisDialTimeout    = 5 * time.Second
	DefaultRetentionArchiveDir = "data/archives/"

	// Pricing defaults
	DefaultPricingUnit     = "per-1m-tokens"
	DefaultPricingCurrency = "USD"

	// Token defaults
	DefaultTokenCounter   = "heuristic"
	DefaultTokenCacheSize = 10000

	// Optimizer defaults
	DefaultOptimizerProvider          = "anthropic"
	DefaultOptimizerModel             = "claude-3-haiku-20240307"
	DefaultOptimizerMaxTokens         = 2000
	DefaultOptimizerTemperature       = 0.3
	DefaultOptimizerRequestsPerSecond = 2.0
	DefaultOptimizerBurst             = 4
	DefaultOptimizerBreakerFailures   = 5
	DefaultOptimizerBreakerTimeout    = 30 * time.Second

	// Suggestion engine defaults
	DefaultHighCostThreshold     = 0.01
	DefaultMaxHighCostRecords    = 5
	DefaultFrequencyThreshold    = 3
	DefaultBatchingWindow        = time.Hour
	DefaultBatchingMinRequests   = 3
	DefaultTokenThreshold        = 2000
	DefaultModelUsageMinRequests = 100
	DefaultCostPerTokenThreshold = 0.00001
	DefaultVerboseRatio          = 3.0
	DefaultVerboseShare          = 0.1

	// Analyzer defaults
	DefaultExpensiveSavingsPercent   = 70.0
	DefaultHighAverageCost           = 0.1
	DefaultHighAverageSavingsPercent = 30.0
	DefaultAnomalyThreshold          = 2.0
	DefaultTopExpensivePrompts       = 10

	// Validation defaults
	DefaultMaxPromptLength = 100000

	// Backend defaults
	DefaultBackendBaseURL = "https://cost-katana-backend.store"
	DefaultBackendTimeout = 10 * time.Second

	// Provider defaults
	DefaultProviderTimeout    = 3 * time.Minute
	DefaultProviderMaxRetries = 0

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultLoggingPrefix    = "costkatana"
	DefaultRedactSecrets    = true
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "costkatana"
	DefaultMetricsSubsystem = "core"
	DefaultTracingSampler   = "ratio"
	DefaultTracingRatio     = 0.1
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultTracingService   = "costkatana"
)

// DefaultExpensiveModels returns the built-in expensive model list.
func DefaultExpensiveModels() []ExpensiveModelConfig {
	return []ExpensiveModelConfig{
		{Provider: "openai", Model: "gpt-4", Exclude: "gpt-4o-mini", Alternative: "gpt-4o-mini"},
		{Provider: "anthropic", Model: "claude-3-opus", Alternative: "claude-3-5-sonnet-20241022"},
		{Provider: "aws-bedrock", Model: "claude-3-opus", Alternative: "anthropic.claude-3-5-sonnet-20241022-v2:0"},
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Telemetry.Logging.RedactSecrets = DefaultRedactSecrets
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.SampleRatio = DefaultTracingRatio
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Booleans that
// default to true are set by Default, which Load uses as the decode target,
// so an explicit false in a file is preserved.
func ApplyDefaults(cfg *Config) {
	applyStorageDefaults(cfg)
	applyPricingDefaults(cfg)

	if cfg.Tokens.Counter == "" {
		cfg.Tokens.Counter = DefaultTokenCounter
	}
	if cfg.Tokens.CacheSize == 0 {
		cfg.Tokens.CacheSize = DefaultTokenCacheSize
	}

	applyOptimizerDefaults(cfg)
	applySuggestionDefaults(cfg)
	applyAnalyzerDefaults(cfg)

	if cfg.Validation.MaxPromptLength == 0 {
		cfg.Validation.MaxPromptLength = DefaultMaxPromptLength
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = DefaultBackendBaseURL
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}

	for name, p := range cfg.Providers {
		if p.Type == "" {
			p.Type = name
		}
		if p.Timeout == 0 {
			p.Timeout = DefaultProviderTimeout
		}
		cfg.Providers[name] = p
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.Prefix == "" {
		cfg.Telemetry.Logging.Prefix = DefaultLoggingPrefix
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.TokenCountBuckets) == 0 {
		cfg.Telemetry.Metrics.TokenCountBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000}
	}

	tr := &cfg.Telemetry.Tracing
	if tr.Sampler == "" {
		tr.Sampler = DefaultTracingSampler
	}
	if tr.Endpoint == "" {
		tr.Endpoint = DefaultTracingEndpoint
	}
	if tr.Timeout == 0 {
		tr.Timeout = DefaultTracingTimeout
	}
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultTracingService
	}
}

func applyStorageDefaults(cfg *Config) {
	s := &cfg.Storage
	if s.Backend == "" {
		s.Backend = DefaultStorageBackend
	}
	if s.File.Path == "" {
		s.File.Path = DefaultFileStoragePath
	}
	if s.SQLite.Path == "" {
		s.SQLite.Path = DefaultSQLitePath
	}
	if s.SQLite.Driver == "" {
		s.SQLite.Driver = DefaultSQLiteDriver
	}
	if s.SQLite.MaxOpenConns == 0 {
		s.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if s.SQLite.MaxIdleConns == 0 {
		s.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if s.SQLite.BusyTimeout == 0 {
		s.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if s.Redis.Address == "" {
		s.Redis.Address = DefaultRedisAddress
	}
	if s.Redis.KeyPrefix == "" {
		s.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if s.Redis.DialTimeout == 0 {
		s.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Retention.ArchivePath == "" {
		cfg.Retention.ArchivePath = DefaultRetentionArchiveDir
	}
}

func applyPricingDefaults(cfg *Config) {
	for model, p := range cfg.Pricing.Custom {
		if p.Unit == "" {
			p.Unit = DefaultPricingUnit
		}
		if p.Currency == "" {
			p.Currency = DefaultPricingCurrency
		}
		cfg.Pricing.Custom[model] = p
	}
}

func applyOptimizerDefaults(cfg *Config) {
	o := &cfg.Optimizer
	if o.Provider == "" {
		o.Provider = DefaultOptimizerProvider
	}
	if o.Model == "" {
		o.Model = DefaultOptimizerModel
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = DefaultOptimizerMaxTokens
	}
	if o.Temperature == 0 {
		o.Temperature = DefaultOptimizerTemperature
	}
	if o.RequestsPerSecond == 0 {
		o.RequestsPerSecond = DefaultOptimizerRequestsPerSecond
	}
	if o.Burst == 0 {
		o.Burst = DefaultOptimizerBurst
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = DefaultOptimizerBreakerFailures
	}
	if o.BreakerTimeout == 0 {
		o.BreakerTimeout = DefaultOptimizerBreakerTimeout
	}
}

func applySuggestionDefaults(cfg *Config) {
	s := &cfg.Suggestions
	if s.HighCostThreshold == 0 {
		s.HighCostThreshold = DefaultHighCostThreshold
	}
	if s.MaxHighCostRecords == 0 {
		s.MaxHighCostRecords = DefaultMaxHighCostRecords
	}
	if s.FrequencyThreshold == 0 {
		s.FrequencyThreshold = DefaultFrequencyThreshold
	}
	if s.BatchingWindow == 0 {
		s.BatchingWindow = DefaultBatchingWindow
	}
	if s.BatchingMinRequests == 0 {
		s.BatchingMinRequests = DefaultBatchingMinRequests
	}
	if s.TokenThreshold == 0 {
		s.TokenThreshold = DefaultTokenThreshold
	}
	if s.ModelUsageMinRequests == 0 {
		s.ModelUsageMinRequests = DefaultModelUsageMinRequests
	}
	if s.CostPerTokenThreshold == 0 {
		s.CostPerTokenThreshold = DefaultCostPerTokenThreshold
	}
	if s.VerboseRatio == 0 {
		s.VerboseRatio = DefaultVerboseRatio
	}
	if s.VerboseShare == 0 {
		s.VerboseShare = DefaultVerboseShare
	}
}

func applyAnalyzerDefaults(cfg *Config) {
	a := &cfg.Analyzer
	if a.ExpensiveModels == nil {
		a.ExpensiveModels = DefaultExpensiveModels()
	}
	if a.ExpensiveSavingsPercent == 0 {
		a.ExpensiveSavingsPercent = DefaultExpensiveSavingsPercent
	}
	if a.HighAverageCost == 0 {
		a.HighAverageCost = DefaultHighAverageCost
	}
	if a.HighAverageSavingsPercent == 0 {
		a.HighAverageSavingsPercent = DefaultHighAverageSavingsPercent
	}
	if a.AnomalyThreshold == 0 {
		a.AnomalyThreshold = DefaultAnomalyThreshold
	}
	if a.TopExpensivePrompts == 0 {
		a.TopExpensivePrompts = DefaultTopExpensivePrompts
	}
}
