package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "COSTKATANA_"

// Load loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use LoadWithEnvOverrides
// for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML into a configuration with defaults applied. It does not
// validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides, which take precedence over the file.
// An empty path starts from Default().
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies COSTKATANA_SECTION_FIELD overrides.
func applyEnvOverrides(cfg *Config) {
	envString("STORAGE_BACKEND", &cfg.Storage.Backend)
	envString("STORAGE_FILE_PATH", &cfg.Storage.File.Path)
	envString("STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	envString("STORAGE_SQLITE_DRIVER", &cfg.Storage.SQLite.Driver)
	envString("STORAGE_REDIS_ADDRESS", &cfg.Storage.Redis.Address)
	envString("STORAGE_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	envInt("STORAGE_REDIS_DB", &cfg.Storage.Redis.DB)
	envString("STORAGE_REDIS_KEY_PREFIX", &cfg.Storage.Redis.KeyPrefix)

	envInt("RETENTION_DAYS", &cfg.Retention.Days)
	envString("RETENTION_PRUNE_SCHEDULE", &cfg.Retention.PruneSchedule)
	envBool("RETENTION_ARCHIVE_BEFORE_DELETE", &cfg.Retention.ArchiveBeforeDelete)
	envString("RETENTION_ARCHIVE_PATH", &cfg.Retention.ArchivePath)

	envString("PRICING_OVERRIDES_FILE", &cfg.Pricing.OverridesFile)

	envString("TOKENS_COUNTER", &cfg.Tokens.Counter)
	envInt("TOKENS_CACHE_SIZE", &cfg.Tokens.CacheSize)

	envBool("OPTIMIZER_AI_ENABLED", &cfg.Optimizer.AIEnabled)
	envString("OPTIMIZER_PROVIDER", &cfg.Optimizer.Provider)
	envString("OPTIMIZER_MODEL", &cfg.Optimizer.Model)
	envFloat("OPTIMIZER_REQUESTS_PER_SECOND", &cfg.Optimizer.RequestsPerSecond)

	envFloat("SUGGESTIONS_HIGH_COST_THRESHOLD", &cfg.Suggestions.HighCostThreshold)
	envInt("SUGGESTIONS_FREQUENCY_THRESHOLD", &cfg.Suggestions.FrequencyThreshold)
	envDuration("SUGGESTIONS_BATCHING_WINDOW", &cfg.Suggestions.BatchingWindow)
	envInt("SUGGESTIONS_TOKEN_THRESHOLD", &cfg.Suggestions.TokenThreshold)

	envFloat("ANALYZER_HIGH_AVERAGE_COST", &cfg.Analyzer.HighAverageCost)
	envFloat("ANALYZER_ANOMALY_THRESHOLD", &cfg.Analyzer.AnomalyThreshold)
	envFloat("ANALYZER_ASSUMED_DAILY_REQUESTS", &cfg.Analyzer.AssumedDailyRequests)

	envInt("VALIDATION_MAX_PROMPT_LENGTH", &cfg.Validation.MaxPromptLength)

	envBool("BACKEND_ENABLED", &cfg.Backend.Enabled)
	envString("BACKEND_BASE_URL", &cfg.Backend.BaseURL)
	envString("BACKEND_API_KEY", &cfg.Backend.APIKey)
	envString("BACKEND_PROJECT_ID", &cfg.Backend.ProjectID)
	envDuration("BACKEND_TIMEOUT", &cfg.Backend.Timeout)

	applyProviderEnvOverrides(cfg, "openai")
	applyProviderEnvOverrides(cfg, "anthropic")

	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_REDACT_SECRETS", &cfg.Telemetry.Logging.RedactSecrets)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
}

// applyProviderEnvOverrides applies COSTKATANA_PROVIDERS_<NAME>_<FIELD>
// overrides for a specific provider.
func applyProviderEnvOverrides(cfg *Config, providerName string) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	provider, exists := cfg.Providers[providerName]
	key := fmt.Sprintf("PROVIDERS_%s_", strings.ToUpper(providerName))

	modified := envString(key+"BASE_URL", &provider.BaseURL)
	modified = envString(key+"API_KEY", &provider.APIKey) || modified
	modified = envDuration(key+"TIMEOUT", &provider.Timeout) || modified
	modified = envInt(key+"MAX_RETRIES", &provider.MaxRetries) || modified

	if modified || exists {
		cfg.Providers[providerName] = provider
	}
}

func envString(key string, dst *string) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
		return true
	}
	return false
}

func envInt(key string, dst *int) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
			return true
		}
	}
	return false
}

func envFloat(key string, dst *float64) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
			return true
		}
	}
	return false
}

func envBool(key string, dst *bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
			return true
		}
	}
	return false
}

func envDuration(key string, dst *time.Duration) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
			return true
		}
	}
	return false
}
