package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "costkatana.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: sqlite
  sqlite:
    path: ./usage.db
    driver: sqlite3
retention:
  days: 30
  prune_schedule: "0 4 * * *"
pricing:
  custom:
    my-finetune:
      provider: openai
      input_price: 3
      output_price: 6
tokens:
  counter: tiktoken
providers:
  openai:
    api_key: test-key-123
    timeout: 30s
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLite.Driver != "sqlite3" {
		t.Errorf("SQLite.Driver = %q, want sqlite3", cfg.Storage.SQLite.Driver)
	}
	if !cfg.Storage.SQLite.WALMode {
		t.Error("SQLite.WALMode should default to true")
	}
	if cfg.Retention.Days != 30 {
		t.Errorf("Retention.Days = %d, want 30", cfg.Retention.Days)
	}
	custom, ok := cfg.Pricing.Custom["my-finetune"]
	if !ok {
		t.Fatal("custom pricing entry missing")
	}
	if custom.Unit != DefaultPricingUnit || custom.Currency != DefaultPricingCurrency {
		t.Errorf("custom pricing defaults = %q/%q", custom.Unit, custom.Currency)
	}
	if cfg.Tokens.Counter != "tiktoken" {
		t.Errorf("Tokens.Counter = %q, want tiktoken", cfg.Tokens.Counter)
	}
	openai := cfg.Providers["openai"]
	if openai.Type != "openai" {
		t.Errorf("provider type = %q, want openai", openai.Type)
	}
	if openai.Timeout != 30*time.Second {
		t.Errorf("provider timeout = %v, want 30s", openai.Timeout)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Logging.RedactSecrets {
		t.Error("RedactSecrets should default to true")
	}
}

func TestLoad_ExplicitFalsePreserved(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  logging:
    redact_secrets: false
  metrics:
    enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telemetry.Logging.RedactSecrets {
		t.Error("RedactSecrets = true, want explicit false")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want explicit false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected parse error")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: floppy
retention:
  days: -1
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %v is not a ValidationError", err)
	}
	if !verr.Has("storage.backend") || !verr.Has("retention.days") {
		t.Errorf("validation errors = %v, want storage.backend and retention.days", verr.Errors)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: memory
`)

	t.Setenv("COSTKATANA_STORAGE_BACKEND", "file")
	t.Setenv("COSTKATANA_STORAGE_FILE_PATH", "/tmp/usage.json")
	t.Setenv("COSTKATANA_RETENTION_DAYS", "7")
	t.Setenv("COSTKATANA_SUGGESTIONS_BATCHING_WINDOW", "30m")
	t.Setenv("COSTKATANA_PROVIDERS_ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("COSTKATANA_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadWithEnvOverrides() error = %v", err)
	}

	if cfg.Storage.Backend != "file" {
		t.Errorf("Storage.Backend = %q, want file", cfg.Storage.Backend)
	}
	if cfg.Storage.File.Path != "/tmp/usage.json" {
		t.Errorf("File.Path = %q", cfg.Storage.File.Path)
	}
	if cfg.Retention.Days != 7 {
		t.Errorf("Retention.Days = %d, want 7", cfg.Retention.Days)
	}
	if cfg.Suggestions.BatchingWindow != 30*time.Minute {
		t.Errorf("BatchingWindow = %v, want 30m", cfg.Suggestions.BatchingWindow)
	}
	anthropic, ok := cfg.Providers["anthropic"]
	if !ok || anthropic.APIKey != "sk-ant-test" {
		t.Errorf("anthropic provider = %+v, want api key override", anthropic)
	}
	if anthropic.Type != "anthropic" || anthropic.Timeout != DefaultProviderTimeout {
		t.Errorf("env-created provider missing defaults: %+v", anthropic)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadWithEnvOverrides_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadWithEnvOverrides(\"\") error = %v", err)
	}
	if cfg.Storage.Backend != DefaultStorageBackend {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, DefaultStorageBackend)
	}
}
