package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:           true,
		Namespace:         "test",
		Subsystem:         "metrics",
		TokenCountBuckets: []float64{100, 500, 1000, 5000},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)
	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_DefaultsFilled(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != config.DefaultMetricsNamespace || cfg.Subsystem != config.DefaultMetricsSubsystem {
		t.Errorf("namespace/subsystem = %q/%q", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.TokenCountBuckets) == 0 {
		t.Error("token buckets not defaulted")
	}
}

func TestCollector_RecordUsage(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordUsage("openai", "gpt-4o", 1000, 0.05)
	collector.RecordUsage("openai", "gpt-4o", 500, 0.02)
	collector.RecordUsage("anthropic", "claude-3-haiku", 200, 0)

	if got := testutil.ToFloat64(collector.usageMetrics.recordsTotal.WithLabelValues("openai", "gpt-4o")); got != 2 {
		t.Errorf("usage_records_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.costMetrics.costTotal.WithLabelValues("openai", "gpt-4o")); got < 0.0699 || got > 0.0701 {
		t.Errorf("cost_total = %v, want 0.07", got)
	}
	if got := testutil.ToFloat64(collector.costMetrics.costPerToken.WithLabelValues("openai", "gpt-4o")); got != 0.02/500 {
		t.Errorf("cost_per_token = %v, want %v", got, 0.02/500)
	}
	if got := testutil.ToFloat64(collector.costMetrics.costTotal.WithLabelValues("anthropic", "claude-3-haiku")); got != 0 {
		t.Errorf("zero-cost record added cost %v", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordUsage("openai", "gpt-4o", 1000, 0.05)
	collector.RecordSuggestion("prompt")

	if got := testutil.ToFloat64(collector.usageMetrics.recordsTotal.WithLabelValues("openai", "gpt-4o")); got != 0 {
		t.Errorf("disabled collector recorded %v", got)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var collector *Collector
	collector.RecordUsage("openai", "gpt-4o", 1, 1)
	collector.RecordSuggestion("model")
	collector.RecordAIOptimization("error")
	collector.RecordStorageError("file", "save")
	collector.RecordPruned(3)
	collector.RecordSyncFailure()
	collector.RecordCacheHit("tokens")
	collector.RecordProviderCall("openai", "gpt-4o", time.Second, nil)
}

type typedErr struct{}

func (typedErr) Error() string     { return "rate limited" }
func (typedErr) ErrorType() string { return "rate_limit" }

func TestCollector_RecordProviderCall(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordProviderCall("openai", "gpt-4o", 2*time.Second, nil)
	collector.RecordProviderCall("openai", "gpt-4o", time.Second, typedErr{})
	collector.RecordProviderCall("openai", "gpt-4o", time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(collector.providerMetrics.errors.WithLabelValues("openai", "rate_limit")); got != 1 {
		t.Errorf("rate_limit errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.providerMetrics.errors.WithLabelValues("openai", "error")); got != 1 {
		t.Errorf("generic errors = %v, want 1", got)
	}
}

func TestCollector_OptimizerAndStorage(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordSuggestion("prompt")
	collector.RecordSuggestion("prompt")
	collector.RecordAIOptimization("breaker_open")
	collector.RecordStorageError("sqlite", "save")
	collector.RecordPruned(4)
	collector.RecordPruned(0)
	collector.RecordSyncFailure()
	collector.RecordCacheHit("tokens")
	collector.RecordCacheMiss("tokens")

	if got := testutil.ToFloat64(collector.optimizerMetrics.suggestionsTotal.WithLabelValues("prompt")); got != 2 {
		t.Errorf("suggestions_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.optimizerMetrics.aiCallsTotal.WithLabelValues("breaker_open")); got != 1 {
		t.Errorf("ai calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.storageMetrics.prunedTotal); got != 4 {
		t.Errorf("pruned = %v, want 4", got)
	}
	if got := testutil.ToFloat64(collector.storageMetrics.syncFailuresTotal); got != 1 {
		t.Errorf("sync failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.missesTotal.WithLabelValues("tokens")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("first two label sets should be allowed")
	}
	if cl.Allow("c") {
		t.Error("third label set should be rejected")
	}
	if !cl.Allow("a") {
		t.Error("known label set should stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordUsage("openai", "gpt-4o", 100, 0.01)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_metrics_usage_records_total") {
		t.Error("exposition output missing usage_records_total")
	}
}
