package metrics

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector manages registration of all CostKatana metrics and exposes a
// single recording surface for the other packages.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	usageMetrics     *UsageMetrics
	costMetrics      *CostMetrics
	optimizerMetrics *OptimizerMetrics
	providerMetrics  *ProviderMetrics
	storageMetrics   *StorageMetrics
	cacheMetrics     *CacheMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector. If registry is nil a fresh
// registry is created so collectors never collide on the global one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.TokenCountBuckets) == 0 {
		cfg.TokenCountBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.usageMetrics = NewUsageMetrics(cfg, registry)
	c.costMetrics = NewCostMetrics(cfg, registry)
	c.optimizerMetrics = NewOptimizerMetrics(cfg, registry)
	c.providerMetrics = NewProviderMetrics(cfg, registry)
	c.storageMetrics = NewStorageMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

func (c *Collector) modelLabel(kind, provider, model string) string {
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("%s:%s:%s", kind, provider, model)) {
		return "other"
	}
	return model
}

// RecordUsage records a tracked usage record.
//
// Example:
//
//	collector.RecordUsage("openai", "gpt-4o", 1500, 0.0042)
func (c *Collector) RecordUsage(provider, model string, tokens int, cost float64) {
	if !c.enabled() {
		return
	}

	model = c.modelLabel("usage", provider, model)
	c.usageMetrics.RecordUsage(provider, model, tokens)
	c.costMetrics.RecordRequestCost(provider, model, cost)
	if tokens > 0 {
		c.costMetrics.UpdateCostPerToken(provider, model, cost/float64(tokens))
	}
}

// RecordEstimate records a pre-request cost estimate.
func (c *Collector) RecordEstimate(provider, model string) {
	if !c.enabled() {
		return
	}
	c.usageMetrics.RecordEstimate(provider, c.modelLabel("estimate", provider, model))
}

// RecordSuggestion records a generated optimization suggestion by type.
func (c *Collector) RecordSuggestion(suggestionType string) {
	if !c.enabled() {
		return
	}
	c.optimizerMetrics.RecordSuggestion(suggestionType)
}

// RecordAIOptimization records the outcome of an AI-assisted optimization
// call ("success", "error", "breaker_open", "rate_limited", "parse_error").
func (c *Collector) RecordAIOptimization(outcome string) {
	if !c.enabled() {
		return
	}
	c.optimizerMetrics.RecordAICall(outcome)
}

// RecordProviderCall records a provider call made for a tracked completion.
func (c *Collector) RecordProviderCall(provider, model string, latency time.Duration, err error) {
	if !c.enabled() {
		return
	}
	model = c.modelLabel("provider", provider, model)
	c.providerMetrics.RecordLatency(provider, model, latency.Seconds())
	if err != nil {
		c.providerMetrics.RecordError(provider, classifyError(err))
	}
}

// RecordStorageError records a failed storage operation.
func (c *Collector) RecordStorageError(backend, operation string) {
	if !c.enabled() {
		return
	}
	c.storageMetrics.RecordError(backend, operation)
}

// RecordPruned records records removed by retention.
func (c *Collector) RecordPruned(count int) {
	if !c.enabled() || count <= 0 {
		return
	}
	c.storageMetrics.RecordPruned(count)
}

// RecordSyncFailure records a failed backend sync.
func (c *Collector) RecordSyncFailure() {
	if !c.enabled() {
		return
	}
	c.storageMetrics.RecordSyncFailure()
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordMiss(cacheName)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// errorClassifier is implemented by provider errors that know their class.
type errorClassifier interface {
	ErrorType() string
}

func classifyError(err error) string {
	var ec errorClassifier
	if errors.As(err, &ec) {
		return ec.ErrorType()
	}
	return "error"
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already known or still fits under the
// limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
