package tokens

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

const cacheName = "token_count"

// CachingCounter memoizes counts keyed by provider, model and a SHA-256 of
// the text. Errors are not cached.
type CachingCounter struct {
	next    Counter
	cache   *ristretto.Cache[string, int]
	metrics *metrics.Collector
}

// NewCachingCounter wraps next with a cache holding about size entries.
func NewCachingCounter(next Counter, size int, collector *metrics.Collector) (*CachingCounter, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, int]{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,

		// Every entry costs 1, so MaxCost is an entry count.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &CachingCounter{next: next, cache: cache, metrics: collector}, nil
}

// CountTokens returns the cached count or computes and stores it.
func (c *CachingCounter) CountTokens(text string, provider usage.Provider, model string) (int, error) {
	if text == "" {
		return 0, nil
	}

	key := cacheKey(text, provider, model)
	if n, ok := c.cache.Get(key); ok {
		c.metrics.RecordCacheHit(cacheName)
		return n, nil
	}
	c.metrics.RecordCacheMiss(cacheName)

	n, err := c.next.CountTokens(text, provider, model)
	if err != nil {
		return 0, err
	}
	c.cache.Set(key, n, 1)
	return n, nil
}

// Wait blocks until pending cache writes are applied.
func (c *CachingCounter) Wait() {
	c.cache.Wait()
}

// Close releases the cache.
func (c *CachingCounter) Close() {
	c.cache.Close()
}

func cacheKey(text string, provider usage.Provider, model string) string {
	sum := sha256.Sum256([]byte(text))
	return string(provider) + "|" + model + "|" + hex.EncodeToString(sum[:])
}
