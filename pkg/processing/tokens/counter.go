package tokens

import (
	"fmt"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Counter counts the tokens text occupies for a model.
type Counter interface {
	CountTokens(text string, provider usage.Provider, model string) (int, error)
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(text string, provider usage.Provider, model string) (int, error)

// CountTokens calls f.
func (f CounterFunc) CountTokens(text string, provider usage.Provider, model string) (int, error) {
	return f(text, provider, model)
}

// NewCounter builds the counter named by cfg.Counter, wrapped in a
// CachingCounter when cfg.CacheSize > 0.
func NewCounter(cfg config.TokensConfig, logger *logging.Logger, collector *metrics.Collector) (Counter, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.Named("tokens")

	heuristic := NewHeuristicCounter(cfg.CharsPerToken)

	var counter Counter
	switch cfg.Counter {
	case "", "heuristic":
		counter = heuristic
	case "tiktoken":
		counter = NewTiktokenCounter(heuristic, logger)
	default:
		return nil, fmt.Errorf("unknown token counter %q", cfg.Counter)
	}

	if cfg.CacheSize > 0 {
		cached, err := NewCachingCounter(counter, cfg.CacheSize, collector)
		if err != nil {
			return nil, fmt.Errorf("failed to create token cache: %w", err)
		}
		counter = cached
	}

	logger.Debug("token counter ready", "counter", cfg.Counter, "cache_size", cfg.CacheSize)
	return counter, nil
}
