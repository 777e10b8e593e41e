package tokens

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/singleflight"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

const (
	encodingCL100k = "cl100k_base"
	encodingO200k  = "o200k_base"
)

// o200kPrefixes are the model families using the o200k_base encoding.
var o200kPrefixes = []string{"gpt-4o", "gpt-4.1", "gpt-4.5", "gpt-5", "o1", "o3", "o4", "chatgpt-4o"}

// TiktokenCounter counts OpenAI-family tokens exactly. Other providers, and
// any encoding that fails to load, use the fallback counter.
type TiktokenCounter struct {
	fallback Counter
	logger   *logging.Logger

	group    singleflight.Group
	mu       sync.RWMutex
	encoders map[string]*tiktoken.Tiktoken
	failed   map[string]bool

	// load is tiktoken.GetEncoding; replaced in tests.
	load func(name string) (*tiktoken.Tiktoken, error)
}

// NewTiktokenCounter creates a tiktoken counter over fallback.
func NewTiktokenCounter(fallback Counter, logger *logging.Logger) *TiktokenCounter {
	if fallback == nil {
		fallback = NewHeuristicCounter(nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &TiktokenCounter{
		fallback: fallback,
		logger:   logger,
		encoders: make(map[string]*tiktoken.Tiktoken),
		failed:   make(map[string]bool),
		load:     tiktoken.GetEncoding,
	}
}

// CountTokens counts text for model.
func (c *TiktokenCounter) CountTokens(text string, provider usage.Provider, model string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if provider != usage.ProviderOpenAI && provider != usage.ProviderAzureOpenAI {
		return c.fallback.CountTokens(text, provider, model)
	}

	enc := c.encoder(EncodingForModel(model))
	if enc == nil {
		return c.fallback.CountTokens(text, provider, model)
	}
	return len(enc.Encode(text, []string{"all"}, nil)), nil
}

// EncodingForModel returns the encoding name for an OpenAI model id.
func EncodingForModel(model string) string {
	m := strings.ToLower(model)
	for _, p := range o200kPrefixes {
		if strings.HasPrefix(m, p) {
			return encodingO200k
		}
	}
	return encodingCL100k
}

// encoder returns the loaded encoding, loading it once. Concurrent first
// calls share one load.
func (c *TiktokenCounter) encoder(name string) *tiktoken.Tiktoken {
	c.mu.RLock()
	enc, ok := c.encoders[name]
	failed := c.failed[name]
	c.mu.RUnlock()
	if ok {
		return enc
	}
	if failed {
		return nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		enc, ok := c.encoders[name]
		c.mu.RUnlock()
		if ok {
			return enc, nil
		}

		enc, err := c.load(name)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.failed[name] = true
			return nil, err
		}
		c.encoders[name] = enc
		return enc, nil
	})
	if err != nil {
		c.logger.Warn("tiktoken encoding unavailable, using heuristic", "encoding", name, "error", err)
		return nil
	}
	return v.(*tiktoken.Tiktoken)
}
