package costkatana

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/analyzer"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/backend"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/optimizer"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/pricing"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/processing/costs"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/processing/tokens"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providerfactory"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/suggestions"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/health"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/tracing"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/tracker"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/export"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/query"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/retention"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/storage"
)

// Version is the SDK version reported on trace resources.
const Version = "0.1.0"

const (
	// tracerShutdownTimeout bounds the span flush on Close.
	tracerShutdownTimeout = 5 * time.Second

	healthCheckTimeout = 2 * time.Second
)

// Client is the CostKatana entry point. It is safe for concurrent use.
type Client struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	now     func() time.Time

	ownsTracer bool

	storage     usage.Storage
	ownsStorage bool
	counter     tokens.Counter
	calculator  *costs.Calculator
	tracker     *tracker.Tracker
	analyzer    *analyzer.Analyzer
	optimizer   *optimizer.Optimizer
	engine      *suggestions.Engine
	providers   *providerfactory.Manager
	backend     *backend.Client
	scheduler   *retention.Scheduler
	watcher     *config.Watcher
	health      *health.Checker

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// TrackMeta is attached to the record tracked by TrackedCompletion.
type TrackMeta struct {
	UserID    string
	SessionID string
	Tags      []string
	Metadata  map[string]string
}

// New builds a client from cfg. A nil cfg uses config.Default(). Defaults
// are applied to cfg and it is validated before anything is opened.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		l, err := logging.New(logging.Config{
			Level:         cfg.Telemetry.Logging.Level,
			Format:        cfg.Telemetry.Logging.Format,
			Prefix:        cfg.Telemetry.Logging.Prefix,
			AddSource:     cfg.Telemetry.Logging.AddSource,
			RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		config:  cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, o.registry),
		now:     o.now,
		cancel:  cancel,
	}

	c.tracer = o.tracer
	if c.tracer == nil {
		t, err := tracing.New(cfg.Telemetry.Tracing, Version)
		if err != nil {
			cancel()
			return nil, err
		}
		c.tracer = t
		c.ownsTracer = true
	}

	if err := c.init(ctx, o); err != nil {
		c.Close()
		return nil, err
	}

	c.logger.Info("costkatana client ready",
		"storage", cfg.Storage.Backend,
		"token_counter", cfg.Tokens.Counter,
		"providers", c.providers.Count(),
		"backend_sync", c.backend != nil || o.syncer != nil,
		"tracing", c.tracer.Enabled(),
	)
	return c, nil
}

func (c *Client) init(ctx context.Context, o options) error {
	cfg := c.config

	c.storage = o.storage
	if c.storage == nil {
		store, err := storage.New(ctx, cfg.Storage, c.logger)
		if err != nil {
			return err
		}
		c.storage = store
		c.ownsStorage = true
	}

	counter, err := tokens.NewCounter(cfg.Tokens, c.logger, c.metrics)
	if err != nil {
		return err
	}
	c.counter = counter

	overrides, err := pricing.OverridesFromConfig(cfg.Pricing)
	if err != nil {
		return err
	}
	resolver := pricing.NewResolver(nil, overrides)
	c.calculator = costs.NewCalculator(resolver, counter, c.logger, c.metrics)

	syncer := o.syncer
	if syncer == nil && cfg.Backend.Enabled {
		bc, err := backend.NewClient(cfg.Backend, c.logger)
		if err != nil {
			return err
		}
		c.backend = bc
		syncer = bc
	}

	pruner := retention.NewPruner(c.storage, cfg.Retention, c.logger, c.metrics)
	pruner.SetClock(c.now)
	c.tracker = tracker.New(c.storage, pruner, syncer, c.logger, c.metrics)
	c.tracker.SetClock(c.now)

	c.analyzer = analyzer.New(cfg.Analyzer, c.logger)

	c.optimizer = optimizer.New(cfg.Optimizer, counter, c.logger)
	c.optimizer.SetMaxPromptLength(cfg.Validation.MaxPromptLength)

	c.providers = providerfactory.NewManager(c.logger)
	if err := c.providers.LoadFromConfig(cfg.Providers); err != nil {
		return err
	}
	for name, p := range o.completionProviders {
		c.providers.Add(name, p)
	}

	aiProvider := o.aiProvider
	if aiProvider == nil && cfg.Optimizer.AIEnabled {
		p, err := c.providers.Get(cfg.Optimizer.Provider)
		if err != nil {
			return fmt.Errorf("optimizer provider %q: %w", cfg.Optimizer.Provider, err)
		}
		aiProvider = p
	}
	if aiProvider != nil {
		ai, err := optimizer.NewAIClient(aiProvider, cfg.Optimizer, c.logger, c.metrics)
		if err != nil {
			return err
		}
		c.optimizer.SetAIClient(ai)
	}

	c.health = health.New(healthCheckTimeout)
	c.health.Register("storage", func(ctx context.Context) error {
		_, err := c.storage.Load(ctx, &usage.Filter{Limit: 1})
		return err
	})
	c.health.Register("pricing", func(context.Context) error {
		if c.calculator.Resolver().Table().Len() == 0 {
			return errors.New("pricing table is empty")
		}
		return nil
	})

	c.engine = suggestions.New(c.optimizer, c.analyzer, resolver, cfg.Suggestions, c.logger, c.metrics)

	if cfg.Retention.PruneSchedule != "" {
		c.scheduler = retention.NewScheduler(c.tracker, cfg.Retention.PruneSchedule, c.logger)
		if err := c.scheduler.Start(ctx); err != nil {
			return err
		}
	}

	if o.configPath != "" {
		w, err := config.NewWatcher(o.configPath, 0, c.logger.Named("config"))
		if err != nil {
			return err
		}
		c.watcher = w
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := w.Watch(ctx, c.reload); err != nil {
				c.logger.Error("config watcher stopped", "error", err)
			}
		}()
	}
	return nil
}

// reload applies the pricing section of a reloaded configuration.
func (c *Client) reload(cfg *config.Config) {
	overrides, err := pricing.OverridesFromConfig(cfg.Pricing)
	if err != nil {
		c.logger.Error("reloaded pricing rejected", "error", err)
		return
	}
	c.calculator.UpdateOverrides(overrides)
}

// EstimateCost estimates the cost of sending prompt to model. A nil
// expectedCompletionTokens uses costs.DefaultCompletionTokens. Unknown
// models return *pricing.UnknownModelError.
func (c *Client) EstimateCost(prompt, model string, provider usage.Provider, expectedCompletionTokens *int) (*costs.CostEstimate, error) {
	if err := query.ValidatePrompt(prompt, c.config.Validation.MaxPromptLength); err != nil {
		return nil, err
	}
	if provider != "" && !provider.Valid() {
		return nil, &usage.ValidationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q", provider)}
	}
	if expectedCompletionTokens != nil && *expectedCompletionTokens < 0 {
		return nil, &usage.ValidationError{Field: "expectedCompletionTokens", Message: "must not be negative"}
	}
	return c.calculator.EstimateCost(prompt, provider, model, expectedCompletionTokens)
}

// CalculateCost prices known token counts for model at provider.
func (c *Client) CalculateCost(provider usage.Provider, model string, promptTokens, completionTokens int) (*costs.CostEstimate, error) {
	return c.calculator.Calculate(provider, model, promptTokens, completionTokens)
}

// TrackUsage validates and stores record.
func (c *Client) TrackUsage(ctx context.Context, record *usage.UsageRecord) (err error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanTrack)
	defer func() { tracing.End(span, err) }()

	if record != nil {
		span.SetAttributes(tracing.ProviderAttributes(string(record.Provider), record.Model)...)
		tracing.SetUserAttributes(span, record.UserID, record.SessionID)
	}
	if err := c.tracker.Track(ctx, record); err != nil {
		return err
	}
	tracing.SetUsageAttributes(span, record.PromptTokens, record.CompletionTokens, record.EstimatedCost)
	return nil
}

// TrackedCompletion sends req through the configured provider named
// providerName and tracks the priced usage. Provider errors are logged and
// returned. When tracking fails the response is still returned together
// with the error.
func (c *Client) TrackedCompletion(ctx context.Context, providerName string, req *providers.CompletionRequest, meta TrackMeta) (_ *providers.CompletionResponse, err error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanCompletion)
	defer func() { tracing.End(span, err) }()
	tracing.SetUserAttributes(span, meta.UserID, meta.SessionID)

	p, err := c.providers.Get(providerName)
	if err != nil {
		return nil, err
	}
	if err := providers.ValidateRequest(req); err != nil {
		return nil, err
	}
	span.SetAttributes(tracing.ProviderAttributes(providerName, req.Model)...)

	ctx = logging.WithProvider(ctx, providerName)
	ctx = logging.WithModel(ctx, req.Model)
	if meta.UserID != "" {
		ctx = logging.WithUserID(ctx, meta.UserID)
	}

	start := c.now()
	resp, err := p.SendCompletion(ctx, req)
	latency := c.now().Sub(start)
	if err == nil && resp == nil {
		err = &providers.ProviderError{Provider: providerName, Message: "empty completion response"}
	}
	c.metrics.RecordProviderCall(providerName, req.Model, latency, err)
	if err != nil {
		tracing.SetErrorType(span, err)
		c.logger.ErrorContext(ctx, "completion failed", "latency", latency, "error", err)
		return nil, err
	}

	provider, perr := usage.ParseProvider(p.GetType())
	if perr != nil {
		provider = usage.ProviderOpenAI
	}
	model := resp.Model
	if model == "" {
		model = req.Model
	}

	record := &usage.UsageRecord{
		Provider:         provider,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Prompt:           req.Prompt(),
		Completion:       resp.Content,
		ResponseTime:     latency,
		UserID:           meta.UserID,
		SessionID:        meta.SessionID,
		Tags:             meta.Tags,
		Metadata:         meta.Metadata,
	}

	est, err := c.calculator.Calculate(provider, model, record.PromptTokens, record.CompletionTokens)
	if err != nil {
		var unknown *pricing.UnknownModelError
		if !errors.As(err, &unknown) {
			return resp, err
		}
		c.logger.WarnContext(ctx, "no pricing for model, tracking without cost")
	} else {
		record.EstimatedCost = est.TotalCost
	}

	tracing.SetUsageAttributes(span, record.PromptTokens, record.CompletionTokens, record.EstimatedCost)

	if err := c.tracker.Track(ctx, record); err != nil {
		return resp, fmt.Errorf("track completion: %w", err)
	}
	return resp, nil
}

// load validates the range and returns matching records.
func (c *Client) load(ctx context.Context, start, end *time.Time, userID string) ([]*usage.UsageRecord, error) {
	return c.tracker.Load(ctx, &usage.Filter{UserID: userID, StartDate: start, EndDate: end})
}

// GetAnalytics aggregates the records in [start, end] for userID. Empty
// bounds and user id do not filter.
func (c *Client) GetAnalytics(ctx context.Context, start, end *time.Time, userID string) (analyzer.UsageAnalytics, error) {
	records, err := c.load(ctx, start, end, userID)
	if err != nil {
		return analyzer.UsageAnalytics{}, err
	}
	return analyzer.Analyze(records, c.config.Analyzer.TopExpensivePrompts), nil
}

// GetOptimizationSuggestions ranks suggestions for the records in
// [start, end] for userID.
func (c *Client) GetOptimizationSuggestions(ctx context.Context, start, end *time.Time, userID string) (_ []usage.OptimizationSuggestion, err error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanSuggestions)
	defer func() { tracing.End(span, err) }()

	records, err := c.load(ctx, start, end, userID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrRecords, len(records)))

	out, err := c.engine.GenerateSuggestions(ctx, records)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrSuggestions, len(out)))
	return out, nil
}

// OptimizePrompt returns prompt-level suggestions for prompt.
func (c *Client) OptimizePrompt(ctx context.Context, prompt, model string, provider usage.Provider) (_ []usage.OptimizationSuggestion, err error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanOptimize, tracing.ProviderAttributes(string(provider), model)...)
	defer func() { tracing.End(span, err) }()

	out, err := c.optimizer.OptimizePrompt(ctx, prompt, model, provider, "")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrSuggestions, len(out)))
	return out, nil
}

// GenerateReport renders a Markdown report for the records in
// [start, end] for userID.
func (c *Client) GenerateReport(ctx context.Context, start, end *time.Time, userID string) (_ string, err error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanReport)
	defer func() { tracing.End(span, err) }()

	records, err := c.load(ctx, start, end, userID)
	if err != nil {
		return "", err
	}
	return c.engine.GenerateReport(ctx, records)
}

// ExportData renders the records matching filter as "json" or "csv".
func (c *Client) ExportData(ctx context.Context, format string, filter *usage.Filter) (string, error) {
	records, err := c.tracker.Load(ctx, filter)
	if err != nil {
		return "", err
	}
	return export.ExportString(ctx, format, records)
}

// GetUserStats returns the usage statistics of userID.
func (c *Client) GetUserStats(ctx context.Context, userID string) (tracker.UserStats, error) {
	return c.tracker.UserStats(ctx, userID)
}

// CostProjection extrapolates spend over days from every stored record.
func (c *Client) CostProjection(ctx context.Context, days int) (analyzer.Projection, error) {
	if days <= 0 {
		return analyzer.Projection{}, &usage.ValidationError{Field: "days", Message: "must be positive"}
	}
	if err := c.refreshAnalyzer(ctx); err != nil {
		return analyzer.Projection{}, err
	}
	return c.analyzer.CostProjection(days), nil
}

// Anomalies returns stored records whose cost deviates from the mean by
// more than threshold standard deviations. A non-positive threshold uses
// the configured default.
func (c *Client) Anomalies(ctx context.Context, threshold float64) ([]analyzer.Anomaly, error) {
	if err := c.refreshAnalyzer(ctx); err != nil {
		return nil, err
	}
	return c.analyzer.Anomalies(threshold), nil
}

func (c *Client) refreshAnalyzer(ctx context.Context) error {
	records, err := c.tracker.Load(ctx, nil)
	if err != nil {
		return err
	}
	c.analyzer.SetRecords(records)
	return nil
}

// Prune removes records outside the retention window now.
func (c *Client) Prune(ctx context.Context) (int, error) {
	return c.tracker.Prune(ctx)
}

// Clear removes every stored record.
func (c *Client) Clear(ctx context.Context) error {
	return c.tracker.Clear(ctx)
}

// Pricing returns the pricing resolver, overrides included.
func (c *Client) Pricing() *pricing.Resolver {
	return c.calculator.Resolver()
}

// Health checks the storage backend and the pricing table.
func (c *Client) Health(ctx context.Context) health.Report {
	return c.health.Check(ctx)
}

// MetricsHandler serves the client's metrics in the Prometheus format.
func (c *Client) MetricsHandler() http.Handler {
	return c.metrics.Handler()
}

// Config returns the effective configuration.
func (c *Client) Config() *config.Config {
	return c.config
}

// Close stops background work and releases storage, provider and backend
// connections. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.wg.Wait()

		var errs []error
		if c.watcher != nil {
			if err := c.watcher.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
		if c.scheduler != nil {
			c.scheduler.Stop()
		}
		if c.providers != nil {
			if err := c.providers.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if c.backend != nil {
			if err := c.backend.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if cc, ok := c.counter.(interface{ Close() }); ok {
			cc.Close()
		}
		if c.ownsStorage {
			if err := storage.Close(c.storage); err != nil {
				errs = append(errs, err)
			}
		}
		if c.tracer != nil && c.ownsTracer {
			ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
			if err := c.tracer.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			cancel()
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}
