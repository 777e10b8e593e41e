package costkatana

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/backend"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/tracing"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Option customizes a Client.
type Option func(*options)

type options struct {
	logger     *logging.Logger
	storage    usage.Storage
	aiProvider providers.Provider
	syncer     backend.Syncer
	registry   *prometheus.Registry
	now        func() time.Time
	configPath string
	tracer     *tracing.Tracer

	completionProviders map[string]providers.Provider
}

// WithLogger replaces the logger built from the telemetry configuration.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStorage supplies the storage backend instead of building one from
// configuration. The caller keeps ownership; Close does not close it.
func WithStorage(store usage.Storage) Option {
	return func(o *options) { o.storage = store }
}

// WithProvider sets the provider used by the AI-assisted optimization pass
// and enables the pass.
func WithProvider(p providers.Provider) Option {
	return func(o *options) { o.aiProvider = p }
}

// WithCompletionProvider registers p under name for TrackedCompletion,
// next to the providers built from configuration. The client closes it.
func WithCompletionProvider(name string, p providers.Provider) Option {
	return func(o *options) {
		if o.completionProviders == nil {
			o.completionProviders = make(map[string]providers.Provider)
		}
		o.completionProviders[name] = p
	}
}

// WithSyncer sets the backend syncer instead of the configured HTTP client.
func WithSyncer(s backend.Syncer) Option {
	return func(o *options) { o.syncer = s }
}

// WithRegistry registers metrics on registry instead of a private one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(o *options) { o.registry = registry }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithConfigWatch watches the configuration file at path and applies
// pricing changes without a restart.
func WithConfigWatch(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithTracer replaces the tracer built from the tracing configuration. The
// caller keeps ownership and shuts it down.
func WithTracer(t *tracing.Tracer) Option {
	return func(o *options) { o.tracer = t }
}
