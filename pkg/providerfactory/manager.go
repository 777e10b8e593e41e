package providerfactory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
)

// ErrProviderNotFound is returned by Get for an unknown name.
var ErrProviderNotFound = errors.New("provider not found")

// Manager holds the configured providers by name.
//
// Manager is safe for concurrent use.
type Manager struct {
	providers map[string]providers.Provider
	mu        sync.RWMutex
	logger    *logging.Logger
}

// NewManager creates an empty manager.
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		providers: make(map[string]providers.Provider),
		logger:    logger.Named("providers"),
	}
}

// Add registers p under name. An existing provider with that name is closed
// and replaced.
func (m *Manager) Add(name string, p providers.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.providers[name]; ok {
		m.logger.Warn("replacing existing provider", "name", name)
		_ = existing.Close()
	}
	m.providers[name] = p
}

// Get returns the provider registered under name.
func (m *Manager) Get(name string) (providers.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return p, nil
}

// Names returns the registered names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered providers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.providers)
}

// LoadFromConfig creates and registers a provider for every entry. Entries
// that fail are skipped and their errors joined into the result.
func (m *Manager) LoadFromConfig(entries map[string]config.ProviderConfig) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		p, err := New(name, entries[name], m.logger)
		if err != nil {
			m.logger.Error("failed to load provider", "name", name, "error", err)
			errs = append(errs, err)
			continue
		}
		m.Add(name, p)
	}

	return errors.Join(errs...)
}

// Close closes every provider and empties the manager.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, p := range m.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %q: %w", name, err))
		}
	}
	m.providers = make(map[string]providers.Provider)

	return errors.Join(errs...)
}
