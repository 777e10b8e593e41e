package pricing

import (
	"sync"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Resolver finds the effective price of a model: an override keyed by the
// exact model id, else the table entry.
type Resolver struct {
	table     *Table
	overrides Overrides
	mu        sync.RWMutex
}

// NewResolver creates a resolver. A nil table uses Builtin().
func NewResolver(table *Table, overrides Overrides) *Resolver {
	if table == nil {
		table = Builtin()
	}
	return &Resolver{
		table:     table,
		overrides: overrides.Clone(),
	}
}

// Resolve returns the entry pricing model at provider. An empty provider
// falls back to Table.FindByModel.
func (r *Resolver) Resolve(provider usage.Provider, model string) (Entry, error) {
	r.mu.RLock()
	override, ok := r.overrides[model]
	r.mu.RUnlock()

	if ok {
		if override.Provider == "" {
			override.Provider = provider
		}
		return override, nil
	}

	if provider == "" {
		return r.table.FindByModel(model)
	}
	if e, ok := r.table.Lookup(provider, model); ok {
		return e, nil
	}
	return Entry{}, &UnknownModelError{Provider: provider, Model: model}
}

// SetOverrides replaces the overrides. Safe to call while Resolve runs.
func (r *Resolver) SetOverrides(overrides Overrides) {
	clone := overrides.Clone()
	r.mu.Lock()
	r.overrides = clone
	r.mu.Unlock()
}

// Overrides returns a copy of the current overrides.
func (r *Resolver) Overrides() Overrides {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overrides.Clone()
}

// Table returns the underlying table.
func (r *Resolver) Table() *Table {
	return r.table
}
