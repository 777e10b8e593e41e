package pricing

import (
	"errors"
	"fmt"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Table is an immutable set of pricing entries, unique per
// (provider, model id).
type Table struct {
	entries []Entry
	byKey   map[entryKey]int
	byModel map[string][]int
}

// NewTable validates entries and builds a table. Entries without a unit or
// currency get Per1MTokens and USD.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[entryKey]int, len(entries)),
		byModel: make(map[string][]int, len(entries)),
	}

	var errs []error
	for _, e := range entries {
		if e.ModelID == "" {
			errs = append(errs, errors.New("pricing entry without model id"))
			continue
		}
		if e.InputPrice < 0 || e.OutputPrice < 0 {
			errs = append(errs, fmt.Errorf("%s/%s: negative price", e.Provider, e.ModelID))
			continue
		}
		if e.Unit == "" {
			e.Unit = Per1MTokens
		}
		if !e.Unit.Valid() {
			errs = append(errs, fmt.Errorf("%s/%s: unknown unit %q", e.Provider, e.ModelID, e.Unit))
			continue
		}
		if e.Currency == "" {
			e.Currency = DefaultCurrency
		}

		key := entryKey{e.Provider, e.ModelID}
		if _, dup := t.byKey[key]; dup {
			errs = append(errs, &DuplicateEntryError{Provider: e.Provider, Model: e.ModelID})
			continue
		}

		idx := len(t.entries)
		e.Capabilities = append([]string(nil), e.Capabilities...)
		t.entries = append(t.entries, e)
		t.byKey[key] = idx
		t.byModel[e.ModelID] = append(t.byModel[e.ModelID], idx)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the entry for provider and model.
func (t *Table) Lookup(provider usage.Provider, model string) (Entry, bool) {
	idx, ok := t.byKey[entryKey{provider, model}]
	if !ok {
		return Entry{}, false
	}
	return t.entries[idx], true
}

// FindByModel looks model up without a provider. A model listed by one
// provider is returned directly. When several list it, the single entry
// flagged IsLatest wins; otherwise an *AmbiguousModelError is returned.
func (t *Table) FindByModel(model string) (Entry, error) {
	idxs := t.byModel[model]
	switch len(idxs) {
	case 0:
		return Entry{}, &UnknownModelError{Model: model}
	case 1:
		return t.entries[idxs[0]], nil
	}

	var latest []int
	providers := make([]usage.Provider, 0, len(idxs))
	for _, idx := range idxs {
		providers = append(providers, t.entries[idx].Provider)
		if t.entries[idx].IsLatest {
			latest = append(latest, idx)
		}
	}
	if len(latest) == 1 {
		return t.entries[latest[0]], nil
	}
	return Entry{}, &AmbiguousModelError{Model: model, Providers: providers}
}

// Models returns the entries for provider in table order. An empty
// provider returns every entry.
func (t *Table) Models(provider usage.Provider) []Entry {
	out := make([]Entry, 0)
	for _, e := range t.entries {
		if provider == "" || e.Provider == provider {
			out = append(out, e)
		}
	}
	return out
}

// Providers returns the providers present in the table, in first-seen
// order.
func (t *Table) Providers() []usage.Provider {
	seen := make(map[usage.Provider]bool)
	var out []usage.Provider
	for _, e := range t.entries {
		if !seen[e.Provider] {
			seen[e.Provider] = true
			out = append(out, e.Provider)
		}
	}
	return out
}
