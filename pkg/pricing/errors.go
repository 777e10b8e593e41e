package pricing

import (
	"fmt"
	"strings"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// UnknownModelError is returned when neither the table nor the overrides
// price the requested model.
type UnknownModelError struct {
	Provider usage.Provider
	Model    string
}

// Error implements the error interface.
func (e *UnknownModelError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("unknown model %q", e.Model)
	}
	return fmt.Sprintf("unknown model %q for provider %q", e.Model, e.Provider)
}

// AmbiguousModelError is returned by FindByModel when several providers
// list the model and none is flagged as the latest.
type AmbiguousModelError struct {
	Model     string
	Providers []usage.Provider
}

// Error implements the error interface.
func (e *AmbiguousModelError) Error() string {
	names := make([]string, len(e.Providers))
	for i, p := range e.Providers {
		names[i] = string(p)
	}
	return fmt.Sprintf("model %q is listed by several providers (%s); specify one", e.Model, strings.Join(names, ", "))
}

// DuplicateEntryError is returned by NewTable when two entries share a
// (provider, model id) pair.
type DuplicateEntryError struct {
	Provider usage.Provider
	Model    string
}

// Error implements the error interface.
func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate pricing entry for %s/%s", e.Provider, e.Model)
}
