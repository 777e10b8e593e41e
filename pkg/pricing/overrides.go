package pricing

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Overrides maps an exact model id to caller-supplied pricing.
type Overrides map[string]Entry

// overridesFile is the on-disk layout read by LoadOverrides:
//
//	models:
//	  my-finetune:
//	    provider: openai
//	    input_price: 3.0
//	    output_price: 12.0
//	    unit: per-1m-tokens
type overridesFile struct {
	Models map[string]config.CustomPricingConfig `yaml:"models"`
}

// FromConfig converts configured custom pricing into Overrides.
func FromConfig(custom map[string]config.CustomPricingConfig) (Overrides, error) {
	out := make(Overrides, len(custom))
	var errs []error

	for model, c := range custom {
		unit, err := ParseUnit(c.Unit)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", model, err))
			continue
		}
		if c.InputPrice < 0 || c.OutputPrice < 0 {
			errs = append(errs, fmt.Errorf("%s: negative price", model))
			continue
		}

		var provider usage.Provider
		if c.Provider != "" {
			provider, err = usage.ParseProvider(c.Provider)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", model, err))
				continue
			}
		}

		currency := c.Currency
		if currency == "" {
			currency = DefaultCurrency
		}

		out[model] = Entry{
			ModelID:       model,
			Provider:      provider,
			InputPrice:    c.InputPrice,
			OutputPrice:   c.OutputPrice,
			Unit:          unit,
			Currency:      currency,
			ContextWindow: c.ContextWindow,
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// LoadOverrides reads a YAML overrides file.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing overrides: %w", err)
	}

	var f overridesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse pricing overrides %s: %w", path, err)
	}
	return FromConfig(f.Models)
}

// OverridesFromConfig combines the overrides file, when set, with the
// inline custom entries. Inline entries win.
func OverridesFromConfig(cfg config.PricingConfig) (Overrides, error) {
	out := make(Overrides)

	if cfg.OverridesFile != "" {
		fromFile, err := LoadOverrides(cfg.OverridesFile)
		if err != nil {
			return nil, err
		}
		out.merge(fromFile)
	}

	inline, err := FromConfig(cfg.Custom)
	if err != nil {
		return nil, err
	}
	out.merge(inline)
	return out, nil
}

func (o Overrides) merge(other Overrides) {
	for k, v := range other {
		o[k] = v
	}
}

// Clone returns a copy of o.
func (o Overrides) Clone() Overrides {
	out := make(Overrides, len(o))
	out.merge(o)
	return out
}
