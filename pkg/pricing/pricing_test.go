package pricing

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

func TestUnit_Divisor(t *testing.T) {
	tests := []struct {
		unit Unit
		want float64
	}{
		{PerToken, 1},
		{Per1KTokens, 1000},
		{Per1MTokens, 1000000},
	}
	for _, tt := range tests {
		if got := tt.unit.Divisor(); got != tt.want {
			t.Errorf("%s.Divisor() = %v, want %v", tt.unit, got, tt.want)
		}
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"per-token", PerToken, false},
		{"1K", Per1KTokens, false},
		{"per-1m-tokens", Per1MTokens, false},
		{"", Per1MTokens, false},
		{"per-gallon", "", true},
	}
	for _, tt := range tests {
		got, err := ParseUnit(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseUnit(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestBuiltin_CoversEveryProvider(t *testing.T) {
	table := Builtin()
	for _, p := range usage.AllProviders {
		if len(table.Models(p)) == 0 {
			t.Errorf("Builtin() has no entries for %s", p)
		}
	}
	if Builtin() != table {
		t.Error("Builtin() returned a different table on second call")
	}
}

func TestBuiltin_Lookup(t *testing.T) {
	e, ok := Builtin().Lookup(usage.ProviderOpenAI, "gpt-4o-mini")
	if !ok {
		t.Fatal("Lookup(openai, gpt-4o-mini) not found")
	}
	if e.InputPrice != 0.15 || e.OutputPrice != 0.60 || e.Unit != Per1MTokens || e.Currency != "USD" {
		t.Errorf("entry = %+v", e)
	}
	if math.Abs(e.PricePerInputToken()-0.15e-6) > 1e-18 {
		t.Errorf("PricePerInputToken() = %v", e.PricePerInputToken())
	}

	if _, ok := Builtin().Lookup(usage.ProviderAnthropic, "gpt-4o-mini"); ok {
		t.Error("Lookup(anthropic, gpt-4o-mini) found an entry")
	}
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	_, err := NewTable([]Entry{
		{ModelID: "m", Provider: usage.ProviderOpenAI, InputPrice: 1, OutputPrice: 2},
		{ModelID: "m", Provider: usage.ProviderAzureOpenAI, InputPrice: 1, OutputPrice: 2},
		{ModelID: "m", Provider: usage.ProviderOpenAI, InputPrice: 3, OutputPrice: 4},
	})
	var dup *DuplicateEntryError
	if !errors.As(err, &dup) {
		t.Fatalf("NewTable() error = %v, want *DuplicateEntryError", err)
	}
	if dup.Provider != usage.ProviderOpenAI || dup.Model != "m" {
		t.Errorf("DuplicateEntryError = %+v", dup)
	}
}

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"no model", Entry{Provider: usage.ProviderOpenAI}},
		{"negative", Entry{ModelID: "m", InputPrice: -1}},
		{"bad unit", Entry{ModelID: "m", Unit: "per-byte"}},
	}
	for _, tt := range tests {
		if _, err := NewTable([]Entry{tt.entry}); err == nil {
			t.Errorf("%s: NewTable() expected error", tt.name)
		}
	}
}

func TestTable_FindByModel(t *testing.T) {
	table, err := NewTable([]Entry{
		{ModelID: "solo", Provider: usage.ProviderMistral},
		{ModelID: "shared", Provider: usage.ProviderOpenAI, IsLatest: true},
		{ModelID: "shared", Provider: usage.ProviderAzureOpenAI},
		{ModelID: "tied", Provider: usage.ProviderOpenAI},
		{ModelID: "tied", Provider: usage.ProviderAzureOpenAI},
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	if e, err := table.FindByModel("solo"); err != nil || e.Provider != usage.ProviderMistral {
		t.Errorf("FindByModel(solo) = %+v, %v", e, err)
	}
	if e, err := table.FindByModel("shared"); err != nil || e.Provider != usage.ProviderOpenAI {
		t.Errorf("FindByModel(shared) = %+v, %v", e, err)
	}

	_, err = table.FindByModel("tied")
	var amb *AmbiguousModelError
	if !errors.As(err, &amb) || len(amb.Providers) != 2 {
		t.Errorf("FindByModel(tied) error = %v, want *AmbiguousModelError", err)
	}

	_, err = table.FindByModel("missing")
	var unknown *UnknownModelError
	if !errors.As(err, &unknown) {
		t.Errorf("FindByModel(missing) error = %v, want *UnknownModelError", err)
	}
}

func TestResolver_OverrideWins(t *testing.T) {
	r := NewResolver(nil, Overrides{
		"gpt-4o": {ModelID: "gpt-4o", InputPrice: 1, OutputPrice: 1, Unit: PerToken},
		"house":  {ModelID: "house", InputPrice: 5, OutputPrice: 7, Unit: Per1KTokens},
	})

	e, err := r.Resolve(usage.ProviderOpenAI, "gpt-4o")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if e.Unit != PerToken || e.Provider != usage.ProviderOpenAI {
		t.Errorf("override not applied: %+v", e)
	}

	if _, err := r.Resolve(usage.ProviderCohere, "house"); err != nil {
		t.Errorf("Resolve(house) error = %v", err)
	}

	_, err = r.Resolve(usage.ProviderOpenAI, "gpt-9")
	var unknown *UnknownModelError
	if !errors.As(err, &unknown) || unknown.Model != "gpt-9" || unknown.Provider != usage.ProviderOpenAI {
		t.Errorf("Resolve(gpt-9) error = %v", err)
	}
}

func TestResolver_SetOverrides(t *testing.T) {
	r := NewResolver(Builtin(), nil)
	if _, err := r.Resolve(usage.ProviderOpenAI, "custom-model"); err == nil {
		t.Fatal("expected unknown model before override")
	}

	r.SetOverrides(Overrides{"custom-model": {ModelID: "custom-model", Unit: Per1MTokens}})
	if _, err := r.Resolve(usage.ProviderOpenAI, "custom-model"); err != nil {
		t.Errorf("Resolve() after SetOverrides error = %v", err)
	}
	if len(r.Overrides()) != 1 {
		t.Errorf("Overrides() = %v", r.Overrides())
	}
}

func TestFromConfig(t *testing.T) {
	o, err := FromConfig(map[string]config.CustomPricingConfig{
		"ft-model": {Provider: "openai", InputPrice: 3, OutputPrice: 12, Unit: "per-1k-tokens"},
	})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	e := o["ft-model"]
	if e.Unit != Per1KTokens || e.Currency != "USD" || e.Provider != usage.ProviderOpenAI {
		t.Errorf("entry = %+v", e)
	}

	if _, err := FromConfig(map[string]config.CustomPricingConfig{"x": {Unit: "weird"}}); err == nil {
		t.Error("FromConfig() expected error for bad unit")
	}
	if _, err := FromConfig(map[string]config.CustomPricingConfig{"x": {Provider: "acme"}}); err == nil {
		t.Error("FromConfig() expected error for bad provider")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	content := `
models:
  my-finetune:
    provider: openai
    input_price: 3.0
    output_price: 12.0
    unit: per-1m-tokens
  shared:
    input_price: 1.0
    output_price: 1.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	o, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	if o["my-finetune"].OutputPrice != 12 {
		t.Errorf("my-finetune = %+v", o["my-finetune"])
	}

	combined, err := OverridesFromConfig(config.PricingConfig{
		OverridesFile: path,
		Custom: map[string]config.CustomPricingConfig{
			"shared": {InputPrice: 9, OutputPrice: 9},
		},
	})
	if err != nil {
		t.Fatalf("OverridesFromConfig() error = %v", err)
	}
	if combined["shared"].InputPrice != 9 {
		t.Errorf("inline entry did not win: %+v", combined["shared"])
	}
	if len(combined) != 2 {
		t.Errorf("combined = %d entries, want 2", len(combined))
	}

	if _, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadOverrides(missing) expected error")
	}
}
