package providerfactory

import (
	"errors"
	"testing"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/internal/testutil"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
)

func TestManager_LoadFromConfig(t *testing.T) {
	manager := NewManager(nil)
	defer manager.Close()

	err := manager.LoadFromConfig(map[string]config.ProviderConfig{
		"openai":    {APIKey: "sk-test"},
		"anthropic": {APIKey: "sk-ant-test"},
		"broken":    {Type: "unknown"},
	})
	if err == nil {
		t.Fatal("expected joined error for the broken entry")
	}

	if manager.Count() != 2 {
		t.Errorf("expected 2 providers, got %d", manager.Count())
	}

	names := manager.Names()
	if len(names) != 2 || names[0] != "anthropic" || names[1] != "openai" {
		t.Errorf("unexpected names %v", names)
	}

	p, err := manager.Get("anthropic")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if p.GetType() != "anthropic" {
		t.Errorf("expected anthropic type, got %s", p.GetType())
	}
}

func TestManager_GetNotFound(t *testing.T) {
	manager := NewManager(nil)

	_, err := manager.Get("non-existent")
	if !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestManager_AddReplacesAndClose(t *testing.T) {
	manager := NewManager(nil)

	first := testutil.NewFakeProvider("fake", "one")
	second := testutil.NewFakeProvider("fake", "two")
	manager.Add("fake", first)
	manager.Add("fake", second)

	if !first.Closed() {
		t.Error("expected replaced provider to be closed")
	}
	if manager.Count() != 1 {
		t.Errorf("expected 1 provider, got %d", manager.Count())
	}

	if err := manager.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !second.Closed() {
		t.Error("expected Close to close registered providers")
	}
	if manager.Count() != 0 {
		t.Errorf("expected empty manager after Close, got %d", manager.Count())
	}
}
