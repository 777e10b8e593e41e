package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newRecord(id, user string, offset time.Duration, cost float64) *usage.UsageRecord {
	return &usage.UsageRecord{
		ID:               id,
		Provider:         usage.ProviderOpenAI,
		Model:            "gpt-4o-mini",
		PromptTokens:     100,
		CompletionTokens: 40,
		TotalTokens:      140,
		EstimatedCost:    cost,
		Prompt:           "prompt " + id,
		Timestamp:        baseTime.Add(offset),
		UserID:           user,
		Tags:             []string{"test"},
		ResponseTime:     250 * time.Millisecond,
		Metadata:         map[string]string{"env": "ci"},
	}
}

type storageFactory func(t *testing.T) usage.Storage

func backends(t *testing.T) map[string]storageFactory {
	t.Helper()
	return map[string]storageFactory{
		"memory": func(t *testing.T) usage.Storage {
			return NewMemoryStorage()
		},
		"file": func(t *testing.T) usage.Storage {
			s, err := NewFileStorage(filepath.Join(t.TempDir(), "usage.json"), nil)
			if err != nil {
				t.Fatalf("NewFileStorage() error = %v", err)
			}
			return s
		},
		"sqlite-modernc": func(t *testing.T) usage.Storage {
			return newSQLite(t, "sqlite")
		},
		"sqlite-mattn": func(t *testing.T) usage.Storage {
			return newSQLite(t, "sqlite3")
		},
		"custom-memory": func(t *testing.T) usage.Storage {
			return NewCustomStorage(NewMemoryStorage(), "", nil)
		},
		"redis": func(t *testing.T) usage.Storage {
			return newRedis(t)
		},
	}
}

func newSQLite(t *testing.T, driver string) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(config.SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "usage.db"),
		Driver:       driver,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}, nil)
	if err != nil {
		if strings.Contains(err.Error(), "CGO") || strings.Contains(err.Error(), "cgo") {
			t.Skipf("sqlite3 driver unavailable: %v", err)
		}
		t.Fatalf("NewSQLiteStorage(%s) error = %v", driver, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newRedis(t *testing.T) *RedisStorage {
	t.Helper()
	addr := os.Getenv("COSTKATANA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COSTKATANA_TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStorage(context.Background(), config.RedisConfig{
		Address:     addr,
		KeyPrefix:   "costkatana-test-" + strings.ReplaceAll(t.Name(), "/", "-"),
		DialTimeout: 2 * time.Second,
	}, nil)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		s.Clear(context.Background())
		s.Close()
	})
	return s
}

func TestStorage_SaveLoadClear(t *testing.T) {
	for name, factory := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			records := []*usage.UsageRecord{
				newRecord("r1", "alice", 0, 0.01),
				newRecord("r2", "bob", time.Hour, 0.02),
				newRecord("r3", "alice", 2*time.Hour, 0.03),
			}
			for _, rec := range records {
				if err := store.Save(ctx, rec); err != nil {
					t.Fatalf("Save(%s) error = %v", rec.ID, err)
				}
			}

			all, err := store.Load(ctx, nil)
			if err != nil {
				t.Fatalf("Load(nil) error = %v", err)
			}
			if got := recordIDs(all); got != "r1,r2,r3" {
				t.Errorf("Load(nil) ids = %s, want r1,r2,r3", got)
			}

			first := all[0]
			if first.UserID != "alice" || first.EstimatedCost != 0.01 || first.TotalTokens != 140 {
				t.Errorf("Load() first record = %+v", first)
			}
			if !first.Timestamp.Equal(baseTime) {
				t.Errorf("Timestamp = %v, want %v", first.Timestamp, baseTime)
			}
			if first.ResponseTime != 250*time.Millisecond {
				t.Errorf("ResponseTime = %v, want 250ms", first.ResponseTime)
			}
			if first.Metadata["env"] != "ci" || len(first.Tags) != 1 {
				t.Errorf("Metadata/Tags not preserved: %v %v", first.Metadata, first.Tags)
			}

			alice, err := store.Load(ctx, &usage.Filter{UserID: "alice"})
			if err != nil {
				t.Fatalf("Load(alice) error = %v", err)
			}
			if got := recordIDs(alice); got != "r1,r3" {
				t.Errorf("Load(alice) ids = %s, want r1,r3", got)
			}

			start := baseTime.Add(30 * time.Minute)
			end := baseTime.Add(2 * time.Hour)
			ranged, err := store.Load(ctx, &usage.Filter{StartDate: &start, EndDate: &end})
			if err != nil {
				t.Fatalf("Load(range) error = %v", err)
			}
			if got := recordIDs(ranged); got != "r2,r3" {
				t.Errorf("Load(range) ids = %s, want r2,r3 (end inclusive)", got)
			}

			limited, err := store.Load(ctx, &usage.Filter{Limit: 2})
			if err != nil {
				t.Fatalf("Load(limit) error = %v", err)
			}
			if got := recordIDs(limited); got != "r1,r2" {
				t.Errorf("Load(limit) ids = %s, want r1,r2", got)
			}

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			after, err := store.Load(ctx, nil)
			if err != nil {
				t.Fatalf("Load() after Clear error = %v", err)
			}
			if len(after) != 0 {
				t.Errorf("Load() after Clear returned %d records", len(after))
			}
		})
	}
}

func TestStorage_Purge(t *testing.T) {
	for name, factory := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			for i, rec := range []*usage.UsageRecord{
				newRecord("old1", "u", -72*time.Hour, 0.01),
				newRecord("new1", "u", 0, 0.01),
				newRecord("old2", "u", -48*time.Hour, 0.01),
				newRecord("new2", "u", time.Hour, 0.01),
			} {
				if err := store.Save(ctx, rec); err != nil {
					t.Fatalf("Save(%d) error = %v", i, err)
				}
			}

			removed, err := Purge(ctx, store, baseTime.Add(-24*time.Hour))
			if err != nil {
				t.Fatalf("Purge() error = %v", err)
			}
			if len(removed) != 2 {
				t.Errorf("Purge() removed %d, want 2", len(removed))
			}

			kept, err := store.Load(ctx, nil)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := recordIDs(kept); got != "new1,new2" {
				t.Errorf("kept ids = %s, want new1,new2", got)
			}
		})
	}
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	rec := newRecord("r1", "alice", 0, 0.01)
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rec.Model = "mutated"

	got, _ := s.Load(ctx, nil)
	if got[0].Model != "gpt-4o-mini" {
		t.Errorf("stored record was mutated through caller pointer: %s", got[0].Model)
	}
	got[0].Model = "mutated-again"

	again, _ := s.Load(ctx, nil)
	if again[0].Model != "gpt-4o-mini" {
		t.Errorf("stored record was mutated through loaded pointer: %s", again[0].Model)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestFileStorage_MissingFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "usage.json")
	s, err := NewFileStorage(path, nil)
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	records, err := s.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Load() = %d records, want 0", len(records))
	}

	if err := s.Save(context.Background(), newRecord("r1", "", 0, 0)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestFileStorage_ClearWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	s, _ := NewFileStorage(path, nil)
	ctx := context.Background()

	s.Save(ctx, newRecord("r1", "", 0, 0))
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("file contents = %q, want []", data)
	}
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStorage(path, nil)

	_, err := s.Load(context.Background(), nil)
	var se *usage.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("Load() error = %v, want *usage.StorageError", err)
	}
	if se.Backend != "file" || se.Operation != "load" {
		t.Errorf("StorageError = %+v", se)
	}
}

func TestNewFileStorage_EmptyPath(t *testing.T) {
	if _, err := NewFileStorage("", nil); err == nil {
		t.Error("NewFileStorage(\"\") expected error")
	}
}

type failingAdapter struct{}

func (failingAdapter) Save(context.Context, *usage.UsageRecord) error { return errors.New("boom") }
func (failingAdapter) Load(context.Context, *usage.Filter) ([]*usage.UsageRecord, error) {
	return nil, errors.New("boom")
}
func (failingAdapter) Clear(context.Context) error { return errors.New("boom") }

func TestCustomStorage_WrapsErrors(t *testing.T) {
	s := NewCustomStorage(failingAdapter{}, "warehouse", nil)
	ctx := context.Background()

	tests := []struct {
		op  string
		err error
	}{
		{"save", s.Save(ctx, newRecord("r1", "", 0, 0))},
		{"clear", s.Clear(ctx)},
	}
	_, loadErr := s.Load(ctx, nil)
	tests = append(tests, struct {
		op  string
		err error
	}{"load", loadErr})

	for _, tt := range tests {
		var se *usage.StorageError
		if !errors.As(tt.err, &se) {
			t.Errorf("%s: error = %v, want *usage.StorageError", tt.op, tt.err)
			continue
		}
		if se.Backend != "warehouse" || se.Operation != tt.op {
			t.Errorf("%s: StorageError = %+v", tt.op, se)
		}
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{"memory", config.StorageConfig{Backend: "memory"}, false},
		{"empty defaults to memory", config.StorageConfig{}, false},
		{"file", config.StorageConfig{Backend: "file", File: config.FileStorageConfig{Path: filepath.Join(dir, "u.json")}}, false},
		{"sqlite", config.StorageConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "u.db"), Driver: "sqlite"}}, false},
		{"custom needs adapter", config.StorageConfig{Backend: "custom"}, true},
		{"unknown", config.StorageConfig{Backend: "mongo"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(ctx, tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				Close(store)
			}
		})
	}
}

func TestSQLiteStorage_UnsupportedDriver(t *testing.T) {
	_, err := NewSQLiteStorage(config.SQLiteConfig{Path: "x.db", Driver: "postgres"}, nil)
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSQLiteStorage_SaveSameIDUpdates(t *testing.T) {
	s := newSQLite(t, "sqlite")
	ctx := context.Background()

	rec := newRecord("r1", "alice", 0, 0.01)
	s.Save(ctx, rec)
	rec.EstimatedCost = 0.5
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _ := s.Load(ctx, nil)
	if len(got) != 1 {
		t.Fatalf("Load() = %d records, want 1", len(got))
	}
	if got[0].EstimatedCost != 0.5 {
		t.Errorf("EstimatedCost = %v, want 0.5", got[0].EstimatedCost)
	}
}

func recordIDs(records []*usage.UsageRecord) string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return strings.Join(ids, ",")
}
