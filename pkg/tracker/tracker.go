package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/backend"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/query"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/retention"
)

// UserStats summarizes one user's tracked usage.
type UserStats struct {
	UserID                  string     `json:"userId"`
	TotalRequests           int        `json:"totalRequests"`
	TotalCost               float64    `json:"totalCost"`
	TotalTokens             int        `json:"totalTokens"`
	AverageCostPerRequest   float64    `json:"averageCostPerRequest"`
	AverageTokensPerRequest float64    `json:"averageTokensPerRequest"`
	LastUsed                *time.Time `json:"lastUsed,omitempty"`
}

func (s *UserStats) add(r *usage.UsageRecord) {
	s.TotalRequests++
	s.TotalCost += r.EstimatedCost
	s.TotalTokens += r.TotalTokens
	s.AverageCostPerRequest = s.TotalCost / float64(s.TotalRequests)
	s.AverageTokensPerRequest = float64(s.TotalTokens) / float64(s.TotalRequests)
	if s.LastUsed == nil || r.Timestamp.After(*s.LastUsed) {
		ts := r.Timestamp
		s.LastUsed = &ts
	}
}

// Tracker validates and persists usage records, keeps per-user statistics
// cached, and forwards records to the backend when a syncer is set.
type Tracker struct {
	storage usage.Storage
	pruner  *retention.Pruner
	syncer  backend.Syncer
	logger  *logging.Logger
	metrics *metrics.Collector
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]*UserStats
	// gen changes on every write, so a load that raced one is not cached.
	gen uint64
}

// New creates a tracker over store. pruner, syncer, logger and collector
// may be nil.
func New(store usage.Storage, pruner *retention.Pruner, syncer backend.Syncer, logger *logging.Logger, collector *metrics.Collector) *Tracker {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Tracker{
		storage: store,
		pruner:  pruner,
		syncer:  syncer,
		logger:  logger.Named("tracker"),
		metrics: collector,
		now:     time.Now,
		cache:   make(map[string]*UserStats),
	}
}

// SetClock replaces the time source used for default timestamps.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// SetSyncer replaces the backend syncer. nil disables sync.
func (t *Tracker) SetSyncer(s backend.Syncer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.syncer = s
}

// Storage returns the underlying store.
func (t *Tracker) Storage() usage.Storage {
	return t.storage
}

// Track validates, normalizes and saves record. Expired records are pruned
// first when retention is configured. A backend sync failure is logged and
// counted but not returned.
func (t *Tracker) Track(ctx context.Context, record *usage.UsageRecord) error {
	if err := Validate(record); err != nil {
		return err
	}
	record.Normalize(t.now())

	if t.pruner != nil {
		removed, err := t.pruner.Prune(ctx)
		if err != nil {
			t.logger.WarnContext(ctx, "retention prune failed", "error", err)
		} else if removed > 0 {
			t.resetCache()
		}
	}

	if err := t.storage.Save(ctx, record); err != nil {
		t.recordStorageError(err, "save")
		return err
	}

	t.mu.Lock()
	t.gen++
	if stats, ok := t.cache[record.UserID]; ok && record.UserID != "" {
		stats.add(record)
	}
	syncer := t.syncer
	t.mu.Unlock()

	t.metrics.RecordUsage(string(record.Provider), record.Model, record.TotalTokens, record.EstimatedCost)

	ctx = logging.WithUserID(ctx, record.UserID)
	t.logger.DebugContext(ctx, "usage tracked",
		"record_id", record.ID,
		"provider", record.Provider,
		"model", record.Model,
		"tokens", record.TotalTokens,
		"cost", record.EstimatedCost,
	)

	if syncer != nil {
		if err := syncer.Sync(ctx, record); err != nil {
			t.metrics.RecordSyncFailure()
			t.logger.WarnContext(ctx, "backend sync failed", "record_id", record.ID, "error", err)
		}
	}
	return nil
}

// Load returns the stored records matching filter.
func (t *Tracker) Load(ctx context.Context, filter *usage.Filter) ([]*usage.UsageRecord, error) {
	if err := query.ValidateFilter(filter); err != nil {
		return nil, err
	}
	records, err := t.storage.Load(ctx, filter)
	if err != nil {
		t.recordStorageError(err, "load")
		return nil, err
	}
	return records, nil
}

// Clear removes every record and resets the cache.
func (t *Tracker) Clear(ctx context.Context) error {
	if err := t.storage.Clear(ctx); err != nil {
		t.recordStorageError(err, "clear")
		return err
	}
	t.resetCache()
	t.logger.InfoContext(ctx, "usage records cleared")
	return nil
}

// UserStats returns the statistics of userID. A cache miss loads the
// user's records from storage and caches the result.
func (t *Tracker) UserStats(ctx context.Context, userID string) (UserStats, error) {
	if err := query.ValidateUserID(userID); err != nil {
		return UserStats{}, err
	}

	t.mu.RLock()
	cached, ok := t.cache[userID]
	var out UserStats
	if ok {
		out = *cached
	}
	gen := t.gen
	t.mu.RUnlock()
	if ok {
		t.metrics.RecordCacheHit("user_stats")
		return out, nil
	}
	t.metrics.RecordCacheMiss("user_stats")

	records, err := t.storage.Load(ctx, &usage.Filter{UserID: userID})
	if err != nil {
		t.recordStorageError(err, "load")
		return UserStats{}, err
	}

	stats := &UserStats{UserID: userID}
	for _, r := range records {
		stats.add(r)
	}

	t.mu.Lock()
	if existing, ok := t.cache[userID]; ok {
		stats = existing
	} else if t.gen == gen {
		t.cache[userID] = stats
	}
	out = *stats
	t.mu.Unlock()
	return out, nil
}

// Prune runs the retention pruner now. It returns 0 without a pruner.
func (t *Tracker) Prune(ctx context.Context) (int, error) {
	if t.pruner == nil {
		return 0, nil
	}
	removed, err := t.pruner.Prune(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		t.resetCache()
	}
	return removed, nil
}

// RetentionDays returns the pruner's window, or 0 without a pruner.
func (t *Tracker) RetentionDays() int {
	if t.pruner == nil {
		return 0
	}
	return t.pruner.RetentionDays()
}

func (t *Tracker) resetCache() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.cache = make(map[string]*UserStats)
}

func (t *Tracker) recordStorageError(err error, operation string) {
	backendName := "unknown"
	var sErr *usage.StorageError
	if errors.As(err, &sErr) && sErr.Backend != "" {
		backendName = sErr.Backend
	}
	t.metrics.RecordStorageError(backendName, operation)
}

// Validate checks the caller-supplied fields of a record.
func Validate(record *usage.UsageRecord) error {
	if record == nil {
		return &usage.ValidationError{Field: "record", Message: "must not be nil"}
	}
	if !record.Provider.Valid() {
		return &usage.ValidationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q", record.Provider)}
	}
	if record.Model == "" {
		return &usage.ValidationError{Field: "model", Message: "must not be empty"}
	}
	if record.PromptTokens < 0 || record.CompletionTokens < 0 {
		return &usage.ValidationError{Field: "tokens", Message: "must not be negative"}
	}
	if math.IsNaN(record.EstimatedCost) || math.IsInf(record.EstimatedCost, 0) {
		return &usage.ValidationError{Field: "estimatedCost", Message: "must be a finite number"}
	}
	if record.EstimatedCost < 0 {
		return &usage.ValidationError{Field: "estimatedCost", Message: "must not be negative"}
	}
	if record.UserID != "" {
		if err := query.ValidateUserID(record.UserID); err != nil {
			return err
		}
	}
	return nil
}
