package storage

import (
	"context"
	"sync"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// MemoryStorage keeps records in process memory in insertion order.
type MemoryStorage struct {
	records []*usage.UsageRecord
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Save appends a copy of record.
func (s *MemoryStorage) Save(ctx context.Context, record *usage.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record.Clone())
	return nil
}

// Load returns copies of the records matching filter.
func (s *MemoryStorage) Load(ctx context.Context, filter *usage.Filter) ([]*usage.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := filter.Apply(s.records)
	out := make([]*usage.UsageRecord, len(matched))
	for i, rec := range matched {
		out[i] = rec.Clone()
	}
	return out, nil
}

// Clear removes every record.
func (s *MemoryStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
