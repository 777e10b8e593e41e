package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// CustomStorage delegates to a caller-supplied adapter, logging each call
// and wrapping failures in usage.StorageError.
type CustomStorage struct {
	adapter usage.Storage
	name    string
	logger  *logging.Logger
}

// NewCustomStorage wraps adapter. The name labels errors and log entries;
// it defaults to "custom".
func NewCustomStorage(adapter usage.Storage, name string, logger *logging.Logger) *CustomStorage {
	if name == "" {
		name = "custom"
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &CustomStorage{
		adapter: adapter,
		name:    name,
		logger:  logger.With("backend", name),
	}
}

// Adapter returns the wrapped adapter.
func (s *CustomStorage) Adapter() usage.Storage {
	return s.adapter
}

// Save delegates to the adapter.
func (s *CustomStorage) Save(ctx context.Context, record *usage.UsageRecord) error {
	if err := s.adapter.Save(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "custom storage save failed", "error", err)
		return s.wrap("save", err)
	}
	return nil
}

// Load delegates to the adapter.
func (s *CustomStorage) Load(ctx context.Context, filter *usage.Filter) ([]*usage.UsageRecord, error) {
	records, err := s.adapter.Load(ctx, filter)
	if err != nil {
		s.logger.WarnContext(ctx, "custom storage load failed", "error", err)
		return nil, s.wrap("load", err)
	}
	return records, nil
}

// Clear delegates to the adapter.
func (s *CustomStorage) Clear(ctx context.Context) error {
	if err := s.adapter.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "custom storage clear failed", "error", err)
		return s.wrap("clear", err)
	}
	return nil
}

// Replace swaps the adapter contents for records, in one step when the
// adapter supports it.
func (s *CustomStorage) Replace(ctx context.Context, records []*usage.UsageRecord) error {
	if err := replaceAll(ctx, s.adapter, records); err != nil {
		s.logger.WarnContext(ctx, "custom storage replace failed", "error", err)
		return s.wrap("replace", err)
	}
	return nil
}

// Close closes the adapter when it supports closing.
func (s *CustomStorage) Close() error {
	if c, ok := s.adapter.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *CustomStorage) wrap(op string, err error) error {
	var se *usage.StorageError
	if errors.As(err, &se) {
		return err
	}
	return usage.NewStorageError(s.name, op, fmt.Errorf("adapter: %w", err))
}
