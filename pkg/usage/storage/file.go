package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// FileStorage persists every record in one JSON array file. Each save reads
// the whole file, appends, and writes it back through a temporary file and
// rename.
type FileStorage struct {
	path   string
	mu     sync.Mutex
	logger *logging.Logger
}

// NewFileStorage creates a file backend at path. The file is created on the
// first save; a missing file reads as empty.
func NewFileStorage(path string, logger *logging.Logger) (*FileStorage, error) {
	if path == "" {
		return nil, usage.NewStorageError("file", "open", errors.New("path is required"))
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &FileStorage{
		path:   path,
		logger: logger.With("backend", "file", "path", path),
	}, nil
}

// Path returns the backing file path.
func (s *FileStorage) Path() string {
	return s.path
}

// Save appends record and rewrites the file.
func (s *FileStorage) Save(ctx context.Context, record *usage.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return usage.NewStorageError("file", "save", err)
	}
	records = append(records, record.Clone())

	if err := s.write(records); err != nil {
		return usage.NewStorageError("file", "save", err)
	}
	return nil
}

// Load reads the file and returns the records matching filter.
func (s *FileStorage) Load(ctx context.Context, filter *usage.Filter) ([]*usage.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, usage.NewStorageError("file", "load", err)
	}
	return filter.Apply(records), nil
}

// Clear rewrites the file as an empty array.
func (s *FileStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(nil); err != nil {
		return usage.NewStorageError("file", "clear", err)
	}
	return nil
}

// Replace atomically rewrites the file with records. Purge uses it to avoid
// a window where the file is empty.
func (s *FileStorage) Replace(ctx context.Context, records []*usage.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(records); err != nil {
		return usage.NewStorageError("file", "replace", err)
	}
	return nil
}

func (s *FileStorage) read() ([]*usage.UsageRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []*usage.UsageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return records, nil
}

func (s *FileStorage) write(records []*usage.UsageRecord) error {
	if records == nil {
		records = []*usage.UsageRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".costkatana-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}

	s.logger.Debug("usage file written", "records", len(records))
	return nil
}
