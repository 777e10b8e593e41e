package storage

import (
	"context"
	"fmt"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// New builds the storage variant named by cfg.Backend. The sqlite and redis
// adapters are returned wrapped in CustomStorage. The "custom" backend
// cannot be built from configuration; pass an adapter to NewCustomStorage.
func New(ctx context.Context, cfg config.StorageConfig, logger *logging.Logger) (usage.Storage, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.Named("storage")

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStorage(), nil

	case "file":
		return NewFileStorage(cfg.File.Path, logger)

	case "sqlite":
		s, err := NewSQLiteStorage(cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return NewCustomStorage(s, "sqlite", logger), nil

	case "redis":
		s, err := NewRedisStorage(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return NewCustomStorage(s, "redis", logger), nil

	case "custom":
		return nil, usage.NewStorageError("custom", "open",
			fmt.Errorf("custom backend requires an adapter supplied in code"))

	default:
		return nil, usage.NewStorageError(cfg.Backend, "open",
			fmt.Errorf("unknown storage backend %q", cfg.Backend))
	}
}

// Close closes store when it holds resources.
func Close(store usage.Storage) error {
	if c, ok := store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
