// Package storage implements usage.Storage backends.
//
// # Variants
//
// The variant is chosen once, at construction:
//
//   - MemoryStorage: process-local slice, lost on exit
//   - FileStorage: a single JSON array file, rewritten on every change
//   - CustomStorage: wraps any caller-supplied usage.Storage
//
// Two adapters ship for use as the custom variant:
//
//   - SQLiteStorage: database/sql with either mattn/go-sqlite3 ("sqlite3",
//     cgo) or modernc.org/sqlite ("sqlite", pure Go)
//   - RedisStorage: go-redis, records kept in insertion-ordered lists
//
// # Retention
//
// Purge removes records older than a cutoff using only Load, Clear and
// Save, so it works against any backend:
//
//	removed, err := storage.Purge(ctx, store, time.Now().AddDate(0, 0, -30))
//
// # Concurrency
//
// Every backend is safe for concurrent use inside one process. FileStorage
// does not coordinate with other processes writing the same path.
package storage
