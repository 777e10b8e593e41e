package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// SQLiteStorage stores usage records in a SQLite database. It is meant to
// be plugged in as the custom storage variant.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *logging.Logger
}

// NewSQLiteStorage opens the database at cfg.Path with cfg.Driver and
// creates the schema when missing.
func NewSQLiteStorage(cfg config.SQLiteConfig, logger *logging.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.Driver == "" {
		cfg.Driver = config.DefaultSQLiteDriver
	}
	if cfg.Driver != "sqlite" && cfg.Driver != "sqlite3" {
		return nil, usage.NewStorageError("sqlite", "open", fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
	if cfg.Path == "" {
		return nil, usage.NewStorageError("sqlite", "open", fmt.Errorf("path is required"))
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, usage.NewStorageError("sqlite", "open", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: logger.With("backend", "sqlite", "driver", cfg.Driver),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("sqlite storage initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return usage.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		ms := s.config.BusyTimeout.Milliseconds()
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", ms)); err != nil {
			return usage.NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return usage.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return usage.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return usage.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return usage.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Save inserts record, replacing any row with the same ID.
func (s *SQLiteStorage) Save(ctx context.Context, record *usage.UsageRecord) error {
	args, err := recordArgs(record)
	if err != nil {
		return usage.NewStorageError("sqlite", "save", err)
	}
	if _, err := s.db.ExecContext(ctx, insertRecord, args...); err != nil {
		return usage.NewStorageError("sqlite", "save", err)
	}
	return nil
}

// Load returns matching records in insertion order.
func (s *SQLiteStorage) Load(ctx context.Context, filter *usage.Filter) ([]*usage.UsageRecord, error) {
	where, args := buildWhereClause(filter)
	query := selectRecords + where + " ORDER BY seq ASC"
	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, usage.NewStorageError("sqlite", "load", err)
	}
	defer rows.Close()

	var records []*usage.UsageRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, usage.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, usage.NewStorageError("sqlite", "load", err)
	}
	return records, nil
}

// Clear deletes every record.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM usage_records;"); err != nil {
		return usage.NewStorageError("sqlite", "clear", err)
	}
	return nil
}

// Replace swaps the table contents for records inside one transaction.
func (s *SQLiteStorage) Replace(ctx context.Context, records []*usage.UsageRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return usage.NewStorageError("sqlite", "replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM usage_records;"); err != nil {
		return usage.NewStorageError("sqlite", "replace", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return usage.NewStorageError("sqlite", "replace", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		args, err := recordArgs(rec)
		if err != nil {
			return usage.NewStorageError("sqlite", "replace", err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return usage.NewStorageError("sqlite", "replace", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return usage.NewStorageError("sqlite", "replace", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func recordArgs(rec *usage.UsageRecord) ([]any, error) {
	tags, err := marshalNullable(rec.Tags, len(rec.Tags) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	meta, err := marshalNullable(rec.Metadata, len(rec.Metadata) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return []any{
		rec.ID, string(rec.Provider), rec.Model,
		rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens, rec.EstimatedCost,
		nullString(rec.Prompt), nullString(rec.Completion),
		rec.Timestamp.UnixNano(), nullString(rec.UserID), nullString(rec.SessionID),
		tags, rec.ResponseTime.Milliseconds(), meta,
	}, nil
}

func buildWhereClause(filter *usage.Filter) (string, []any) {
	if filter == nil {
		return "", nil
	}

	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Provider != "" {
		conditions = append(conditions, "provider = ?")
		args = append(args, string(filter.Provider))
	}
	if filter.Model != "" {
		conditions = append(conditions, "model = ?")
		args = append(args, filter.Model)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "timestamp_ns >= ?")
		args = append(args, filter.StartDate.UnixNano())
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "timestamp_ns <= ?")
		args = append(args, filter.EndDate.UnixNano())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*usage.UsageRecord, error) {
	var (
		rec                         usage.UsageRecord
		provider                    string
		prompt, completion          sql.NullString
		userID, sessionID           sql.NullString
		tags, metadata              sql.NullString
		timestampNs, responseTimeMs int64
	)

	err := row.Scan(
		&rec.ID, &provider, &rec.Model,
		&rec.PromptTokens, &rec.CompletionTokens, &rec.TotalTokens, &rec.EstimatedCost,
		&prompt, &completion,
		&timestampNs, &userID, &sessionID, &tags, &responseTimeMs, &metadata,
	)
	if err != nil {
		return nil, err
	}

	rec.Provider = usage.Provider(provider)
	rec.Prompt = prompt.String
	rec.Completion = completion.String
	rec.Timestamp = time.Unix(0, timestampNs).UTC()
	rec.UserID = userID.String
	rec.SessionID = sessionID.String
	rec.ResponseTime = time.Duration(responseTimeMs) * time.Millisecond

	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &rec.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func marshalNullable(v any, empty bool) (sql.NullString, error) {
	if empty {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
