package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// RedisStorage keeps each record as JSON under <prefix>:record:<id>.
// Insertion order lives in the <prefix>:records list and, per user, in
// <prefix>:user:<userID>.
type RedisStorage struct {
	rdb    redis.UniversalClient
	prefix string
	owned  bool
	logger *logging.Logger
}

// NewRedisStorage connects to cfg.Address and verifies the connection.
func NewRedisStorage(ctx context.Context, cfg config.RedisConfig, logger *logging.Logger) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, usage.NewStorageError("redis", "connect", err)
	}

	s := NewRedisStorageWithClient(rdb, cfg.KeyPrefix, logger)
	s.owned = true
	s.logger.Info("redis storage connected", "address", cfg.Address, "db", cfg.DB)
	return s, nil
}

// NewRedisStorageWithClient uses an existing client. Close does not close
// a client passed in this way.
func NewRedisStorageWithClient(rdb redis.UniversalClient, prefix string, logger *logging.Logger) *RedisStorage {
	if prefix == "" {
		prefix = config.DefaultRedisKeyPrefix
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &RedisStorage{
		rdb:    rdb,
		prefix: prefix,
		logger: logger.With("backend", "redis", "prefix", prefix),
	}
}

func (s *RedisStorage) recordKey(id string) string {
	return fmt.Sprintf("%s:record:%s", s.prefix, id)
}

func (s *RedisStorage) indexKey() string {
	return s.prefix + ":records"
}

func (s *RedisStorage) userKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, userID)
}

// Save writes record. Saving an ID that already exists overwrites the
// stored JSON without changing its position.
func (s *RedisStorage) Save(ctx context.Context, record *usage.UsageRecord) error {
	if record.ID == "" {
		return usage.NewStorageError("redis", "save", errors.New("record id is required"))
	}

	data, err := json.Marshal(record)
	if err != nil {
		return usage.NewStorageError("redis", "save", err)
	}

	key := s.recordKey(record.ID)
	exists, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return usage.NewStorageError("redis", "save", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	if exists == 0 {
		pipe.RPush(ctx, s.indexKey(), record.ID)
		if record.UserID != "" {
			pipe.RPush(ctx, s.userKey(record.UserID), record.ID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return usage.NewStorageError("redis", "save", err)
	}
	return nil
}

// Load returns matching records in insertion order. A user filter reads
// only that user's index list.
func (s *RedisStorage) Load(ctx context.Context, filter *usage.Filter) ([]*usage.UsageRecord, error) {
	index := s.indexKey()
	if filter != nil && filter.UserID != "" {
		index = s.userKey(filter.UserID)
	}

	ids, err := s.rdb.LRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, usage.NewStorageError("redis", "load", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, usage.NewStorageError("redis", "load", err)
	}

	records := make([]*usage.UsageRecord, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record body.
			s.logger.Debug("dangling index entry", "id", ids[i])
			continue
		}
		var rec usage.UsageRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, usage.NewStorageError("redis", "decode", fmt.Errorf("record %s: %w", ids[i], err))
		}
		records = append(records, &rec)
	}
	return filter.Apply(records), nil
}

// Clear deletes every key under the prefix.
func (s *RedisStorage) Clear(ctx context.Context) error {
	var cursor uint64
	pattern := s.prefix + ":*"
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return usage.NewStorageError("redis", "clear", err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return usage.NewStorageError("redis", "clear", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the client when this storage created it.
func (s *RedisStorage) Close() error {
	if s.owned {
		return s.rdb.Close()
	}
	return nil
}
