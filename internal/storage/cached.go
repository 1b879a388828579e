package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/logging"
)

// CachedStore caches Latest and History batches in Redis.
// Each Append bumps a version counter that is part of every cache key, so
// stale batches are never read and simply expire.
type CachedStore struct {
	inner  ReadingStore
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *logging.Logger
}

// NewCachedStore wraps inner with a Redis cache
func NewCachedStore(inner ReadingStore, client *redis.Client, ttl time.Duration, prefix string, logger *logging.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if prefix == "" {
		prefix = "greenhouse"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: logger,
	}
}

func (s *CachedStore) versionKey() string {
	return s.prefix + ":readings:version"
}

func (s *CachedStore) batchKey(kind string, version int64, limit int) string {
	return fmt.Sprintf("%s:readings:%s:v%d:%d", s.prefix, kind, version, limit)
}

// version returns the current cache generation, 0 when unset
func (s *CachedStore) version(ctx context.Context) (int64, error) {
	v, err := s.client.Get(ctx, s.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Append stores the reading and invalidates cached batches
func (s *CachedStore) Append(ctx context.Context, r analytics.Reading) (int64, error) {
	id, err := s.inner.Append(ctx, r)
	if err != nil {
		return 0, err
	}
	if err := s.client.Incr(ctx, s.versionKey()).Err(); err != nil {
		s.logger.Warn("Failed to invalidate reading cache", "error", err)
	}
	return id, nil
}

// Latest returns cached newest-first records, loading from the inner store on a miss
func (s *CachedStore) Latest(ctx context.Context, limit int) ([]Record, error) {
	return s.cached(ctx, "latest", limit, s.inner.Latest)
}

// History returns cached oldest-first records, loading from the inner store on a miss
func (s *CachedStore) History(ctx context.Context, limit int) ([]Record, error) {
	return s.cached(ctx, "history", limit, s.inner.History)
}

func (s *CachedStore) cached(ctx context.Context, kind string, limit int,
	load func(context.Context, int) ([]Record, error),
) ([]Record, error) {
	version, err := s.version(ctx)
	if err != nil {
		s.logger.Warn("Reading cache unavailable", "error", err)
		return load(ctx, limit)
	}

	key := s.batchKey(kind, version, limit)
	if data, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var records []Record
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		s.logger.Warn("Discarding corrupt cache entry", "key", key)
	}

	records, err := load(ctx, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("Failed to cache readings", "key", key, "error", err)
		}
	}
	return records, nil
}

// Ping checks both the inner store and Redis
func (s *CachedStore) Ping(ctx context.Context) error {
	if err := s.inner.Ping(ctx); err != nil {
		return err
	}
	return s.client.Ping(ctx).Err()
}

// Close closes the inner store and the Redis client
func (s *CachedStore) Close() error {
	err := s.inner.Close()
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}
