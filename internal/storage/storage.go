// Package storage persists greenhouse readings and serves the newest-first
// and oldest-first batches the analyzers and dashboard read.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/logging"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("store closed")

// Record is a stored reading with its store-assigned ID
type Record struct {
	ID int64 `json:"id"`
	analytics.Reading
}

// ReadingStore is the persistence boundary for readings
type ReadingStore interface {
	// Append stores a reading and returns its ID
	Append(ctx context.Context, r analytics.Reading) (int64, error)

	// Latest returns up to limit records, newest first
	Latest(ctx context.Context, limit int) ([]Record, error)

	// History returns the same records as Latest, oldest first
	History(ctx context.Context, limit int) ([]Record, error)

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend
	Close() error
}

// Readings strips IDs from records, keeping their order
func Readings(records []Record) []analytics.Reading {
	out := make([]analytics.Reading, len(records))
	for i, rec := range records {
		out[i] = rec.Reading
	}
	return out
}

// reverseRecords returns a reversed copy
func reverseRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[len(records)-1-i] = rec
	}
	return out
}

// NewStore builds the configured store, wrapped in the Redis cache when enabled
func NewStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (ReadingStore, error) {
	var store ReadingStore

	switch cfg.Database.Driver {
	case "memory":
		store = NewMemoryStore(cfg.Database.MaxReadings, logger)
	case "postgres":
		pg, err := NewPostgresStore(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		store = pg
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if !cfg.Cache.Enabled {
		return store, nil
	}

	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("invalid cache.redis_url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		// run uncached rather than refusing to start
		logger.Warn("History cache unavailable, continuing without it", "error", err)
		_ = client.Close()
		return store, nil
	}

	return NewCachedStore(store, client, cfg.Cache.TTL, cfg.Cache.Prefix, logger), nil
}
