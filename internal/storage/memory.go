package storage

import (
	"context"
	"sync"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/logging"
)

// MemoryStore keeps readings in process, ordered by timestamp.
// When maxReadings is positive the oldest readings are evicted past that size.
type MemoryStore struct {
	mu          sync.RWMutex
	records     orderedRecords
	nextID      int64
	maxReadings int
	closed      bool
	logger      *logging.Logger
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(maxReadings int, logger *logging.Logger) *MemoryStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Info("Memory store initialized", "max_readings", maxReadings)

	return &MemoryStore{
		maxReadings: maxReadings,
		logger:      logger,
	}
}

// Append stores r and assigns the next ID
func (s *MemoryStore) Append(ctx context.Context, r analytics.Reading) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	s.nextID++
	s.records.add(Record{ID: s.nextID, Reading: r})

	if s.maxReadings > 0 && s.records.len() > s.maxReadings {
		excess := s.records.len() - s.maxReadings
		s.records.trimOldest(excess)
		s.logger.Debug("Evicted oldest readings", "count", excess)
	}

	return s.nextID, nil
}

// Latest returns up to limit records, newest first
func (s *MemoryStore) Latest(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return []Record{}, nil
	}
	return s.records.newest(limit), nil
}

// History returns up to limit of the newest records, oldest first
func (s *MemoryStore) History(ctx context.Context, limit int) ([]Record, error) {
	latest, err := s.Latest(ctx, limit)
	if err != nil {
		return nil, err
	}
	return reverseRecords(latest), nil
}

// Len returns the number of stored readings
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.len()
}

// Ping reports whether the store is open
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
