package services

import (
	"context"
	"errors"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/storage"
)

var errStoreDown = errors.New("connection refused")

var testBase = time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)

// failingStore is a ReadingStore whose every call fails
type failingStore struct{}

func (failingStore) Append(context.Context, analytics.Reading) (int64, error) { return 0, errStoreDown }
func (failingStore) Latest(context.Context, int) ([]storage.Record, error)   { return nil, errStoreDown }
func (failingStore) History(context.Context, int) ([]storage.Record, error)  { return nil, errStoreDown }
func (failingStore) Ping(context.Context) error                              { return errStoreDown }
func (failingStore) Close() error                                            { return nil }

// blockingSource blocks until the context ends, then reports why
type blockingSource struct {
	started chan struct{}
}

func (s *blockingSource) Fetch(ctx context.Context, limit int) (Batch, error) {
	s.started <- struct{}{}
	<-ctx.Done()
	return Batch{}, ctx.Err()
}

// seedStore fills a memory store with n readings 15 seconds apart.
// Temperature climbs 1 degree per reading from 20.
func seedStore(n int) *storage.MemoryStore {
	store := storage.NewMemoryStore(0, logging.NewNop())
	for i := 0; i < n; i++ {
		_, _ = store.Append(context.Background(), analytics.Reading{
			Temperature:    20 + float64(i),
			Humidity:       60,
			SoilMoisture:   50,
			LightIntensity: 60,
			CreatedAt:      testBase.Add(time.Duration(i) * 15 * time.Second),
		})
	}
	return store
}

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.DefaultConfig().Analytics
}
