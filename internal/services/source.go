package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/storage"
)

// Batch is a chronologically ordered set of readings and where it came from
type Batch struct {
	Readings []analytics.Reading
	Source   string
}

// Info summarizes the batch for API responses
func (b Batch) Info() models.BatchInfo {
	info := models.BatchInfo{Source: b.Source, Count: len(b.Readings)}
	if len(b.Readings) > 0 {
		from := b.Readings[0].CreatedAt
		to := b.Readings[len(b.Readings)-1].CreatedAt
		info.From = &from
		info.To = &to
	}
	return info
}

// BatchSource supplies the readings the analyzers run on
type BatchSource interface {
	Fetch(ctx context.Context, limit int) (Batch, error)
}

// StoreSource reads the newest readings from a store, oldest first
type StoreSource struct {
	store storage.ReadingStore
}

// NewStoreSource creates a StoreSource
func NewStoreSource(store storage.ReadingStore) *StoreSource {
	return &StoreSource{store: store}
}

// Fetch returns up to limit of the newest readings, oldest first
func (s *StoreSource) Fetch(ctx context.Context, limit int) (Batch, error) {
	records, err := s.store.History(ctx, limit)
	if err != nil {
		return Batch{}, err
	}
	return Batch{Readings: storage.Readings(records), Source: models.SourceStore}, nil
}

// SyntheticSource generates demo readings: one every 15 seconds up to now,
// each sensor uniform inside its demo band
type SyntheticSource struct {
	mu   sync.Mutex
	rng  *rand.Rand
	now  func() time.Time
	step time.Duration
}

// NewSyntheticSource creates a SyntheticSource; seed makes output reproducible
func NewSyntheticSource(seed int64) *SyntheticSource {
	return &SyntheticSource{
		rng:  rand.New(rand.NewSource(seed)),
		now:  time.Now,
		step: 15 * time.Second,
	}
}

// Generate returns limit readings, oldest first, ending at now
func (s *SyntheticSource) Generate(limit int) []analytics.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	readings := make([]analytics.Reading, limit)
	// generated newest first then flipped, matching how stored batches are read
	for i := 0; i < limit; i++ {
		readings[i] = analytics.Reading{
			Temperature:    20 + s.rng.Float64()*10,
			Humidity:       50 + s.rng.Float64()*20,
			SoilMoisture:   30 + s.rng.Float64()*40,
			LightIntensity: 10 + s.rng.Float64()*90,
			CreatedAt:      now.Add(-time.Duration(i) * s.step),
		}
	}
	return analytics.Reverse(readings)
}

// Fetch implements BatchSource
func (s *SyntheticSource) Fetch(ctx context.Context, limit int) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	return Batch{Readings: s.Generate(limit), Source: models.SourceSynthetic}, nil
}

// FallbackSource serves from primary and switches to fallback when primary fails
type FallbackSource struct {
	primary  BatchSource
	fallback BatchSource
	logger   *logging.Logger
}

// NewFallbackSource creates a FallbackSource
func NewFallbackSource(primary, fallback BatchSource, logger *logging.Logger) *FallbackSource {
	if logger == nil {
		logger = logging.Global()
	}
	return &FallbackSource{primary: primary, fallback: fallback, logger: logger}
}

// Fetch implements BatchSource
func (s *FallbackSource) Fetch(ctx context.Context, limit int) (Batch, error) {
	batch, err := s.primary.Fetch(ctx, limit)
	if err == nil {
		return batch, nil
	}
	if ctx.Err() != nil {
		return Batch{}, err
	}

	s.logger.WithContext(ctx).Warn("Primary batch source failed, using demo readings", "error", err)
	return s.fallback.Fetch(ctx, limit)
}
