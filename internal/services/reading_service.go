package services

import (
	"context"
	"time"

	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/metrics"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/storage"
	"github.com/soltixdb/greenhouse/internal/utils"
)

// Ingest sources used in metrics
const (
	IngestSourceHTTP  = "http"
	IngestSourceQueue = "queue"
)

// ReadingService validates, stores and lists readings
type ReadingService struct {
	logger *logging.Logger
	store  storage.ReadingStore
	now    func() time.Time
}

// NewReadingService creates a ReadingService
func NewReadingService(logger *logging.Logger, store storage.ReadingStore) *ReadingService {
	return &ReadingService{
		logger: logger,
		store:  store,
		now:    time.Now,
	}
}

// Create validates req and stores it, returning the new ID
func (s *ReadingService) Create(ctx context.Context, req *models.ReadingRequest, source string) (int64, error) {
	start := time.Now()

	if missing := req.MissingFields(); len(missing) > 0 {
		metrics.ObserveIngest(source, metrics.ResultInvalid, time.Since(start))
		return 0, NewServiceErrorWithDetails(CodeMissingFields, "Missing required fields",
			map[string]interface{}{"fields": missing})
	}
	if err := req.Validate(); err != nil {
		metrics.ObserveIngest(source, metrics.ResultInvalid, time.Since(start))
		return 0, NewServiceError(CodeInvalidReading, err.Error())
	}

	if coerced := req.CoercedFields(); len(coerced) > 0 {
		s.logger.WithContext(ctx).Debug("Non-numeric sensor values read as 0", "source", source, "fields", coerced)
	}

	reading := req.ToReading(s.now())
	id, err := s.store.Append(ctx, reading)
	if err != nil {
		metrics.ObserveIngest(source, metrics.ResultError, time.Since(start))
		s.logger.WithContext(ctx).Error("Error inserting reading", "source", source, "error", err)
		return 0, wrapStoreError(err)
	}

	metrics.ObserveIngest(source, metrics.ResultSuccess, time.Since(start))
	s.logger.WithContext(ctx).Debug("Reading stored",
		"id", id,
		"source", source,
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
	)
	return id, nil
}

// Latest returns the newest readings first; non-positive limits use 1
func (s *ReadingService) Latest(ctx context.Context, limit int) ([]storage.Record, error) {
	records, err := s.store.Latest(ctx, utils.ClampLimit(limit, utils.DefaultLatestLimit))
	if err != nil {
		s.logger.WithContext(ctx).Error("Error fetching latest readings", "error", err)
		return nil, wrapStoreError(err)
	}
	return records, nil
}

// History returns the newest readings oldest first; non-positive limits use 20
func (s *ReadingService) History(ctx context.Context, limit int) ([]storage.Record, error) {
	records, err := s.store.History(ctx, utils.ClampLimit(limit, utils.DefaultHistoryLimit))
	if err != nil {
		s.logger.WithContext(ctx).Error("Error fetching history", "error", err)
		return nil, wrapStoreError(err)
	}
	return records, nil
}

// Ping checks the store
func (s *ReadingService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
