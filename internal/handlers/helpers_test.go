package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/services"
	"github.com/soltixdb/greenhouse/internal/storage"
)

var errStoreDown = errors.New("connection refused")

// brokenStore fails every call
type brokenStore struct {
	*storage.MemoryStore
}

func (s brokenStore) Append(context.Context, analytics.Reading) (int64, error) {
	return 0, errStoreDown
}

func (s brokenStore) Latest(context.Context, int) ([]storage.Record, error) {
	return nil, errStoreDown
}

func (s brokenStore) History(context.Context, int) ([]storage.Record, error) {
	return nil, errStoreDown
}

func (s brokenStore) Ping(context.Context) error {
	return errStoreDown
}

var testBase = time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)

// seededStore holds n readings 15s apart with temperature 20+i
func seededStore(t *testing.T, n int) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore(0, logging.NewNop())
	for i := 0; i < n; i++ {
		_, err := store.Append(context.Background(), analytics.Reading{
			Temperature:    20 + float64(i),
			Humidity:       60,
			SoilMoisture:   50,
			LightIntensity: 60,
			CreatedAt:      testBase.Add(time.Duration(i) * 15 * time.Second),
		})
		if err != nil {
			t.Fatalf("Failed to seed store: %v", err)
		}
	}
	return store
}

// newTestHandler wires real services over store
func newTestHandler(store storage.ReadingStore, withMonitor bool) *Handler {
	logger := logging.NewNop()
	cfg := config.DefaultConfig()

	analyticsSvc := services.NewAnalyticsService(logger, services.NewStoreSource(store), cfg.Analytics)
	var monitor *services.Monitor
	if withMonitor {
		monitor = services.NewMonitor(logger, analyticsSvc, nil, cfg.Monitor, cfg.Analytics.HistoryLimit, "")
	}
	return New(logger, services.NewReadingService(logger, store), analyticsSvc, monitor, cfg.Report)
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body: %s)", err, body)
	}
}
