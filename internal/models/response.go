package models

import (
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/analytics/anomaly"
	"github.com/soltixdb/greenhouse/internal/analytics/forecast"
	"github.com/soltixdb/greenhouse/internal/analytics/stress"
	"github.com/soltixdb/greenhouse/internal/analytics/water"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// CreateReadingResponse is returned after a reading is stored
type CreateReadingResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// Source values tell whether an analysis ran on stored or demo data
const (
	SourceStore     = "store"
	SourceSynthetic = "synthetic"
)

// BatchInfo describes the reading batch an analysis ran on
type BatchInfo struct {
	Source string     `json:"source"`
	Count  int        `json:"count"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
}

// ForecastResponse is the per-sensor forecast with its alerts
type ForecastResponse struct {
	Batch   BatchInfo                 `json:"batch"`
	Sensors []forecast.SensorForecast `json:"sensors"`
	Alerts  []forecast.Alert          `json:"alerts"`
}

// StressResponse wraps the stress summary
type StressResponse struct {
	Batch   BatchInfo      `json:"batch"`
	Summary stress.Summary `json:"summary"`
}

// WaterResponse wraps the water summary
type WaterResponse struct {
	Batch   BatchInfo     `json:"batch"`
	Summary water.Summary `json:"summary"`
}

// SensorDetailResponse is the detail view of one sensor
type SensorDetailResponse struct {
	Batch  BatchInfo              `json:"batch"`
	Detail analytics.SensorDetail `json:"detail"`
	Spikes []anomaly.Anomaly      `json:"spikes"`
}

// ChartPoint is one plotted value
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// SensorChartResponse is a sensor series reduced for plotting
type SensorChartResponse struct {
	Batch     BatchInfo           `json:"batch"`
	Sensor    analytics.Sensor    `json:"sensor"`
	Label     string              `json:"label"`
	Unit      string              `json:"unit"`
	Threshold analytics.Threshold `json:"threshold"`
	Mode      string              `json:"mode"`
	Points    []ChartPoint        `json:"points"`
}

// SnapshotResponse is the result of one monitor cycle
type SnapshotResponse struct {
	Sequence    uint64           `json:"sequence"`
	CompletedAt time.Time        `json:"completed_at"`
	Forecast    ForecastResponse `json:"forecast"`
	Stress      StressResponse   `json:"stress"`
	Water       WaterResponse    `json:"water"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
