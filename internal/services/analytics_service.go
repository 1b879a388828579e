package services

import (
	"context"
	"fmt"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/analytics/anomaly"
	"github.com/soltixdb/greenhouse/internal/analytics/downsample"
	"github.com/soltixdb/greenhouse/internal/analytics/forecast"
	"github.com/soltixdb/greenhouse/internal/analytics/stress"
	"github.com/soltixdb/greenhouse/internal/analytics/water"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/metrics"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/utils"
)

// Analyzer names used in logs and metrics
const (
	AnalyzerForecast = "forecast"
	AnalyzerStress   = "stress"
	AnalyzerWater    = "water"
	AnalyzerDetail   = "detail"
	AnalyzerChart    = "chart"
	AnalyzerSnapshot = "snapshot"
)

// AnalyticsService fetches a reading batch and runs the analyzers on it
type AnalyticsService struct {
	logger       *logging.Logger
	source       BatchSource
	specs        []analytics.SensorSpec
	forecastCfg  forecast.Config
	waterCfg     water.Config
	anomalyCfg   anomaly.DetectorConfig
	defaultLimit int
}

// NewAnalyticsService creates an AnalyticsService from the analytics config
func NewAnalyticsService(logger *logging.Logger, source BatchSource, cfg config.AnalyticsConfig) *AnalyticsService {
	forecastCfg := forecast.DefaultConfig()
	if cfg.ForecastHorizon > 0 {
		forecastCfg.Horizon = cfg.ForecastHorizon
	}

	anomalyCfg := anomaly.DefaultConfig()
	if cfg.SpikeThreshold > 0 {
		anomalyCfg.Threshold = cfg.SpikeThreshold
	}

	defaultLimit := cfg.HistoryLimit
	if defaultLimit <= 0 {
		defaultLimit = utils.DefaultAnalysisLimit
	}

	return &AnalyticsService{
		logger:      logger,
		source:      source,
		specs:       cfg.SensorSpecs(),
		forecastCfg: forecastCfg,
		waterCfg: water.Config{
			RiseThreshold:    cfg.RiseThreshold,
			SoilVolumeLiters: cfg.SoilVolumeLiters,
			PumpFlowRateLPM:  cfg.PumpFlowRateLPM,
		},
		anomalyCfg:   anomalyCfg,
		defaultLimit: defaultLimit,
	}
}

// Specs returns the sensor table the service analyzes
func (s *AnalyticsService) Specs() []analytics.SensorSpec {
	return s.specs
}

// fetch loads a batch, clamping limit and recording failures against analyzer
func (s *AnalyticsService) fetch(ctx context.Context, analyzer string, limit int, start time.Time) (Batch, error) {
	batch, err := s.source.Fetch(ctx, utils.ClampLimit(limit, s.defaultLimit))
	if err != nil {
		metrics.ObserveAnalysis(analyzer, metrics.ResultError, time.Since(start))
		s.logger.WithContext(ctx).Error("Failed to fetch reading batch", "analyzer", analyzer, "error", err)
		return Batch{}, wrapStoreError(err)
	}
	return batch, nil
}

func (s *AnalyticsService) observe(analyzer string, batch Batch, start time.Time) {
	result := metrics.ResultSuccess
	if batch.Source == models.SourceSynthetic {
		result = metrics.ResultFallback
	}
	metrics.ObserveAnalysis(analyzer, result, time.Since(start))
}

func (s *AnalyticsService) forecastResponse(batch Batch) models.ForecastResponse {
	report := forecast.ForecastAll(batch.Readings, s.specs, s.forecastCfg)
	return models.ForecastResponse{
		Batch:   batch.Info(),
		Sensors: report.Sensors,
		Alerts:  report.Alerts,
	}
}

func (s *AnalyticsService) stressResponse(batch Batch) models.StressResponse {
	return models.StressResponse{
		Batch:   batch.Info(),
		Summary: stress.Analyze(batch.Readings, s.specs),
	}
}

func (s *AnalyticsService) waterResponse(batch Batch) models.WaterResponse {
	return models.WaterResponse{
		Batch:   batch.Info(),
		Summary: water.AnalyzeReadings(batch.Readings, s.waterCfg),
	}
}

// Forecast runs the forecast engine over the newest limit readings
func (s *AnalyticsService) Forecast(ctx context.Context, limit int) (*models.ForecastResponse, error) {
	start := time.Now()
	batch, err := s.fetch(ctx, AnalyzerForecast, limit, start)
	if err != nil {
		return nil, err
	}

	resp := s.forecastResponse(batch)
	s.observe(AnalyzerForecast, batch, start)
	return &resp, nil
}

// Stress runs the stress analyzer over the newest limit readings
func (s *AnalyticsService) Stress(ctx context.Context, limit int) (*models.StressResponse, error) {
	start := time.Now()
	batch, err := s.fetch(ctx, AnalyzerStress, limit, start)
	if err != nil {
		return nil, err
	}

	resp := s.stressResponse(batch)
	s.observe(AnalyzerStress, batch, start)
	return &resp, nil
}

// Water runs the water analyzer over the newest limit readings
func (s *AnalyticsService) Water(ctx context.Context, limit int) (*models.WaterResponse, error) {
	start := time.Now()
	batch, err := s.fetch(ctx, AnalyzerWater, limit, start)
	if err != nil {
		return nil, err
	}

	resp := s.waterResponse(batch)
	s.observe(AnalyzerWater, batch, start)
	return &resp, nil
}

// resolveSensor maps a sensor name or alias to its configured spec
func (s *AnalyticsService) resolveSensor(name string) (analytics.SensorSpec, error) {
	sensor, ok := analytics.ParseSensor(name)
	if !ok {
		return analytics.SensorSpec{}, NewServiceErrorWithDetails(CodeUnknownSensor,
			fmt.Sprintf("unknown sensor: %s", name),
			map[string]interface{}{"supported": analytics.Sensors})
	}
	spec, ok := analytics.FindSpec(s.specs, sensor)
	if !ok {
		return analytics.SensorSpec{}, NewServiceError(CodeUnknownSensor, fmt.Sprintf("sensor not configured: %s", name))
	}
	return spec, nil
}

// SensorDetail describes one sensor and flags its spikes
func (s *AnalyticsService) SensorDetail(ctx context.Context, name string, limit int) (*models.SensorDetailResponse, error) {
	spec, err := s.resolveSensor(name)
	if err != nil {
		return nil, err
	}
	sensor := spec.Sensor

	start := time.Now()
	batch, err := s.fetch(ctx, AnalyzerDetail, limit, start)
	if err != nil {
		return nil, err
	}

	sorted := analytics.SortReadings(batch.Readings)
	resp := &models.SensorDetailResponse{
		Batch:  batch.Info(),
		Detail: analytics.DescribeSensor(sorted, spec),
		Spikes: anomaly.Detect(sensor, analytics.ExtractSeries(sorted, sensor), s.anomalyCfg),
	}
	s.observe(AnalyzerDetail, batch, start)
	return resp, nil
}

// SensorChart returns one sensor's series reduced to about points values.
// mode is a downsample mode name; empty picks one from the data.
func (s *AnalyticsService) SensorChart(ctx context.Context, name string, limit int, mode string, points int) (*models.SensorChartResponse, error) {
	spec, err := s.resolveSensor(name)
	if err != nil {
		return nil, err
	}
	dsMode, err := downsample.ParseMode(mode)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidParameter, err.Error(),
			map[string]interface{}{"parameter": "mode"})
	}
	if points <= 0 {
		points = downsample.DefaultPoints
	}

	start := time.Now()
	batch, err := s.fetch(ctx, AnalyzerChart, limit, start)
	if err != nil {
		return nil, err
	}

	series := analytics.ExtractSeries(analytics.SortReadings(batch.Readings), spec.Sensor)
	reduced, used := downsample.Apply(series, dsMode, points)

	resp := &models.SensorChartResponse{
		Batch:     batch.Info(),
		Sensor:    spec.Sensor,
		Label:     spec.Sensor.Label(),
		Unit:      spec.Sensor.Unit(),
		Threshold: spec.Threshold,
		Mode:      string(used),
		Points:    make([]models.ChartPoint, reduced.Len()),
	}
	for i := range reduced.Values {
		resp.Points[i] = models.ChartPoint{Time: reduced.Times[i], Value: reduced.Values[i]}
	}
	s.observe(AnalyzerChart, batch, start)
	return resp, nil
}

// Snapshot runs forecast, stress and water analysis on a single batch
func (s *AnalyticsService) Snapshot(ctx context.Context, limit int) (*models.SnapshotResponse, error) {
	start := time.Now()
	batch, err := s.fetch(ctx, AnalyzerSnapshot, limit, start)
	if err != nil {
		return nil, err
	}

	resp := &models.SnapshotResponse{
		CompletedAt: time.Now().UTC(),
		Forecast:    s.forecastResponse(batch),
		Stress:      s.stressResponse(batch),
		Water:       s.waterResponse(batch),
	}
	s.observe(AnalyzerSnapshot, batch, start)
	return resp, nil
}
