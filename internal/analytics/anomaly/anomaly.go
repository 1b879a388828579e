// Package anomaly flags sensor readings that deviate sharply from the rest of
// their series, and series that stopped varying altogether.
package anomaly

import (
	"math"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
)

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeSpike    AnomalyType = "spike"    // Sudden increase
	AnomalyTypeDrop     AnomalyType = "drop"     // Sudden decrease
	AnomalyTypeFlatline AnomalyType = "flatline" // No variation (possibly sensor failure)
)

// Anomaly represents a detected anomaly in a sensor series
type Anomaly struct {
	Index    int                  `json:"index"`
	Time     time.Time            `json:"time"`
	Sensor   analytics.Sensor     `json:"sensor"`
	Value    float64              `json:"value"`
	Expected *analytics.Threshold `json:"expected,omitempty"`
	Score    float64              `json:"score"` // |z| for spikes and drops, 1 for flatlines
	Type     AnomalyType          `json:"type"`
}

// DetectorConfig holds configuration for anomaly detection
type DetectorConfig struct {
	// Threshold is the number of standard deviations a point may stray from the mean
	Threshold float64

	// MinDataPoints minimum number of points required for detection
	MinDataPoints int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:     3.0,
		MinDataPoints: 10,
	}
}

// Detect finds points whose Z-Score exceeds the threshold.
// A series with zero variance is reported as one flatline anomaly per point.
// Series shorter than MinDataPoints are never anomalous.
func Detect(sensor analytics.Sensor, series analytics.Series, config DetectorConfig) []Anomaly {
	n := series.Len()
	if len(series.Times) < n {
		n = len(series.Times)
	}
	if n == 0 || n < config.MinDataPoints {
		return []Anomaly{}
	}
	values := series.Values[:n]

	mean := analytics.Mean(values)
	stdDev := analytics.StdDevPopulation(values)

	// Avoid division by zero
	if stdDev == 0 {
		return detectFlatline(sensor, series, n)
	}

	expected := &analytics.Threshold{
		Min: mean - config.Threshold*stdDev,
		Max: mean + config.Threshold*stdDev,
	}

	results := []Anomaly{}
	for i, v := range values {
		zScore := CalculateZScore(v, mean, stdDev)
		if math.Abs(zScore) <= config.Threshold {
			continue
		}

		anomalyType := AnomalyTypeDrop
		if zScore > 0 {
			anomalyType = AnomalyTypeSpike
		}
		results = append(results, Anomaly{
			Index:    i,
			Time:     series.Times[i],
			Sensor:   sensor,
			Value:    v,
			Expected: expected,
			Score:    math.Abs(zScore),
			Type:     anomalyType,
		})
	}
	return results
}

// detectFlatline reports every point of a constant series
func detectFlatline(sensor analytics.Sensor, series analytics.Series, n int) []Anomaly {
	results := make([]Anomaly, n)
	for i := 0; i < n; i++ {
		results[i] = Anomaly{
			Index:  i,
			Time:   series.Times[i],
			Sensor: sensor,
			Value:  series.Values[i],
			Score:  1.0,
			Type:   AnomalyTypeFlatline,
		}
	}
	return results
}

// CalculateZScore calculates Z-Score for a single value given mean and stdDev
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}
