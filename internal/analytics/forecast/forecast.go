// Package forecast implements the blended linear-trend forecaster used for
// every greenhouse sensor.
package forecast

import (
	"github.com/soltixdb/greenhouse/internal/analytics"
)

// Config holds configuration for forecasting
type Config struct {
	Horizon          int     // Number of future samples to project
	MinDataPoints    int     // Below this a zero result is returned
	MaxWindow        int     // Upper bound of the moving average window
	RegressionWeight float64 // Weight of the regression estimate in the blend (0-1)
}

// DefaultConfig returns default forecast configuration
func DefaultConfig() Config {
	return Config{
		Horizon:          12,
		MinDataPoints:    5,
		MaxWindow:        10,
		RegressionWeight: 0.7,
	}
}

// Result is the forecast of a single sensor series.
type Result struct {
	NextValue  float64   `json:"next_value"`
	Trend      float64   `json:"trend"`      // regression slope, units per sample
	Confidence float64   `json:"confidence"` // 0-100
	Future     []float64 `json:"future"`
}

// Predict forecasts the next sample of an oldest-first series.
//
// The next value blends the regression estimate with a moving average over the
// last min(MaxWindow, n/3) points. Future points follow the regression line only.
// Fewer than MinDataPoints values yield a zero result with an empty Future.
func Predict(values []float64, config Config) Result {
	config = config.normalize()
	n := len(values)
	if n < config.MinDataPoints {
		return Result{Future: []float64{}}
	}

	reg := analytics.LinearRegression(values)
	rawNext := reg.At(float64(n))

	window := n / 3
	if window > config.MaxWindow {
		window = config.MaxWindow
	}
	movingAvg := analytics.MovingAverage(values, window)

	future := make([]float64, config.Horizon)
	for i := 1; i <= config.Horizon; i++ {
		future[i-1] = reg.At(float64(n + i))
	}

	return Result{
		NextValue:  movingAvg + config.RegressionWeight*(rawNext-movingAvg),
		Trend:      reg.Slope,
		Confidence: analytics.Clamp(100-2*analytics.StdDevPopulation(values), 0, 100),
		Future:     future,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Horizon <= 0 {
		c.Horizon = def.Horizon
	}
	if c.MinDataPoints < 2 {
		c.MinDataPoints = def.MinDataPoints
	}
	if c.MaxWindow < 1 {
		c.MaxWindow = def.MaxWindow
	}
	if c.RegressionWeight <= 0 || c.RegressionWeight > 1 {
		c.RegressionWeight = def.RegressionWeight
	}
	return c
}
