// Package water detects irrigation and drying in a soil moisture series and
// estimates water consumption.
package water

import (
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/analytics/insight"
)

// Config holds the volumetric model constants.
type Config struct {
	RiseThreshold    float64 // Moisture rise in percentage points that counts as irrigation
	SoilVolumeLiters float64 // Liters of water that raise the bed by 100 points
	PumpFlowRateLPM  float64 // Pump throughput in liters per minute
}

// DefaultConfig returns default water model configuration
func DefaultConfig() Config {
	return Config{
		RiseThreshold:    5,
		SoilVolumeLiters: 20,
		PumpFlowRateLPM:  2.5,
	}
}

// IrrigationEvent is one detected watering.
type IrrigationEvent struct {
	Time        time.Time `json:"time"`
	Rise        float64   `json:"rise"`
	Liters      float64   `json:"liters"`
	PumpMinutes float64   `json:"pump_minutes"`
}

// Summary is the water assessment of one soil moisture series.
type Summary struct {
	DailyWaterUseLiters     float64 `json:"daily_water_use_liters"`
	IrrigationEventCount    int     `json:"irrigation_event_count"`
	AvgDryingRatePctPerHour float64 `json:"avg_drying_rate_pct_per_hour"`
	// AvgCycleTimeHours is nil when fewer than two irrigation events were seen.
	AvgCycleTimeHours *float64 `json:"avg_cycle_time_hours"`

	TotalWaterLiters float64           `json:"total_water_liters"`
	TimeSpanHours    float64           `json:"time_span_hours"`
	Events           []IrrigationEvent `json:"events"`
	DryingSamples    []float64         `json:"drying_samples"`
	EfficiencyScore  float64           `json:"efficiency_score"`

	Insights []insight.Insight `json:"insights"`
}

// Analyze walks consecutive pairs of an oldest-first series.
// A rise above RiseThreshold is an irrigation event and any drop is a drying
// sample; pairs without positive elapsed time add no drying sample.
// Daily use extrapolates the window linearly, assuming uniform sampling.
func Analyze(series analytics.Series, config Config) Summary {
	config = config.normalize()

	s := Summary{
		Events:        []IrrigationEvent{},
		DryingSamples: []float64{},
	}

	n := series.Len()
	if len(series.Times) < n {
		n = len(series.Times)
	}

	for i := 1; i < n; i++ {
		diff := series.Values[i] - series.Values[i-1]
		switch {
		case diff > config.RiseThreshold:
			liters := config.SoilVolumeLiters * (diff / 100)
			s.TotalWaterLiters += liters
			s.Events = append(s.Events, IrrigationEvent{
				Time:        series.Times[i],
				Rise:        diff,
				Liters:      liters,
				PumpMinutes: liters / config.PumpFlowRateLPM,
			})
		case diff < 0:
			hours := series.Times[i].Sub(series.Times[i-1]).Hours()
			if hours > 0 {
				s.DryingSamples = append(s.DryingSamples, -diff/hours)
			}
		}
	}

	s.TimeSpanHours = analytics.SpanHours(series.Times[:n])
	s.IrrigationEventCount = len(s.Events)
	s.AvgDryingRatePctPerHour = analytics.Mean(s.DryingSamples)

	if s.TimeSpanHours > 0 {
		s.DailyWaterUseLiters = s.TotalWaterLiters / s.TimeSpanHours * 24
	}
	if s.IrrigationEventCount > 1 {
		cycle := s.TimeSpanHours / float64(s.IrrigationEventCount)
		s.AvgCycleTimeHours = &cycle
	}

	s.EfficiencyScore = insight.Efficiency(s.AvgDryingRatePctPerHour)
	s.Insights = []insight.Insight{
		insight.WaterConsumption(s.DailyWaterUseLiters),
		insight.DryingRisk(s.AvgDryingRatePctPerHour),
		insight.EfficiencyScore(s.AvgDryingRatePctPerHour),
	}
	return s
}

// AnalyzeReadings sorts a batch and analyzes its soil moisture series.
func AnalyzeReadings(readings []analytics.Reading, config Config) Summary {
	sorted := analytics.SortReadings(readings)
	return Analyze(analytics.ExtractSeries(sorted, analytics.SensorSoilMoisture), config)
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.RiseThreshold <= 0 {
		c.RiseThreshold = def.RiseThreshold
	}
	if c.SoilVolumeLiters <= 0 {
		c.SoilVolumeLiters = def.SoilVolumeLiters
	}
	if c.PumpFlowRateLPM <= 0 {
		c.PumpFlowRateLPM = def.PumpFlowRateLPM
	}
	return c
}
