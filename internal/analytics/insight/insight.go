// Package insight maps analyzer metrics to qualitative, human readable assessments.
package insight

import (
	"fmt"
	"math"
)

// Level is the severity of an insight.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Category groups insights by the metric they describe.
type Category string

const (
	CategoryEnvironmentQuality Category = "environment_quality"
	CategoryAction             Category = "action"
	CategoryStability          Category = "stability"
	CategoryConsumption        Category = "water_consumption"
	CategoryDrying             Category = "drying_risk"
	CategoryEfficiency         Category = "efficiency"
	CategoryConfidence         Category = "forecast_confidence"
)

// Insight is one qualitative assessment. Score is set for insights that carry a 0..100 index.
type Insight struct {
	Category Category `json:"category"`
	Level    Level    `json:"level"`
	Message  string   `json:"message"`
	Score    *float64 `json:"score,omitempty"`
}

// Cut-offs for the qualitative mappings.
const (
	ExcellentComfortPct = 80.0
	ModerateComfortPct  = 50.0
	HighDailyUseLiters  = 5.0
	LowDailyUseLiters   = 1.0
	HighDryingRate      = 5.0
	HighConfidence      = 75.0
	MediumConfidence    = 50.0
)

// ComfortQuality grades a comfort score in percent.
func ComfortQuality(score float64) Insight {
	switch {
	case score > ExcellentComfortPct:
		return Insight{Category: CategoryEnvironmentQuality, Level: LevelSuccess,
			Message: "Excellent! Environment is consistently within optimal ranges."}
	case score > ModerateComfortPct:
		return Insight{Category: CategoryEnvironmentQuality, Level: LevelWarning,
			Message: "Moderate. Some environmental factors are fluctuating."}
	default:
		return Insight{Category: CategoryEnvironmentQuality, Level: LevelDanger,
			Message: "Poor. Plants are under significant environmental stress."}
	}
}

// StressAction recommends what to act on given the primary stressor label.
// An empty label or "None" means nothing needs attention.
func StressAction(stressor string) Insight {
	if stressor == "" || stressor == "None" {
		return Insight{Category: CategoryAction, Level: LevelSuccess,
			Message: "No immediate actions required."}
	}
	return Insight{Category: CategoryAction, Level: LevelWarning,
		Message: fmt.Sprintf("Focus on controlling %s. It is the main cause of stress.", stressor)}
}

// StabilityScore returns max(0, 100 - minutes/2).
func StabilityScore(longestStressMinutes int) float64 {
	return math.Max(0, 100-float64(longestStressMinutes)/2)
}

// StabilityIndex turns the longest stress interval into a 0..100 stability insight.
func StabilityIndex(longestStressMinutes int) Insight {
	score := StabilityScore(longestStressMinutes)
	level := LevelSuccess
	switch {
	case score <= 50:
		level = LevelDanger
	case score <= 80:
		level = LevelWarning
	}
	return Insight{
		Category: CategoryStability,
		Level:    level,
		Message:  fmt.Sprintf("Stability index %.0f/100.", math.Round(score)),
		Score:    &score,
	}
}

// WaterConsumption grades extrapolated daily water use in liters.
func WaterConsumption(dailyLiters float64) Insight {
	switch {
	case dailyLiters > HighDailyUseLiters:
		return Insight{Category: CategoryConsumption, Level: LevelWarning,
			Message: "High water usage detected. Check for leaks or over-watering."}
	case dailyLiters < LowDailyUseLiters:
		return Insight{Category: CategoryConsumption, Level: LevelInfo,
			Message: "Very low water usage. Ensure plants are receiving enough water."}
	default:
		return Insight{Category: CategoryConsumption, Level: LevelSuccess,
			Message: "Water consumption is within normal expected range."}
	}
}

// DryingRisk grades the average drying rate in %/hr.
func DryingRisk(ratePerHour float64) Insight {
	if ratePerHour > HighDryingRate {
		return Insight{Category: CategoryDrying, Level: LevelWarning,
			Message: "High drying rate! Soil is losing moisture very quickly."}
	}
	return Insight{Category: CategoryDrying, Level: LevelInfo,
		Message: "Drying rate is moderate. Soil retains moisture well."}
}

// Efficiency returns clamp(100 - rate*5, 0, 100).
func Efficiency(ratePerHour float64) float64 {
	return math.Max(0, math.Min(100, 100-ratePerHour*5))
}

// EfficiencyScore wraps Efficiency in an insight.
func EfficiencyScore(ratePerHour float64) Insight {
	score := Efficiency(ratePerHour)
	level := LevelSuccess
	switch {
	case score <= 50:
		level = LevelDanger
	case score <= 75:
		level = LevelWarning
	}
	return Insight{
		Category: CategoryEfficiency,
		Level:    level,
		Message:  fmt.Sprintf("Irrigation efficiency %.0f/100.", math.Round(score)),
		Score:    &score,
	}
}

// Band is a coarse confidence bucket.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ConfidenceBand buckets a forecast confidence: high above 75, medium above 50, low otherwise.
func ConfidenceBand(confidence float64) Band {
	switch {
	case confidence > HighConfidence:
		return BandHigh
	case confidence > MediumConfidence:
		return BandMedium
	default:
		return BandLow
	}
}

// Confidence wraps ConfidenceBand in an insight.
func Confidence(confidence float64) Insight {
	level := LevelSuccess
	switch ConfidenceBand(confidence) {
	case BandMedium:
		level = LevelWarning
	case BandLow:
		level = LevelDanger
	}
	return Insight{
		Category: CategoryConfidence,
		Level:    level,
		Message:  fmt.Sprintf("Forecast confidence %.0f%%.", confidence),
		Score:    &confidence,
	}
}
