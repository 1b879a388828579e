// Package stress scores how long and how often the greenhouse leaves its
// optimal operating ranges.
package stress

import (
	"math"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/analytics/insight"
)

// Summary is the stress assessment of one batch of readings.
//
// Durations assume a uniform sampling interval: StressHours is the stressed
// share of the batch time span and LongestStressMinutes converts the longest
// run of stressed readings using the average interval.
type Summary struct {
	ComfortScorePct      float64                  `json:"comfort_score_pct"`
	StressHours          float64                  `json:"stress_hours"`
	PrimaryStressor      string                   `json:"primary_stressor"`
	LongestStressMinutes int                      `json:"longest_stress_interval_minutes"`
	PerSensorStressCount map[analytics.Sensor]int `json:"per_sensor_stress_count"`

	TotalReadings    int     `json:"total_readings"`
	StressedReadings int     `json:"stressed_readings"`
	LongestStressRun int     `json:"longest_stress_run"`
	TimeSpanHours    float64 `json:"time_span_hours"`
	StabilityIndex   float64 `json:"stability_index"`

	Insights []insight.Insight `json:"insights"`
}

// Analyze evaluates readings, in any order, against the thresholds in specs.
// A reading is stressed when any sensor is outside its range.
func Analyze(readings []analytics.Reading, specs []analytics.SensorSpec) Summary {
	counts := make(map[analytics.Sensor]int, len(specs))
	for _, spec := range specs {
		counts[spec.Sensor] = 0
	}

	total := len(readings)
	if total == 0 {
		return finish(Summary{
			PrimaryStressor:      analytics.NoStressor,
			PerSensorStressCount: counts,
		})
	}

	sorted := analytics.SortReadings(readings)

	stressed := 0
	run := 0
	longestRun := 0
	for _, r := range sorted {
		isStressed := false
		for _, spec := range specs {
			if !spec.Threshold.Contains(spec.Sensor.Value(r)) {
				counts[spec.Sensor]++
				isStressed = true
			}
		}

		if isStressed {
			stressed++
			run++
			if run > longestRun {
				longestRun = run
			}
		} else {
			run = 0
		}
	}

	spanHours := sorted[total-1].CreatedAt.Sub(sorted[0].CreatedAt).Hours()
	avgIntervalMinutes := spanHours * 60 / float64(total)

	return finish(Summary{
		ComfortScorePct:      float64(total-stressed) / float64(total) * 100,
		StressHours:          float64(stressed) / float64(total) * spanHours,
		PrimaryStressor:      primaryStressor(specs, counts),
		LongestStressMinutes: int(math.Round(float64(longestRun) * avgIntervalMinutes)),
		PerSensorStressCount: counts,
		TotalReadings:        total,
		StressedReadings:     stressed,
		LongestStressRun:     longestRun,
		TimeSpanHours:        spanHours,
	})
}

// primaryStressor returns the label of the sensor with the highest count.
// Ties go to the sensor listed first.
func primaryStressor(specs []analytics.SensorSpec, counts map[analytics.Sensor]int) string {
	best := analytics.NoStressor
	max := 0
	for _, spec := range specs {
		if c := counts[spec.Sensor]; c > max {
			max = c
			best = spec.Sensor.Label()
		}
	}
	return best
}

func finish(s Summary) Summary {
	s.StabilityIndex = insight.StabilityScore(s.LongestStressMinutes)
	s.Insights = []insight.Insight{
		insight.ComfortQuality(s.ComfortScorePct),
		insight.StressAction(s.PrimaryStressor),
		insight.StabilityIndex(s.LongestStressMinutes),
	}
	return s
}
