package forecast

import (
	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/analytics/insight"
)

// SensorForecast is the forecast of one sensor with its display classification.
type SensorForecast struct {
	Sensor         analytics.Sensor    `json:"sensor"`
	Label          string              `json:"label"`
	Threshold      analytics.Threshold `json:"threshold"`
	Current        float64             `json:"current"`
	Result         Result              `json:"result"`
	Direction      Direction           `json:"direction"`
	ConfidenceBand insight.Band        `json:"confidence_band"`
}

// Report is the forecast of every configured sensor plus the alerts they raise.
type Report struct {
	Sensors []SensorForecast `json:"sensors"`
	Alerts  []Alert          `json:"alerts"`
}

// ForecastAll forecasts every sensor in specs from one batch of readings.
// The batch is put in chronological order first.
func ForecastAll(readings []analytics.Reading, specs []analytics.SensorSpec, config Config) Report {
	sorted := analytics.SortReadings(readings)

	report := Report{Sensors: make([]SensorForecast, 0, len(specs))}
	results := make(map[analytics.Sensor]Result, len(specs))

	for _, spec := range specs {
		series := analytics.ExtractSeries(sorted, spec.Sensor)
		result := Predict(series.Values, config)
		results[spec.Sensor] = result

		current := 0.0
		if series.Len() > 0 {
			current = series.Values[series.Len()-1]
		}

		report.Sensors = append(report.Sensors, SensorForecast{
			Sensor:         spec.Sensor,
			Label:          spec.Sensor.Label(),
			Threshold:      spec.Threshold,
			Current:        current,
			Result:         result,
			Direction:      Classify(result.Trend),
			ConfidenceBand: insight.ConfidenceBand(result.Confidence),
		})
	}

	report.Alerts = GenerateAlerts(specs, results)
	return report
}
