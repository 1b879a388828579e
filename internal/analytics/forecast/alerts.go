package forecast

import (
	"fmt"
	"math"

	"github.com/soltixdb/greenhouse/internal/analytics"
)

// AlertType is the category of a forecast alert.
type AlertType string

const (
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
)

// Alert is raised when a forecast leaves the optimal range or changes rapidly.
type Alert struct {
	Type    AlertType        `json:"type"`
	Sensor  analytics.Sensor `json:"sensor"`
	Label   string           `json:"label"`
	Message string           `json:"message"`
}

// CheckAlerts returns the alerts for one sensor forecast.
// A zero result from a short series is checked like any other.
func CheckAlerts(spec analytics.SensorSpec, result Result) []Alert {
	label := spec.Sensor.Label()
	var alerts []Alert

	switch {
	case result.NextValue < spec.Threshold.Min:
		alerts = append(alerts, Alert{
			Type:   AlertWarning,
			Sensor: spec.Sensor,
			Label:  label,
			Message: fmt.Sprintf("%s predicted to drop below optimal range (%.1f < %g)",
				label, result.NextValue, spec.Threshold.Min),
		})
	case result.NextValue > spec.Threshold.Max:
		alerts = append(alerts, Alert{
			Type:   AlertWarning,
			Sensor: spec.Sensor,
			Label:  label,
			Message: fmt.Sprintf("%s predicted to exceed optimal range (%.1f > %g)",
				label, result.NextValue, spec.Threshold.Max),
		})
	}

	if math.Abs(result.Trend) > RapidSlope {
		change := "rapid decrease"
		if result.Trend > 0 {
			change = "rapid increase"
		}
		alerts = append(alerts, Alert{
			Type:    AlertInfo,
			Sensor:  spec.Sensor,
			Label:   label,
			Message: fmt.Sprintf("%s showing %s trend", label, change),
		})
	}

	return alerts
}

// GenerateAlerts checks every sensor of specs that has a result, in spec order.
func GenerateAlerts(specs []analytics.SensorSpec, results map[analytics.Sensor]Result) []Alert {
	alerts := []Alert{}
	for _, spec := range specs {
		result, ok := results[spec.Sensor]
		if !ok {
			continue
		}
		alerts = append(alerts, CheckAlerts(spec, result)...)
	}
	return alerts
}
