// Package analytics provides the greenhouse reading model and the series
// utilities shared by the forecast, stress, water and anomaly analyzers.
package analytics

import (
	"sort"
	"time"
)

// Reading is one timestamped snapshot of all four greenhouse sensors.
type Reading struct {
	Temperature    float64   `json:"temperature"`
	Humidity       float64   `json:"humidity"`
	SoilMoisture   float64   `json:"soil_moisture"`
	LightIntensity float64   `json:"light_intensity"`
	CreatedAt      time.Time `json:"created_at"`
}

// Sensor identifies one of the four sensor fields of a Reading.
type Sensor string

const (
	SensorTemperature    Sensor = "temperature"
	SensorHumidity       Sensor = "humidity"
	SensorSoilMoisture   Sensor = "soil_moisture"
	SensorLightIntensity Sensor = "light_intensity"
)

// NoStressor is reported when no sensor was ever out of range.
const NoStressor = "None"

// Sensors lists every sensor in the fixed enumeration order used for tie-breaks.
var Sensors = []Sensor{SensorTemperature, SensorHumidity, SensorSoilMoisture, SensorLightIntensity}

// Label returns the human readable sensor name ("Soil Moisture").
func (s Sensor) Label() string {
	switch s {
	case SensorTemperature:
		return "Temperature"
	case SensorHumidity:
		return "Humidity"
	case SensorSoilMoisture:
		return "Soil Moisture"
	case SensorLightIntensity:
		return "Light Intensity"
	default:
		return string(s)
	}
}

// Unit returns the display unit of the sensor.
func (s Sensor) Unit() string {
	if s == SensorTemperature {
		return "°C"
	}
	return "%"
}

// Value extracts this sensor's field from a reading.
func (s Sensor) Value(r Reading) float64 {
	switch s {
	case SensorTemperature:
		return r.Temperature
	case SensorHumidity:
		return r.Humidity
	case SensorSoilMoisture:
		return r.SoilMoisture
	case SensorLightIntensity:
		return r.LightIntensity
	default:
		return 0
	}
}

// ParseSensor resolves a sensor name, accepting the short aliases used by the dashboard.
func ParseSensor(name string) (Sensor, bool) {
	switch name {
	case "temperature", "temp":
		return SensorTemperature, true
	case "humidity":
		return SensorHumidity, true
	case "soil_moisture", "soil":
		return SensorSoilMoisture, true
	case "light_intensity", "light":
		return SensorLightIntensity, true
	default:
		return "", false
	}
}

// Threshold is the optimal operating range of a sensor.
type Threshold struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// DangerMargin widens a threshold into the band used for critical classification.
const DangerMargin = 10.0

// Contains reports whether v lies inside [Min, Max].
func (t Threshold) Contains(v float64) bool {
	return v >= t.Min && v <= t.Max
}

// DangerBand returns [Min-10, Max+10].
func (t Threshold) DangerBand() Threshold {
	return Threshold{Min: t.Min - DangerMargin, Max: t.Max + DangerMargin}
}

// SensorSpec binds a sensor to its optimal range.
type SensorSpec struct {
	Sensor    Sensor    `json:"sensor"`
	Threshold Threshold `json:"threshold"`
}

// DefaultSensorSpecs returns the greenhouse optimal ranges in enumeration order.
func DefaultSensorSpecs() []SensorSpec {
	return []SensorSpec{
		{Sensor: SensorTemperature, Threshold: Threshold{Min: 15, Max: 35}},
		{Sensor: SensorHumidity, Threshold: Threshold{Min: 40, Max: 80}},
		{Sensor: SensorSoilMoisture, Threshold: Threshold{Min: 30, Max: 70}},
		{Sensor: SensorLightIntensity, Threshold: Threshold{Min: 20, Max: 100}},
	}
}

// FindSpec returns the spec for sensor s.
func FindSpec(specs []SensorSpec, s Sensor) (SensorSpec, bool) {
	for _, spec := range specs {
		if spec.Sensor == s {
			return spec, true
		}
	}
	return SensorSpec{}, false
}

// Series is a single-sensor value sequence paired 1:1 with its timestamps.
type Series struct {
	Values []float64
	Times  []time.Time
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Values)
}

// ExtractSeries builds the series of one sensor from readings, keeping their order.
func ExtractSeries(readings []Reading, s Sensor) Series {
	series := Series{
		Values: make([]float64, len(readings)),
		Times:  make([]time.Time, len(readings)),
	}
	for i, r := range readings {
		series.Values[i] = s.Value(r)
		series.Times[i] = r.CreatedAt
	}
	return series
}

// SortReadings returns a chronologically ordered copy of readings.
// Readings with equal timestamps keep their arrival order.
func SortReadings(readings []Reading) []Reading {
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// Reverse returns a reversed copy of readings (newest-first to oldest-first).
func Reverse(readings []Reading) []Reading {
	out := make([]Reading, len(readings))
	for i, r := range readings {
		out[len(readings)-1-i] = r
	}
	return out
}

// SpanHours returns the hours between the first and last time of a chronologically ordered slice.
func SpanHours(times []time.Time) float64 {
	if len(times) < 2 {
		return 0
	}
	return times[len(times)-1].Sub(times[0]).Hours()
}
