package analytics

// Status classifies a single sensor value against its threshold.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusSubOptimal Status = "sub-optimal"
	StatusCritical   Status = "critical"
)

// Classify returns optimal inside the threshold, critical outside its danger
// band and sub-optimal in between.
func (t Threshold) Classify(v float64) Status {
	if t.Contains(v) {
		return StatusOptimal
	}
	if !t.DangerBand().Contains(v) {
		return StatusCritical
	}
	return StatusSubOptimal
}

// GaugePercent places v on the threshold scale, clamped to [0, 100].
func (t Threshold) GaugePercent(v float64) float64 {
	span := t.Max - t.Min
	if span <= 0 {
		return 0
	}
	return Clamp((v-t.Min)/span*100, 0, 100)
}

// SensorDetail summarizes one sensor over a batch.
type SensorDetail struct {
	Sensor    Sensor    `json:"sensor"`
	Label     string    `json:"label"`
	Unit      string    `json:"unit"`
	Threshold Threshold `json:"threshold"`
	Count     int       `json:"count"`
	Current   float64   `json:"current"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Avg       float64   `json:"avg"`
	Status    Status    `json:"status"`
	GaugePct  float64   `json:"gauge_pct"`
}

// DescribeSensor summarizes spec's sensor over readings, in any order.
// Current is the value of the most recent reading. An empty batch yields
// zero statistics with status derived from a value of 0.
func DescribeSensor(readings []Reading, spec SensorSpec) SensorDetail {
	series := ExtractSeries(SortReadings(readings), spec.Sensor)
	detail := SensorDetail{
		Sensor:    spec.Sensor,
		Label:     spec.Sensor.Label(),
		Unit:      spec.Sensor.Unit(),
		Threshold: spec.Threshold,
		Count:     series.Len(),
	}

	if series.Len() > 0 {
		detail.Current = series.Values[series.Len()-1]
		detail.Min = series.Values[0]
		detail.Max = series.Values[0]
		for _, v := range series.Values[1:] {
			if v < detail.Min {
				detail.Min = v
			}
			if v > detail.Max {
				detail.Max = v
			}
		}
		detail.Avg = Mean(series.Values)
	}

	detail.Status = spec.Threshold.Classify(detail.Current)
	detail.GaugePct = spec.Threshold.GaugePercent(detail.Current)
	return detail
}
