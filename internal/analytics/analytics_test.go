package analytics

import (
	"math"
	"testing"
	"time"
)

var testBaseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMean(t *testing.T) {
	if m := Mean(nil); m != 0 {
		t.Errorf("Expected 0 for empty slice, got %v", m)
	}
	if m := Mean([]float64{1, 2, 3, 4}); m != 2.5 {
		t.Errorf("Expected 2.5, got %v", m)
	}
}

func TestStdDevPopulation(t *testing.T) {
	if sd := StdDevPopulation(nil); sd != 0 {
		t.Errorf("Expected 0 for empty slice, got %v", sd)
	}
	// classic example with population stddev 2
	if sd := StdDevPopulation([]float64{2, 4, 4, 4, 5, 5, 7, 9}); sd != 2 {
		t.Errorf("Expected 2, got %v", sd)
	}
	if sd := StdDevPopulation([]float64{7, 7, 7}); sd != 0 {
		t.Errorf("Expected 0 for constant series, got %v", sd)
	}
}

func TestLinearRegression(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		slope     float64
		intercept float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{7}, 0, 7},
		{"two points", []float64{1, 3}, 2, 1},
		{"line", []float64{20, 21, 22, 23, 24}, 1, 20},
		{"decreasing", []float64{10, 8, 6, 4}, -2, 10},
		{"constant", []float64{5, 5, 5, 5, 5}, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := LinearRegression(tt.values)
			if math.Abs(reg.Slope-tt.slope) > 1e-9 || math.Abs(reg.Intercept-tt.intercept) > 1e-9 {
				t.Errorf("Expected %v/%v, got %v/%v", tt.slope, tt.intercept, reg.Slope, reg.Intercept)
			}
		})
	}
}

func TestLinearRegression_ConstantExact(t *testing.T) {
	for _, c := range []float64{0.1, 0.3, 23.7, 61.9, 99.99} {
		for n := 2; n <= 40; n++ {
			xs := make([]float64, n)
			for i := range xs {
				xs[i] = c
			}
			reg := LinearRegression(xs)
			if reg.Slope != 0 || reg.Intercept != c {
				t.Errorf("c=%v n=%d: expected 0/%v, got %v/%v", c, n, c, reg.Slope, reg.Intercept)
			}
			if m := Mean(xs); m != c {
				t.Errorf("c=%v n=%d: expected mean %v, got %v", c, n, c, m)
			}
			if sd := StdDevPopulation(xs); sd != 0 {
				t.Errorf("c=%v n=%d: expected stddev 0, got %v", c, n, sd)
			}
		}
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 10}
	tests := []struct {
		window int
		want   float64
	}{
		{1, 10},
		{2, 7},
		{0, 10},
		{-3, 10},
		{5, 4},
		{50, 4},
	}
	for _, tt := range tests {
		if got := MovingAverage(values, tt.window); got != tt.want {
			t.Errorf("MovingAverage(window=%d) = %v, want %v", tt.window, got, tt.want)
		}
	}
	if got := MovingAverage(nil, 3); got != 0 {
		t.Errorf("Expected 0 for empty slice, got %v", got)
	}
}

func TestSortReadings_StableAndCopy(t *testing.T) {
	readings := []Reading{
		{Temperature: 3, CreatedAt: testBaseTime.Add(2 * time.Minute)},
		{Temperature: 1, CreatedAt: testBaseTime},
		{Temperature: 2, CreatedAt: testBaseTime},
	}
	sorted := SortReadings(readings)

	want := []float64{1, 2, 3}
	for i, r := range sorted {
		if r.Temperature != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], r.Temperature)
		}
	}
	if readings[0].Temperature != 3 {
		t.Error("Expected input to be left untouched")
	}
}

func TestReverseAndExtract(t *testing.T) {
	newestFirst := []Reading{
		{SoilMoisture: 40, CreatedAt: testBaseTime.Add(time.Hour)},
		{SoilMoisture: 35, CreatedAt: testBaseTime},
	}
	series := ExtractSeries(Reverse(newestFirst), SensorSoilMoisture)

	if series.Len() != 2 || len(series.Times) != 2 {
		t.Fatalf("Expected 2 points, got %d/%d", series.Len(), len(series.Times))
	}
	if series.Values[0] != 35 || series.Values[1] != 40 {
		t.Errorf("Expected oldest first, got %v", series.Values)
	}
	if SpanHours(series.Times) != 1 {
		t.Errorf("Expected 1 hour span, got %v", SpanHours(series.Times))
	}
}

func TestParseSensor(t *testing.T) {
	for name, want := range map[string]Sensor{
		"temperature": SensorTemperature,
		"temp":        SensorTemperature,
		"humidity":    SensorHumidity,
		"soil":        SensorSoilMoisture,
		"light":       SensorLightIntensity,
	} {
		got, ok := ParseSensor(name)
		if !ok || got != want {
			t.Errorf("ParseSensor(%q) = %s, %v", name, got, ok)
		}
	}
	if _, ok := ParseSensor("pressure"); ok {
		t.Error("Expected unknown sensor to be rejected")
	}
}

func TestThresholdClassify(t *testing.T) {
	th := Threshold{Min: 15, Max: 35}
	tests := []struct {
		value float64
		want  Status
	}{
		{15, StatusOptimal},
		{25, StatusOptimal},
		{35, StatusOptimal},
		{10, StatusSubOptimal},
		{5, StatusSubOptimal},
		{45, StatusSubOptimal},
		{4.9, StatusCritical},
		{45.1, StatusCritical},
	}
	for _, tt := range tests {
		if got := th.Classify(tt.value); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestDescribeSensor(t *testing.T) {
	readings := []Reading{
		{Humidity: 85, CreatedAt: testBaseTime.Add(2 * time.Minute)},
		{Humidity: 50, CreatedAt: testBaseTime},
		{Humidity: 62, CreatedAt: testBaseTime.Add(time.Minute)},
	}
	spec, _ := FindSpec(DefaultSensorSpecs(), SensorHumidity)
	d := DescribeSensor(readings, spec)

	if d.Current != 85 {
		t.Errorf("Expected latest value 85, got %v", d.Current)
	}
	if d.Min != 50 || d.Max != 85 {
		t.Errorf("Expected min 50 max 85, got %v %v", d.Min, d.Max)
	}
	if math.Abs(d.Avg-65.66666666666667) > 1e-9 {
		t.Errorf("Unexpected average %v", d.Avg)
	}
	if d.Status != StatusSubOptimal {
		t.Errorf("Expected sub-optimal, got %s", d.Status)
	}
	if d.GaugePct != 100 {
		t.Errorf("Expected gauge clamped to 100, got %v", d.GaugePct)
	}
	if d.Label != "Humidity" || d.Unit != "%" || d.Count != 3 {
		t.Errorf("Unexpected metadata %+v", d)
	}
}

func TestDescribeSensor_Empty(t *testing.T) {
	spec, _ := FindSpec(DefaultSensorSpecs(), SensorTemperature)
	d := DescribeSensor(nil, spec)
	if d.Count != 0 || d.Current != 0 || d.Avg != 0 {
		t.Errorf("Expected zero detail, got %+v", d)
	}
	if d.Status != StatusCritical {
		t.Errorf("Expected 0 C to be critical, got %s", d.Status)
	}
}
