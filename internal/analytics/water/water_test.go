package water

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/analytics/insight"
)

const epsilon = 1e-9

var testBaseTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// hourlySeries builds a series with one sample per hour
func hourlySeries(values ...float64) analytics.Series {
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = testBaseTime.Add(time.Duration(i) * time.Hour)
	}
	return analytics.Series{Values: values, Times: times}
}

func TestAnalyze_Scenario(t *testing.T) {
	s := Analyze(hourlySeries(30, 32, 33, 45, 44, 40), DefaultConfig())

	if s.IrrigationEventCount != 1 {
		t.Fatalf("Expected 1 irrigation event, got %d", s.IrrigationEventCount)
	}
	if math.Abs(s.Events[0].Liters-2.4) > epsilon {
		t.Errorf("Expected 2.4 liters, got %v", s.Events[0].Liters)
	}
	if !s.Events[0].Time.Equal(testBaseTime.Add(3 * time.Hour)) {
		t.Errorf("Expected event at hour 3, got %v", s.Events[0].Time)
	}
	if math.Abs(s.Events[0].PumpMinutes-0.96) > epsilon {
		t.Errorf("Expected 0.96 pump minutes, got %v", s.Events[0].PumpMinutes)
	}
	if len(s.DryingSamples) != 2 {
		t.Fatalf("Expected 2 drying samples, got %d", len(s.DryingSamples))
	}
	if s.DryingSamples[0] != 1 || s.DryingSamples[1] != 4 {
		t.Errorf("Expected drying samples [1 4], got %v", s.DryingSamples)
	}
	if s.AvgDryingRatePctPerHour != 2.5 {
		t.Errorf("Expected drying rate 2.5, got %v", s.AvgDryingRatePctPerHour)
	}
	// 2.4 L over 5 h -> 11.52 L/day
	if math.Abs(s.DailyWaterUseLiters-11.52) > epsilon {
		t.Errorf("Expected 11.52 L/day, got %v", s.DailyWaterUseLiters)
	}
	if s.AvgCycleTimeHours != nil {
		t.Errorf("Expected no cycle time for a single event, got %v", *s.AvgCycleTimeHours)
	}
	if s.EfficiencyScore != 87.5 {
		t.Errorf("Expected efficiency 87.5, got %v", s.EfficiencyScore)
	}
	if s.Insights[0].Level != insight.LevelWarning {
		t.Errorf("Expected high usage warning, got %+v", s.Insights[0])
	}
}

func TestAnalyze_MonotonicDecreasing(t *testing.T) {
	s := Analyze(hourlySeries(70, 65, 60, 52, 51, 40), DefaultConfig())

	if s.IrrigationEventCount != 0 {
		t.Errorf("Expected no irrigation events, got %d", s.IrrigationEventCount)
	}
	if len(s.DryingSamples) != 5 {
		t.Errorf("Expected 5 drying samples, got %d", len(s.DryingSamples))
	}
	if s.DailyWaterUseLiters != 0 {
		t.Errorf("Expected no water use, got %v", s.DailyWaterUseLiters)
	}
	if s.Insights[1].Level != insight.LevelWarning {
		t.Errorf("Expected high drying risk at 6 %%/hr, got %+v", s.Insights[1])
	}
}

func TestAnalyze_IsolatedRiseJustAboveThreshold(t *testing.T) {
	rise := 5.25
	s := Analyze(hourlySeries(40, 40, 40+rise, 40+rise), DefaultConfig())

	if s.IrrigationEventCount != 1 {
		t.Fatalf("Expected 1 irrigation event, got %d", s.IrrigationEventCount)
	}
	want := 20 * (rise / 100)
	if math.Abs(s.Events[0].Liters-want) > epsilon {
		t.Errorf("Expected %v liters, got %v", want, s.Events[0].Liters)
	}
}

func TestAnalyze_RiseAtThresholdIsNoise(t *testing.T) {
	s := Analyze(hourlySeries(40, 45, 45, 50), DefaultConfig())
	if s.IrrigationEventCount != 0 {
		t.Errorf("Expected rises of exactly 5 to be ignored, got %d events", s.IrrigationEventCount)
	}
	if len(s.DryingSamples) != 0 {
		t.Errorf("Expected no drying samples, got %v", s.DryingSamples)
	}
}

func TestAnalyze_CycleTime(t *testing.T) {
	s := Analyze(hourlySeries(30, 40, 38, 50, 48, 60, 58), DefaultConfig())

	if s.IrrigationEventCount != 3 {
		t.Fatalf("Expected 3 events, got %d", s.IrrigationEventCount)
	}
	if s.AvgCycleTimeHours == nil {
		t.Fatal("Expected cycle time")
	}
	if *s.AvgCycleTimeHours != 2 {
		t.Errorf("Expected 2 hour cycle, got %v", *s.AvgCycleTimeHours)
	}
}

func TestAnalyze_NonPositiveElapsedSkipped(t *testing.T) {
	series := analytics.Series{
		Values: []float64{50, 48, 46},
		Times:  []time.Time{testBaseTime, testBaseTime, testBaseTime.Add(30 * time.Minute)},
	}
	s := Analyze(series, DefaultConfig())

	if len(s.DryingSamples) != 1 {
		t.Fatalf("Expected the duplicate timestamp to be skipped, got %v", s.DryingSamples)
	}
	if s.DryingSamples[0] != 4 {
		t.Errorf("Expected 4 %%/hr, got %v", s.DryingSamples[0])
	}
	for _, v := range []float64{s.AvgDryingRatePctPerHour, s.DailyWaterUseLiters, s.EfficiencyScore} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("Expected finite metrics, got %v", v)
		}
	}
}

func TestAnalyze_EmptyAndSingle(t *testing.T) {
	for _, series := range []analytics.Series{{}, hourlySeries(42)} {
		s := Analyze(series, DefaultConfig())
		if s.IrrigationEventCount != 0 || s.DailyWaterUseLiters != 0 || s.AvgDryingRatePctPerHour != 0 {
			t.Errorf("Expected zero summary, got %+v", s)
		}
		if s.AvgCycleTimeHours != nil {
			t.Error("Expected nil cycle time")
		}
		if s.EfficiencyScore != 100 {
			t.Errorf("Expected efficiency 100, got %v", s.EfficiencyScore)
		}
		if s.Insights[0].Level != insight.LevelInfo {
			t.Errorf("Expected low usage caution, got %+v", s.Insights[0])
		}
	}
}

func TestAnalyze_CustomConfig(t *testing.T) {
	config := Config{RiseThreshold: 1, SoilVolumeLiters: 100, PumpFlowRateLPM: 10}
	s := Analyze(hourlySeries(40, 42), config)

	if s.IrrigationEventCount != 1 {
		t.Fatalf("Expected 1 event, got %d", s.IrrigationEventCount)
	}
	if s.Events[0].Liters != 2 || s.Events[0].PumpMinutes != 0.2 {
		t.Errorf("Unexpected event %+v", s.Events[0])
	}
}

func TestAnalyzeReadings_SortsFirst(t *testing.T) {
	values := []float64{30, 32, 33, 45, 44, 40}
	readings := make([]analytics.Reading, len(values))
	for i, v := range values {
		readings[i] = analytics.Reading{SoilMoisture: v, CreatedAt: testBaseTime.Add(time.Duration(i) * time.Hour)}
	}

	got := AnalyzeReadings(analytics.Reverse(readings), DefaultConfig())
	want := Analyze(hourlySeries(values...), DefaultConfig())

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected newest-first batch to be reordered:\n%+v\n%+v", got, want)
	}
}
