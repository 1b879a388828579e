package downsample

import (
	"math"
	"testing"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
)

var base = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func series(values []float64) analytics.Series {
	times := make([]time.Time, len(values))
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Minute)
	}
	return analytics.Series{Values: values, Times: times}
}

func ramp(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	return values
}

func sine(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 50 + 10*math.Sin(float64(i)/50)
	}
	return values
}

func assertChronological(t *testing.T, s analytics.Series) {
	t.Helper()
	if len(s.Values) != len(s.Times) {
		t.Fatalf("values and times differ in length: %d vs %d", len(s.Values), len(s.Times))
	}
	for i := 1; i < len(s.Times); i++ {
		if !s.Times[i].After(s.Times[i-1]) {
			t.Fatalf("times not strictly increasing at %d", i)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"none", ModeNone, false},
		{"lttb", ModeLTTB, false},
		{"minmax", ModeMinMax, false},
		{"avg", ModeAverage, false},
		{"m4", ModeM4, false},
		{"median", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestApply_WithinTarget(t *testing.T) {
	in := series(ramp(50))
	for _, mode := range []Mode{ModeAuto, ModeLTTB, ModeMinMax, ModeAverage, ModeM4} {
		out, used := Apply(in, mode, 100)
		if used != ModeNone {
			t.Errorf("%s: expected ModeNone, got %s", mode, used)
		}
		if out.Len() != 50 {
			t.Errorf("%s: expected 50 points, got %d", mode, out.Len())
		}
	}
}

func TestApply_None(t *testing.T) {
	out, used := Apply(series(ramp(1000)), ModeNone, 10)
	if used != ModeNone || out.Len() != 1000 {
		t.Errorf("expected untouched series, got %d points via %s", out.Len(), used)
	}
}

func TestApply_LTTB(t *testing.T) {
	in := series(sine(1000))
	out, used := Apply(in, ModeLTTB, 100)

	if used != ModeLTTB {
		t.Fatalf("expected lttb, got %s", used)
	}
	if out.Len() != 100 {
		t.Fatalf("expected 100 points, got %d", out.Len())
	}
	if out.Values[0] != in.Values[0] || out.Values[99] != in.Values[999] {
		t.Error("lttb must keep the first and last point")
	}
	assertChronological(t, out)
}

func TestApply_MinMaxKeepsSpike(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = 25
	}
	values[437] = 80

	out, used := Apply(series(values), ModeMinMax, 20)
	if used != ModeMinMax {
		t.Fatalf("expected minmax, got %s", used)
	}
	if out.Len() > 20 {
		t.Errorf("expected at most 20 points, got %d", out.Len())
	}

	found := false
	for _, v := range out.Values {
		if v == 80 {
			found = true
		}
	}
	if !found {
		t.Error("minmax dropped the spike")
	}
	assertChronological(t, out)
}

func TestApply_M4(t *testing.T) {
	in := series(sine(1000))
	out, used := Apply(in, ModeM4, 40)

	if used != ModeM4 {
		t.Fatalf("expected m4, got %s", used)
	}
	if out.Len() > 40 {
		t.Errorf("expected at most 40 points, got %d", out.Len())
	}
	if out.Values[0] != in.Values[0] || out.Values[out.Len()-1] != in.Values[999] {
		t.Error("m4 must keep the first point of the first bucket and the last point of the last")
	}
	assertChronological(t, out)
}

func TestApply_Average(t *testing.T) {
	out, used := Apply(series(ramp(100)), ModeAverage, 10)

	if used != ModeAverage {
		t.Fatalf("expected avg, got %s", used)
	}
	if out.Len() != 10 {
		t.Fatalf("expected 10 points, got %d", out.Len())
	}
	if out.Values[0] != 0 || out.Values[9] != 99 {
		t.Errorf("expected endpoints 0 and 99, got %v and %v", out.Values[0], out.Values[9])
	}
	// first inner bucket holds readings 1..12
	if out.Values[1] != 6.5 {
		t.Errorf("first bucket: got %v, want 6.5", out.Values[1])
	}
	if !out.Times[1].Equal(base.Add(7 * time.Minute)) {
		t.Errorf("bucket time should be its middle reading, got %v", out.Times[1])
	}
	assertChronological(t, out)
}

func TestApply_KeepsEndpoints(t *testing.T) {
	spiky := sine(500)
	for i := 0; i < len(spiky); i += 37 {
		spiky[i] += 40
	}
	inputs := map[string]analytics.Series{
		"ramp":  series(ramp(100)),
		"sine":  series(sine(1000)),
		"spiky": series(spiky),
	}

	for name, in := range inputs {
		first, last := in.Times[0], in.Times[in.Len()-1]
		for _, mode := range []Mode{ModeAuto, ModeLTTB, ModeMinMax, ModeAverage, ModeM4} {
			for _, points := range []int{3, 4, 5, 20, 64} {
				out, used := Apply(in, mode, points)
				if out.Len() > points {
					t.Errorf("%s %s/%d: expected at most %d points, got %d", name, used, points, points, out.Len())
				}
				if !out.Times[0].Equal(first) || !out.Times[out.Len()-1].Equal(last) {
					t.Errorf("%s %s/%d: window %v..%v, want %v..%v",
						name, used, points, out.Times[0], out.Times[out.Len()-1], first, last)
				}
				if out.Values[0] != in.Values[0] || out.Values[out.Len()-1] != in.Values[in.Len()-1] {
					t.Errorf("%s %s/%d: endpoint values changed", name, used, points)
				}
				assertChronological(t, out)
			}
		}
	}
}

func TestApply_AutoChoosesByShape(t *testing.T) {
	_, used := Apply(series(sine(1000)), ModeAuto, 100)
	if used != ModeLTTB {
		t.Errorf("smooth series: expected lttb, got %s", used)
	}

	noisy := make([]float64, 1000)
	for i := range noisy {
		if i%2 == 0 {
			noisy[i] = 10
		} else {
			noisy[i] = 90
		}
	}
	_, used = Apply(series(noisy), ModeAuto, 100)
	if used != ModeMinMax {
		t.Errorf("alternating series: expected minmax, got %s", used)
	}
}

func TestApply_MinimumTarget(t *testing.T) {
	out, used := Apply(series(ramp(10)), ModeLTTB, 0)
	if used != ModeLTTB || out.Len() != 3 {
		t.Errorf("expected 3 points via lttb, got %d via %s", out.Len(), used)
	}
}

func TestSpikiness(t *testing.T) {
	if s := spikiness(ramp(5)); s != 0 {
		t.Errorf("short series should score 0, got %v", s)
	}
	flat := make([]float64, 20)
	if s := spikiness(flat); s != 0 {
		t.Errorf("flat series should score 0, got %v", s)
	}
	if s := spikiness(sine(1000)); s > 0.1 {
		t.Errorf("sine should be smooth, got %v", s)
	}
}
