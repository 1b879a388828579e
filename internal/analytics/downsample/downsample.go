// Package downsample reduces a sensor series to a chart-sized number of points.
package downsample

import (
	"fmt"
	"math"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
)

// Mode selects the reduction algorithm
type Mode string

const (
	// ModeNone returns the series unchanged
	ModeNone Mode = "none"
	// ModeAuto picks an algorithm from the shape of the series
	ModeAuto Mode = "auto"
	// ModeLTTB is Largest-Triangle-Three-Buckets
	ModeLTTB Mode = "lttb"
	// ModeMinMax keeps the min and max of every bucket
	ModeMinMax Mode = "minmax"
	// ModeAverage replaces every bucket with its mean
	ModeAverage Mode = "avg"
	// ModeM4 keeps first, min, max and last of every bucket
	ModeM4 Mode = "m4"
)

// DefaultPoints is the target size when none is requested
const DefaultPoints = 200

// ParseMode resolves a mode name; an empty name is ModeAuto
func ParseMode(name string) (Mode, error) {
	switch m := Mode(name); m {
	case "":
		return ModeAuto, nil
	case ModeNone, ModeAuto, ModeLTTB, ModeMinMax, ModeAverage, ModeM4:
		return m, nil
	default:
		return "", fmt.Errorf("unknown downsampling mode: %s", name)
	}
}

// Apply reduces series to about points values. Series already within the
// target are returned as is. The returned mode is the algorithm that ran,
// ModeNone when nothing was dropped.
func Apply(series analytics.Series, mode Mode, points int) (analytics.Series, Mode) {
	if points < 3 {
		points = 3
	}
	if mode == ModeNone || series.Len() <= points {
		return series, ModeNone
	}
	if mode == ModeAuto {
		mode = choose(series.Values)
	}

	switch mode {
	case ModeAverage:
		return average(series, points), ModeAverage
	case ModeMinMax:
		return pick(series, minmax(series.Values, points)), ModeMinMax
	case ModeM4:
		return pick(series, m4(series.Values, points)), ModeM4
	default:
		return pick(series, lttb(series.Values, points)), ModeLTTB
	}
}

func pick(series analytics.Series, indices []int) analytics.Series {
	out := analytics.Series{
		Values: make([]float64, len(indices)),
		Times:  make([]time.Time, len(indices)),
	}
	for i, idx := range indices {
		out.Values[i] = series.Values[idx]
		out.Times[i] = series.Times[idx]
	}
	return out
}

// choose keeps peaks for spiky series and shape for smooth ones
func choose(values []float64) Mode {
	switch s := spikiness(values); {
	case s > 0.2:
		return ModeMinMax
	case s > 0.1:
		return ModeM4
	default:
		return ModeLTTB
	}
}

// spikiness scores 0 (smooth) to 1 from the share of 2σ outliers and of
// steps larger than σ, weighting steps 1.5x
func spikiness(values []float64) float64 {
	if len(values) < 10 {
		return 0
	}
	mean := analytics.Mean(values)
	sd := analytics.StdDevPopulation(values)
	if sd == 0 {
		return 0
	}

	outliers, steps := 0, 0
	for i, v := range values {
		if math.Abs(v-mean) > 2*sd {
			outliers++
		}
		if i > 0 && math.Abs(v-values[i-1]) > sd {
			steps++
		}
	}

	score := (float64(outliers)/float64(len(values)) +
		1.5*float64(steps)/float64(len(values)-1)) / 2.5
	return math.Min(score, 1)
}

// buckets splits n points into count contiguous [start, end) ranges
func buckets(n, count int) [][2]int {
	size := float64(n) / float64(count)
	out := make([][2]int, 0, count)
	for i := 0; i < count; i++ {
		start := int(float64(i) * size)
		end := int(float64(i+1) * size)
		if end > n || i == count-1 {
			end = n
		}
		if start < end {
			out = append(out, [2]int{start, end})
		}
	}
	return out
}

// lttb always keeps the first and last point and, per inner bucket, the
// point forming the largest triangle with the previous pick and the next
// bucket's average
func lttb(values []float64, threshold int) []int {
	n := len(values)
	sampled := make([]int, 0, threshold)
	sampled = append(sampled, 0)

	size := float64(n-2) / float64(threshold-2)
	a := 0

	for i := 0; i < threshold-2; i++ {
		nextStart := int(math.Floor(float64(i+1)*size)) + 1
		nextEnd := int(math.Floor(float64(i+2)*size)) + 1
		if nextEnd > n {
			nextEnd = n
		}
		avgX, avgY := 0.0, 0.0
		for j := nextStart; j < nextEnd; j++ {
			avgX += float64(j)
			avgY += values[j]
		}
		if count := float64(nextEnd - nextStart); count > 0 {
			avgX /= count
			avgY /= count
		}

		start := int(math.Floor(float64(i)*size)) + 1
		end := int(math.Floor(float64(i+1)*size)) + 1

		best, bestArea := start, -1.0
		for j := start; j < end; j++ {
			area := math.Abs((float64(a)-avgX)*(values[j]-values[a])-
				(float64(a)-float64(j))*(avgY-values[a])) * 0.5
			if area > bestArea {
				best, bestArea = j, area
			}
		}

		sampled = append(sampled, best)
		a = best
	}

	return append(sampled, n-1)
}

// minmax keeps the first and last point and emits the min and max of
// (threshold-2)/2 inner buckets in time order
func minmax(values []float64, threshold int) []int {
	n := len(values)
	count := (threshold - 2) / 2
	if count < 1 {
		return lttb(values, threshold)
	}

	sampled := make([]int, 0, count*2+2)
	sampled = append(sampled, 0)
	for _, b := range buckets(n-2, count) {
		lo, hi := extremes(values, b[0]+1, b[1]+1)
		switch {
		case lo == hi:
			sampled = append(sampled, lo)
		case lo < hi:
			sampled = append(sampled, lo, hi)
		default:
			sampled = append(sampled, hi, lo)
		}
	}
	return append(sampled, n-1)
}

// m4 emits first, min, max and last of threshold/4 buckets without duplicates
func m4(values []float64, threshold int) []int {
	count := threshold / 4
	if count < 1 {
		return lttb(values, threshold)
	}

	sampled := make([]int, 0, count*4)
	for _, b := range buckets(len(values), count) {
		first, last := b[0], b[1]-1
		lo, hi := extremes(values, b[0], b[1])
		if lo > hi {
			lo, hi = hi, lo
		}

		prev := -1
		for _, idx := range []int{first, lo, hi, last} {
			if idx > prev {
				sampled = append(sampled, idx)
				prev = idx
			}
		}
	}
	return sampled
}

func extremes(values []float64, start, end int) (lo, hi int) {
	lo, hi = start, start
	for j := start + 1; j < end; j++ {
		if values[j] < values[lo] {
			lo = j
		}
		if values[j] > values[hi] {
			hi = j
		}
	}
	return lo, hi
}

// average keeps the first and last point and replaces every inner bucket by
// its mean stamped at the bucket's middle reading
func average(series analytics.Series, threshold int) analytics.Series {
	n := series.Len()
	bs := buckets(n-2, threshold-2)
	out := analytics.Series{
		Values: make([]float64, 0, len(bs)+2),
		Times:  make([]time.Time, 0, len(bs)+2),
	}

	out.Values = append(out.Values, series.Values[0])
	out.Times = append(out.Times, series.Times[0])
	for _, b := range bs {
		start, end := b[0]+1, b[1]+1
		out.Values = append(out.Values, analytics.Mean(series.Values[start:end]))
		out.Times = append(out.Times, series.Times[start+(end-start)/2])
	}
	out.Values = append(out.Values, series.Values[n-1])
	out.Times = append(out.Times, series.Times[n-1])
	return out
}
