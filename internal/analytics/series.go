package analytics

import "math"

// Regression is an ordinary least squares fit of value against 0-based index.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the fitted line at index x.
func (r Regression) At(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// Mean calculates the arithmetic mean, 0 for an empty slice.
// Values are summed as offsets from the first one, so a constant slice
// yields exactly that constant.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	shift := xs[0]
	sum := 0.0
	for _, x := range xs {
		sum += x - shift
	}
	return shift + sum/float64(len(xs))
}

// StdDevPopulation calculates the population standard deviation (divides by n).
func StdDevPopulation(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		diff := x - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// LinearRegression fits value = slope*index + intercept from centred deviations.
// With fewer than two points the slope is 0 and the intercept is the mean.
// A constant series fits slope 0 and intercept equal to the constant exactly.
func LinearRegression(xs []float64) Regression {
	if len(xs) < 2 {
		return Regression{Intercept: Mean(xs)}
	}

	n := float64(len(xs))
	meanX := (n - 1) / 2
	meanY := Mean(xs)

	sxy := 0.0
	sxx := 0.0
	for i, y := range xs {
		dx := float64(i) - meanX
		sxy += dx * (y - meanY)
		sxx += dx * dx
	}

	slope := sxy / sxx
	return Regression{Slope: slope, Intercept: meanY - slope*meanX}
}

// MovingAverage averages the last window values; window is clamped to [1, len(xs)].
func MovingAverage(xs []float64, window int) float64 {
	if len(xs) == 0 {
		return 0
	}
	if window < 1 {
		window = 1
	}
	if window > len(xs) {
		window = len(xs)
	}
	return Mean(xs[len(xs)-window:])
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
