package forecast

// Direction is the display classification of a trend slope.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// StableSlope is the fixed slope magnitude below which a trend is stable.
const StableSlope = 0.1

// RapidSlope is the slope magnitude above which a rapid change alert is raised.
const RapidSlope = 1.0

// Classify maps a slope to increasing, decreasing or stable.
func Classify(slope float64) Direction {
	switch {
	case slope > StableSlope:
		return DirectionIncreasing
	case slope < -StableSlope:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}
