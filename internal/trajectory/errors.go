package trajectory

import "fmt"

// FormatError reports a trajectory table that is structurally unusable:
// too few rows, ragged rows, or non-numeric cells. Fatal before flight.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "trajectory format: " + e.Reason
}

// OrderError reports a time row that is not strictly increasing from zero.
type OrderError struct {
	Index      int
	Prev, Curr float64
}

func (e *OrderError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("trajectory time must start at 0, got %g", e.Curr)
	}
	return fmt.Sprintf("trajectory time not strictly increasing at sample %d: %g -> %g",
		e.Index, e.Prev, e.Curr)
}

// DegenerateTrajectoryError reports a trajectory whose duration or sample
// count makes speed computation meaningless. Programmer or config error.
type DegenerateTrajectoryError struct {
	Samples  int
	Duration float64
}

func (e *DegenerateTrajectoryError) Error() string {
	return fmt.Sprintf("degenerate trajectory: %d samples over %gs", e.Samples, e.Duration)
}

// InvalidDurationError reports a non-positive requested flight duration.
type InvalidDurationError struct {
	Duration float64
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid flight duration %gs: must be positive", e.Duration)
}

// SpeedLimitError reports a trajectory whose average speed exceeds the safe
// operating ceiling. RequiredDuration is the minimum flight time that would
// satisfy the constraint over the same path.
type SpeedLimitError struct {
	AvgSpeed         float64
	MaxAllowedSpeed  float64
	SpeedLimit       float64
	SafetyMargin     float64
	RequiredDuration float64
}

func (e *SpeedLimitError) Error() string {
	return fmt.Sprintf(
		"trajectory average speed %.3f m/s exceeds safe limit %.3f m/s (%.0f%% of %.3f m/s); increase flight time to at least %.3fs",
		e.AvgSpeed, e.MaxAllowedSpeed, e.SafetyMargin*100, e.SpeedLimit, e.RequiredDuration)
}
