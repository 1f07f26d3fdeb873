// Package units provides shared constants and conversion helpers for the
// speed units accepted on report output.
package units

import "fmt"

// Unit constants. Speeds are always computed and stored in m/s; conversion
// happens only at the reporting edge.
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all accepted unit values.
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks whether the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, u := range ValidUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// ValidUnitsString returns a comma-separated list of valid units for error
// messages.
func ValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// Convert converts a speed in meters per second to the target units. Unknown
// units fall back to m/s.
func Convert(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// FormatSpeed renders a speed in the target units with its unit suffix,
// e.g. "1.250 mps".
func FormatSpeed(speedMPS float64, targetUnits string) string {
	if !IsValid(targetUnits) {
		targetUnits = MPS
	}
	return fmt.Sprintf("%.3f %s", Convert(speedMPS, targetUnits), targetUnits)
}
