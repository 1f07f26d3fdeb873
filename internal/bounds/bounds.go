// Package bounds validates and clamps positions against the rectangular
// safety region flight is permitted in. The same region is applied twice:
// before flight to reject reference trajectories that leave the region, and
// every control tick to clamp teleop targets and detect pose drift.
package bounds

import "fmt"

// Region is a rectangular XY safety region. Immutable once configured.
type Region struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Valid reports whether the region has positive extent on both axes.
func (r Region) Valid() bool {
	return r.XMax > r.XMin && r.YMax > r.YMin
}

func (r Region) String() string {
	return fmt.Sprintf("X[%.2f, %.2f] Y[%.2f, %.2f]", r.XMin, r.XMax, r.YMin, r.YMax)
}

// Clamp limits x and y independently to the region's axis ranges. There is
// no diagonal scaling: each axis is clamped on its own.
func (r Region) Clamp(x, y float64) (float64, float64) {
	return clamp(x, r.XMin, r.XMax), clamp(y, r.YMin, r.YMax)
}

// Contains reports whether (x, y) lies inside the region, bounds inclusive.
// Drift outside the region is a safety abort, not a silent clamp, so abort
// decisions use Contains rather than Clamp.
func (r Region) Contains(x, y float64) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ViolationError reports a position observed or planned outside the safety
// region.
type ViolationError struct {
	X, Y   float64
	Region Region
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("position (%.3f, %.3f) outside safety region %s", e.X, e.Y, e.Region)
}
