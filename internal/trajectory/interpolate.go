package trajectory

import "sort"

// PositionAt returns the position at elapsed time t by independent
// piecewise-linear interpolation per axis. Outside [0, Duration] the nearest
// segment's slope is extended (linear extrapolation, not clamping), so a
// consumer may overrun slightly at either end without an error. Extrapolated
// values are unbounded; callers that cannot tolerate that must bound t
// themselves.
//
// The function is deterministic and stateless: equal inputs always yield
// equal outputs, and t exactly at a sample time returns that sample's exact
// position.
func (tr *Trajectory) PositionAt(t float64) [3]float64 {
	n := len(tr.times)

	// Exact sample hit: return the stored position without arithmetical
	// round trips.
	idx := sort.SearchFloat64s(tr.times, t)
	if idx < n && tr.times[idx] == t {
		return tr.positions[idx]
	}

	// Segment index in [0, n-2]; times before the first sample use the first
	// segment's slope, times after the last use the final segment's.
	seg := idx - 1
	if seg < 0 {
		seg = 0
	}
	if seg > n-2 {
		seg = n - 2
	}

	t0, t1 := tr.times[seg], tr.times[seg+1]
	frac := (t - t0) / (t1 - t0)

	var out [3]float64
	for axis := 0; axis < 3; axis++ {
		p0, p1 := tr.positions[seg][axis], tr.positions[seg+1][axis]
		out[axis] = p0 + (p1-p0)*frac
	}
	return out
}
