// Package trajectory loads, validates, time-scales and interpolates the
// reference trajectories flown by the control loop.
//
// A trajectory file is a rectangular comma-separated numeric table with no
// header and one column per sample: row 1 is time in seconds (strictly
// increasing from 0), rows 2-4 are x, y, z positions in meters, and optional
// rows 5-7 are velocities kept for reference only — tracking ignores them.
package trajectory

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/banshee-data/flight.report/internal/bounds"
)

// Trajectory is an immutable ordered series of timed 3D positions. Time
// starts at 0 and is strictly increasing; there are always at least two
// samples. Re-timing never mutates in place: ScaleToDuration returns a copy.
type Trajectory struct {
	times      []float64
	positions  [][3]float64
	velocities [][3]float64 // nil when the source table had no velocity rows
}

// SpeedConstraint is the safe-speed policy applied to a trajectory before
// flight: a vehicle speed limit and the fraction of it treated as the
// operating ceiling.
type SpeedConstraint struct {
	SpeedLimit   float64 // m/s
	SafetyMargin float64 // in (0, 1]
}

// MaxAllowedSpeed returns the ceiling the average trajectory speed is
// validated against.
func (c SpeedConstraint) MaxAllowedSpeed() float64 {
	return c.SpeedLimit * c.SafetyMargin
}

// Validation is the outcome of a non-raising speed check.
type Validation struct {
	OK               bool
	AvgSpeed         float64
	MaxAllowedSpeed  float64
	RequiredDuration float64 // minimum flight time satisfying the constraint
}

// New constructs a trajectory from parallel time and position series,
// enforcing the ordering invariants. velocities may be nil.
func New(times []float64, positions [][3]float64, velocities [][3]float64) (*Trajectory, error) {
	if len(times) < 2 {
		return nil, &FormatError{Reason: fmt.Sprintf("need at least 2 samples, got %d", len(times))}
	}
	if len(positions) != len(times) {
		return nil, &FormatError{Reason: fmt.Sprintf("%d times vs %d positions", len(times), len(positions))}
	}
	if velocities != nil && len(velocities) != len(times) {
		return nil, &FormatError{Reason: fmt.Sprintf("%d times vs %d velocities", len(times), len(velocities))}
	}
	if times[0] != 0 {
		return nil, &OrderError{Index: 0, Curr: times[0]}
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, &OrderError{Index: i, Prev: times[i-1], Curr: times[i]}
		}
	}
	return &Trajectory{
		times:      append([]float64(nil), times...),
		positions:  append([][3]float64(nil), positions...),
		velocities: append([][3]float64(nil), velocities...),
	}, nil
}

// Load parses a trajectory table from r. It fails with a FormatError for
// structurally bad tables and an OrderError for non-monotonic time rows.
func Load(r io.Reader) (*Trajectory, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}
	if len(records) < 4 {
		return nil, &FormatError{Reason: fmt.Sprintf("need at least 4 rows (time; x; y; z), got %d", len(records))}
	}

	rows := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &FormatError{Reason: fmt.Sprintf("row %d column %d: %q is not numeric", i+1, j+1, cell)}
			}
			row[j] = v
		}
		rows[i] = row
	}

	n := len(rows[0])
	times := rows[0]
	positions := make([][3]float64, n)
	for i := 0; i < n; i++ {
		positions[i] = [3]float64{rows[1][i], rows[2][i], rows[3][i]}
	}

	var velocities [][3]float64
	if len(rows) >= 7 {
		velocities = make([][3]float64, n)
		for i := 0; i < n; i++ {
			velocities[i] = [3]float64{rows[4][i], rows[5][i], rows[6][i]}
		}
	}

	return New(times, positions, velocities)
}

// LoadFile opens and parses a trajectory file.
func LoadFile(path string) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trajectory file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of samples.
func (tr *Trajectory) Len() int { return len(tr.times) }

// Duration returns the total trajectory time in seconds.
func (tr *Trajectory) Duration() float64 { return tr.times[len(tr.times)-1] - tr.times[0] }

// Time returns the timestamp of sample i.
func (tr *Trajectory) Time(i int) float64 { return tr.times[i] }

// Position returns the position of sample i.
func (tr *Trajectory) Position(i int) [3]float64 { return tr.positions[i] }

// HasVelocities reports whether the source table carried velocity rows.
func (tr *Trajectory) HasVelocities() bool { return tr.velocities != nil }

// Velocity returns the reference velocity of sample i, or the zero vector
// when the table had no velocity rows.
func (tr *Trajectory) Velocity(i int) [3]float64 {
	if tr.velocities == nil {
		return [3]float64{}
	}
	return tr.velocities[i]
}

// PathLength returns the total path length: the sum of Euclidean distances
// between consecutive samples.
func (tr *Trajectory) PathLength() float64 {
	var total float64
	for i := 1; i < len(tr.positions); i++ {
		dx := tr.positions[i][0] - tr.positions[i-1][0]
		dy := tr.positions[i][1] - tr.positions[i-1][1]
		dz := tr.positions[i][2] - tr.positions[i-1][2]
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

// AverageSpeed returns total path length divided by total duration.
func (tr *Trajectory) AverageSpeed() (float64, error) {
	if tr.Len() < 2 || tr.Duration() <= 0 {
		return 0, &DegenerateTrajectoryError{Samples: tr.Len(), Duration: tr.Duration()}
	}
	return tr.PathLength() / tr.Duration(), nil
}

// ValidateSpeed is the non-raising speed check: it always returns the
// computed record, flagging OK=false when the average speed exceeds the
// constraint ceiling. Only a degenerate trajectory produces an error.
func (tr *Trajectory) ValidateSpeed(c SpeedConstraint) (Validation, error) {
	avg, err := tr.AverageSpeed()
	if err != nil {
		return Validation{}, err
	}
	maxAllowed := c.MaxAllowedSpeed()
	// The boundary case avg == maxAllowed is not a violation; the tolerance
	// absorbs rounding when a trajectory was rescaled to exactly the
	// required duration.
	v := Validation{
		OK:               avg <= maxAllowed*(1+1e-12)+1e-12,
		AvgSpeed:         avg,
		MaxAllowedSpeed:  maxAllowed,
		RequiredDuration: tr.PathLength() / maxAllowed,
	}
	return v, nil
}

// CheckSpeed is the raising variant of ValidateSpeed: a violation comes back
// as a SpeedLimitError naming the minimum duration that would satisfy the
// constraint.
func (tr *Trajectory) CheckSpeed(c SpeedConstraint) error {
	v, err := tr.ValidateSpeed(c)
	if err != nil {
		return err
	}
	if !v.OK {
		return &SpeedLimitError{
			AvgSpeed:         v.AvgSpeed,
			MaxAllowedSpeed:  v.MaxAllowedSpeed,
			SpeedLimit:       c.SpeedLimit,
			SafetyMargin:     c.SafetyMargin,
			RequiredDuration: v.RequiredDuration,
		}
	}
	return nil
}

// ScaleToDuration re-times the trajectory to start at 0 and end exactly at
// targetDuration via uniform re-spacing: newTime[i] = i/(n-1) * target.
// Positions are unchanged and the receiver is not mutated.
func (tr *Trajectory) ScaleToDuration(targetDuration float64) (*Trajectory, error) {
	if targetDuration <= 0 {
		return nil, &InvalidDurationError{Duration: targetDuration}
	}
	n := tr.Len()
	if n < 2 {
		return nil, &DegenerateTrajectoryError{Samples: n, Duration: tr.Duration()}
	}

	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / float64(n-1) * targetDuration
	}
	// Pin the endpoint exactly; the division above already guarantees it for
	// i == n-1 but being explicit costs nothing.
	times[n-1] = targetDuration

	return &Trajectory{
		times:      times,
		positions:  tr.positions,
		velocities: tr.velocities,
	}, nil
}

// CheckBounds verifies that every XY sample lies inside the safety region.
// Trajectories that leave the region are rejected before any command is sent.
func (tr *Trajectory) CheckBounds(region bounds.Region) error {
	for i := range tr.positions {
		x, y := tr.positions[i][0], tr.positions[i][1]
		if !region.Contains(x, y) {
			return &bounds.ViolationError{X: x, Y: y, Region: region}
		}
	}
	return nil
}

// BuildReference orchestrates load -> validate -> optional rescale into a
// flight-ready reference trajectory.
//
// flightTime <= 0 means "no requested duration": the original timing is kept
// when it already satisfies the constraint. When the original (or requested)
// timing is too fast, autoAdjust raises the duration to the minimum required;
// otherwise the SpeedLimitError is returned. A scaled result is re-validated
// with the raising check as a final sanity pass — a failure there indicates a
// broken invariant, not user input.
func BuildReference(r io.Reader, flightTime float64, c SpeedConstraint, autoAdjust bool) (*Trajectory, error) {
	tr, err := Load(r)
	if err != nil {
		return nil, err
	}

	v, err := tr.ValidateSpeed(c)
	if err != nil {
		return nil, err
	}

	if !v.OK {
		switch {
		case flightTime <= 0 && autoAdjust:
			flightTime = v.RequiredDuration
		case flightTime <= 0:
			return nil, &SpeedLimitError{
				AvgSpeed:         v.AvgSpeed,
				MaxAllowedSpeed:  v.MaxAllowedSpeed,
				SpeedLimit:       c.SpeedLimit,
				SafetyMargin:     c.SafetyMargin,
				RequiredDuration: v.RequiredDuration,
			}
		}
	}
	if flightTime > 0 && flightTime < v.RequiredDuration {
		if !autoAdjust {
			return nil, &SpeedLimitError{
				AvgSpeed:         tr.PathLength() / flightTime,
				MaxAllowedSpeed:  v.MaxAllowedSpeed,
				SpeedLimit:       c.SpeedLimit,
				SafetyMargin:     c.SafetyMargin,
				RequiredDuration: v.RequiredDuration,
			}
		}
		flightTime = v.RequiredDuration
	}

	if flightTime <= 0 {
		return tr, nil
	}

	scaled, err := tr.ScaleToDuration(flightTime)
	if err != nil {
		return nil, err
	}
	if err := scaled.CheckSpeed(c); err != nil {
		return nil, fmt.Errorf("scaled trajectory failed revalidation: %w", err)
	}
	return scaled, nil
}

// BuildReferenceFile is BuildReference reading from a file path.
func BuildReferenceFile(path string, flightTime float64, c SpeedConstraint, autoAdjust bool) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trajectory file: %w", err)
	}
	defer f.Close()
	return BuildReference(f, flightTime, c, autoAdjust)
}
