package vehiclelink

import (
	"math"
	"sync"
	"time"

	"github.com/banshee-data/flight.report/internal/timeutil"
)

// FollowerLink is a simulated vehicle for dev mode and tests: its pose
// converges toward the last commanded setpoint with a first-order lag. It
// stands in for the external vehicle-control service when no hardware is
// attached, the way a fixture-fed mock device does for a serial sensor.
type FollowerLink struct {
	mu        sync.Mutex
	clock     timeutil.Clock
	pos       [3]float64
	vel       [3]float64
	target    Setpoint
	hasTarget bool
	landing   bool
	updated   time.Time
	tau       float64 // lag time constant, seconds
	setpoints []Setpoint
	landCalls int
}

// NewFollowerLink creates a follower resting on the ground at start.
func NewFollowerLink(clock timeutil.Clock, start [3]float64) *FollowerLink {
	return &FollowerLink{
		clock:   clock,
		pos:     start,
		updated: clock.Now(),
		tau:     0.4,
	}
}

// SetLag overrides the follower's lag time constant.
func (f *FollowerLink) SetLag(tau float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tau = tau
}

// step advances the simulated state to the current clock time. Callers hold
// f.mu.
func (f *FollowerLink) step() {
	now := f.clock.Now()
	dt := now.Sub(f.updated).Seconds()
	f.updated = now
	if dt <= 0 || !f.hasTarget {
		return
	}

	goal := [3]float64{f.target.X, f.target.Y, f.target.Z}
	alpha := 1 - math.Exp(-dt/f.tau)
	for i := 0; i < 3; i++ {
		delta := (goal[i] - f.pos[i]) * alpha
		f.vel[i] = delta / dt
		f.pos[i] += delta
	}
}

// Pose implements Link. The follower always has a pose: its tracking service
// is assumed healthy.
func (f *FollowerLink) Pose() (Pose, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step()
	return Pose{
		X: f.pos[0], Y: f.pos[1], Z: f.pos[2],
		VX: f.vel[0], VY: f.vel[1], VZ: f.vel[2],
	}, true
}

// CommandSetpoint implements Link.
func (f *FollowerLink) CommandSetpoint(sp Setpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step()
	f.target = sp
	f.hasTarget = true
	f.landing = false
	f.setpoints = append(f.setpoints, sp)
	return nil
}

// LandInPlace implements Link: the target drops to the ground under the
// current position.
func (f *FollowerLink) LandInPlace() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step()
	f.target = Setpoint{X: f.pos[0], Y: f.pos[1], Z: 0}
	f.hasTarget = true
	f.landing = true
	f.landCalls++
	return nil
}

// IsSafe implements Link.
func (f *FollowerLink) IsSafe() bool { return true }

// Close implements Link.
func (f *FollowerLink) Close() error { return nil }

// LandCalls returns how many times LandInPlace was commanded.
func (f *FollowerLink) LandCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.landCalls
}

// Setpoints returns a copy of all recorded setpoints.
func (f *FollowerLink) Setpoints() []Setpoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Setpoint, len(f.setpoints))
	copy(out, f.setpoints)
	return out
}
