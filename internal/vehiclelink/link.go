// Package vehiclelink is the contract with the external vehicle-control
// service: the thing that knows the vehicle's current pose and accepts
// position and landing commands. The flight controller talks only to the
// Link interface; how a concrete implementation obtains pose or executes
// commands is deliberately outside this repository's scope.
package vehiclelink

import (
	"fmt"
	"math"
)

// Pose is a vehicle's observed position and velocity, as supplied by the
// external tracking service.
type Pose struct {
	X, Y, Z    float64 // meters
	VX, VY, VZ float64 // m/s
}

// DistanceTo returns the Euclidean distance from the pose's position to a
// target point.
func (p Pose) DistanceTo(target [3]float64) float64 {
	dx := p.X - target[0]
	dy := p.Y - target[1]
	dz := p.Z - target[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Setpoint is a target position commanded to the vehicle's flight controller
// for the current tick.
type Setpoint struct {
	X, Y, Z float64 // meters
}

func (s Setpoint) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", s.X, s.Y, s.Z)
}

// Position returns the setpoint as a position vector.
func (s Setpoint) Position() [3]float64 { return [3]float64{s.X, s.Y, s.Z} }

// Link is the vehicle-control service contract. Pose updates arrive
// asynchronously from the service's own stream; Pose never blocks and
// returns the latest snapshot with ok=false while none is available or the
// last one has gone stale. A missing pose is "not yet available" — it must
// never be interpreted as the origin.
type Link interface {
	// Pose returns the most recent pose snapshot, best effort.
	Pose() (Pose, bool)

	// CommandSetpoint sends a position setpoint for the current tick.
	CommandSetpoint(sp Setpoint) error

	// LandInPlace commands an immediate vertical landing at the current
	// position.
	LandInPlace() error

	// IsSafe reports the service's own safety predicate for the vehicle.
	IsSafe() bool

	// Close releases the underlying transport.
	Close() error
}
