// Package flight drives the flight phase state machine: takeoff,
// fleet-synchronized stabilization, trajectory or teleoperated tracking, and
// timeout-bounded landing. A single goroutine owns all vehicle state; each
// tick iterates the fleet sequentially, so no locking is needed.
package flight

// Phase is the fleet-wide flight phase. Exactly one phase is active per
// control tick; the fleet transitions only when every vehicle satisfies the
// transition predicate.
type Phase int

const (
	PhaseTakeoff Phase = iota
	PhaseStabilizing
	PhaseTracking
	PhaseLanding
	PhaseDone
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseTakeoff:
		return "takeoff"
	case PhaseStabilizing:
		return "stabilizing"
	case PhaseTracking:
		return "tracking"
	case PhaseLanding:
		return "landing"
	case PhaseDone:
		return "done"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase machine has finished.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseAborted
}

// Mode selects what drives the target during tracking.
type Mode int

const (
	// ModeTrajectory follows a pre-validated reference trajectory.
	ModeTrajectory Mode = iota

	// ModeTeleop accumulates operator displacement with no fixed duration.
	ModeTeleop
)

func (m Mode) String() string {
	if m == ModeTeleop {
		return "teleop"
	}
	return "trajectory"
}
