package flight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/flight.report/internal/bounds"
	"github.com/banshee-data/flight.report/internal/flightdata"
	"github.com/banshee-data/flight.report/internal/input"
	"github.com/banshee-data/flight.report/internal/monitoring"
	"github.com/banshee-data/flight.report/internal/timeutil"
	"github.com/banshee-data/flight.report/internal/trajectory"
	"github.com/banshee-data/flight.report/internal/vehiclelink"
)

var logf = monitoring.Scoped("flight")

// Vehicle is one fleet member's in-flight state. The controller is the only
// mutator; the link's pose is owned by the external service and read-only
// here.
type Vehicle struct {
	Index    int
	Link     vehiclelink.Link
	Recorder *flightdata.Recorder

	target    vehiclelink.Setpoint
	hasTarget bool
	stable    bool
	landed    bool
}

// NewVehicle wraps a link with a fresh recorder.
func NewVehicle(index int, link vehiclelink.Link) *Vehicle {
	return &Vehicle{Index: index, Link: link, Recorder: flightdata.NewRecorder(index)}
}

// Target returns the most recent commanded setpoint, if one was established.
func (v *Vehicle) Target() (vehiclelink.Setpoint, bool) {
	return v.target, v.hasTarget
}

// Stable reports whether the vehicle has passed its stabilization check.
func (v *Vehicle) Stable() bool { return v.stable }

// Result summarizes a completed run.
type Result struct {
	Phase       Phase
	Aborted     bool
	AbortReason error
	HoverTime   float64 // elapsed seconds at barrier open (trajectory zero)
	Elapsed     float64 // total run seconds
}

// Controller sequences the fleet through the flight phases. Run drives one
// cooperative loop: a fixed small sleep per tick, sequential per-vehicle
// iteration inside the tick. Pose updates arrive asynchronously on the links
// and are read as latest-value snapshots.
type Controller struct {
	cfg      Config
	clock    timeutil.Clock
	traj     *trajectory.Trajectory
	source   input.Source
	vehicles []*Vehicle

	start        time.Time
	phase        Phase
	hoverTime    float64
	landingStart time.Time
	aborted      bool
	abortErr     error
}

// NewController builds a controller over the given fleet. traj is required
// in trajectory mode and ignored in teleop mode; source is required in
// teleop mode and optional (operator abort) in trajectory mode.
func NewController(cfg Config, clock timeutil.Clock, vehicles []*Vehicle, traj *trajectory.Trajectory, source input.Source) (*Controller, error) {
	cfg = cfg.withDefaults()
	if !cfg.Region.Valid() {
		return nil, fmt.Errorf("invalid safety region %s", cfg.Region)
	}
	if len(vehicles) == 0 {
		return nil, errors.New("no vehicles")
	}
	if cfg.Mode == ModeTrajectory && traj == nil {
		return nil, errors.New("trajectory mode requires a reference trajectory")
	}
	if cfg.Mode == ModeTeleop && source == nil {
		return nil, errors.New("teleop mode requires an input source")
	}
	return &Controller{
		cfg:      cfg,
		clock:    clock,
		traj:     traj,
		source:   source,
		vehicles: vehicles,
	}, nil
}

// Run executes the flight to completion and returns the outcome. The
// context cancels cooperatively: cancellation routes to landing, never to
// an immediate stop, so a vehicle is not left hovering.
func (c *Controller) Run(ctx context.Context) Result {
	c.start = c.clock.Now()
	c.phase = PhaseTakeoff
	logf("starting %s flight: %d vehicle(s), region %s", c.cfg.Mode, len(c.vehicles), c.cfg.Region)

	for !c.phase.Terminal() {
		if err := ctx.Err(); err != nil {
			c.abortToLanding(fmt.Errorf("run cancelled: %w", err))
		}
		c.tick()
		c.clock.Sleep(c.cfg.TickInterval)
	}

	for _, v := range c.vehicles {
		v.Recorder.Finalize()
	}

	res := Result{
		Phase:       c.phase,
		Aborted:     c.aborted,
		AbortReason: c.abortErr,
		HoverTime:   c.hoverTime,
		Elapsed:     c.clock.Since(c.start).Seconds(),
	}
	logf("flight finished: phase=%s elapsed=%.2fs aborted=%v", res.Phase, res.Elapsed, res.Aborted)
	return res
}

func (c *Controller) tick() {
	elapsed := c.clock.Since(c.start).Seconds()

	if c.phase != PhaseLanding {
		c.checkSafety()
	}

	switch c.phase {
	case PhaseTakeoff:
		c.tickTakeoff(elapsed)
	case PhaseStabilizing:
		c.tickStabilizing(elapsed)
	case PhaseTracking:
		if c.cfg.Mode == ModeTeleop {
			c.tickTeleop(elapsed)
		} else {
			c.tickTracking(elapsed)
		}
	case PhaseLanding:
		c.tickLanding()
	}
}

// checkSafety runs the cross-cutting per-tick rules: service safety
// predicate, operator stop, and XY drift outside the region. Any hit routes
// to immediate landing. A missing pose on a tick is "not yet available" and
// is skipped, never treated as the origin.
func (c *Controller) checkSafety() {
	for _, v := range c.vehicles {
		if !v.Link.IsSafe() {
			c.abortToLanding(&UnsafeVehicleError{VehicleIndex: v.Index})
			return
		}
		if pose, ok := v.Link.Pose(); ok && !c.cfg.Region.Contains(pose.X, pose.Y) {
			c.abortToLanding(&bounds.ViolationError{X: pose.X, Y: pose.Y, Region: c.cfg.Region})
			return
		}
	}
	if c.source != nil && c.source.StopRequested() {
		if c.cfg.Mode == ModeTeleop {
			// A teleop stop is the normal way to end the session.
			logf("stop requested, landing")
			c.toLanding()
		} else {
			c.abortToLanding(errors.New("operator stop requested"))
		}
	}
}

// takeoffTarget derives the initial hold target from the first real
// observed pose. Trajectory mode flies to the first waypoint; teleop hovers
// above wherever the vehicle actually is.
func (c *Controller) takeoffTarget(pose vehiclelink.Pose) vehiclelink.Setpoint {
	if c.cfg.Mode == ModeTeleop {
		return vehiclelink.Setpoint{X: pose.X, Y: pose.Y, Z: c.cfg.HoverAltitude}
	}
	p := c.traj.Position(0)
	return vehiclelink.Setpoint{X: p[0], Y: p[1], Z: p[2]}
}

func (c *Controller) tickTakeoff(elapsed float64) {
	ready := true
	waiting := -1
	for _, v := range c.vehicles {
		pose, ok := v.Link.Pose()
		if ok && !v.hasTarget {
			v.target = c.takeoffTarget(pose)
			v.hasTarget = true
			logf("vehicle %d takeoff target %s", v.Index, v.target)
		}
		// Never command while no real pose has been observed: falling back
		// to a default target would command a large unobserved jump.
		if v.hasTarget {
			c.command(v)
		}
		if !ok || pose.Z < c.cfg.MinTakeoffAltitude {
			ready = false
			if waiting < 0 {
				waiting = v.Index
			}
		}
	}

	if ready {
		logf("takeoff complete at %.2fs, stabilizing", elapsed)
		c.phase = PhaseStabilizing
		return
	}
	if elapsed > c.cfg.TakeoffTimeout.Seconds() {
		c.abortToLanding(&PoseTimeoutError{VehicleIndex: waiting, Timeout: c.cfg.TakeoffTimeout})
	}
}

func (c *Controller) tickStabilizing(elapsed float64) {
	allStable := true
	for _, v := range c.vehicles {
		// Early-stable vehicles keep holding their target while waiting for
		// the rest of the fleet.
		c.command(v)
		if v.stable {
			continue
		}
		pose, ok := v.Link.Pose()
		if ok && elapsed >= c.cfg.MinHover.Seconds() &&
			pose.DistanceTo(v.target.Position()) < c.cfg.StabilizeTolerance {
			v.stable = true
			logf("vehicle %d stable at %.2fs", v.Index, elapsed)
			continue
		}
		allStable = false
	}
	if !allStable {
		return
	}

	// Barrier open: this instant is the shared trajectory zero for the
	// whole fleet, including vehicles that stabilized earlier.
	c.hoverTime = elapsed
	c.phase = PhaseTracking
	logf("all vehicles stable, tracking starts at %.2fs", elapsed)

	for _, v := range c.vehicles {
		desired := v.target.Position()
		if c.cfg.Mode == ModeTrajectory {
			desired = c.traj.PositionAt(0)
		}
		if pose, ok := v.Link.Pose(); ok {
			if err := v.Recorder.Record(0, pose, desired); err != nil {
				logf("vehicle %d: record: %v", v.Index, err)
			}
		}
	}
}

func (c *Controller) tickTracking(elapsed float64) {
	trajTime := elapsed - c.hoverTime
	if trajTime > c.traj.Duration() {
		logf("trajectory complete at %.2fs", elapsed)
		c.toLanding()
		return
	}

	desired := c.traj.PositionAt(trajTime)
	if !finite(desired) {
		// A non-finite target means the reference data is unusable; a
		// missed setpoint is itself a safety event, so land rather than
		// skip the tick.
		c.abortToLanding(fmt.Errorf("non-finite reference position at t=%.3fs", trajTime))
		return
	}

	for _, v := range c.vehicles {
		v.target = vehiclelink.Setpoint{X: desired[0], Y: desired[1], Z: desired[2]}
		c.command(v)
		if trajTime >= 0 {
			if pose, ok := v.Link.Pose(); ok {
				if err := v.Recorder.Record(trajTime, pose, desired); err != nil {
					logf("vehicle %d: record: %v", v.Index, err)
				}
			}
		}
	}
}

func (c *Controller) tickTeleop(elapsed float64) {
	trajTime := elapsed - c.hoverTime
	if trajTime > c.cfg.MaxFlightTime.Seconds() {
		logf("flight time cap %s reached, landing", c.cfg.MaxFlightTime)
		c.toLanding()
		return
	}

	dx, dy := c.source.Direction()
	dz := c.source.AltitudeDirection()

	for _, v := range c.vehicles {
		v.target.X += dx * c.cfg.TeleopStep
		v.target.Y += dy * c.cfg.TeleopStep
		v.target.Z += dz * c.cfg.TeleopStep
		v.target.X, v.target.Y = c.cfg.Region.Clamp(v.target.X, v.target.Y)
		v.target.Z = clampAltitude(v.target.Z, c.cfg.GroundAltitude, c.cfg.MaxAltitude)
		c.command(v)
		if trajTime >= 0 {
			if pose, ok := v.Link.Pose(); ok {
				if err := v.Recorder.Record(trajTime, pose, v.target.Position()); err != nil {
					logf("vehicle %d: record: %v", v.Index, err)
				}
			}
		}
	}
}

func (c *Controller) tickLanding() {
	landed := true
	for _, v := range c.vehicles {
		if v.landed {
			continue
		}
		if err := v.Link.LandInPlace(); err != nil {
			logf("vehicle %d: land command: %v", v.Index, err)
		}
		if pose, ok := v.Link.Pose(); ok && pose.Z < c.cfg.GroundAltitude {
			v.landed = true
			logf("vehicle %d on the ground", v.Index)
			continue
		}
		landed = false
	}
	if landed {
		c.finish()
		return
	}
	if c.clock.Since(c.landingStart) >= c.cfg.LandingTimeout {
		logf("landing timeout %s elapsed, forcing exit", c.cfg.LandingTimeout)
		c.finish()
	}
}

// toLanding enters the landing phase cleanly. No-op when already landing or
// finished.
func (c *Controller) toLanding() {
	if c.phase == PhaseLanding || c.phase.Terminal() {
		return
	}
	c.phase = PhaseLanding
	c.landingStart = c.clock.Now()
}

// abortToLanding records the first abort cause and routes to landing.
func (c *Controller) abortToLanding(err error) {
	if !c.aborted {
		c.aborted = true
		c.abortErr = err
		logf("abort: %v", err)
	}
	c.toLanding()
}

func (c *Controller) finish() {
	if c.aborted {
		c.phase = PhaseAborted
	} else {
		c.phase = PhaseDone
	}
}

// command sends the vehicle's current target. Transient command failures
// are logged and the loop continues; a dead transport surfaces through the
// link's safety predicate instead.
func (c *Controller) command(v *Vehicle) {
	if err := v.Link.CommandSetpoint(v.target); err != nil {
		logf("vehicle %d: command setpoint %s: %v", v.Index, v.target, err)
	}
}

func finite(p [3]float64) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clampAltitude(z, lo, hi float64) float64 {
	if z < lo {
		return lo
	}
	if z > hi {
		return hi
	}
	return z
}
