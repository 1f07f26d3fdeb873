package flight

import (
	"time"

	"github.com/banshee-data/flight.report/internal/bounds"
)

// Defaults for Config fields left at their zero value.
const (
	DefaultTickInterval       = 10 * time.Millisecond
	DefaultTakeoffTimeout     = 12 * time.Second
	DefaultMinHover           = 2 * time.Second
	DefaultStabilizeTolerance = 0.30 // meters
	DefaultMinTakeoffAltitude = 0.4  // meters
	DefaultGroundAltitude     = 0.1  // meters
	DefaultLandingTimeout     = 4 * time.Second
	DefaultHoverAltitude      = 0.5   // meters
	DefaultMaxAltitude        = 1.2   // meters
	DefaultTeleopStep         = 0.002 // meters per tick at full deflection
	DefaultMaxFlightTime      = 100 * time.Second
)

// Config tunes the phase machine. The zero value of any field selects its
// default; Region must always be set.
type Config struct {
	Mode   Mode
	Region bounds.Region

	// TickInterval is the control loop sleep per iteration (~100 Hz).
	TickInterval time.Duration

	// TakeoffTimeout bounds how long the fleet may sit in takeoff without
	// every vehicle reporting a pose and clearing the minimum altitude.
	TakeoffTimeout time.Duration

	// MinHover is the minimum elapsed time before a vehicle may be declared
	// stable, so a vehicle passing through its target at speed does not
	// count.
	MinHover time.Duration

	// StabilizeTolerance is the hold-distance below which a vehicle counts
	// as stable. Tunable: fleet runs typically want a tighter value than
	// solo runs.
	StabilizeTolerance float64

	// MinTakeoffAltitude must be cleared before leaving takeoff.
	MinTakeoffAltitude float64

	// GroundAltitude is the touch-down threshold during landing.
	GroundAltitude float64

	// LandingTimeout force-exits the landing loop. A tracking dropout must
	// never produce an infinite landing loop.
	LandingTimeout time.Duration

	// HoverAltitude is the teleop hover point height above the pad.
	HoverAltitude float64

	// MaxAltitude caps the teleop target height.
	MaxAltitude float64

	// TeleopStep is the per-tick target displacement at full stick
	// deflection.
	TeleopStep float64

	// MaxFlightTime caps a teleop session that never receives a stop.
	MaxFlightTime time.Duration
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.TakeoffTimeout <= 0 {
		c.TakeoffTimeout = DefaultTakeoffTimeout
	}
	if c.MinHover <= 0 {
		c.MinHover = DefaultMinHover
	}
	if c.StabilizeTolerance <= 0 {
		c.StabilizeTolerance = DefaultStabilizeTolerance
	}
	if c.MinTakeoffAltitude <= 0 {
		c.MinTakeoffAltitude = DefaultMinTakeoffAltitude
	}
	if c.GroundAltitude <= 0 {
		c.GroundAltitude = DefaultGroundAltitude
	}
	if c.LandingTimeout <= 0 {
		c.LandingTimeout = DefaultLandingTimeout
	}
	if c.HoverAltitude <= 0 {
		c.HoverAltitude = DefaultHoverAltitude
	}
	if c.MaxAltitude <= 0 {
		c.MaxAltitude = DefaultMaxAltitude
	}
	if c.TeleopStep <= 0 {
		c.TeleopStep = DefaultTeleopStep
	}
	if c.MaxFlightTime <= 0 {
		c.MaxFlightTime = DefaultMaxFlightTime
	}
	return c
}
