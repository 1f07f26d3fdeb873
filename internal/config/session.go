// Package config loads and validates the per-session flight configuration.
// Fields omitted from the JSON file retain their defaults via the Get*
// accessors, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/flight.report/internal/bounds"
	"github.com/banshee-data/flight.report/internal/flight"
	"github.com/banshee-data/flight.report/internal/trajectory"
	"github.com/banshee-data/flight.report/internal/units"
)

// VehicleConfig identifies one fleet member and the serial device its
// control service is reachable on.
type VehicleConfig struct {
	Name    string `json:"name"`
	Address string `json:"address"` // serial device path, e.g. /dev/ttyUSB0
}

// RegionConfig is the rectangular XY safety region in meters.
type RegionConfig struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// SessionConfig is the root configuration for one flight session.
type SessionConfig struct {
	Vehicles []VehicleConfig `json:"vehicles"`
	Region   RegionConfig    `json:"region"`

	// Speed policy for reference trajectories.
	SpeedLimit   *float64 `json:"speed_limit,omitempty"`   // m/s
	SafetyMargin *float64 `json:"safety_margin,omitempty"` // fraction in (0,1]

	// FlightTime requests a trajectory duration in seconds; nil or 0 keeps
	// the file's own timing.
	FlightTime *float64 `json:"flight_time,omitempty"`

	// AutoAdjust raises a too-short flight time to the minimum safe value
	// instead of failing.
	AutoAdjust *bool `json:"auto_adjust,omitempty"`

	// Save controls whether flight recordings are written to disk.
	Save      *bool   `json:"save,omitempty"`
	OutputDir *string `json:"output_dir,omitempty"`

	// ArchivePath is the sqlite flight archive; empty disables archiving.
	ArchivePath *string `json:"archive_path,omitempty"`

	// Units for reported statistics.
	Units *string `json:"units,omitempty"`

	// InputDevice names the operator device for teleop sessions.
	InputDevice *string `json:"input_device,omitempty"`

	// Phase machine tunables. Durations are strings like "2s".
	StabilizeTolerance *float64 `json:"stabilize_tolerance,omitempty"` // meters
	MinHover           *string  `json:"min_hover,omitempty"`
	TakeoffTimeout     *string  `json:"takeoff_timeout,omitempty"`
	LandingTimeout     *string  `json:"landing_timeout,omitempty"`
	TickInterval       *string  `json:"tick_interval,omitempty"`
	MaxFlightTime      *string  `json:"max_flight_time,omitempty"`
	MinTakeoffAltitude *float64 `json:"min_takeoff_altitude,omitempty"` // meters
	GroundAltitude     *float64 `json:"ground_altitude,omitempty"`      // meters
	HoverAltitude      *float64 `json:"hover_altitude,omitempty"`       // meters
	MaxAltitude        *float64 `json:"max_altitude,omitempty"`         // meters
	TeleopStep         *float64 `json:"teleop_step,omitempty"`          // meters per tick
}

// Load reads and validates a session config from a JSON file.
func Load(path string) (*SessionConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &SessionConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot fly.
func (c *SessionConfig) Validate() error {
	if len(c.Vehicles) == 0 {
		return fmt.Errorf("at least one vehicle is required")
	}
	for i, v := range c.Vehicles {
		if v.Address == "" {
			return fmt.Errorf("vehicle %d (%s): address is required", i, v.Name)
		}
	}
	if !c.BoundsRegion().Valid() {
		return fmt.Errorf("region must have positive extent, got %s", c.BoundsRegion())
	}
	if c.SpeedLimit != nil && *c.SpeedLimit <= 0 {
		return fmt.Errorf("speed_limit must be positive, got %g", *c.SpeedLimit)
	}
	if c.SafetyMargin != nil && (*c.SafetyMargin <= 0 || *c.SafetyMargin > 1) {
		return fmt.Errorf("safety_margin must be in (0,1], got %g", *c.SafetyMargin)
	}
	if c.FlightTime != nil && *c.FlightTime < 0 {
		return fmt.Errorf("flight_time must be non-negative, got %g", *c.FlightTime)
	}
	if c.StabilizeTolerance != nil && *c.StabilizeTolerance <= 0 {
		return fmt.Errorf("stabilize_tolerance must be positive, got %g", *c.StabilizeTolerance)
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("invalid units %q: must be one of %s", *c.Units, units.ValidUnitsString())
	}
	for name, d := range map[string]*string{
		"min_hover":       c.MinHover,
		"takeoff_timeout": c.TakeoffTimeout,
		"landing_timeout": c.LandingTimeout,
		"tick_interval":   c.TickInterval,
		"max_flight_time": c.MaxFlightTime,
	} {
		if d != nil && *d != "" {
			if _, err := time.ParseDuration(*d); err != nil {
				return fmt.Errorf("invalid %s %q: %w", name, *d, err)
			}
		}
	}
	return nil
}

// GetSpeedLimit returns the vehicle speed limit in m/s.
func (c *SessionConfig) GetSpeedLimit() float64 {
	if c.SpeedLimit == nil {
		return 2.0 // default
	}
	return *c.SpeedLimit
}

// GetSafetyMargin returns the fraction of the speed limit used as the
// operating ceiling.
func (c *SessionConfig) GetSafetyMargin() float64 {
	if c.SafetyMargin == nil {
		return 0.8 // default
	}
	return *c.SafetyMargin
}

// GetFlightTime returns the requested trajectory duration in seconds, or 0
// when the file's own timing should be kept.
func (c *SessionConfig) GetFlightTime() float64 {
	if c.FlightTime == nil {
		return 0
	}
	return *c.FlightTime
}

// GetAutoAdjust reports whether a too-fast trajectory should have its
// duration raised instead of failing.
func (c *SessionConfig) GetAutoAdjust() bool {
	return c.AutoAdjust != nil && *c.AutoAdjust
}

// GetSave reports whether recordings should be written to disk.
func (c *SessionConfig) GetSave() bool {
	if c.Save == nil {
		return true // default
	}
	return *c.Save
}

// GetOutputDir returns the directory recordings are saved under.
func (c *SessionConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "flights" // default
	}
	return *c.OutputDir
}

// GetArchivePath returns the sqlite archive path; empty disables archiving.
func (c *SessionConfig) GetArchivePath() string {
	if c.ArchivePath == nil {
		return ""
	}
	return *c.ArchivePath
}

// GetUnits returns the reporting units.
func (c *SessionConfig) GetUnits() string {
	if c.Units == nil || *c.Units == "" {
		return units.MPS // default
	}
	return *c.Units
}

// GetInputDevice returns the operator device name for teleop sessions.
func (c *SessionConfig) GetInputDevice() string {
	if c.InputDevice == nil || *c.InputDevice == "" {
		return "keyboard" // default
	}
	return *c.InputDevice
}

func (c *SessionConfig) duration(s *string, def time.Duration) time.Duration {
	if s == nil || *s == "" {
		return def
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return def // Validate rejects unparsable values up front
	}
	return d
}

// BoundsRegion converts the configured region for the bounds guard.
func (c *SessionConfig) BoundsRegion() bounds.Region {
	return bounds.Region{
		XMin: c.Region.XMin, XMax: c.Region.XMax,
		YMin: c.Region.YMin, YMax: c.Region.YMax,
	}
}

// SpeedConstraint returns the trajectory speed policy.
func (c *SessionConfig) SpeedConstraint() trajectory.SpeedConstraint {
	return trajectory.SpeedConstraint{
		SpeedLimit:   c.GetSpeedLimit(),
		SafetyMargin: c.GetSafetyMargin(),
	}
}

// FlightConfig assembles the phase machine configuration for the given
// mode. Unset tunables keep the flight package defaults.
func (c *SessionConfig) FlightConfig(mode flight.Mode) flight.Config {
	fc := flight.Config{
		Mode:           mode,
		Region:         c.BoundsRegion(),
		TickInterval:   c.duration(c.TickInterval, 0),
		TakeoffTimeout: c.duration(c.TakeoffTimeout, 0),
		MinHover:       c.duration(c.MinHover, 0),
		LandingTimeout: c.duration(c.LandingTimeout, 0),
		MaxFlightTime:  c.duration(c.MaxFlightTime, 0),
	}
	if c.StabilizeTolerance != nil {
		fc.StabilizeTolerance = *c.StabilizeTolerance
	}
	if c.MinTakeoffAltitude != nil {
		fc.MinTakeoffAltitude = *c.MinTakeoffAltitude
	}
	if c.GroundAltitude != nil {
		fc.GroundAltitude = *c.GroundAltitude
	}
	if c.HoverAltitude != nil {
		fc.HoverAltitude = *c.HoverAltitude
	}
	if c.MaxAltitude != nil {
		fc.MaxAltitude = *c.MaxAltitude
	}
	if c.TeleopStep != nil {
		fc.TeleopStep = *c.TeleopStep
	}
	return fc
}
