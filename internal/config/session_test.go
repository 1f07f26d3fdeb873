package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/flight.report/internal/bounds"
	"github.com/banshee-data/flight.report/internal/flight"
	"github.com/banshee-data/flight.report/internal/trajectory"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `{
	"vehicles": [{"name": "alpha", "address": "/dev/ttyUSB0"}],
	"region": {"x_min": -2.4, "x_max": 2.4, "y_min": -1.8, "y_max": 1.6}
}`

func TestLoadMinimalConfigUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.GetSpeedLimit())
	assert.Equal(t, 0.8, cfg.GetSafetyMargin())
	assert.Zero(t, cfg.GetFlightTime())
	assert.False(t, cfg.GetAutoAdjust())
	assert.True(t, cfg.GetSave())
	assert.Equal(t, "flights", cfg.GetOutputDir())
	assert.Empty(t, cfg.GetArchivePath())
	assert.Equal(t, "mps", cfg.GetUnits())

	want := bounds.Region{XMin: -2.4, XMax: 2.4, YMin: -1.8, YMax: 1.6}
	if diff := cmp.Diff(want, cfg.BoundsRegion()); diff != "" {
		t.Errorf("region mismatch (-want +got):\n%s", diff)
	}

	wantConstraint := trajectory.SpeedConstraint{SpeedLimit: 2.0, SafetyMargin: 0.8}
	if diff := cmp.Diff(wantConstraint, cfg.SpeedConstraint()); diff != "" {
		t.Errorf("constraint mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"vehicles": [
			{"name": "alpha", "address": "/dev/ttyUSB0"},
			{"name": "bravo", "address": "/dev/ttyUSB1"}
		],
		"region": {"x_min": -1, "x_max": 1, "y_min": -1, "y_max": 1},
		"speed_limit": 3.0,
		"safety_margin": 0.5,
		"flight_time": 12.5,
		"auto_adjust": true,
		"save": false,
		"output_dir": "/data/flights",
		"archive_path": "/data/flights.db",
		"units": "kph",
		"stabilize_tolerance": 0.15,
		"min_hover": "3s",
		"takeoff_timeout": "10s",
		"landing_timeout": "5s",
		"tick_interval": "20ms",
		"max_flight_time": "2m",
		"ground_altitude": 0.12,
		"hover_altitude": 0.6,
		"max_altitude": 1.5,
		"teleop_step": 0.003
	}`))
	require.NoError(t, err)

	assert.Len(t, cfg.Vehicles, 2)
	assert.Equal(t, "bravo", cfg.Vehicles[1].Name)
	assert.Equal(t, 3.0, cfg.GetSpeedLimit())
	assert.Equal(t, 0.5, cfg.GetSafetyMargin())
	assert.Equal(t, 12.5, cfg.GetFlightTime())
	assert.True(t, cfg.GetAutoAdjust())
	assert.False(t, cfg.GetSave())
	assert.Equal(t, "/data/flights", cfg.GetOutputDir())
	assert.Equal(t, "/data/flights.db", cfg.GetArchivePath())
	assert.Equal(t, "kph", cfg.GetUnits())

	fc := cfg.FlightConfig(flight.ModeTeleop)
	want := flight.Config{
		Mode:               flight.ModeTeleop,
		Region:             bounds.Region{XMin: -1, XMax: 1, YMin: -1, YMax: 1},
		TickInterval:       20 * time.Millisecond,
		TakeoffTimeout:     10 * time.Second,
		MinHover:           3 * time.Second,
		StabilizeTolerance: 0.15,
		GroundAltitude:     0.12,
		LandingTimeout:     5 * time.Second,
		HoverAltitude:      0.6,
		MaxAltitude:        1.5,
		TeleopStep:         0.003,
		MaxFlightTime:      2 * time.Minute,
	}
	if diff := cmp.Diff(want, fc); diff != "" {
		t.Errorf("flight config mismatch (-want +got):\n%s", diff)
	}
}

func TestFlightConfigDefaultsPassThrough(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	// Unset tunables stay zero so the flight package applies its own
	// defaults.
	fc := cfg.FlightConfig(flight.ModeTrajectory)
	assert.Zero(t, fc.TickInterval)
	assert.Zero(t, fc.StabilizeTolerance)
	assert.Zero(t, fc.MaxFlightTime)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "no vehicles",
			body: `{"region": {"x_min": -1, "x_max": 1, "y_min": -1, "y_max": 1}}`,
		},
		{
			name: "missing address",
			body: `{"vehicles": [{"name": "alpha"}],
				"region": {"x_min": -1, "x_max": 1, "y_min": -1, "y_max": 1}}`,
		},
		{
			name: "inverted region",
			body: `{"vehicles": [{"name": "a", "address": "/dev/ttyUSB0"}],
				"region": {"x_min": 1, "x_max": -1, "y_min": -1, "y_max": 1}}`,
		},
		{
			name: "zero speed limit",
			body: `{"vehicles": [{"name": "a", "address": "/dev/ttyUSB0"}],
				"region": {"x_min": -1, "x_max": 1, "y_min": -1, "y_max": 1},
				"speed_limit": 0}`,
		},
		{
			name: "margin above one",
			body: `{"vehicles": [{"name": "a", "address": "/dev/ttyUSB0"}],
				"region": {"x_min": -1, "x_max": 1, "y_min": -1, "y_max": 1},
				"safety_margin": 1.5}`,
		},
		{
			name: "bad units",
			body: `{"vehicles": [{"name": "a", "address": "/dev/ttyUSB0"}],
				"region": {"x_min": -1, "x_max": 1, "y_min": -1, "y_max": 1},
				"units": "furlongs"}`,
		},
		{
			name: "unparsable duration",
			body: `{"vehicles": [{"name": "a", "address": "/dev/ttyUSB0"}],
				"region": {"x_min": -1, "x_max": 1, "y_min": -1, "y_max": 1},
				"min_hover": "fast"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
