package flightdata

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/flight.report/internal/vehiclelink"
)

func TestRecorderAppendAndSeal(t *testing.T) {
	r := NewRecorder(2)
	assert.Equal(t, 2, r.VehicleIndex())

	require.NoError(t, r.Record(0, vehiclelink.Pose{X: 1}, [3]float64{1, 0, 0}))
	require.NoError(t, r.Record(0.01, vehiclelink.Pose{X: 1.1}, [3]float64{1, 0, 0}))
	assert.Equal(t, 2, r.Len())

	r.Finalize()
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, r.Record(0.02, vehiclelink.Pose{}, [3]float64{}), ErrSealed)
	assert.Equal(t, 2, r.Len(), "sealed recorder must not grow")

	// Finalize is idempotent.
	r.Finalize()
	assert.True(t, r.Sealed())
}

func TestStatisticsPerfectTracking(t *testing.T) {
	r := NewRecorder(0)
	for i := 0; i < 100; i++ {
		tm := float64(i) * 0.01
		pose := vehiclelink.Pose{X: math.Sin(tm), Y: math.Cos(tm), Z: 0.5}
		require.NoError(t, r.Record(tm, pose, [3]float64{pose.X, pose.Y, pose.Z}))
	}
	r.Finalize()

	s := r.Statistics()
	assert.Equal(t, 100, s.NumSamples)
	assert.InDelta(t, 0.99, s.TotalTime, 1e-12)
	for axis := 0; axis < 3; axis++ {
		assert.Zero(t, s.RMSError[axis])
		assert.Zero(t, s.MeanError[axis])
		assert.Zero(t, s.MaxError[axis])
	}
}

func TestStatisticsConstantOffset(t *testing.T) {
	// A constant 0.1 m lag on x makes RMS, mean and max all equal 0.1 on
	// that axis and zero elsewhere.
	r := NewRecorder(0)
	for i := 0; i < 50; i++ {
		tm := float64(i) * 0.01
		require.NoError(t, r.Record(tm, vehiclelink.Pose{X: 0.9, Y: 2, Z: 0.5}, [3]float64{1.0, 2, 0.5}))
	}
	r.Finalize()

	s := r.Statistics()
	assert.InDelta(t, 0.1, s.RMSError[0], 1e-12)
	assert.InDelta(t, 0.1, s.MeanError[0], 1e-12)
	assert.InDelta(t, 0.1, s.MaxError[0], 1e-12)
	assert.Zero(t, s.RMSError[1])
	assert.Zero(t, s.MaxError[2])
}

func TestStatisticsEmptyRecording(t *testing.T) {
	r := NewRecorder(0)
	r.Finalize()
	s := r.Statistics()
	assert.Equal(t, 0, s.NumSamples)
	assert.Zero(t, s.TotalTime)
}

func TestCSVRoundTrip(t *testing.T) {
	r := NewRecorder(1)
	for i := 0; i < 10; i++ {
		tm := float64(i) * 0.1
		pose := vehiclelink.Pose{
			X: tm, Y: -tm, Z: 0.5,
			VX: 1, VY: -1, VZ: 0,
		}
		require.NoError(t, r.Record(tm, pose, [3]float64{tm + 0.05, -tm, 0.5}))
	}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(&buf))

	back, err := ReadCSV(&buf, 1)
	require.NoError(t, err)
	assert.True(t, back.Sealed())
	require.Equal(t, r.Len(), back.Len())
	assert.Equal(t, r.Samples(), back.Samples())
	assert.Equal(t, r.Statistics(), back.Statistics())
}

func TestSaveWritesTimestampedFile(t *testing.T) {
	r := NewRecorder(3)
	require.NoError(t, r.Record(0, vehiclelink.Pose{Z: 0.5}, [3]float64{0, 0, 0.5}))
	r.Finalize()

	dir := filepath.Join(t.TempDir(), "flights")
	stamp := time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)
	path, err := r.Save(dir, stamp)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flight_03_20260826143000.csv"), path)

	back, err := ReadCSVFile(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, back.Len())
}

func TestReadCSVRejectsShortTable(t *testing.T) {
	_, err := ReadCSV(bytes.NewBufferString("1,2\n3,4\n"), 0)
	assert.Error(t, err)
}
