package flightdata

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "flights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchiveRecordAndGet(t *testing.T) {
	a := newTestArchive(t)

	rec := &FlightRecord{
		VehicleIndex: 1,
		StartedAt:    time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
		Duration:     12.5,
		NumSamples:   1250,
		Stats: Statistics{
			RMSError:  [3]float64{0.04, 0.05, 0.02},
			MeanError: [3]float64{0.03, 0.04, 0.015},
			MaxError:  [3]float64{0.12, 0.15, 0.05},
		},
		CSVPath: "/data/flight_01_20260826100000.csv",
	}

	id, err := a.RecordFlight(rec)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := a.GetFlight(id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VehicleIndex)
	assert.Equal(t, 12.5, got.Duration)
	assert.Equal(t, 1250, got.NumSamples)
	assert.False(t, got.Aborted)
	assert.Equal(t, rec.Stats.RMSError, got.Stats.RMSError)
	assert.Equal(t, rec.Stats.MaxError, got.Stats.MaxError)
	assert.Equal(t, rec.CSVPath, got.CSVPath)
	assert.True(t, got.StartedAt.Equal(rec.StartedAt))
}

func TestArchiveListOrdersByRecency(t *testing.T) {
	a := newTestArchive(t)

	for i := 0; i < 3; i++ {
		_, err := a.RecordFlight(&FlightRecord{
			VehicleIndex: i,
			StartedAt:    time.Now(),
			CreatedAt:    int64(100 + i),
		})
		require.NoError(t, err)
	}

	recs, err := a.ListFlights()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 2, recs[0].VehicleIndex)
	assert.Equal(t, 0, recs[2].VehicleIndex)
}

func TestArchiveGetMissing(t *testing.T) {
	a := newTestArchive(t)
	_, err := a.GetFlight("no-such-flight")
	assert.Error(t, err)
}

func TestArchiveReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights.db")

	a, err := OpenArchive(path)
	require.NoError(t, err)
	_, err = a.RecordFlight(&FlightRecord{VehicleIndex: 7, StartedAt: time.Now(), Aborted: true})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// Reopening runs migrations again; they must be no-ops.
	b, err := OpenArchive(path)
	require.NoError(t, err)
	defer b.Close()

	recs, err := b.ListFlights()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 7, recs[0].VehicleIndex)
	assert.True(t, recs[0].Aborted)
}
