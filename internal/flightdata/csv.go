package flightdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/banshee-data/flight.report/internal/vehiclelink"
)

// CSV layout: one column per sample, rows in this order. Matches the
// reference trajectory table convention so recorded flights can be replayed
// through the same tooling.
const csvRows = 10 // time; actual x,y,z; actual vx,vy,vz; desired x,y,z

// WriteCSV writes the recording as a rectangular table to w.
func (r *Recorder) WriteCSV(w io.Writer) error {
	n := len(r.samples)
	rows := make([][]string, csvRows)
	for i := range rows {
		rows[i] = make([]string, n)
	}

	for j, s := range r.samples {
		cells := [csvRows]float64{
			s.T,
			s.Actual.X, s.Actual.Y, s.Actual.Z,
			s.Actual.VX, s.Actual.VY, s.Actual.VZ,
			s.Desired[0], s.Desired[1], s.Desired[2],
		}
		for i, v := range cells {
			rows[i][j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write flight csv: %w", err)
	}
	return nil
}

// Save writes the recording to dir with a timestamped filename per vehicle,
// creating the directory when needed, and returns the file path.
func (r *Recorder) Save(dir string, stamp time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("flight_%02d_%s.csv", r.vehicleIndex, stamp.Format("20060102150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create flight csv: %w", err)
	}
	defer f.Close()

	if err := r.WriteCSV(f); err != nil {
		return "", err
	}
	return path, nil
}

// ReadCSV parses a recording previously written by WriteCSV into a sealed
// recorder, for offline analysis.
func ReadCSV(rd io.Reader, vehicleIndex int) (*Recorder, error) {
	cr := csv.NewReader(rd)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read flight csv: %w", err)
	}
	if len(records) < csvRows {
		return nil, fmt.Errorf("flight csv has %d rows, want %d", len(records), csvRows)
	}

	n := len(records[0])
	rows := make([][]float64, csvRows)
	for i := 0; i < csvRows; i++ {
		rows[i] = make([]float64, n)
		for j, cell := range records[i] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("flight csv row %d column %d: %w", i+1, j+1, err)
			}
			rows[i][j] = v
		}
	}

	r := NewRecorder(vehicleIndex)
	for j := 0; j < n; j++ {
		pose := vehiclelink.Pose{
			X: rows[1][j], Y: rows[2][j], Z: rows[3][j],
			VX: rows[4][j], VY: rows[5][j], VZ: rows[6][j],
		}
		desired := [3]float64{rows[7][j], rows[8][j], rows[9][j]}
		if err := r.Record(rows[0][j], pose, desired); err != nil {
			return nil, err
		}
	}
	r.Finalize()
	return r, nil
}

// ReadCSVFile opens and parses a recorded flight file.
func ReadCSVFile(path string, vehicleIndex int) (*Recorder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flight csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, vehicleIndex)
}
