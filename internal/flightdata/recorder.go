// Package flightdata records tracking samples during flight and turns a
// completed recording into quantitative tracking-error statistics.
package flightdata

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/flight.report/internal/vehiclelink"
)

// ErrSealed is returned by Record after the recording has been finalized.
var ErrSealed = errors.New("flight recording is sealed")

// Sample is one recorded tracking tuple. Samples are appended in time order
// and never mutated.
type Sample struct {
	T       float64 // elapsed trajectory time, seconds
	Actual  vehiclelink.Pose
	Desired [3]float64
}

// Recorder accumulates samples for one vehicle over one flight. It is the
// only mutator of the sequence; Finalize makes it read-only for the
// analyzer. Recording is only meaningful during tracking with non-negative
// trajectory time — the flight controller enforces that call discipline.
type Recorder struct {
	vehicleIndex int
	samples      []Sample
	sealed       bool
}

// NewRecorder creates an empty recorder for the vehicle with the given index.
func NewRecorder(vehicleIndex int) *Recorder {
	return &Recorder{vehicleIndex: vehicleIndex}
}

// VehicleIndex returns the vehicle this recorder belongs to.
func (r *Recorder) VehicleIndex() int { return r.vehicleIndex }

// Record appends a sample. Append-only: no dedup, no overwrite.
func (r *Recorder) Record(t float64, actual vehiclelink.Pose, desired [3]float64) error {
	if r.sealed {
		return ErrSealed
	}
	r.samples = append(r.samples, Sample{T: t, Actual: actual, Desired: desired})
	return nil
}

// Finalize seals the recording. Idempotent.
func (r *Recorder) Finalize() { r.sealed = true }

// Sealed reports whether the recording has been finalized.
func (r *Recorder) Sealed() bool { return r.sealed }

// Len returns the number of recorded samples.
func (r *Recorder) Len() int { return len(r.samples) }

// Samples returns the recorded sequence. Callers must treat it as read-only.
func (r *Recorder) Samples() []Sample { return r.samples }

// Statistics summarizes per-axis tracking error over a full recording.
// With zero samples everything is zero — callers must check NumSamples
// before interpreting the error fields.
type Statistics struct {
	TotalTime  float64
	NumSamples int
	RMSError   [3]float64 // sqrt(mean(err^2)) per axis
	MeanError  [3]float64 // mean(|err|) per axis
	MaxError   [3]float64 // max(|err|) per axis
}

// Statistics computes tracking-error statistics over desired - actual.
func (r *Recorder) Statistics() Statistics {
	n := len(r.samples)
	if n == 0 {
		return Statistics{}
	}

	s := Statistics{
		TotalTime:  r.samples[n-1].T,
		NumSamples: n,
	}

	sq := make([]float64, n)
	abs := make([]float64, n)
	for axis := 0; axis < 3; axis++ {
		for i, sample := range r.samples {
			actual := [3]float64{sample.Actual.X, sample.Actual.Y, sample.Actual.Z}
			err := sample.Desired[axis] - actual[axis]
			sq[i] = err * err
			abs[i] = math.Abs(err)
		}
		s.RMSError[axis] = math.Sqrt(stat.Mean(sq, nil))
		s.MeanError[axis] = stat.Mean(abs, nil)
		s.MaxError[axis] = floats.Max(abs)
	}
	return s
}
