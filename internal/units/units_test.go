package units

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid mph", MPH, true},
		{"valid kmph", KMPH, true},
		{"valid kph", KPH, true},
		{"invalid unit", "knots", false},
		{"empty unit", "", false},
		{"uppercase MPS", "MPS", false}, // case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		speedMPS float64
		unit     string
		expected float64
	}{
		{"0 m/s to mps", 0.0, MPS, 0.0},
		{"1.6 m/s to mps", 1.6, MPS, 1.6},
		{"1 m/s to mph", 1.0, MPH, 2.2369362920544},
		{"1 m/s to kmph", 1.0, KMPH, 3.6},
		{"1 m/s to kph", 1.0, KPH, 3.6},
		{"unknown unit falls back to mps", 1.0, "unknown", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Convert(tt.speedMPS, tt.unit); math.Abs(got-tt.expected) > 1e-10 {
				t.Errorf("Convert(%f, %s) = %f, want %f", tt.speedMPS, tt.unit, got, tt.expected)
			}
		})
	}
}

func TestFormatSpeed(t *testing.T) {
	if got := FormatSpeed(1.0, KMPH); got != "3.600 kmph" {
		t.Errorf("FormatSpeed(1, kmph) = %q, want %q", got, "3.600 kmph")
	}
	// Invalid units render in m/s.
	if got := FormatSpeed(1.0, "bogus"); got != "1.000 mps" {
		t.Errorf("FormatSpeed(1, bogus) = %q, want %q", got, "1.000 mps")
	}
}
