package vehiclelink

import (
	"testing"
	"time"

	"github.com/banshee-data/flight.report/internal/timeutil"
)

func TestParsePoseFrame(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Pose
		wantErr bool
	}{
		{
			name: "valid frame",
			line: "P,1.5,-0.25,0.8,0.1,0,-0.05",
			want: Pose{X: 1.5, Y: -0.25, Z: 0.8, VX: 0.1, VY: 0, VZ: -0.05},
		},
		{
			name: "spaces tolerated",
			line: "P, 1.0, 2.0, 0.5, 0, 0, 0",
			want: Pose{X: 1, Y: 2, Z: 0.5},
		},
		{"too few fields", "P,1,2,3", Pose{}, true},
		{"non numeric", "P,a,2,3,0,0,0", Pose{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePoseFrame(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePoseFrame(%q) succeeded, want error", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePoseFrame(%q) failed: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("parsePoseFrame(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestSerialLinkPoseStaleness(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	link := NewSerialLink(nil, clock)

	if _, ok := link.Pose(); ok {
		t.Fatal("pose should be unavailable before any frame")
	}
	if !link.IsSafe() {
		t.Error("no-pose-yet must not read as unsafe; takeoff owns that timeout")
	}

	link.handleFrame("P,1,2,0.5,0,0,0")
	if pose, ok := link.Pose(); !ok || pose.X != 1 {
		t.Fatalf("pose after frame = %+v ok=%v, want X=1 ok=true", pose, ok)
	}

	clock.Advance(DefaultPoseStaleness + time.Millisecond)
	if _, ok := link.Pose(); ok {
		t.Error("stale pose must read as unavailable")
	}
	if link.IsSafe() {
		t.Error("stale pose stream must read as unsafe")
	}
}

func TestSerialLinkFaultFrames(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	link := NewSerialLink(nil, clock)

	link.handleFrame("P,0,0,1,0,0,0")
	if !link.IsSafe() {
		t.Fatal("fresh pose should be safe")
	}

	link.handleFrame("E,battery low")
	if link.IsSafe() {
		t.Error("fault frame must clear IsSafe")
	}

	// A new pose frame clears the fault.
	link.handleFrame("P,0,0,1,0,0,0")
	if !link.IsSafe() {
		t.Error("pose frame after fault should restore IsSafe")
	}

	// Malformed pose frames are dropped, not applied.
	link.handleFrame("P,bogus")
	if pose, ok := link.Pose(); !ok || pose.Z != 1 {
		t.Errorf("malformed frame corrupted snapshot: %+v ok=%v", pose, ok)
	}
}

func TestFollowerLinkConverges(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	f := NewFollowerLink(clock, [3]float64{0.5, -0.5, 0})

	pose, ok := f.Pose()
	if !ok || pose.Z != 0 {
		t.Fatalf("follower should start grounded, got %+v ok=%v", pose, ok)
	}

	if err := f.CommandSetpoint(Setpoint{X: 0.5, Y: -0.5, Z: 1.0}); err != nil {
		t.Fatal(err)
	}
	// Several lag constants later the follower should be essentially at the
	// target.
	clock.Advance(5 * time.Second)
	pose, _ = f.Pose()
	if pose.Z < 0.95 {
		t.Errorf("follower altitude %v after 5s, want near 1.0", pose.Z)
	}

	if err := f.LandInPlace(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Second)
	pose, _ = f.Pose()
	if pose.Z > 0.05 {
		t.Errorf("follower altitude %v after landing, want near 0", pose.Z)
	}
	if f.LandCalls() != 1 {
		t.Errorf("land calls = %d, want 1", f.LandCalls())
	}
}

func TestMockLinkRecordsCommands(t *testing.T) {
	m := NewMockLink()

	if _, ok := m.Pose(); ok {
		t.Fatal("new mock should have no pose")
	}
	m.SetPose(Pose{X: 1, Z: 0.5})
	if pose, ok := m.Pose(); !ok || pose.X != 1 {
		t.Fatalf("pose = %+v ok=%v", pose, ok)
	}

	if err := m.CommandSetpoint(Setpoint{X: 1, Y: 2, Z: 3}); err != nil {
		t.Fatal(err)
	}
	if err := m.LandInPlace(); err != nil {
		t.Fatal(err)
	}

	if got := m.Setpoints(); len(got) != 1 || got[0] != (Setpoint{X: 1, Y: 2, Z: 3}) {
		t.Errorf("setpoints = %v", got)
	}
	if m.LandCalls() != 1 {
		t.Errorf("land calls = %d, want 1", m.LandCalls())
	}
}
