package vehiclelink

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/banshee-data/flight.report/internal/monitoring"
	"github.com/banshee-data/flight.report/internal/timeutil"
)

var logf = monitoring.Scoped("vehiclelink")

// DefaultBaudRate matches the radio bridge firmware.
const DefaultBaudRate = 115200

// DefaultPoseStaleness is how old a pose snapshot may be before Pose reports
// it as unavailable.
const DefaultPoseStaleness = 500 * time.Millisecond

// SerialLink adapts a vehicle reachable over a serial radio bridge to the
// Link contract. The wire format is newline-delimited ASCII frames:
//
//	P,<x>,<y>,<z>,<vx>,<vy>,<vz>   pose update (bridge -> host)
//	E,<message>                    bridge fault; clears IsSafe until the
//	                               next pose frame
//	S,<x>,<y>,<z>                  position setpoint (host -> bridge)
//	L                              land in place (host -> bridge)
//
// Monitor must be running for pose snapshots to update.
type SerialLink struct {
	port      serial.Port
	clock     timeutil.Clock
	staleness time.Duration

	mu       sync.Mutex
	pose     Pose
	poseAt   time.Time
	havePose bool
	faulted  bool
	faultMsg string
}

// OpenSerialLink opens the serial device at path and wraps it in a Link.
func OpenSerialLink(path string, baud int) (*SerialLink, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return NewSerialLink(port, timeutil.RealClock{}), nil
}

// NewSerialLink wraps an already-open port. Split out from OpenSerialLink so
// tests can inject an in-memory port and clock.
func NewSerialLink(port serial.Port, clock timeutil.Clock) *SerialLink {
	return &SerialLink{
		port:      port,
		clock:     clock,
		staleness: DefaultPoseStaleness,
	}
}

// Monitor reads frames from the port until ctx is cancelled or the port
// fails. It is the single writer of the pose snapshot.
func (l *SerialLink) Monitor(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(l.port)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("serial read: %w", err)
			}
			return nil
		case line := <-lines:
			l.handleFrame(line)
		}
	}
}

func (l *SerialLink) handleFrame(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	switch {
	case strings.HasPrefix(line, "P,"):
		pose, err := parsePoseFrame(line)
		if err != nil {
			logf("dropping malformed pose frame: %v", err)
			return
		}
		l.mu.Lock()
		l.pose = pose
		l.poseAt = l.clock.Now()
		l.havePose = true
		l.faulted = false
		l.mu.Unlock()
	case strings.HasPrefix(line, "E,"):
		msg := strings.TrimPrefix(line, "E,")
		logf("bridge fault: %s", msg)
		l.mu.Lock()
		l.faulted = true
		l.faultMsg = msg
		l.mu.Unlock()
	default:
		// Unknown frames are chatter, not errors.
	}
}

func parsePoseFrame(line string) (Pose, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 7 {
		return Pose{}, fmt.Errorf("pose frame has %d fields, want 7", len(fields))
	}
	vals := make([]float64, 6)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Pose{}, fmt.Errorf("pose field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return Pose{X: vals[0], Y: vals[1], Z: vals[2], VX: vals[3], VY: vals[4], VZ: vals[5]}, nil
}

// Pose returns the latest snapshot. A snapshot older than the staleness
// window reads as unavailable so a mocap dropout is visible to the caller.
func (l *SerialLink) Pose() (Pose, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.havePose {
		return Pose{}, false
	}
	if l.clock.Since(l.poseAt) > l.staleness {
		return Pose{}, false
	}
	return l.pose, true
}

// CommandSetpoint writes a setpoint frame.
func (l *SerialLink) CommandSetpoint(sp Setpoint) error {
	return l.writeFrame(fmt.Sprintf("S,%.4f,%.4f,%.4f\n", sp.X, sp.Y, sp.Z))
}

// LandInPlace writes a land frame.
func (l *SerialLink) LandInPlace() error {
	return l.writeFrame("L\n")
}

func (l *SerialLink) writeFrame(frame string) error {
	if _, err := l.port.Write([]byte(frame)); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

// IsSafe reports false while the bridge has signalled a fault or the pose
// stream has gone stale.
func (l *SerialLink) IsSafe() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.faulted {
		return false
	}
	if !l.havePose {
		// Not unsafe yet: the takeoff phase owns the no-pose timeout.
		return true
	}
	return l.clock.Since(l.poseAt) <= l.staleness
}

// Close closes the underlying port.
func (l *SerialLink) Close() error {
	return l.port.Close()
}
