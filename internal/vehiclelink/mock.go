package vehiclelink

import (
	"sync"
)

// MockLink is a scripted Link for tests and dev mode. Pose playback is
// either a fixed snapshot set with SetPose or a PoseFunc computed on every
// read; all commands are recorded.
type MockLink struct {
	mu        sync.Mutex
	pose      Pose
	havePose  bool
	safe      bool
	setpoints []Setpoint
	landCalls int
	closed    bool

	// PoseFunc, when non-nil, overrides the stored snapshot. Tests hook it
	// to a mock clock so the simulated vehicle evolves with time.
	PoseFunc func() (Pose, bool)

	// CommandErr, when non-nil, is returned by CommandSetpoint.
	CommandErr error
}

// NewMockLink returns a safe link with no pose yet.
func NewMockLink() *MockLink {
	return &MockLink{safe: true}
}

// SetPose installs the pose snapshot returned by Pose.
func (m *MockLink) SetPose(p Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = p
	m.havePose = true
}

// ClearPose makes the pose unavailable again.
func (m *MockLink) ClearPose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.havePose = false
}

// SetSafe sets the IsSafe predicate result.
func (m *MockLink) SetSafe(safe bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.safe = safe
}

// Pose implements Link.
func (m *MockLink) Pose() (Pose, bool) {
	m.mu.Lock()
	fn := m.PoseFunc
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.havePose {
		return Pose{}, false
	}
	return m.pose, true
}

// CommandSetpoint implements Link, recording the setpoint.
func (m *MockLink) CommandSetpoint(sp Setpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommandErr != nil {
		return m.CommandErr
	}
	m.setpoints = append(m.setpoints, sp)
	return nil
}

// LandInPlace implements Link, counting calls.
func (m *MockLink) LandInPlace() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.landCalls++
	return nil
}

// IsSafe implements Link.
func (m *MockLink) IsSafe() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.safe
}

// Close implements Link.
func (m *MockLink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Setpoints returns a copy of all recorded setpoints.
func (m *MockLink) Setpoints() []Setpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Setpoint, len(m.setpoints))
	copy(out, m.setpoints)
	return out
}

// LastSetpoint returns the most recent setpoint, if any.
func (m *MockLink) LastSetpoint() (Setpoint, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.setpoints) == 0 {
		return Setpoint{}, false
	}
	return m.setpoints[len(m.setpoints)-1], true
}

// LandCalls returns how many times LandInPlace was commanded.
func (m *MockLink) LandCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.landCalls
}

// Closed reports whether Close was called.
func (m *MockLink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
