// Package timeutil provides a testable abstraction over the time operations
// used by the control loop.
package timeutil

import (
	"sync"
	"time"
)

// Clock covers the operations the flight control loop performs against wall
// time. Production code uses RealClock; tests drive a MockClock so phase
// timing is deterministic.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration since t.
	Since(t time.Time) time.Duration

	// Sleep pauses for the specified duration.
	Sleep(d time.Duration)
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// Sleep pauses the current goroutine for at least the duration d.
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// MockClock is a manually controlled clock for testing. Unlike a real clock,
// Sleep advances the mock time by the requested duration and returns
// immediately, so a loop that sleeps once per tick marches through simulated
// time at full speed.
type MockClock struct {
	mu  sync.Mutex
	now time.Time

	// OnAdvance, if set, is invoked after every advance with the new time.
	// Tests use it to evolve simulated vehicle state alongside the clock.
	OnAdvance func(now time.Time)
}

// NewMockClock creates a MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Since returns the duration since t against the mocked time.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Sleep advances the mocked time by d and returns immediately.
func (c *MockClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves the mock clock forward by the given duration and fires the
// OnAdvance hook.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	hook := c.OnAdvance
	c.mu.Unlock()

	if hook != nil {
		hook(now)
	}
}
