// Package input models operator input for teleoperated flight. Device
// handling (keyboard, joystick) lives outside this repository; devices
// publish discrete events into a channel and the control loop reads a
// coherent snapshot once per tick. There is no shared mutable global: the
// controller is the single consumer.
package input

import "math"

// Event is a discrete operator input: a direction change and/or a stop
// request.
type Event struct {
	DX, DY float64 // XY direction, each in [-1, 1]
	DZ     float64 // altitude direction in [-1, 1]
	Stop   bool    // request to end the session and land
}

// Source is the controller-facing view of an input device, selected once at
// session configuration time. Implementations must never block: each call
// reflects the device state as of the current tick.
type Source interface {
	// Direction returns the commanded XY direction, normalized so a
	// diagonal is no faster than a straight move.
	Direction() (dx, dy float64)

	// AltitudeDirection returns the commanded altitude direction in [-1, 1].
	AltitudeDirection() float64

	// StopRequested reports whether the operator asked to stop. Sticky: once
	// true it stays true.
	StopRequested() bool
}

// ChannelSource adapts a stream of Events to the Source interface. The
// device-reading goroutine publishes with Publish (or via Events); the
// control loop is the only reader. Pending events are drained on each
// accessor call, so the snapshot is at most one tick old.
type ChannelSource struct {
	ch      chan Event
	current Event
	stopped bool
}

// NewChannelSource creates a source with a small event buffer.
func NewChannelSource() *ChannelSource {
	return &ChannelSource{ch: make(chan Event, 16)}
}

// Events returns the channel a device goroutine publishes into.
func (s *ChannelSource) Events() chan<- Event { return s.ch }

// Publish enqueues an event, dropping it when the buffer is full: stale
// direction updates are worthless and the device must never block.
// Stop events are latched by the consumer, so only a direction update can be
// dropped safely — Publish retries stop events on a drained slot.
func (s *ChannelSource) Publish(e Event) {
	select {
	case s.ch <- e:
	default:
		if e.Stop {
			// Make room: drop the oldest pending event instead.
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- e:
			default:
			}
		}
	}
}

// drain applies all pending events. Single consumer; no locking needed.
func (s *ChannelSource) drain() {
	for {
		select {
		case e := <-s.ch:
			s.current = e
			if e.Stop {
				s.stopped = true
			}
		default:
			return
		}
	}
}

// Direction implements Source.
func (s *ChannelSource) Direction() (float64, float64) {
	s.drain()
	return normalize(s.current.DX, s.current.DY)
}

// AltitudeDirection implements Source.
func (s *ChannelSource) AltitudeDirection() float64 {
	s.drain()
	return clampUnit(s.current.DZ)
}

// StopRequested implements Source.
func (s *ChannelSource) StopRequested() bool {
	s.drain()
	return s.stopped
}

// normalize scales (dx, dy) to at most unit magnitude so diagonal input is
// not faster than axis-aligned input.
func normalize(dx, dy float64) (float64, float64) {
	mag := math.Hypot(dx, dy)
	if mag <= 1 {
		return dx, dy
	}
	return dx / mag, dy / mag
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// StaticSource is an inert Source for sessions without an operator device:
// zero direction, never stopping.
type StaticSource struct{}

// Direction implements Source.
func (StaticSource) Direction() (float64, float64) { return 0, 0 }

// AltitudeDirection implements Source.
func (StaticSource) AltitudeDirection() float64 { return 0 }

// StopRequested implements Source.
func (StaticSource) StopRequested() bool { return false }
