// Package hook delivers system-wide keyboard events to a single callback
// and carries out its forward/swallow decision.
//
// A Manager accepts at most one callback at a time. Run reads events from a
// Device, hands each translated key event to the callback, and forwards the
// original event when the callback says so. Events the device cannot
// translate are forwarded without reaching the callback.
package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/keylayer/internal/input"
	"github.com/dshills/keylayer/internal/input/key"
)

// Hook errors.
var (
	// ErrAlreadyAttached is returned when attaching while another callback
	// is attached.
	ErrAlreadyAttached = errors.New("hook: callback already attached")

	// ErrNotAttached is returned when dropping a handle that is not the
	// attached one.
	ErrNotAttached = errors.New("hook: callback not attached")

	// ErrUnsupported is returned where system-wide capture is unavailable.
	ErrUnsupported = errors.New("hook: keyboard capture not supported on this platform")

	// ErrNoKeyboard is returned when no keyboard device can be found.
	ErrNoKeyboard = errors.New("hook: no keyboard device found")
)

// Callback decides what happens to one key event observed at now.
type Callback func(ev key.Event, now time.Time) input.Decision

// Handle identifies an attached callback.
type Handle uint64

// Event is a key event read from a device.
type Event struct {
	// Key is the translated event. It is only meaningful when Known is true.
	Key key.Event

	// Known is false for native codes with no key.Key.
	Known bool

	// Time is when the device observed the event.
	Time time.Time

	// Code and Value are the native event fields, kept for forwarding.
	Code  uint16
	Value int32
}

// Device is a source of keyboard events that can also pass events on.
type Device interface {
	// Read blocks until the next key event.
	Read() (Event, error)

	// Forward passes ev on to the rest of the system unchanged.
	Forward(ev Event) error

	// Close releases the device. A blocked Read returns an error.
	Close() error
}

// Emitter writes native key events to a virtual output device.
type Emitter interface {
	Emit(code uint16, value int32) error
}

// Manager owns the single attached callback.
type Manager struct {
	mu       sync.Mutex
	callback Callback
	handle   Handle
	nextID   Handle
}

// NewManager creates a new hook manager.
func NewManager() *Manager {
	return &Manager{}
}

// Attach installs cb. Only one callback may be attached at a time.
func (m *Manager) Attach(cb Callback) (Handle, error) {
	if cb == nil {
		return 0, fmt.Errorf("hook: nil callback")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.callback != nil {
		return 0, ErrAlreadyAttached
	}

	m.nextID++
	m.handle = m.nextID
	m.callback = cb
	return m.handle, nil
}

// Drop removes the callback identified by h.
func (m *Manager) Drop(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.callback == nil || h != m.handle {
		return ErrNotAttached
	}

	m.callback = nil
	m.handle = 0
	return nil
}

// IsAttached reports whether a callback is attached.
func (m *Manager) IsAttached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callback != nil
}

// Dispatch hands ev to the attached callback. With no callback attached
// every event is forwarded.
func (m *Manager) Dispatch(ev key.Event, now time.Time) input.Decision {
	m.mu.Lock()
	cb := m.callback
	m.mu.Unlock()

	if cb == nil {
		return input.Forward
	}
	return cb(ev, now)
}

// Run pumps events from dev until ctx is cancelled or the device fails.
// The device is closed on return. Cancellation is not an error.
func (m *Manager) Run(ctx context.Context, dev Device) error {
	type result struct {
		ev  Event
		err error
	}

	events := make(chan result)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev, err := dev.Read()
			select {
			case events <- result{ev, err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var closeOnce sync.Once
	closeDev := func() error {
		var err error
		closeOnce.Do(func() { err = dev.Close() })
		return err
	}
	defer closeDev()

	for {
		select {
		case <-ctx.Done():
			if err := closeDev(); err != nil {
				return fmt.Errorf("closing device: %w", err)
			}
			return nil

		case r := <-events:
			if r.err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("reading device: %w", r.err)
			}
			if err := m.deliver(dev, r.ev); err != nil {
				return err
			}
		}
	}
}

func (m *Manager) deliver(dev Device, ev Event) error {
	if ev.Known && m.Dispatch(ev.Key, ev.Time) == input.Swallow {
		return nil
	}
	if err := dev.Forward(ev); err != nil {
		return fmt.Errorf("forwarding %v: %w", ev.Key, err)
	}
	return nil
}
