//go:build linux

package output

import (
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/holoplot/go-evdev"

	"github.com/dshills/keylayer/internal/input/key"
	"github.com/dshills/keylayer/internal/input/key/evcode"
)

// DefaultDeviceName is the name of the virtual keyboard.
const DefaultDeviceName = "keylayer virtual keyboard"

// eventWriter is the part of *evdev.InputDevice the keyboard writes to.
type eventWriter interface {
	WriteOne(ev *evdev.InputEvent) error
	Close() error
}

// modifierCodes are pressed in this order and released in reverse.
var modifierCodes = []struct {
	mod  key.Modifier
	code evdev.EvCode
}{
	{key.ModControl, evdev.KEY_LEFTCTRL},
	{key.ModShift, evdev.KEY_LEFTSHIFT},
	{key.ModAlt, evdev.KEY_LEFTALT},
}

// VirtualKeyboard is a uinput keyboard. It tracks which keys it holds down
// so that typed strokes do not release modifiers forwarded from the
// physical keyboard.
type VirtualKeyboard struct {
	mu   sync.Mutex
	dev  eventWriter
	down map[evdev.EvCode]bool
}

// NewVirtualKeyboard creates a uinput keyboard able to emit every key in
// the code table.
func NewVirtualKeyboard(name string) (*VirtualKeyboard, error) {
	if name == "" {
		name = DefaultDeviceName
	}

	dev, err := evdev.CreateDevice(name, evdev.InputID{
		BusType: 0x03,
		Vendor:  0x4b4c,
		Product: 0x0001,
		Version: 1,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: evcode.Codes(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating virtual keyboard: %w", err)
	}
	return newVirtualKeyboard(dev), nil
}

func newVirtualKeyboard(dev eventWriter) *VirtualKeyboard {
	return &VirtualKeyboard{dev: dev, down: make(map[evdev.EvCode]bool)}
}

// Emit writes one native key event followed by a sync report.
func (v *VirtualKeyboard) Emit(code uint16, value int32) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.write(evdev.EvCode(code), value); err != nil {
		return err
	}
	return v.sync()
}

// Stroke taps s.Key with s.Modifiers held. Modifiers that are already down
// are left alone.
func (v *VirtualKeyboard) Stroke(s key.Stroke) error {
	code, ok := evcode.CodeFor(s.Key)
	if !ok {
		return fmt.Errorf("%w: %s has no key code", key.ErrUnknownKey, s.Key)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	var pressed []evdev.EvCode
	for _, m := range modifierCodes {
		if !s.Modifiers.Has(m.mod) || v.modifierDown(m.mod) {
			continue
		}
		if err := v.write(m.code, evcode.Pressed); err != nil {
			return err
		}
		pressed = append(pressed, m.code)
	}

	steps := []int32{evcode.Pressed, evcode.Released}
	for _, value := range steps {
		if err := v.write(code, value); err != nil {
			return err
		}
		if err := v.sync(); err != nil {
			return err
		}
	}

	for i := len(pressed) - 1; i >= 0; i-- {
		if err := v.write(pressed[i], evcode.Released); err != nil {
			return err
		}
	}
	if len(pressed) > 0 {
		return v.sync()
	}
	return nil
}

// Close releases every held key and destroys the device.
func (v *VirtualKeyboard) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for code := range v.down {
		v.write(code, evcode.Released)
	}
	v.sync()
	return v.dev.Close()
}

func (v *VirtualKeyboard) modifierDown(mod key.Modifier) bool {
	switch mod {
	case key.ModControl:
		return v.down[evdev.KEY_LEFTCTRL] || v.down[evdev.KEY_RIGHTCTRL]
	case key.ModShift:
		return v.down[evdev.KEY_LEFTSHIFT] || v.down[evdev.KEY_RIGHTSHIFT]
	case key.ModAlt:
		return v.down[evdev.KEY_LEFTALT] || v.down[evdev.KEY_RIGHTALT]
	}
	return false
}

func (v *VirtualKeyboard) write(code evdev.EvCode, value int32) error {
	err := v.dev.WriteOne(&evdev.InputEvent{
		Time:  timeval(time.Now()),
		Type:  evdev.EV_KEY,
		Code:  code,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("writing key %d: %w", code, err)
	}
	if value == evcode.Released {
		delete(v.down, code)
	} else {
		v.down[code] = true
	}
	return nil
}

func (v *VirtualKeyboard) sync() error {
	err := v.dev.WriteOne(&evdev.InputEvent{
		Time: timeval(time.Now()),
		Type: evdev.EV_SYN,
		Code: evdev.SYN_REPORT,
	})
	if err != nil {
		return fmt.Errorf("writing sync report: %w", err)
	}
	return nil
}

func timeval(t time.Time) syscall.Timeval {
	return syscall.NsecToTimeval(t.UnixNano())
}
