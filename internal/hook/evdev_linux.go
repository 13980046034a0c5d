//go:build linux

package hook

import (
	"fmt"
	"strings"
	"time"

	"github.com/holoplot/go-evdev"

	"github.com/dshills/keylayer/internal/input/key"
	"github.com/dshills/keylayer/internal/input/key/evcode"
)

// evdevKeyboard is a grabbed evdev keyboard. Forwarded events are written to
// an Emitter, since a grabbed device delivers nothing to the rest of the
// system on its own.
type evdevKeyboard struct {
	dev *evdev.InputDevice
	out Emitter
}

// OpenKeyboard opens and grabs the evdev device at path. Events that are
// forwarded are written to out.
func OpenKeyboard(path string, out Emitter) (Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := dev.Grab(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("grabbing %s: %w", path, err)
	}
	return &evdevKeyboard{dev: dev, out: out}, nil
}

// Read returns the next key event. Synchronisation and non-key events are
// skipped; the output device produces its own reports.
func (k *evdevKeyboard) Read() (Event, error) {
	for {
		ie, err := k.dev.ReadOne()
		if err != nil {
			return Event{}, err
		}
		if ie.Type != evdev.EV_KEY {
			continue
		}

		ev := Event{
			Time:  time.Unix(int64(ie.Time.Sec), int64(ie.Time.Usec)*int64(time.Microsecond)),
			Code:  uint16(ie.Code),
			Value: ie.Value,
		}
		if kk, ok := evcode.KeyFor(ie.Code); ok {
			ev.Known = true
			ev.Key = key.Event{Key: kk, Pressed: evcode.IsPressed(ie.Value)}
		}
		return ev, nil
	}
}

// Forward re-emits ev on the output device.
func (k *evdevKeyboard) Forward(ev Event) error {
	return k.out.Emit(ev.Code, ev.Value)
}

// Close releases the grab and closes the device.
func (k *evdevKeyboard) Close() error {
	k.dev.Ungrab()
	return k.dev.Close()
}

// Keyboard describes an input device that reports letter keys.
type Keyboard struct {
	Path string
	Name string
}

// ListKeyboards returns the evdev devices able to emit letter and Enter keys.
func ListKeyboards() ([]Keyboard, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("listing input devices: %w", err)
	}

	var keyboards []Keyboard
	for _, p := range paths {
		if isKeyboard(p.Path) {
			keyboards = append(keyboards, Keyboard{Path: p.Path, Name: p.Name})
		}
	}
	return keyboards, nil
}

// FindKeyboard returns the first keyboard whose name does not start with
// exclude. The virtual output device is excluded this way so that it is
// never captured.
func FindKeyboard(exclude string) (Keyboard, error) {
	keyboards, err := ListKeyboards()
	if err != nil {
		return Keyboard{}, err
	}
	for _, kb := range keyboards {
		if exclude != "" && strings.HasPrefix(kb.Name, exclude) {
			continue
		}
		return kb, nil
	}
	return Keyboard{}, ErrNoKeyboard
}

func isKeyboard(path string) bool {
	dev, err := evdev.Open(path)
	if err != nil {
		return false
	}
	defer dev.Close()

	var letters, enter bool
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case evdev.KEY_A:
			letters = true
		case evdev.KEY_ENTER:
			enter = true
		}
	}
	return letters && enter
}
