//go:build linux

package evcode

import (
	"github.com/holoplot/go-evdev"

	"github.com/dshills/keylayer/internal/input/key"
)

// Key state values carried in EV_KEY events.
const (
	Released int32 = 0
	Pressed  int32 = 1
	Repeated int32 = 2
)

var toKey = map[evdev.EvCode]key.Key{
	evdev.KEY_A: key.A, evdev.KEY_B: key.B, evdev.KEY_C: key.C, evdev.KEY_D: key.D,
	evdev.KEY_E: key.E, evdev.KEY_F: key.F, evdev.KEY_G: key.G, evdev.KEY_H: key.H,
	evdev.KEY_I: key.I, evdev.KEY_J: key.J, evdev.KEY_K: key.K, evdev.KEY_L: key.L,
	evdev.KEY_M: key.M, evdev.KEY_N: key.N, evdev.KEY_O: key.O, evdev.KEY_P: key.P,
	evdev.KEY_Q: key.Q, evdev.KEY_R: key.R, evdev.KEY_S: key.S, evdev.KEY_T: key.T,
	evdev.KEY_U: key.U, evdev.KEY_V: key.V, evdev.KEY_W: key.W, evdev.KEY_X: key.X,
	evdev.KEY_Y: key.Y, evdev.KEY_Z: key.Z,

	evdev.KEY_0: key.D0, evdev.KEY_1: key.D1, evdev.KEY_2: key.D2, evdev.KEY_3: key.D3,
	evdev.KEY_4: key.D4, evdev.KEY_5: key.D5, evdev.KEY_6: key.D6, evdev.KEY_7: key.D7,
	evdev.KEY_8: key.D8, evdev.KEY_9: key.D9,

	evdev.KEY_F1: key.F1, evdev.KEY_F2: key.F2, evdev.KEY_F3: key.F3, evdev.KEY_F4: key.F4,
	evdev.KEY_F5: key.F5, evdev.KEY_F6: key.F6, evdev.KEY_F7: key.F7, evdev.KEY_F8: key.F8,
	evdev.KEY_F9: key.F9, evdev.KEY_F10: key.F10, evdev.KEY_F11: key.F11, evdev.KEY_F12: key.F12,
	evdev.KEY_F13: key.F13, evdev.KEY_F14: key.F14, evdev.KEY_F15: key.F15, evdev.KEY_F16: key.F16,
	evdev.KEY_F17: key.F17, evdev.KEY_F18: key.F18, evdev.KEY_F19: key.F19, evdev.KEY_F20: key.F20,
	evdev.KEY_F21: key.F21, evdev.KEY_F22: key.F22, evdev.KEY_F23: key.F23, evdev.KEY_F24: key.F24,

	evdev.KEY_ESC:        key.Escape,
	evdev.KEY_ENTER:      key.Enter,
	evdev.KEY_TAB:        key.Tab,
	evdev.KEY_BACKSPACE:  key.Backspace,
	evdev.KEY_DELETE:     key.Delete,
	evdev.KEY_INSERT:     key.Insert,
	evdev.KEY_HOME:       key.Home,
	evdev.KEY_END:        key.End,
	evdev.KEY_PAGEUP:     key.PageUp,
	evdev.KEY_PAGEDOWN:   key.PageDown,
	evdev.KEY_SPACE:      key.Space,
	evdev.KEY_CAPSLOCK:   key.CapsLock,
	evdev.KEY_NUMLOCK:    key.NumLock,
	evdev.KEY_SCROLLLOCK: key.ScrollLock,
	evdev.KEY_SYSRQ:      key.PrintScreen,
	evdev.KEY_PAUSE:      key.Pause,

	evdev.KEY_UP:    key.Up,
	evdev.KEY_DOWN:  key.Down,
	evdev.KEY_LEFT:  key.Left,
	evdev.KEY_RIGHT: key.Right,

	evdev.KEY_SEMICOLON:  key.Semicolon,
	evdev.KEY_COMMA:      key.Comma,
	evdev.KEY_DOT:        key.Period,
	evdev.KEY_SLASH:      key.Slash,
	evdev.KEY_BACKSLASH:  key.Backslash,
	evdev.KEY_LEFTBRACE:  key.LeftBracket,
	evdev.KEY_RIGHTBRACE: key.RightBracket,
	evdev.KEY_MINUS:      key.Minus,
	evdev.KEY_EQUAL:      key.Equal,
	evdev.KEY_APOSTROPHE: key.Apostrophe,
	evdev.KEY_GRAVE:      key.Grave,

	evdev.KEY_KP0: key.KP0, evdev.KEY_KP1: key.KP1, evdev.KEY_KP2: key.KP2, evdev.KEY_KP3: key.KP3,
	evdev.KEY_KP4: key.KP4, evdev.KEY_KP5: key.KP5, evdev.KEY_KP6: key.KP6, evdev.KEY_KP7: key.KP7,
	evdev.KEY_KP8: key.KP8, evdev.KEY_KP9: key.KP9,
	evdev.KEY_KPPLUS:     key.KPAdd,
	evdev.KEY_KPMINUS:    key.KPSubtract,
	evdev.KEY_KPASTERISK: key.KPMultiply,
	evdev.KEY_KPSLASH:    key.KPDivide,
	evdev.KEY_KPDOT:      key.KPDecimal,
	evdev.KEY_KPENTER:    key.KPEnter,

	evdev.KEY_LEFTSHIFT:  key.LeftShift,
	evdev.KEY_RIGHTSHIFT: key.RightShift,
	evdev.KEY_LEFTCTRL:   key.LeftControl,
	evdev.KEY_RIGHTCTRL:  key.RightControl,
	evdev.KEY_LEFTALT:    key.LeftAlt,
	evdev.KEY_RIGHTALT:   key.RightAlt,
	evdev.KEY_LEFTMETA:   key.LeftMeta,
	evdev.KEY_RIGHTMETA:  key.RightMeta,
	evdev.KEY_COMPOSE:    key.Apps,
}

var fromKey = func() map[key.Key]evdev.EvCode {
	m := make(map[key.Key]evdev.EvCode, len(toKey))
	for code, k := range toKey {
		m[k] = code
	}
	// Aggregates type as their left variant.
	m[key.Shift] = evdev.KEY_LEFTSHIFT
	m[key.Control] = evdev.KEY_LEFTCTRL
	m[key.Alt] = evdev.KEY_LEFTALT
	return m
}()

// KeyFor returns the key for an EV_KEY code.
func KeyFor(code evdev.EvCode) (key.Key, bool) {
	k, ok := toKey[code]
	return k, ok
}

// CodeFor returns the EV_KEY code that types k.
func CodeFor(k key.Key) (evdev.EvCode, bool) {
	code, ok := fromKey[k]
	return code, ok
}

// Codes returns every code in the table. It is used to declare the
// capabilities of a virtual keyboard.
func Codes() []evdev.EvCode {
	codes := make([]evdev.EvCode, 0, len(toKey))
	for code := range toKey {
		codes = append(codes, code)
	}
	return codes
}

// IsPressed reports whether an EV_KEY value is a press or auto-repeat.
func IsPressed(value int32) bool {
	return value == Pressed || value == Repeated
}
