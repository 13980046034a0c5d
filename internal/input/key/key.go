package key

import (
	"fmt"
	"strings"
)

// Key identifies a physical keyboard key.
//
// A handful of values are virtual aggregates (Shift, Control, Alt, Modifiers)
// that stand for the union of their left/right physical variants. They are
// never produced by an input device but may be queried and bound like any
// other key.
type Key uint8

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Letters
	A
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z

	// Digit row
	D0
	D1
	D2
	D3
	D4
	D5
	D6
	D7
	D8
	D9

	// Function keys
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24

	// Special keys
	Escape
	Enter
	Tab
	Backspace
	Delete
	Insert
	Home
	End
	PageUp
	PageDown
	Space
	CapsLock
	NumLock
	ScrollLock
	PrintScreen
	Pause

	// Arrow keys
	Up
	Down
	Left
	Right

	// Punctuation (US layout positions)
	Semicolon
	Comma
	Period
	Slash
	Backslash
	LeftBracket
	RightBracket
	Minus
	Equal
	Apostrophe
	Grave

	// Keypad keys
	KP0
	KP1
	KP2
	KP3
	KP4
	KP5
	KP6
	KP7
	KP8
	KP9
	KPAdd
	KPSubtract
	KPMultiply
	KPDivide
	KPDecimal
	KPEnter

	// Physical modifier keys
	LeftShift
	RightShift
	LeftControl
	RightControl
	LeftAlt
	RightAlt
	LeftMeta
	RightMeta
	Apps

	// Virtual aggregates
	Shift
	Control
	Alt
	Modifiers

	// keyCount must stay last.
	keyCount
)

var names = map[Key]string{
	KeyNone: "None",

	A: "A", B: "B", C: "C", D: "D", E: "E", F: "F", G: "G",
	H: "H", I: "I", J: "J", K: "K", L: "L", M: "M", N: "N",
	O: "O", P: "P", Q: "Q", R: "R", S: "S", T: "T", U: "U",
	V: "V", W: "W", X: "X", Y: "Y", Z: "Z",

	D0: "D0", D1: "D1", D2: "D2", D3: "D3", D4: "D4",
	D5: "D5", D6: "D6", D7: "D7", D8: "D8", D9: "D9",

	F1: "F1", F2: "F2", F3: "F3", F4: "F4", F5: "F5", F6: "F6",
	F7: "F7", F8: "F8", F9: "F9", F10: "F10", F11: "F11", F12: "F12",
	F13: "F13", F14: "F14", F15: "F15", F16: "F16", F17: "F17", F18: "F18",
	F19: "F19", F20: "F20", F21: "F21", F22: "F22", F23: "F23", F24: "F24",

	Escape:      "Escape",
	Enter:       "Enter",
	Tab:         "Tab",
	Backspace:   "Backspace",
	Delete:      "Delete",
	Insert:      "Insert",
	Home:        "Home",
	End:         "End",
	PageUp:      "PageUp",
	PageDown:    "PageDown",
	Space:       "Space",
	CapsLock:    "CapsLock",
	NumLock:     "NumLock",
	ScrollLock:  "ScrollLock",
	PrintScreen: "PrintScreen",
	Pause:       "Pause",

	Up:    "Up",
	Down:  "Down",
	Left:  "Left",
	Right: "Right",

	Semicolon:    "Semicolon",
	Comma:        "Comma",
	Period:       "Period",
	Slash:        "Slash",
	Backslash:    "Backslash",
	LeftBracket:  "LeftBracket",
	RightBracket: "RightBracket",
	Minus:        "Minus",
	Equal:        "Equal",
	Apostrophe:   "Apostrophe",
	Grave:        "Grave",

	KP0: "KP0", KP1: "KP1", KP2: "KP2", KP3: "KP3", KP4: "KP4",
	KP5: "KP5", KP6: "KP6", KP7: "KP7", KP8: "KP8", KP9: "KP9",
	KPAdd:      "KPAdd",
	KPSubtract: "KPSubtract",
	KPMultiply: "KPMultiply",
	KPDivide:   "KPDivide",
	KPDecimal:  "KPDecimal",
	KPEnter:    "KPEnter",

	LeftShift:    "LeftShift",
	RightShift:   "RightShift",
	LeftControl:  "LeftControl",
	RightControl: "RightControl",
	LeftAlt:      "LeftAlt",
	RightAlt:     "RightAlt",
	LeftMeta:     "LeftMeta",
	RightMeta:    "RightMeta",
	Apps:         "Apps",

	Shift:     "Shift",
	Control:   "Control",
	Alt:       "Alt",
	Modifiers: "Modifiers",
}

// wireNames are the settings-file names of keys whose canonical name differs
// from the name older settings files use. Writing these keeps files readable
// by those programs.
var wireNames = map[Key]string{
	Backspace:    "Back",
	Semicolon:    "Oem1",
	Slash:        "Oem2",
	Grave:        "Oem3",
	LeftBracket:  "Oem4",
	Backslash:    "Oem5",
	RightBracket: "Oem6",
	Apostrophe:   "Oem7",
	Comma:        "Oemcomma",
	Period:       "OemPeriod",
	Minus:        "OemMinus",
	Equal:        "Oemplus",
	KP0:          "NumPad0",
	KP1:          "NumPad1",
	KP2:          "NumPad2",
	KP3:          "NumPad3",
	KP4:          "NumPad4",
	KP5:          "NumPad5",
	KP6:          "NumPad6",
	KP7:          "NumPad7",
	KP8:          "NumPad8",
	KP9:          "NumPad9",
	KPAdd:        "Add",
	KPSubtract:   "Subtract",
	KPMultiply:   "Multiply",
	KPDivide:     "Divide",
	KPDecimal:    "Decimal",
	LeftShift:    "LShiftKey",
	RightShift:   "RShiftKey",
	LeftControl:  "LControlKey",
	RightControl: "RControlKey",
	LeftAlt:      "LMenu",
	RightAlt:     "RMenu",
	LeftMeta:     "LWin",
	RightMeta:    "RWin",
	Shift:        "ShiftKey",
	Control:      "ControlKey",
	Alt:          "Menu",
}

// aliases are alternative spellings accepted by FromName. They cover the
// names older settings files used for the same physical keys.
var aliases = map[string]Key{
	"esc":              Escape,
	"return":           Enter,
	"back":             Backspace,
	"del":              Delete,
	"ins":              Insert,
	"pgup":             PageUp,
	"prior":            PageUp,
	"pgdn":             PageDown,
	"next":             PageDown,
	"capital":          CapsLock,
	"scroll":           ScrollLock,
	"oem1":             Semicolon,
	"oemsemicolon":     Semicolon,
	"oemcomma":         Comma,
	"oemperiod":        Period,
	"oem2":             Slash,
	"oemquestion":      Slash,
	"oem5":             Backslash,
	"oembackslash":     Backslash,
	"oempipe":          Backslash,
	"oem4":             LeftBracket,
	"oemopenbrackets":  LeftBracket,
	"oem6":             RightBracket,
	"oemclosebrackets": RightBracket,
	"oemminus":         Minus,
	"oemplus":          Equal,
	"oem7":             Apostrophe,
	"oemquotes":        Apostrophe,
	"oem3":             Grave,
	"oemtilde":         Grave,
	"add":              KPAdd,
	"subtract":         KPSubtract,
	"multiply":         KPMultiply,
	"divide":           KPDivide,
	"decimal":          KPDecimal,
	"lshiftkey":        LeftShift,
	"rshiftkey":        RightShift,
	"lcontrolkey":      LeftControl,
	"rcontrolkey":      RightControl,
	"lmenu":            LeftAlt,
	"rmenu":            RightAlt,
	"lwin":             LeftMeta,
	"rwin":             RightMeta,
	"shiftkey":         Shift,
	"controlkey":       Control,
	"ctrl":             Control,
	"menu":             Alt,
	"menukey":          Alt,
	"numpad0":          KP0,
	"numpad1":          KP1,
	"numpad2":          KP2,
	"numpad3":          KP3,
	"numpad4":          KP4,
	"numpad5":          KP5,
	"numpad6":          KP6,
	"numpad7":          KP7,
	"numpad8":          KP8,
	"numpad9":          KP9,
}

// keyNameMap maps lowercase names and aliases to keys.
var keyNameMap = func() map[string]Key {
	m := make(map[string]Key, len(names)+len(aliases))
	for k, name := range names {
		m[strings.ToLower(name)] = k
	}
	for alias, k := range aliases {
		m[alias] = k
	}
	return m
}()

// String returns the canonical name of the key.
func (k Key) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k)
}

// FromName returns the key for a name (case-insensitive).
// Canonical names and legacy aliases are both accepted.
func FromName(name string) (Key, bool) {
	k, ok := keyNameMap[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// IsValid reports whether k is a known key other than KeyNone.
func (k Key) IsValid() bool {
	return k > KeyNone && k < keyCount
}

// IsAggregate reports whether k is a virtual key standing for several
// physical keys.
func (k Key) IsAggregate() bool {
	return k >= Shift && k <= Modifiers
}

// IsModifier reports whether k is a physical or aggregate modifier key.
func (k Key) IsModifier() bool {
	return (k >= LeftShift && k <= RightAlt) || k.IsAggregate()
}

// IsLetter reports whether k is A-Z.
func (k Key) IsLetter() bool {
	return k >= A && k <= Z
}

// IsDigit reports whether k is on the digit row.
func (k Key) IsDigit() bool {
	return k >= D0 && k <= D9
}

// IsFunctionKey reports whether k is F1-F24.
func (k Key) IsFunctionKey() bool {
	return k >= F1 && k <= F24
}

var (
	shiftKeys    = []Key{LeftShift, RightShift}
	controlKeys  = []Key{LeftControl, RightControl}
	altKeys      = []Key{LeftAlt, RightAlt}
	modifierKeys = []Key{LeftAlt, RightAlt, LeftShift, RightShift, LeftControl, RightControl}
)

// Constituents returns the physical keys k stands for. For a plain key the
// result is the key itself. The returned slice must not be modified.
func (k Key) Constituents() []Key {
	switch k {
	case Shift:
		return shiftKeys
	case Control:
		return controlKeys
	case Alt:
		return altKeys
	case Modifiers:
		return modifierKeys
	default:
		return []Key{k}
	}
}

// All returns every valid key, aggregates included, in enumeration order.
func All() []Key {
	keys := make([]Key, 0, keyCount-1)
	for k := KeyNone + 1; k < keyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	if _, ok := names[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKey, k)
	}
	return []byte(k.WireName()), nil
}

// WireName returns the name written to settings files. FromName accepts it.
func (k Key) WireName() string {
	if name, ok := wireNames[k]; ok {
		return name
	}
	return k.String()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, ok := FromName(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, text)
	}
	*k = parsed
	return nil
}
