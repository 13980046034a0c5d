package key

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parse errors
var (
	ErrUnknownKey       = errors.New("unknown key")
	ErrUnknownModifier  = errors.New("unknown modifier")
	ErrInvalidSpec      = errors.New("invalid key specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in key specification")
)

// MaxRepeat is the largest repeat count accepted in a brace group.
const MaxRepeat = 255

// Stroke is one key tap with the modifiers held around it.
type Stroke struct {
	Key       Key
	Modifiers Modifier
}

// String returns a representation such as "Shift+X" or "Left".
func (s Stroke) String() string {
	if s.Modifiers == ModNone {
		return s.Key.String()
	}
	return strings.ReplaceAll(s.Modifiers.String(), ", ", "+") + "+" + s.Key.String()
}

// sendNames holds the brace-escaped send representation of keys that have
// no printable character.
var sendNames = map[Key]string{
	Backspace:   "BACKSPACE",
	Pause:       "BREAK",
	CapsLock:    "CAPSLOCK",
	Delete:      "DELETE",
	Down:        "DOWN",
	End:         "END",
	Enter:       "ENTER",
	Escape:      "ESCAPE",
	Home:        "HOME",
	Insert:      "INSERT",
	Left:        "LEFT",
	NumLock:     "NUMLOCK",
	PageDown:    "PGDN",
	PageUp:      "PGUP",
	PrintScreen: "PRTSC",
	Right:       "RIGHT",
	ScrollLock:  "SCROLLLOCK",
	Tab:         "TAB",
	Up:          "UP",
	KPAdd:       "ADD",
	KPSubtract:  "SUBTRACT",
	KPMultiply:  "MULTIPLY",
	KPDivide:    "DIVIDE",
	KPEnter:     "ENTER",
}

// sendChars holds the literal send representation of printable keys that
// are not letters or digits.
var sendChars = map[Key]string{
	Space:        " ",
	Semicolon:    ";",
	Comma:        ",",
	Period:       ".",
	Slash:        "/",
	Backslash:    "\\",
	LeftBracket:  "[",
	RightBracket: "]",
	Minus:        "-",
	Equal:        "=",
	Apostrophe:   "'",
	Grave:        "`",
	KPDecimal:    ".",
}

// SendString returns the send representation of k: the text which, when
// replayed, reproduces a tap of k. Modifier keys render as their prefix
// character ("+", "^", "%") so that they combine with the key that follows.
// Keys with no representation return "".
func (k Key) SendString() string {
	switch {
	case k.IsLetter():
		return string(rune('a' + (k - A)))
	case k.IsDigit():
		return string(rune('0' + (k - D0)))
	case k >= KP0 && k <= KP9:
		return string(rune('0' + (k - KP0)))
	case k.IsFunctionKey():
		return "{" + strings.ToUpper(k.String()) + "}"
	}

	switch k {
	case Shift, LeftShift, RightShift:
		return "+"
	case Control, LeftControl, RightControl:
		return "^"
	case Alt, LeftAlt, RightAlt:
		return "%"
	}

	if name, ok := sendNames[k]; ok {
		return "{" + name + "}"
	}
	if s, ok := sendChars[k]; ok {
		return s
	}
	return ""
}

// braceNameMap maps upper-case brace names to keys.
var braceNameMap = func() map[string]Key {
	m := map[string]Key{
		"BS":   Backspace,
		"BKSP": Backspace,
		"DEL":  Delete,
		"ESC":  Escape,
		"INS":  Insert,
	}
	for k, name := range sendNames {
		if k == KPEnter {
			continue
		}
		m[name] = k
	}
	for k := F1; k <= F24; k++ {
		m[strings.ToUpper(k.String())] = k
	}
	return m
}()

// shiftedChars maps characters typed with Shift on a US layout to their key.
var shiftedChars = map[rune]Key{
	'!': D1, '@': D2, '#': D3, '$': D4, '%': D5,
	'^': D6, '&': D7, '*': D8, '(': D9, ')': D0,
	':': Semicolon, '<': Comma, '>': Period, '?': Slash, '|': Backslash,
	'{': LeftBracket, '}': RightBracket, '_': Minus, '+': Equal,
	'"': Apostrophe, '~': Grave,
}

// charStroke returns the stroke producing r on a US layout.
func charStroke(r rune) (Stroke, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return Stroke{Key: A + Key(r-'a')}, true
	case r >= 'A' && r <= 'Z':
		return Stroke{Key: A + Key(r-'A'), Modifiers: ModShift}, true
	case r >= '0' && r <= '9':
		return Stroke{Key: D0 + Key(r-'0')}, true
	case r == '\n':
		return Stroke{Key: Enter}, true
	case r == '\t':
		return Stroke{Key: Tab}, true
	}
	if k, ok := shiftedChars[r]; ok {
		return Stroke{Key: k, Modifiers: ModShift}, true
	}
	for k, s := range sendChars {
		if k != KPDecimal && s == string(r) {
			return Stroke{Key: k}, true
		}
	}
	return Stroke{}, false
}

// ParseStrokes parses text in send notation into key strokes.
//
// Supported syntax:
//   - Literal characters: "abc", "A" (implicit Shift), ";"
//   - Brace names: "{ENTER}", "{LEFT}", "{F5}", "{PGDN}"
//   - Repeats: "{LEFT 3}", "{h 2}"
//   - Escaped specials: "{+}", "{^}", "{%}", "{~}", "{(}", "{)}", "{{}", "{}}"
//   - Modifier prefixes: "+" Shift, "^" Control, "%" Alt, e.g. "^c", "+{TAB}"
//   - Groups: "+(ab)" holds Shift for both a and b
//   - "~" is Enter
func ParseStrokes(text string) ([]Stroke, error) {
	var (
		strokes []Stroke
		pending Modifier
		groups  []Modifier
	)

	held := func() Modifier {
		mods := pending
		if len(groups) > 0 {
			mods = mods.With(groups[len(groups)-1])
		}
		return mods
	}
	emit := func(s Stroke, count int) {
		s.Modifiers = s.Modifiers.With(held())
		for i := 0; i < count; i++ {
			strokes = append(strokes, s)
		}
		pending = ModNone
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch r {
		case '+':
			pending = pending.With(ModShift)
		case '^':
			pending = pending.With(ModControl)
		case '%':
			pending = pending.With(ModAlt)
		case '~':
			emit(Stroke{Key: Enter}, 1)
		case '(':
			groups = append(groups, held())
			pending = ModNone
		case ')':
			if len(groups) == 0 {
				return nil, fmt.Errorf("%w: unexpected ')' at %d", ErrUnmatchedBracket, i)
			}
			if pending != ModNone {
				return nil, fmt.Errorf("%w: modifier without key at %d", ErrInvalidSpec, i)
			}
			groups = groups[:len(groups)-1]
		case '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end == 0 && strings.HasPrefix(text[i+1:], "}}") {
				// "{}}" is a literal closing brace.
				end = 1
			}
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '{' at %d", ErrUnmatchedBracket, i)
			}
			inner := text[i+1 : i+1+end]
			stroke, count, err := parseBrace(inner)
			if err != nil {
				return nil, err
			}
			emit(stroke, count)
			size = end + 2
		case '}':
			return nil, fmt.Errorf("%w: unexpected '}' at %d", ErrUnmatchedBracket, i)
		default:
			stroke, ok := charStroke(r)
			if !ok {
				return nil, fmt.Errorf("%w: no key produces %q", ErrInvalidSpec, r)
			}
			emit(stroke, 1)
		}
		i += size
	}

	if len(groups) > 0 {
		return nil, fmt.Errorf("%w: unclosed '('", ErrUnmatchedBracket)
	}
	if pending != ModNone {
		return nil, fmt.Errorf("%w: trailing modifier %s", ErrInvalidSpec, pending)
	}
	return strokes, nil
}

// parseBrace parses the content of a "{...}" group.
func parseBrace(inner string) (Stroke, int, error) {
	if inner == "" {
		return Stroke{}, 0, fmt.Errorf("%w: empty braces", ErrInvalidSpec)
	}

	name, count := inner, 1
	if idx := strings.LastIndexByte(inner, ' '); idx > 0 {
		n, err := strconv.Atoi(inner[idx+1:])
		if err != nil || n < 0 {
			return Stroke{}, 0, fmt.Errorf("%w: bad repeat count in {%s}", ErrInvalidSpec, inner)
		}
		if n > MaxRepeat {
			return Stroke{}, 0, fmt.Errorf("%w: repeat count in {%s} exceeds %d", ErrInvalidSpec, inner, MaxRepeat)
		}
		name, count = inner[:idx], n
	}

	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		stroke, ok := charStroke(r)
		if !ok {
			return Stroke{}, 0, fmt.Errorf("%w: no key produces %q", ErrInvalidSpec, r)
		}
		return stroke, count, nil
	}

	k, ok := braceNameMap[strings.ToUpper(name)]
	if !ok {
		return Stroke{}, 0, fmt.Errorf("%w: {%s}", ErrUnknownKey, name)
	}
	return Stroke{Key: k}, count, nil
}
