package key

import (
	"fmt"
	"strings"
)

// Modifier is a set of modifier keys.
//
// ModUnspecified is a wildcard used only as a binding lookup value. It never
// describes keys that are actually held.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModControl indicates either Control key.
	ModControl Modifier = 1 << 0

	// ModShift indicates either Shift key.
	ModShift Modifier = 1 << 1

	// ModAlt indicates either Alt key.
	ModAlt Modifier = 1 << 2

	// ModUnspecified matches any modifier state in a binding.
	ModUnspecified Modifier = 1 << 3
)

// modifierOrder is the canonical rendering order. It matches the bit order.
var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModControl, "Control"},
	{ModShift, "Shift"},
	{ModAlt, "Alt"},
	{ModUnspecified, "Unspecified"},
}

// Has returns true if m contains every bit of mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod == mod && mod != ModNone
}

// HasShift returns true if Shift is set.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasControl returns true if Control is set.
func (m Modifier) HasControl() bool {
	return m.Has(ModControl)
}

// HasAlt returns true if Alt is set.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// IsUnspecified returns true if m is the wildcard.
func (m Modifier) IsUnspecified() bool {
	return m.Has(ModUnspecified)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// String returns a flag list such as "None", "Control" or "Control, Shift".
func (m Modifier) String() string {
	if m == ModNone {
		return "None"
	}

	var parts []string
	rest := m
	for _, entry := range modifierOrder {
		if m.Has(entry.mod) {
			parts = append(parts, entry.name)
			rest = rest.Without(entry.mod)
		}
	}
	if rest != ModNone {
		parts = append(parts, fmt.Sprintf("%d", uint8(rest)))
	}
	return strings.Join(parts, ", ")
}

// modifierNameMap maps modifier names (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"none":        ModNone,
	"control":     ModControl,
	"ctrl":        ModControl,
	"shift":       ModShift,
	"alt":         ModAlt,
	"unspecified": ModUnspecified,
}

// ModifierFromName returns the Modifier for a single name (case-insensitive).
func ModifierFromName(name string) (Modifier, bool) {
	m, ok := modifierNameMap[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// ParseModifier parses a comma separated flag list as produced by String.
func ParseModifier(s string) (Modifier, error) {
	if strings.TrimSpace(s) == "" {
		return ModNone, fmt.Errorf("%w: empty modifier list", ErrUnknownModifier)
	}

	var m Modifier
	for _, part := range strings.Split(s, ",") {
		mod, ok := ModifierFromName(part)
		if !ok {
			return ModNone, fmt.Errorf("%w: %q", ErrUnknownModifier, strings.TrimSpace(part))
		}
		m = m.With(mod)
	}
	return m, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Modifier) MarshalText() ([]byte, error) {
	if m.Without(ModControl|ModShift|ModAlt|ModUnspecified) != ModNone {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModifier, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Modifier) UnmarshalText(text []byte) error {
	parsed, err := ParseModifier(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
