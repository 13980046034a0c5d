// Package key provides the key identifiers, modifier sets and transition
// events used by the layer remapper.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a physical key, plus the virtual aggregates Shift,
//     Control, Alt and Modifiers that stand for their left/right variants
//   - Modifier: A set of Control, Shift and Alt, with the Unspecified
//     wildcard used only for binding lookup
//   - Event: A single key-down or key-up transition
//   - Combo: A key and modifier set, used as a binding map key
//
// # Send Notation
//
// Substitute text is written in send notation:
//
//   - Literal characters: "abc", "A", ";"
//   - Brace names: "{ENTER}", "{LEFT}", "{F5}", "{PGDN}", "{LEFT 3}"
//   - Modifier prefixes: "+" Shift, "^" Control, "%" Alt
//   - Groups: "+(ab)"
//
// Key.SendString renders a single key in this notation and ParseStrokes
// turns notation back into the strokes an output device must type.
package key
