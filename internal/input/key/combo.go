package key

import "fmt"

// Combo is a key together with the modifier state required to trigger a
// binding. It is comparable and used directly as a map key.
type Combo struct {
	Key       Key      `json:"Key"`
	Modifiers Modifier `json:"Modifiers"`
}

// NewCombo creates a combo.
func NewCombo(k Key, mods Modifier) Combo {
	return Combo{Key: k, Modifiers: mods}
}

// Wildcard returns the combo matching k under any modifier state.
func Wildcard(k Key) Combo {
	return Combo{Key: k, Modifiers: ModUnspecified}
}

// IsWildcard returns true if the combo matches any modifier state.
func (c Combo) IsWildcard() bool {
	return c.Modifiers.IsUnspecified()
}

// String returns a representation such as "{J, Unspecified}".
func (c Combo) String() string {
	return fmt.Sprintf("{%s, %s}", c.Key, c.Modifiers)
}
