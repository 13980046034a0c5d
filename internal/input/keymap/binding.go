package keymap

import (
	"fmt"

	"github.com/dshills/keylayer/internal/input/key"
)

// Binding maps a key combo to an action.
type Binding struct {
	// Combo is the key and modifier state that triggers the binding.
	// Modifiers may be key.ModUnspecified to match any modifier state.
	Combo key.Combo

	// Action is performed when the combo is pressed with the layer key held.
	Action Action
}

// NewBinding creates a new binding.
func NewBinding(k key.Key, mods key.Modifier, action Action) Binding {
	return Binding{Combo: key.NewCombo(k, mods), Action: action}
}

// Send creates a binding that types text.
func Send(k key.Key, mods key.Modifier, text string) Binding {
	return NewBinding(k, mods, SendText{Text: text})
}

// Run creates a binding that starts a command.
func Run(k key.Key, mods key.Modifier, command, arguments string) Binding {
	return NewBinding(k, mods, RunCommand{Command: command, Arguments: arguments})
}

// Validate checks the combo and action.
func (b Binding) Validate() error {
	if !b.Combo.Key.IsValid() {
		return fmt.Errorf("%w: %d", ErrUnknownKey, b.Combo.Key)
	}
	if b.Action == nil {
		return fmt.Errorf("%w: Value", ErrMissingField)
	}
	return b.Action.Validate()
}

// String returns a representation such as `{J, Unspecified} -> send "{Down}"`.
func (b Binding) String() string {
	return fmt.Sprintf("%s -> %v", b.Combo, b.Action)
}
