package keymap

import (
	"fmt"

	"github.com/dshills/keylayer/internal/input/key"
)

// Action is what a binding does when its combo is pressed while the layer
// key is held. The set of actions is closed: SendText and RunCommand are the
// only implementations.
type Action interface {
	// Validate checks the action's fields.
	Validate() error

	fmt.Stringer

	isAction()
}

// SendText types Text, written in send notation, into the focused window.
type SendText struct {
	Text string
}

// RunCommand starts an external program. Arguments is a single string that
// is split shell-style into argv.
type RunCommand struct {
	Command   string
	Arguments string
}

func (SendText) isAction()   {}
func (RunCommand) isAction() {}

// Validate checks that Text is well-formed send notation.
func (a SendText) Validate() error {
	if a.Text == "" {
		return fmt.Errorf("%w: Text", ErrMissingField)
	}
	if _, err := key.ParseStrokes(a.Text); err != nil {
		return fmt.Errorf("text %q: %w", a.Text, err)
	}
	return nil
}

// String returns a representation such as `send "{Down}"`.
func (a SendText) String() string {
	return fmt.Sprintf("send %q", a.Text)
}

// Validate checks that a command is present.
func (a RunCommand) Validate() error {
	if a.Command == "" {
		return fmt.Errorf("%w: Command", ErrMissingField)
	}
	return nil
}

// String returns a representation such as `run "notepad" "file.txt"`.
func (a RunCommand) String() string {
	if a.Arguments == "" {
		return fmt.Sprintf("run %q", a.Command)
	}
	return fmt.Sprintf("run %q %q", a.Command, a.Arguments)
}
