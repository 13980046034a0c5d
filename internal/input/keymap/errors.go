package keymap

import (
	"errors"
	"fmt"

	"github.com/dshills/keylayer/internal/input/key"
)

// Settings errors.
var (
	// ErrUnknownKey is returned for a key or layer-key name that does not
	// name a key. It is the same value as key.ErrUnknownKey.
	ErrUnknownKey = key.ErrUnknownKey

	// ErrUnknownAction is returned for an action discriminator that names
	// neither a send-text nor a run-command action.
	ErrUnknownAction = errors.New("unknown binding action")

	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrDuplicateBinding is returned when a layer binds the same combo twice.
	ErrDuplicateBinding = errors.New("duplicate binding")

	// ErrDuplicateLayer is returned when two layers share a name.
	ErrDuplicateLayer = errors.New("duplicate layer name")

	// ErrInvalidTimeout is returned for a negative or unparsable timeout.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// DecodeError locates a settings error within the document.
type DecodeError struct {
	// Layer is the name of the layer being decoded, if known.
	Layer string

	// Binding is the index of the binding within the layer, or -1.
	Binding int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	switch {
	case e.Layer == "" && e.Binding < 0:
		return fmt.Sprintf("settings: %v", e.Err)
	case e.Binding < 0:
		return fmt.Sprintf("settings: layer %q: %v", e.Layer, e.Err)
	default:
		return fmt.Sprintf("settings: layer %q binding %d: %v", e.Layer, e.Binding, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func layerError(layer string, err error) error {
	return &DecodeError{Layer: layer, Binding: -1, Err: err}
}

func bindingError(layer string, index int, err error) error {
	return &DecodeError{Layer: layer, Binding: index, Err: err}
}
