package keymap

import (
	"fmt"
	"time"

	"github.com/dshills/keylayer/internal/input/key"
)

// Default layer values.
const (
	DefaultLayerName              = "Default"
	DefaultLayerKey               = key.Semicolon
	DefaultTapTimeout             = 200 * time.Millisecond
	DefaultModifierReleaseTimeout = 100 * time.Millisecond
)

// Layer is one binding layer: a layer key and the bindings active while it
// is held.
type Layer struct {
	// Name identifies the layer in settings and logs.
	Name string

	// LayerKey activates the layer while held. Tapping it types its own
	// character.
	LayerKey key.Key

	// TapTimeout is the longest hold that still counts as a tap.
	TapTimeout time.Duration

	// ModifierReleaseTimeout is how recently a modifier must have been
	// released to be applied to a tapped layer key.
	ModifierReleaseTimeout time.Duration

	// Bindings are checked for the pressed combo, specific modifiers first
	// and then the key.ModUnspecified wildcard.
	Bindings []Binding
}

// NewLayer creates an empty layer with default key and timeouts.
func NewLayer(name string) *Layer {
	return &Layer{
		Name:                   name,
		LayerKey:               DefaultLayerKey,
		TapTimeout:             DefaultTapTimeout,
		ModifierReleaseTimeout: DefaultModifierReleaseTimeout,
		Bindings:               make([]Binding, 0),
	}
}

// WithLayerKey sets the layer key.
func (l *Layer) WithLayerKey(k key.Key) *Layer {
	l.LayerKey = k
	return l
}

// WithTimeouts sets the tap and modifier release timeouts.
func (l *Layer) WithTimeouts(tap, modifierRelease time.Duration) *Layer {
	l.TapTimeout = tap
	l.ModifierReleaseTimeout = modifierRelease
	return l
}

// Add adds a binding.
func (l *Layer) Add(b Binding) *Layer {
	l.Bindings = append(l.Bindings, b)
	return l
}

// Validate checks the layer key, timeouts and every binding.
func (l *Layer) Validate() error {
	if !l.LayerKey.IsValid() {
		return layerError(l.Name, fmt.Errorf("%w: LayerKey", ErrMissingField))
	}
	if l.TapTimeout < 0 {
		return layerError(l.Name, fmt.Errorf("%w: LayerKeyTappedTimeout %v", ErrInvalidTimeout, l.TapTimeout))
	}
	if l.ModifierReleaseTimeout < 0 {
		return layerError(l.Name, fmt.Errorf("%w: ModifierReleasedRecentlyTimeout %v", ErrInvalidTimeout, l.ModifierReleaseTimeout))
	}

	seen := make(map[key.Combo]bool, len(l.Bindings))
	for i, b := range l.Bindings {
		if err := b.Validate(); err != nil {
			return bindingError(l.Name, i, err)
		}
		if seen[b.Combo] {
			return bindingError(l.Name, i, fmt.Errorf("%w: %s", ErrDuplicateBinding, b.Combo))
		}
		seen[b.Combo] = true
	}
	return nil
}

// Index returns the bindings as a lookup table. When a combo appears more
// than once the last binding wins.
func (l *Layer) Index() map[key.Combo]Action {
	index := make(map[key.Combo]Action, len(l.Bindings))
	for _, b := range l.Bindings {
		index[b.Combo] = b.Action
	}
	return index
}

// BoundKeys returns the distinct keys that have at least one binding, in
// binding order.
func (l *Layer) BoundKeys() []key.Key {
	seen := make(map[key.Key]bool, len(l.Bindings))
	keys := make([]key.Key, 0, len(l.Bindings))
	for _, b := range l.Bindings {
		if !seen[b.Combo.Key] {
			seen[b.Combo.Key] = true
			keys = append(keys, b.Combo.Key)
		}
	}
	return keys
}

// Clone creates a copy of the layer that shares no slices with l.
func (l *Layer) Clone() *Layer {
	clone := *l
	clone.Bindings = make([]Binding, len(l.Bindings))
	copy(clone.Bindings, l.Bindings)
	return &clone
}

// Settings is the ordered list of layers. Layers are evaluated in order for
// every key event.
type Settings struct {
	Layers []Layer
}

// Validate checks every layer and rejects duplicate layer names.
func (s *Settings) Validate() error {
	names := make(map[string]bool, len(s.Layers))
	for i := range s.Layers {
		layer := &s.Layers[i]
		if layer.Name == "" {
			return layerError("", fmt.Errorf("%w: LayerName at index %d", ErrMissingField, i))
		}
		if names[layer.Name] {
			return layerError(layer.Name, ErrDuplicateLayer)
		}
		names[layer.Name] = true
		if err := layer.Validate(); err != nil {
			return err
		}
	}
	return nil
}
