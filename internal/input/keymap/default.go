package keymap

import "github.com/dshills/keylayer/internal/input/key"

// DefaultSettings returns the settings used when no settings file exists or
// the file cannot be loaded: a single layer on the semicolon key with
// vim-style motion bindings.
func DefaultSettings() *Settings {
	return &Settings{Layers: []Layer{*DefaultLayer()}}
}

// DefaultLayer returns the default vim motion layer.
func DefaultLayer() *Layer {
	layer := NewLayer(DefaultLayerName)
	for _, b := range defaultBindings() {
		layer.Add(b)
	}
	return layer
}

func defaultBindings() []Binding {
	return []Binding{
		// Motion
		Send(key.H, key.ModUnspecified, "{Left}"),
		Send(key.J, key.ModUnspecified, "{Down}"),
		Send(key.K, key.ModUnspecified, "{Up}"),
		Send(key.L, key.ModUnspecified, "{Right}"),
		Send(key.N, key.ModUnspecified, "{Home}"),
		Send(key.M, key.ModUnspecified, "{End}"),

		// Editing
		Send(key.X, key.ModShift, "{Backspace}"),
		Send(key.X, key.ModNone, "{Delete}"),
		Send(key.E, key.ModNone, "{Enter}"),
	}
}
