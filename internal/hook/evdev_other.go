//go:build !linux

package hook

// Keyboard describes an input device that reports letter keys.
type Keyboard struct {
	Path string
	Name string
}

// OpenKeyboard is unavailable on this platform.
func OpenKeyboard(path string, out Emitter) (Device, error) {
	return nil, ErrUnsupported
}

// ListKeyboards is unavailable on this platform.
func ListKeyboards() ([]Keyboard, error) {
	return nil, ErrUnsupported
}

// FindKeyboard is unavailable on this platform.
func FindKeyboard(exclude string) (Keyboard, error) {
	return Keyboard{}, ErrUnsupported
}
