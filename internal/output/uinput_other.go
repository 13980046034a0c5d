//go:build !linux

package output

import "github.com/dshills/keylayer/internal/input/key"

// DefaultDeviceName is the name of the virtual keyboard.
const DefaultDeviceName = "keylayer virtual keyboard"

// VirtualKeyboard is unavailable on this platform.
type VirtualKeyboard struct{}

// NewVirtualKeyboard always fails on this platform.
func NewVirtualKeyboard(name string) (*VirtualKeyboard, error) {
	return nil, ErrUnsupported
}

// Emit always fails on this platform.
func (v *VirtualKeyboard) Emit(code uint16, value int32) error {
	return ErrUnsupported
}

// Stroke always fails on this platform.
func (v *VirtualKeyboard) Stroke(s key.Stroke) error {
	return ErrUnsupported
}

// Close does nothing on this platform.
func (v *VirtualKeyboard) Close() error {
	return nil
}
