// Package evcode translates between Linux input event key codes and key.Key.
//
// The table is only built on Linux, where input devices are read through
// evdev.
package evcode
