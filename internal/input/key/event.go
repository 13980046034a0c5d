package key

import "fmt"

// Event is a single key transition.
//
// The instant the transition was observed is deliberately not part of the
// event; consumers receive it alongside so that they stay independent of any
// clock source.
type Event struct {
	// Key identifies the key that changed state.
	Key Key

	// Pressed is true for a key-down (including auto-repeat) and false for a
	// key-up.
	Pressed bool
}

// Press returns a key-down event for k.
func Press(k Key) Event {
	return Event{Key: k, Pressed: true}
}

// Release returns a key-up event for k.
func Release(k Key) Event {
	return Event{Key: k, Pressed: false}
}

// IsDown returns true if this is a key-down of k.
func (e Event) IsDown(k Key) bool {
	return e.Key == k && e.Pressed
}

// IsUp returns true if this is a key-up of k.
func (e Event) IsUp(k Key) bool {
	return e.Key == k && !e.Pressed
}

// String returns a representation such as "J down" or "LeftShift up".
func (e Event) String() string {
	if e.Pressed {
		return e.Key.String() + " down"
	}
	return e.Key.String() + " up"
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Pressed: %t}", e.Key, e.Pressed)
}
