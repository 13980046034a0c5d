// Package record tracks when each key went down and when it was last
// released, so that callers can ask how long a key has been held or how long
// ago it was let go.
//
// A Recorder is not safe for concurrent use. It is owned by the goroutine
// that delivers key events.
package record

import (
	"time"

	"github.com/dshills/keylayer/internal/input/key"
)

// Recorder holds per-key timing state.
//
// For every key k at most one of the following holds at a time: k is down
// (downStart has an entry) or k is up. lastUp keeps the most recent release
// and is never cleared, so a key can be both down and have a previous
// release.
type Recorder struct {
	downStart map[key.Key]time.Time
	lastUp    map[key.Key]time.Time
}

// New creates an empty recorder.
func New() *Recorder {
	return &Recorder{
		downStart: make(map[key.Key]time.Time),
		lastUp:    make(map[key.Key]time.Time),
	}
}

// Record applies a transition observed at now.
//
// A key-down for a key already down is an auto-repeat and leaves the
// original down-start in place. Recording the same observation twice has no
// further effect.
func (r *Recorder) Record(ev key.Event, now time.Time) {
	if ev.Pressed {
		if _, down := r.downStart[ev.Key]; !down {
			r.downStart[ev.Key] = now
		}
		return
	}
	r.lastUp[ev.Key] = now
	delete(r.downStart, ev.Key)
}

// IsDown reports whether k is held. An aggregate is down when any of its
// constituents is.
func (r *Recorder) IsDown(k key.Key) bool {
	for _, c := range k.Constituents() {
		if _, ok := r.downStart[c]; ok {
			return true
		}
	}
	return false
}

// DownDuration returns how long k has been held. For an aggregate the
// earliest down-start among its constituents is used. ok is false when k is
// not down.
func (r *Recorder) DownDuration(k key.Key, now time.Time) (d time.Duration, ok bool) {
	var earliest time.Time
	for _, c := range k.Constituents() {
		start, down := r.downStart[c]
		if !down {
			continue
		}
		if !ok || start.Before(earliest) {
			earliest = start
			ok = true
		}
	}
	if !ok {
		return 0, false
	}
	return now.Sub(earliest), true
}

// UpDuration returns how long ago k was last released. For an aggregate the
// latest release among its constituents is used. ok is false when k has
// never been released.
func (r *Recorder) UpDuration(k key.Key, now time.Time) (d time.Duration, ok bool) {
	var latest time.Time
	for _, c := range k.Constituents() {
		up, released := r.lastUp[c]
		if !released {
			continue
		}
		if !ok || up.After(latest) {
			latest = up
			ok = true
		}
	}
	if !ok {
		return 0, false
	}
	return now.Sub(latest), true
}

// ModifiersDown returns the modifier set currently held. The result never
// contains key.ModUnspecified.
func (r *Recorder) ModifiersDown() key.Modifier {
	mods := key.ModNone
	if r.IsDown(key.Control) {
		mods = mods.With(key.ModControl)
	}
	if r.IsDown(key.Shift) {
		mods = mods.With(key.ModShift)
	}
	if r.IsDown(key.Alt) {
		mods = mods.With(key.ModAlt)
	}
	return mods
}

// Held returns the keys currently down, in enumeration order.
func (r *Recorder) Held() []key.Key {
	held := make([]key.Key, 0, len(r.downStart))
	for _, k := range key.All() {
		if _, ok := r.downStart[k]; ok {
			held = append(held, k)
		}
	}
	return held
}
