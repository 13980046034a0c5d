package input

import (
	"fmt"
	"time"

	"github.com/dshills/keylayer/internal/input/key"
	"github.com/dshills/keylayer/internal/input/keymap"
)

// Decision tells the event source what to do with the original event.
type Decision uint8

const (
	// Forward passes the event on unchanged.
	Forward Decision = iota

	// Swallow drops the event.
	Swallow
)

// String returns "forward" or "swallow".
func (d Decision) String() string {
	switch d {
	case Forward:
		return "forward"
	case Swallow:
		return "swallow"
	default:
		return fmt.Sprintf("Decision(%d)", d)
	}
}

// Sink receives the output produced by the interceptor.
//
// Calls are fire-and-forget: the interceptor does not wait for the output to
// be produced and never observes failures.
type Sink interface {
	// Send types text written in send notation.
	Send(text string)

	// Invoke performs a binding action.
	Invoke(action keymap.Action)
}

// Outcome classifies why an event got its decision.
type Outcome uint8

const (
	// OutcomePassThrough means no layer claimed the event.
	OutcomePassThrough Outcome = iota

	// OutcomeBinding means a binding fired.
	OutcomeBinding

	// OutcomeTap means a layer key was tapped and its character was sent.
	OutcomeTap

	// OutcomeLayerKey means a layer key transition was swallowed without
	// output.
	OutcomeLayerKey
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePassThrough:
		return "pass-through"
	case OutcomeBinding:
		return "binding"
	case OutcomeTap:
		return "tap"
	case OutcomeLayerKey:
		return "layer-key"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// Trace describes the handling of one event.
type Trace struct {
	Event     key.Event
	Now       time.Time
	Decision  Decision
	Outcome   Outcome
	Modifiers key.Modifier

	// Layer is the name of the layer that claimed the event, if any.
	Layer string

	// Action is the binding action invoked for OutcomeBinding.
	Action keymap.Action

	// Sent is the text sent for OutcomeTap.
	Sent string
}

// String returns a one-line summary such as "J down -> swallow (binding Vim: send "{Down}")".
func (t Trace) String() string {
	switch t.Outcome {
	case OutcomeBinding:
		return fmt.Sprintf("%s -> %s (binding %s: %v)", t.Event, t.Decision, t.Layer, t.Action)
	case OutcomeTap:
		return fmt.Sprintf("%s -> %s (tap %s: %q)", t.Event, t.Decision, t.Layer, t.Sent)
	case OutcomeLayerKey:
		return fmt.Sprintf("%s -> %s (layer key %s)", t.Event, t.Decision, t.Layer)
	default:
		return fmt.Sprintf("%s -> %s", t.Event, t.Decision)
	}
}

// SinkFunc adapts a pair of functions to the Sink interface. Nil functions
// are ignored.
type SinkFunc struct {
	SendFunc   func(text string)
	InvokeFunc func(action keymap.Action)
}

// Send calls SendFunc.
func (s SinkFunc) Send(text string) {
	if s.SendFunc != nil {
		s.SendFunc(text)
	}
}

// Invoke calls InvokeFunc.
func (s SinkFunc) Invoke(action keymap.Action) {
	if s.InvokeFunc != nil {
		s.InvokeFunc(action)
	}
}
