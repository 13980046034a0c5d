package input

import (
	"strings"
	"time"

	"github.com/dshills/keylayer/internal/input/key"
	"github.com/dshills/keylayer/internal/input/keymap"
	"github.com/dshills/keylayer/internal/input/record"
)

// recentModifierOrder is the order in which recently released modifiers
// are prefixed to a tapped layer key.
var recentModifierOrder = []key.Key{key.Shift, key.Control, key.Alt}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithRecorder uses r instead of a fresh recorder.
func WithRecorder(r *record.Recorder) Option {
	return func(ic *Interceptor) {
		ic.recorder = r
	}
}

// WithMetrics records every decision in m.
func WithMetrics(m *Metrics) Option {
	return func(ic *Interceptor) {
		ic.metrics = m
	}
}

// WithObserver calls fn with a trace of every handled event.
func WithObserver(fn func(Trace)) Option {
	return func(ic *Interceptor) {
		ic.observer = fn
	}
}

// compiledLayer is a layer with its lookup structures prepared.
type compiledLayer struct {
	keymap.Layer
	index     map[key.Combo]keymap.Action
	boundKeys []key.Key
}

func compile(layers []keymap.Layer) []compiledLayer {
	compiled := make([]compiledLayer, len(layers))
	for i := range layers {
		l := layers[i].Clone()
		compiled[i] = compiledLayer{
			Layer:     *l,
			index:     l.Index(),
			boundKeys: l.BoundKeys(),
		}
	}
	return compiled
}

// Interceptor decides, for every raw key event, whether to forward it,
// swallow it, or swallow it and produce substitute output.
//
// An Interceptor is not safe for concurrent use. It is owned by the
// goroutine that delivers events, and the caller supplies the event time so
// that a given event history always produces the same decisions.
type Interceptor struct {
	layers   []compiledLayer
	recorder *record.Recorder
	sink     Sink
	metrics  *Metrics
	observer func(Trace)

	// layerDown holds each layer key's hold duration from before the
	// current event was recorded.
	layerDown []heldFor
}

type heldFor struct {
	d  time.Duration
	ok bool
}

// NewInterceptor creates an interceptor for the given layers. Layers are
// evaluated in order. The layers are copied.
func NewInterceptor(layers []keymap.Layer, sink Sink, opts ...Option) *Interceptor {
	ic := &Interceptor{
		sink: sink,
	}
	for _, opt := range opts {
		opt(ic)
	}
	if ic.recorder == nil {
		ic.recorder = record.New()
	}
	ic.SetLayers(layers)
	return ic
}

// SetLayers replaces the layers. Key timing history is kept so that keys
// held across the change are still seen as held.
func (ic *Interceptor) SetLayers(layers []keymap.Layer) {
	ic.layers = compile(layers)
	ic.layerDown = make([]heldFor, len(ic.layers))
}

// Layers returns a copy of the current layers.
func (ic *Interceptor) Layers() []keymap.Layer {
	layers := make([]keymap.Layer, len(ic.layers))
	for i := range ic.layers {
		layers[i] = *ic.layers[i].Layer.Clone()
	}
	return layers
}

// Recorder returns the key timing recorder.
func (ic *Interceptor) Recorder() *record.Recorder {
	return ic.recorder
}

// Intercept handles one event observed at now.
//
// The event is recorded exactly once. Each layer's layer-key hold time is
// read before recording so that the release of a layer key can be compared
// against how long it was held.
func (ic *Interceptor) Intercept(ev key.Event, now time.Time) Decision {
	if ic.metrics != nil {
		timer := ic.metrics.StartTimer()
		defer timer.Stop()
	}

	for i := range ic.layers {
		d, ok := ic.recorder.DownDuration(ic.layers[i].LayerKey, now)
		ic.layerDown[i] = heldFor{d: d, ok: ok}
	}

	ic.recorder.Record(ev, now)
	mods := ic.recorder.ModifiersDown()

	trace := Trace{
		Event:     ev,
		Now:       now,
		Decision:  Forward,
		Outcome:   OutcomePassThrough,
		Modifiers: mods,
	}

	for i := range ic.layers {
		layer := &ic.layers[i]

		if ev.Pressed && ic.recorder.IsDown(layer.LayerKey) {
			if action, ok := layer.lookup(ev.Key, mods); ok {
				ic.sink.Invoke(action)
				trace.Decision = Swallow
				trace.Outcome = OutcomeBinding
				trace.Layer = layer.Name
				trace.Action = action
				break
			}
		}

		if ev.Key == layer.LayerKey {
			trace.Decision = Swallow
			trace.Outcome = OutcomeLayerKey
			trace.Layer = layer.Name
			if text, ok := ic.tap(layer, ev, ic.layerDown[i], now); ok {
				ic.sink.Send(text)
				trace.Outcome = OutcomeTap
				trace.Sent = text
			}
			break
		}
	}

	ic.report(trace)
	return trace.Decision
}

// lookup finds the binding for k under mods, falling back to the wildcard.
func (l *compiledLayer) lookup(k key.Key, mods key.Modifier) (keymap.Action, bool) {
	if action, ok := l.index[key.NewCombo(k, mods)]; ok {
		return action, true
	}
	action, ok := l.index[key.Wildcard(k)]
	return action, ok
}

// tap returns the text to send when ev is the release of a tapped layer key.
//
// A release is a tap when the key was held for less than the tap timeout
// and no key bound in the layer changed state during the hold. A release
// with no recorded press is never a tap.
func (ic *Interceptor) tap(layer *compiledLayer, ev key.Event, held heldFor, now time.Time) (string, bool) {
	if ev.Pressed || !held.ok || held.d >= layer.TapTimeout {
		return "", false
	}
	if since, ok := ic.sinceBindingKeyEvent(layer, now); ok && since < held.d {
		return "", false
	}

	var b strings.Builder
	for _, mod := range recentModifierOrder {
		if up, ok := ic.recorder.UpDuration(mod, now); ok && up < layer.ModifierReleaseTimeout {
			b.WriteString(mod.SendString())
		}
	}
	b.WriteString(layer.LayerKey.SendString())
	return b.String(), true
}

// sinceBindingKeyEvent returns the time since any key bound in the layer
// last went down or up. ok is false when none of them ever has.
func (ic *Interceptor) sinceBindingKeyEvent(layer *compiledLayer, now time.Time) (since time.Duration, ok bool) {
	consider := func(d time.Duration, present bool) {
		if present && (!ok || d < since) {
			since, ok = d, true
		}
	}
	for _, k := range layer.boundKeys {
		consider(ic.recorder.UpDuration(k, now))
		consider(ic.recorder.DownDuration(k, now))
	}
	return since, ok
}

func (ic *Interceptor) report(t Trace) {
	if ic.metrics != nil {
		ic.metrics.RecordDecision(t)
	}
	if ic.observer != nil {
		ic.observer(t)
	}
}
