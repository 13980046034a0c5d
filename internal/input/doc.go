// Package input turns raw keyboard events into forward/swallow decisions
// for the layer remapper.
//
// # Architecture
//
// The input system consists of several cooperating components:
//
//   - Key Timing Recorder (package record): remembers when each key went
//     down and when it was last released
//   - Interceptor: evaluates the configured layers for every event
//   - Sink: receives substitute text and binding actions
//   - Metrics: counts decisions and measures processing latency
//
// # Layers
//
// Holding a layer key activates its layer. While it is held, pressing a
// bound key invokes the binding instead of typing the key. Tapping the layer
// key briefly types its own character, together with any modifier released
// just before the tap. Every layer sees every event, in declaration order.
//
// # Usage
//
//	ic := input.NewInterceptor(settings.Layers, sink)
//
//	// Called by the event source for every key event
//	decision := ic.Intercept(key.Press(key.J), time.Now())
//	if decision == input.Forward {
//	    // pass the event on
//	}
package input
