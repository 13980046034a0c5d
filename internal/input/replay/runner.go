package replay

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dshills/keylayer/internal/input"
	"github.com/dshills/keylayer/internal/input/keymap"
)

// Result is the outcome of one replayed step.
type Result struct {
	Step     Step
	Decision input.Decision

	// Output lists what the step sent to the sink: text for taps and the
	// action description for bindings.
	Output []string
}

// String formats the result as "<offset> <dir> <Key> -> <decision> [output...]".
func (r Result) String() string {
	s := fmt.Sprintf("%s -> %s", r.Step, r.Decision)
	if len(r.Output) > 0 {
		s += " " + strings.Join(r.Output, " ")
	}
	return s
}

// recordingSink collects the output of the step being replayed.
type recordingSink struct {
	out []string
}

func (s *recordingSink) Send(text string) {
	s.out = append(s.out, fmt.Sprintf("%q", text))
}

func (s *recordingSink) Invoke(action keymap.Action) {
	s.out = append(s.out, action.String())
}

// Run replays steps through a fresh interceptor built from layers. Nothing
// is typed and no command is run; output is only collected. Replaying the
// same steps always yields the same results.
func Run(ctx context.Context, layers []keymap.Layer, steps []Step) ([]Result, error) {
	sink := &recordingSink{}
	ic := input.NewInterceptor(layers, sink)

	// Offsets are applied to a fixed epoch.
	epoch := time.Unix(0, 0).UTC()

	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		sink.out = nil
		decision := ic.Intercept(step.Event, epoch.Add(step.At))
		results = append(results, Result{
			Step:     step,
			Decision: decision,
			Output:   sink.out,
		})
	}
	return results, nil
}

// Print writes one line per result.
func Print(w io.Writer, results []Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(w, r); err != nil {
			return err
		}
	}
	return nil
}
