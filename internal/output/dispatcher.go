package output

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/dshills/keylayer/internal/input/key"
	"github.com/dshills/keylayer/internal/input/keymap"
	"github.com/dshills/keylayer/internal/integration/process"
)

// ErrUnsupported is returned where virtual keyboards are unavailable.
var ErrUnsupported = errors.New("output: virtual keyboard not supported on this platform")

// Keyboard types key strokes.
type Keyboard interface {
	// Stroke taps s.Key with s.Modifiers held around it.
	Stroke(s key.Stroke) error
}

// Launcher starts external commands.
type Launcher interface {
	Start(name string, cmd *exec.Cmd) (*process.Process, error)
}

// Dispatcher turns interceptor output into keystrokes and processes.
type Dispatcher struct {
	keyboard Keyboard
	launcher Launcher
	onError  func(error)
	onLaunch func(*process.Process)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithErrorHandler sets the function that receives typing and launch
// failures. By default they are dropped.
func WithErrorHandler(fn func(error)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onError = fn
	}
}

// WithLaunchHandler sets a function called for every started process.
func WithLaunchHandler(fn func(*process.Process)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onLaunch = fn
	}
}

// NewDispatcher creates a dispatcher typing on kb and launching through l.
func NewDispatcher(kb Keyboard, l Launcher, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		keyboard: kb,
		launcher: l,
		onError:  func(error) {},
		onLaunch: func(*process.Process) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send types text written in send notation. Nothing is typed if the text
// does not parse.
func (d *Dispatcher) Send(text string) {
	if err := d.send(text); err != nil {
		d.onError(err)
	}
}

// Invoke performs a binding action.
func (d *Dispatcher) Invoke(action keymap.Action) {
	var err error
	switch a := action.(type) {
	case keymap.SendText:
		err = d.send(a.Text)
	case keymap.RunCommand:
		err = d.run(a)
	default:
		err = fmt.Errorf("output: unsupported action %T", action)
	}
	if err != nil {
		d.onError(err)
	}
}

func (d *Dispatcher) send(text string) error {
	strokes, err := key.ParseStrokes(text)
	if err != nil {
		return fmt.Errorf("sending %q: %w", text, err)
	}
	for _, s := range strokes {
		if err := d.keyboard.Stroke(s); err != nil {
			return fmt.Errorf("sending %q: stroke %s: %w", text, s, err)
		}
	}
	return nil
}

func (d *Dispatcher) run(a keymap.RunCommand) error {
	if d.launcher == nil {
		return fmt.Errorf("running %s: no launcher configured", a)
	}
	cmd, err := process.Command(a.Command, a.Arguments)
	if err != nil {
		return fmt.Errorf("running %s: %w", a, err)
	}
	proc, err := d.launcher.Start(a.Command, cmd)
	if err != nil {
		return fmt.Errorf("running %s: %w", a, err)
	}
	d.onLaunch(proc)
	return nil
}
