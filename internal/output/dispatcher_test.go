package output

import (
	"errors"
	"os/exec"
	"reflect"
	"testing"

	"github.com/dshills/keylayer/internal/input/key"
	"github.com/dshills/keylayer/internal/input/keymap"
	"github.com/dshills/keylayer/internal/integration/process"
)

type fakeKeyboard struct {
	strokes []key.Stroke
	failOn  key.Key
}

func (f *fakeKeyboard) Stroke(s key.Stroke) error {
	if f.failOn != key.KeyNone && s.Key == f.failOn {
		return errors.New("write failed")
	}
	f.strokes = append(f.strokes, s)
	return nil
}

type fakeLauncher struct {
	names []string
	args  [][]string
	err   error
}

func (f *fakeLauncher) Start(name string, cmd *exec.Cmd) (*process.Process, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.names = append(f.names, name)
	f.args = append(f.args, cmd.Args)
	return nil, nil
}

func TestDispatcherSend(t *testing.T) {
	tests := []struct {
		text     string
		expected []key.Stroke
	}{
		{";", []key.Stroke{{Key: key.Semicolon}}},
		{"+;", []key.Stroke{{Key: key.Semicolon, Modifiers: key.ModShift}}},
		{"{DOWN}", []key.Stroke{{Key: key.Down}}},
		{"^{LEFT 2}", []key.Stroke{
			{Key: key.Left, Modifiers: key.ModControl},
			{Key: key.Left, Modifiers: key.ModControl},
		}},
		{"Hi", []key.Stroke{{Key: key.H, Modifiers: key.ModShift}, {Key: key.I}}},
	}

	for _, tt := range tests {
		kb := &fakeKeyboard{}
		var errs []error
		d := NewDispatcher(kb, nil, WithErrorHandler(func(err error) { errs = append(errs, err) }))

		d.Send(tt.text)

		if len(errs) != 0 {
			t.Errorf("Send(%q) unexpected errors: %v", tt.text, errs)
		}
		if !reflect.DeepEqual(kb.strokes, tt.expected) {
			t.Errorf("Send(%q) got %v, expected %v", tt.text, kb.strokes, tt.expected)
		}
	}
}

func TestDispatcherSendErrors(t *testing.T) {
	kb := &fakeKeyboard{}
	var errs []error
	d := NewDispatcher(kb, nil, WithErrorHandler(func(err error) { errs = append(errs, err) }))

	d.Send("{NOPE}")
	if len(errs) != 1 || !errors.Is(errs[0], key.ErrUnknownKey) {
		t.Errorf("Send({NOPE}) got %v, expected %v", errs, key.ErrUnknownKey)
	}
	if len(kb.strokes) != 0 {
		t.Errorf("nothing should be typed for invalid text, got %v", kb.strokes)
	}

	kb.failOn = key.B
	errs = nil
	d.Send("abc")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if !reflect.DeepEqual(kb.strokes, []key.Stroke{{Key: key.A}}) {
		t.Errorf("typing should stop at the failure, got %v", kb.strokes)
	}
}

func TestDispatcherSendWithoutErrorHandler(t *testing.T) {
	d := NewDispatcher(&fakeKeyboard{}, nil)
	d.Send("{")
	d.Invoke(keymap.RunCommand{Command: "x"})
}

func TestDispatcherInvoke(t *testing.T) {
	kb := &fakeKeyboard{}
	l := &fakeLauncher{}
	launched := 0
	var errs []error
	d := NewDispatcher(kb, l,
		WithErrorHandler(func(err error) { errs = append(errs, err) }),
		WithLaunchHandler(func(*process.Process) { launched++ }),
	)

	d.Invoke(keymap.SendText{Text: "{END}"})
	d.Invoke(keymap.RunCommand{Command: "xdg-open", Arguments: `"/tmp/a b.txt"`})
	d.Invoke(keymap.RunCommand{Command: "notify-send"})

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !reflect.DeepEqual(kb.strokes, []key.Stroke{{Key: key.End}}) {
		t.Errorf("strokes got %v, expected [End]", kb.strokes)
	}

	expectedNames := []string{"xdg-open", "notify-send"}
	if !reflect.DeepEqual(l.names, expectedNames) {
		t.Errorf("launched names got %v, expected %v", l.names, expectedNames)
	}
	expectedArgs := [][]string{{"xdg-open", "/tmp/a b.txt"}, {"notify-send"}}
	if !reflect.DeepEqual(l.args, expectedArgs) {
		t.Errorf("launched args got %q, expected %q", l.args, expectedArgs)
	}
	if launched != 2 {
		t.Errorf("launch handler calls got %d, expected 2", launched)
	}
}

func TestDispatcherInvokeErrors(t *testing.T) {
	startErr := errors.New("no such program")
	tests := []struct {
		name     string
		launcher Launcher
		action   keymap.Action
		expected error
	}{
		{"start failure", &fakeLauncher{err: startErr}, keymap.RunCommand{Command: "x"}, startErr},
		{"bad arguments", &fakeLauncher{}, keymap.RunCommand{Command: "x", Arguments: `"open`}, process.ErrUnterminatedQuote},
		{"empty command", &fakeLauncher{}, keymap.RunCommand{Command: " "}, process.ErrEmptyCommand},
		{"bad text", &fakeLauncher{}, keymap.SendText{Text: "{"}, key.ErrUnmatchedBracket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs []error
			d := NewDispatcher(&fakeKeyboard{}, tt.launcher, WithErrorHandler(func(err error) { errs = append(errs, err) }))
			d.Invoke(tt.action)
			if len(errs) != 1 || !errors.Is(errs[0], tt.expected) {
				t.Errorf("got %v, expected %v", errs, tt.expected)
			}
		})
	}
}
