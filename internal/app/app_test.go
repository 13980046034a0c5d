package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/keylayer/internal/config"
	"github.com/dshills/keylayer/internal/hook"
	"github.com/dshills/keylayer/internal/input"
	"github.com/dshills/keylayer/internal/input/key"
	"github.com/dshills/keylayer/internal/input/keymap"
)

type fakeKeyboard struct {
	mu      sync.Mutex
	strokes []key.Stroke
	emitted int
	closed  bool
}

func (k *fakeKeyboard) Stroke(s key.Stroke) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.strokes = append(k.strokes, s)
	return nil
}

func (k *fakeKeyboard) Emit(code uint16, value int32) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.emitted++
	return nil
}

func (k *fakeKeyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	return nil
}

func (k *fakeKeyboard) Strokes() []key.Stroke {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]key.Stroke(nil), k.strokes...)
}

// fakeDevice replays events, then reports io.EOF.
type fakeDevice struct {
	mu        sync.Mutex
	events    []hook.Event
	forwarded []hook.Event
	closed    bool
}

func (d *fakeDevice) Read() (hook.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.events) == 0 {
		return hook.Event{}, io.EOF
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, nil
}

func (d *fakeDevice) Forward(ev hook.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forwarded = append(d.forwarded, ev)
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func writeSettings(t *testing.T, path string, layers ...*keymap.Layer) {
	t.Helper()
	s := &keymap.Settings{}
	for _, l := range layers {
		s.Layers = append(s.Layers, *l)
	}
	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
}

func testLayer(target string) *keymap.Layer {
	return keymap.NewLayer("Test").
		WithLayerKey(key.Semicolon).
		Add(keymap.Send(key.J, key.ModUnspecified, target))
}

func newTestApp(t *testing.T, dev *fakeDevice, opts ...func(*Options)) (*Application, *fakeKeyboard, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".keylayer")
	writeSettings(t, path, testLayer("{DOWN}"))

	cfg := config.Default()
	cfg.SettingsPath = path
	cfg.WatchSettings = false
	cfg.ShutdownTimeout = time.Second

	kb := &fakeKeyboard{}
	o := Options{
		Config:   cfg,
		Logger:   NullLogger,
		Keyboard: kb,
		Device:   dev,
	}
	for _, fn := range opts {
		fn(&o)
	}

	a, err := New(o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Shutdown() })
	return a, kb, path
}

func known(ev key.Event, at time.Time) hook.Event {
	return hook.Event{Key: ev, Known: true, Time: at}
}

func TestApplicationRun(t *testing.T) {
	t0 := time.Unix(1000, 0)
	ms := func(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

	dev := &fakeDevice{events: []hook.Event{
		// Binding
		known(key.Press(key.Semicolon), ms(0)),
		known(key.Press(key.J), ms(300)),
		known(key.Release(key.J), ms(350)),
		known(key.Release(key.Semicolon), ms(400)),
		// Tap
		known(key.Press(key.Semicolon), ms(1000)),
		known(key.Release(key.Semicolon), ms(1050)),
		// Plain key
		known(key.Press(key.A), ms(2000)),
		known(key.Release(key.A), ms(2010)),
		// Unmapped code
		{Code: 999, Value: 1, Time: ms(3000)},
	}}
	a, kb, _ := newTestApp(t, dev)

	err := a.Run(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Run error = %v, want io.EOF", err)
	}
	if a.IsRunning() {
		t.Error("IsRunning after Run returned")
	}

	want := []key.Stroke{{Key: key.Down}, {Key: key.Semicolon}}
	got := kb.Strokes()
	if len(got) != len(want) {
		t.Fatalf("strokes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stroke[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	dev.mu.Lock()
	forwarded := len(dev.forwarded)
	closed := dev.closed
	dev.mu.Unlock()

	// J up, A down, A up and the unmapped code
	if forwarded != 4 {
		t.Errorf("forwarded %d events, want 4", forwarded)
	}
	if !closed {
		t.Error("device not closed")
	}

	m := a.Metrics()
	if m.Bindings != 1 || m.Taps != 1 {
		t.Errorf("metrics bindings=%d taps=%d, want 1 and 1", m.Bindings, m.Taps)
	}
	if m.EventsTotal != 8 {
		t.Errorf("EventsTotal = %d, want 8", m.EventsTotal)
	}
}

func TestApplicationRunTwice(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeDevice{})
	a.running.Store(true)
	defer a.running.Store(false)

	if err := a.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Run = %v, want ErrAlreadyRunning", err)
	}
}

func TestApplicationReloadSettings(t *testing.T) {
	a, kb, path := newTestApp(t, &fakeDevice{})
	t0 := time.Unix(1000, 0)

	press := func(at time.Duration) {
		a.handleKey(key.Press(key.Semicolon), t0.Add(at))
		a.handleKey(key.Press(key.J), t0.Add(at+300*time.Millisecond))
		a.handleKey(key.Release(key.J), t0.Add(at+350*time.Millisecond))
		a.handleKey(key.Release(key.Semicolon), t0.Add(at+400*time.Millisecond))
	}

	press(0)

	writeSettings(t, path, testLayer("{UP}"))
	if err := a.ReloadSettings(); err != nil {
		t.Fatalf("ReloadSettings: %v", err)
	}
	press(time.Second)

	// Invalid settings keep the current layers.
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := a.ReloadSettings()
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "reload" {
		t.Fatalf("ReloadSettings error = %v, want reload OperationError", err)
	}
	press(2 * time.Second)

	want := []key.Stroke{{Key: key.Down}, {Key: key.Up}, {Key: key.Up}}
	got := kb.Strokes()
	if len(got) != len(want) {
		t.Fatalf("strokes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stroke[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if n := a.Metrics().Reloads; n != 1 {
		t.Errorf("Reloads = %d, want 1", n)
	}
}

func TestApplicationReloadCoalesces(t *testing.T) {
	a, _, path := newTestApp(t, &fakeDevice{})

	writeSettings(t, path, testLayer("{UP}"))
	if err := a.ReloadSettings(); err != nil {
		t.Fatal(err)
	}
	writeSettings(t, path, testLayer("{LEFT}"), keymap.NewLayer("Second").WithLayerKey(key.Grave))
	if err := a.ReloadSettings(); err != nil {
		t.Fatal(err)
	}

	a.handleKey(key.Press(key.A), time.Unix(1000, 0))

	if n := len(a.interceptor.Layers()); n != 2 {
		t.Errorf("layers = %d, want 2", n)
	}
	if n := a.Metrics().Reloads; n != 1 {
		t.Errorf("Reloads = %d, want 1", n)
	}
}

func TestApplicationInvalidSettingsFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".keylayer")
	if err := os.WriteFile(path, []byte(`{"Layers": 3}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs strings.Builder
	cfg := config.Default()
	cfg.SettingsPath = path
	cfg.WatchSettings = false

	a, err := New(Options{
		Config:   cfg,
		Logger:   NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &logs}),
		Keyboard: &fakeKeyboard{},
		Device:   &fakeDevice{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	layers := a.interceptor.Layers()
	if len(layers) != 1 || layers[0].Name != keymap.DefaultLayerName {
		t.Errorf("layers = %+v, want the default layer", layers)
	}
	if !strings.Contains(logs.String(), "invalid settings") {
		t.Errorf("log output %q does not report invalid settings", logs.String())
	}
}

func TestApplicationRecord(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.txt")
	a, _, _ := newTestApp(t, &fakeDevice{}, func(o *Options) {
		o.RecordPath = tracePath
	})

	t0 := time.Unix(1000, 0)
	a.handleKey(key.Press(key.Semicolon), t0)
	a.handleKey(key.Release(key.Semicolon), t0.Add(50*time.Millisecond))

	if err := a.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("trace has %d lines, want 2:\n%s", len(lines), data)
	}
}

func TestApplicationShutdown(t *testing.T) {
	kb := &fakeKeyboard{}
	a, _, _ := newTestApp(t, &fakeDevice{}, func(o *Options) {
		o.Keyboard = kb
	})

	if err := a.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := a.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if a.hooks.IsAttached() {
		t.Error("hook still attached after Shutdown")
	}
	// Injected keyboards belong to the caller.
	if kb.closed {
		t.Error("Shutdown closed an injected keyboard")
	}
	if got := a.hooks.Dispatch(key.Press(key.J), time.Now()); got != input.Forward {
		t.Errorf("Dispatch after Shutdown = %v, want Forward", got)
	}
}
