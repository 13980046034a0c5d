package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		existing, next, want Operation
	}{
		{OpWrite, OpWrite, OpWrite},
		{OpCreate, OpWrite, OpCreate},
		{OpWrite, OpCreate, OpCreate},
		{OpCreate, OpRemove, OpRemove},
		{OpRemove, OpCreate, OpCreate},
		{OpWrite, OpRename, OpRename},
	}

	for _, tt := range tests {
		if got := coalesce(tt.existing, tt.next); got != tt.want {
			t.Errorf("coalesce(%v, %v) = %v, want %v", tt.existing, tt.next, got, tt.want)
		}
	}
}

func TestWatcherWatch(t *testing.T) {
	dir := t.TempDir()
	w, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	existing := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(existing, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := w.Watch(existing); err != nil {
		t.Errorf("Watch(existing) error = %v", err)
	}
	if err := w.Watch(filepath.Join(dir, "later.json")); err != nil {
		t.Errorf("Watch(missing file) error = %v", err)
	}
	if err := w.Watch(existing); err != nil {
		t.Errorf("second Watch() error = %v", err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("WatchedFiles() = %d files, want 2", got)
	}

	if err := w.Watch(filepath.Join(dir, "missing", "x.json")); err == nil {
		t.Error("Watch() in a missing directory should fail")
	}

	if err := w.Unwatch(existing); err != nil {
		t.Errorf("Unwatch() error = %v", err)
	}
	if got := len(w.WatchedFiles()); got != 1 {
		t.Errorf("WatchedFiles() after Unwatch = %d files, want 1", got)
	}
}

func TestWatcherStop(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	w.Start()
	if !w.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	if err := w.Watch(t.TempDir()); err != ErrWatcherClosed {
		t.Errorf("Watch() after Stop = %v, want %v", err, ErrWatcherClosed)
	}
}

func collect(w *Watcher) func() []Event {
	var mu sync.Mutex
	var events []Event
	w.OnChange(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	return func() []Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]Event(nil), events...)
	}
}

func waitFor(t *testing.T, get func() []Event, n int) []Event {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if events := get(); len(events) >= n {
			return events
		}
		time.Sleep(10 * time.Millisecond)
	}
	return get()
}

func TestWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	get := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	// Changes to other files in the directory are ignored.
	os.WriteFile(filepath.Join(dir, "other.json"), []byte("x"), 0644)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"Layers":[]}`), 0644); err != nil {
			t.Fatal(err)
		}
	}

	events := waitFor(t, get, 1)
	if len(events) == 0 {
		t.Fatal("no event delivered")
	}

	absPath, _ := filepath.Abs(path)
	for _, e := range events {
		if e.Path != absPath {
			t.Errorf("event path = %q, want %q", e.Path, absPath)
		}
	}
	if events[0].Op != OpWrite {
		t.Errorf("event op = %v, want %v", events[0].Op, OpWrite)
	}
}

func TestWatcherDetectsAtomicSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	get := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	tmp := filepath.Join(dir, "settings.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"Layers":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	events := waitFor(t, get, 1)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Op != OpCreate {
		t.Errorf("event op = %v, want %v", events[0].Op, OpCreate)
	}
}

func TestWatcherHandlerPanic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	w, err := New(WithDebounce(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	w.OnChange(func(Event) { panic("boom") })
	get := collect(w)

	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if events := waitFor(t, get, 1); len(events) == 0 {
		t.Error("handler after a panicking handler should still run")
	}
}
