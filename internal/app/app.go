package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/keylayer/internal/config"
	"github.com/dshills/keylayer/internal/config/watcher"
	"github.com/dshills/keylayer/internal/hook"
	"github.com/dshills/keylayer/internal/input"
	"github.com/dshills/keylayer/internal/input/key"
	"github.com/dshills/keylayer/internal/input/keymap"
	"github.com/dshills/keylayer/internal/input/replay"
	"github.com/dshills/keylayer/internal/integration/process"
	"github.com/dshills/keylayer/internal/output"
)

// latencyThreshold is the longest an event may take to handle before the
// delay becomes noticeable while typing.
const latencyThreshold = 10 * time.Millisecond

// Keyboard is the output device. It types strokes and re-emits the events
// forwarded from the captured keyboard.
type Keyboard interface {
	output.Keyboard
	hook.Emitter
	Close() error
}

// Options configures the application.
type Options struct {
	// Config is the application configuration.
	Config config.Config

	// Logger receives all log output. Defaults to a stderr logger at the
	// configured level.
	Logger *Logger

	// RecordPath, if set, receives a trace of every captured key event.
	RecordPath string

	// Keyboard replaces the uinput virtual keyboard.
	Keyboard Keyboard

	// Device replaces the captured evdev keyboard.
	Device hook.Device
}

// Application connects the captured keyboard to the layer interceptor.
type Application struct {
	opts Options
	log  *Logger

	interceptor *input.Interceptor
	metrics     *input.Metrics
	hooks       *hook.Manager
	handle      hook.Handle
	supervisor  *process.Supervisor
	dispatcher  *output.Dispatcher
	keyboard    Keyboard
	device      hook.Device
	watcher     *watcher.Watcher

	// reloads carries validated layers from the watcher to the hook loop.
	reloadMu sync.Mutex
	reloads  chan []keymap.Layer

	trace     *replay.Writer
	traceFile *os.File

	running      atomic.Bool
	captured     atomic.Bool
	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates an application and sets up every component. On failure the
// components already created are released.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		log:     opts.Logger,
		reloads: make(chan []keymap.Layer, 1),
	}
	if app.log == nil {
		cfg := DefaultLoggerConfig()
		cfg.Level = ParseLogLevel(opts.Config.LogLevel)
		app.log = NewLogger(cfg)
	}

	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	cfg := app.opts.Config

	// 1. Settings. Invalid settings fall back to the defaults.
	settings, err := keymap.LoadOrDefault(cfg.SettingsPath)
	if err != nil {
		app.log.WithField("path", cfg.SettingsPath).Error("invalid settings, using defaults: %v", err)
	}
	app.log.Info("loaded %d layer(s) from %s", len(settings.Layers), cfg.SettingsPath)

	// 2. Process supervisor for RunCommand bindings
	procLog := app.log.WithComponent("process")
	app.supervisor = process.NewSupervisor(process.WithExitCallback(func(p *process.Process) {
		if err := p.ExitError(); err != nil {
			procLog.WithField("id", p.ID).Warn("%s exited after %v: %v", p.Name, p.Runtime(), err)
			return
		}
		procLog.WithField("id", p.ID).Debug("%s exited after %v", p.Name, p.Runtime())
	}))

	// 3. Output keyboard
	app.keyboard = app.opts.Keyboard
	if app.keyboard == nil {
		kb, err := output.NewVirtualKeyboard(cfg.DeviceName)
		if err != nil {
			return &InitError{Component: "virtual keyboard", Err: err}
		}
		app.keyboard = kb
	}

	outLog := app.log.WithComponent("output")
	app.dispatcher = output.NewDispatcher(app.keyboard, app.supervisor,
		output.WithErrorHandler(func(err error) {
			outLog.Warn("%v", err)
		}),
		output.WithLaunchHandler(func(p *process.Process) {
			outLog.WithField("id", p.ID).Debug("started %s (pid %d)", p.Name, p.PID())
		}),
	)

	// 4. Interceptor
	app.metrics = input.NewMetrics()
	hookLog := app.log.WithComponent("hook")
	app.interceptor = input.NewInterceptor(settings.Layers, app.dispatcher,
		input.WithMetrics(app.metrics),
		input.WithObserver(func(t input.Trace) {
			if t.Outcome != input.OutcomePassThrough && hookLog.Enabled(LogLevelDebug) {
				hookLog.Debug("%s", t)
			}
		}),
	)

	// 5. Trace recording
	if app.opts.RecordPath != "" {
		f, err := os.Create(app.opts.RecordPath)
		if err != nil {
			return &InitError{Component: "trace recording", Err: err}
		}
		app.traceFile = f
		app.trace = replay.NewWriter(f)
	}

	// 6. Captured keyboard
	app.device = app.opts.Device
	if app.device == nil {
		path := cfg.Device
		if path == "" {
			kb, err := hook.FindKeyboard(cfg.DeviceName)
			if err != nil {
				return &InitError{Component: "keyboard", Err: err}
			}
			app.log.Info("using keyboard %q at %s", kb.Name, kb.Path)
			path = kb.Path
		}
		dev, err := hook.OpenKeyboard(path, app.keyboard)
		if err != nil {
			return &InitError{Component: "keyboard", Err: err}
		}
		app.device = dev
	}

	// 7. Hook
	app.hooks = hook.NewManager()
	app.handle, err = app.hooks.Attach(app.handleKey)
	if err != nil {
		return &InitError{Component: "hook", Err: err}
	}

	// 8. Settings watcher
	if cfg.WatchSettings {
		w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
			app.log.WithComponent("watcher").Warn("%v", err)
		}))
		if err != nil {
			return &InitError{Component: "settings watcher", Err: err}
		}
		app.watcher = w
		if err := w.Watch(cfg.SettingsPath); err != nil {
			return &InitError{Component: "settings watcher", Err: err}
		}
		w.OnChange(app.settingsChanged)
	}

	return nil
}

// handleKey is the hook callback. It runs on the hook goroutine, which
// owns the interceptor.
func (app *Application) handleKey(ev key.Event, now time.Time) input.Decision {
	select {
	case layers := <-app.reloads:
		app.interceptor.SetLayers(layers)
		app.metrics.RecordReload()
		app.log.Info("applied %d reloaded layer(s)", len(layers))
	default:
	}

	if app.trace != nil {
		app.trace.Write(ev, now)
	}

	return app.interceptor.Intercept(ev, now)
}

func (app *Application) settingsChanged(ev watcher.Event) {
	if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
		app.log.Warn("settings file %s was removed, keeping current bindings", ev.Path)
		return
	}
	if err := app.ReloadSettings(); err != nil {
		app.log.Error("%v", err)
	}
}

// ReloadSettings reads the settings file again. Valid settings replace the
// current layers before the next key event is handled. On error the current
// layers stay in place.
func (app *Application) ReloadSettings() error {
	path := app.opts.Config.SettingsPath
	settings, err := keymap.LoadFile(path)
	if err != nil {
		return NewOperationError("reload", path, err)
	}

	app.reloadMu.Lock()
	defer app.reloadMu.Unlock()

	select {
	case <-app.reloads:
	default:
	}
	app.reloads <- settings.Layers

	app.log.Info("reloaded %d layer(s) from %s", len(settings.Layers), path)
	return nil
}

// Run captures keyboard events until ctx is cancelled or the device fails.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	app.captured.Store(true)

	if app.watcher != nil {
		app.watcher.Start()
	}

	app.log.Info("running")
	if err := app.hooks.Run(ctx, app.device); err != nil {
		return NewOperationError("capture", "keyboard", err)
	}
	return nil
}

// IsRunning reports whether Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Metrics returns the interceptor metrics.
func (app *Application) Metrics() input.MetricsSnapshot {
	if app.metrics == nil {
		return input.MetricsSnapshot{}
	}
	return app.metrics.Snapshot()
}

// Shutdown releases every component. It is safe to call more than once and
// after a failed New.
func (app *Application) Shutdown() error {
	app.shutdownOnce.Do(func() {
		var errs []error

		if app.hooks != nil {
			if err := app.hooks.Drop(app.handle); err != nil && !errors.Is(err, hook.ErrNotAttached) {
				errs = append(errs, err)
			}
		}
		// Run closes the device itself.
		if app.device != nil && app.opts.Device == nil && !app.captured.Load() {
			if err := app.device.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing keyboard: %w", err))
			}
		}
		if app.watcher != nil {
			if err := app.watcher.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stopping settings watcher: %w", err))
			}
		}
		if app.supervisor != nil {
			app.supervisor.Shutdown(app.opts.Config.ShutdownTimeout)
		}
		if app.keyboard != nil && app.opts.Keyboard == nil {
			if err := app.keyboard.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing virtual keyboard: %w", err))
			}
		}
		if app.traceFile != nil {
			if err := app.trace.Err(); err != nil {
				errs = append(errs, NewOperationError("record", app.opts.RecordPath, err))
			}
			if err := app.traceFile.Close(); err != nil {
				errs = append(errs, NewOperationError("record", app.opts.RecordPath, err))
			}
		}

		if app.metrics != nil {
			s := app.metrics.Snapshot()
			app.log.Info("handled %d events: %d swallowed, %d bindings, %d taps, p99 %v",
				s.EventsTotal, s.Swallowed, s.Bindings, s.Taps, s.P99Latency)
			if held := app.interceptor.Recorder().Held(); len(held) > 0 {
				app.log.Debug("keys down when capture stopped: %v", held)
			}
			if h := app.metrics.HealthCheck(latencyThreshold); !h.Healthy {
				app.log.Warn("%s: peak %v over %v", h.Message, h.PeakLatency, h.LatencyThreshold)
			}
		}

		app.shutdownErr = errors.Join(errs...)
	})
	return app.shutdownErr
}
