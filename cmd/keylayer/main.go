// Package main is the entry point for the keylayer keyboard remapper.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/keylayer/internal/app"
	"github.com/dshills/keylayer/internal/config"
	"github.com/dshills/keylayer/internal/hook"
	"github.com/dshills/keylayer/internal/input/keymap"
	"github.com/dshills/keylayer/internal/input/replay"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type cliOptions struct {
	configPath     string
	settingsPath   string
	device         string
	logLevel       string
	noWatch        bool
	createSettings bool
	listDevices    bool
	replayPath     string
	recordPath     string
	showVersion    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, overrides := parseFlags()

	if opts.showVersion {
		fmt.Printf("keylayer %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	cfg, err := loadConfig(opts.configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case opts.listDevices:
		return listDevices()
	case opts.createSettings:
		return createSettings(cfg.SettingsPath)
	case opts.replayPath != "":
		return replayTrace(cfg.SettingsPath, opts.replayPath)
	}

	logCfg := app.DefaultLoggerConfig()
	logCfg.Level = app.ParseLogLevel(cfg.LogLevel)
	logger := app.NewLogger(logCfg)

	application, err := app.New(app.Options{
		Config:     cfg,
		Logger:     logger,
		RecordPath: opts.recordPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer func() {
		if err := application.Shutdown(); err != nil {
			logger.Error("shutdown: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags parses the command line. The returned map holds the config
// settings named by flags that were given explicitly.
func parseFlags() (cliOptions, map[string]any) {
	var opts cliOptions

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.settingsPath, "settings", "", "Path to the layer settings file")
	flag.StringVar(&opts.device, "device", "", "Keyboard device to capture (default: auto-detect)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.noWatch, "no-watch", false, "Do not reload the settings file when it changes")
	flag.BoolVar(&opts.createSettings, "create-settings", false, "Write the default settings file and exit")
	flag.BoolVar(&opts.listDevices, "list-devices", false, "List keyboard devices and exit")
	flag.StringVar(&opts.replayPath, "replay", "", "Run a recorded trace through the layers and exit")
	flag.StringVar(&opts.recordPath, "record", "", "Record captured key events to a trace file")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version information")
	flag.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "keylayer - layer keys for any keyboard\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keylayer [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  keylayer                          Capture the first keyboard found\n")
		fmt.Fprintf(os.Stderr, "  keylayer -list-devices            Show keyboards that can be captured\n")
		fmt.Fprintf(os.Stderr, "  keylayer -device /dev/input/event3\n")
		fmt.Fprintf(os.Stderr, "  keylayer -create-settings         Write ~/.keylayer with the default layer\n")
		fmt.Fprintf(os.Stderr, "  keylayer -replay session.trace    Show how a trace would be handled\n")
	}

	flag.Parse()

	overrides := map[string]any{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "settings":
			overrides[config.KeySettingsPath] = opts.settingsPath
		case "device":
			overrides[config.KeyDevice] = opts.device
		case "log-level":
			overrides[config.KeyLogLevel] = opts.logLevel
		case "no-watch":
			overrides[config.KeyWatchSettings] = !opts.noWatch
		}
	})

	return opts, overrides
}

// loadConfig layers flag overrides on top of the config file and environment.
func loadConfig(path string, overrides map[string]any) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Apply(overrides); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func listDevices() int {
	keyboards, err := hook.ListKeyboards()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(keyboards) == 0 {
		fmt.Fprintln(os.Stderr, "No keyboards found. Is your user in the input group?")
		return 1
	}
	for _, kb := range keyboards {
		fmt.Printf("%s\t%s\n", kb.Path, kb.Name)
	}
	return 0
}

func createSettings(path string) int {
	if err := keymap.DefaultSettings().SaveFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote default settings to %s\n", path)
	return 0
}

func replayTrace(settingsPath, tracePath string) int {
	settings, err := keymap.LoadOrDefault(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	steps, err := replay.ParseFile(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	results, err := replay.Run(context.Background(), settings.Layers, steps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := replay.Print(os.Stdout, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
