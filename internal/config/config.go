package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/keylayer/internal/config/loader"
)

// Setting names, as used in config files and, upper-cased with the
// KEYLAYER_ prefix, in the environment.
const (
	KeyLogLevel        = "log_level"
	KeySettingsPath    = "settings_path"
	KeyDevice          = "device"
	KeyDeviceName      = "device_name"
	KeyWatchSettings   = "watch_settings"
	KeyShutdownTimeout = "shutdown_timeout"
)

// DefaultSettingsFile is the settings file name in the home directory.
const DefaultSettingsFile = ".keylayer"

// Config is the application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string

	// SettingsPath is the JSON bindings file.
	SettingsPath string

	// Device is the evdev keyboard to capture. Empty selects the first
	// keyboard found.
	Device string

	// DeviceName names the virtual output keyboard.
	DeviceName string

	// WatchSettings reloads the bindings when the settings file changes.
	WatchSettings bool

	// ShutdownTimeout bounds how long launched commands get to exit.
	ShutdownTimeout time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:        "info",
		SettingsPath:    DefaultSettingsPath(),
		DeviceName:      "keylayer virtual keyboard",
		WatchSettings:   true,
		ShutdownTimeout: 5 * time.Second,
	}
}

// DefaultSettingsPath returns ~/.keylayer, or .keylayer in the working
// directory if the home directory is unknown.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultSettingsFile
	}
	return filepath.Join(home, DefaultSettingsFile)
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/keylayer/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "keylayer", "config.toml")
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFileSystem reads config files from fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnvironment reads environment settings from environ instead of the
// process environment.
func WithEnvironment(environ []string) Option {
	return func(o *options) {
		o.env = loader.NewEnvLoaderFrom(loader.EnvPrefix, environ)
	}
}

// Load builds the configuration from defaults, the config file at path and
// the environment. An empty path uses DefaultPath, which may be missing.
// An explicit path must exist.
func Load(path string, opts ...Option) (Config, error) {
	o := options{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(loader.EnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	merged := map[string]any{}

	if path != "" {
		fileLoader, err := loader.ForPath(o.fs, path)
		if err != nil {
			return Config{}, err
		}
		values, err := fileLoader.Load()
		if err != nil {
			return Config{}, err
		}
		if values == nil && explicit {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		merged = loader.DeepMerge(merged, values)
	}

	values, err := o.env.Load()
	if err != nil {
		return Config{}, err
	}
	merged = loader.DeepMerge(merged, values)

	cfg := Default()
	if err := cfg.Apply(merged); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply sets every setting named in values. Unknown names and values of
// the wrong type are errors; all of them are reported together.
func (c *Config) Apply(values map[string]any) error {
	var errs []error
	for name, value := range values {
		var err error
		switch name {
		case KeyLogLevel:
			err = setString(&c.LogLevel, name, value)
		case KeySettingsPath:
			err = setString(&c.SettingsPath, name, value)
			c.SettingsPath = ExpandHome(c.SettingsPath)
		case KeyDevice:
			err = setString(&c.Device, name, value)
		case KeyDeviceName:
			err = setString(&c.DeviceName, name, value)
		case KeyWatchSettings:
			err = setBool(&c.WatchSettings, name, value)
		case KeyShutdownTimeout:
			err = setDuration(&c.ShutdownTimeout, name, value)
		default:
			err = fmt.Errorf("%w: %s", ErrSettingNotFound, name)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks setting values.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: KeyLogLevel, Message: "must be debug, info, warn or error", Value: c.LogLevel}
	}
	if c.SettingsPath == "" {
		return &ValidationError{Path: KeySettingsPath, Message: "must not be empty", Value: c.SettingsPath}
	}
	if c.ShutdownTimeout < 0 {
		return &ValidationError{Path: KeyShutdownTimeout, Message: "must not be negative", Value: c.ShutdownTimeout}
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func setString(dst *string, name string, value any) error {
	s, ok := value.(string)
	if !ok {
		return &TypeError{Path: name, Expected: "string", Actual: fmt.Sprintf("%T", value)}
	}
	*dst = s
	return nil
}

func setBool(dst *bool, name string, value any) error {
	b, ok := value.(bool)
	if !ok {
		return &TypeError{Path: name, Expected: "bool", Actual: fmt.Sprintf("%T", value)}
	}
	*dst = b
	return nil
}

// setDuration accepts a duration, a duration string such as "5s", or a
// whole number of seconds.
func setDuration(dst *time.Duration, name string, value any) error {
	switch v := value.(type) {
	case time.Duration:
		*dst = v
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return &TypeError{Path: name, Expected: "duration", Actual: fmt.Sprintf("%q", v)}
		}
		*dst = d
	case int64:
		*dst = time.Duration(v) * time.Second
	case int:
		*dst = time.Duration(v) * time.Second
	case uint64:
		*dst = time.Duration(v) * time.Second
	default:
		return &TypeError{Path: name, Expected: "duration", Actual: fmt.Sprintf("%T", value)}
	}
	return nil
}
