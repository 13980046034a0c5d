package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if !cfg.WatchSettings {
		t.Error("WatchSettings should default to true")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
	if filepath.Base(cfg.SettingsPath) != DefaultSettingsFile {
		t.Errorf("SettingsPath = %q, want a %s file", cfg.SettingsPath, DefaultSettingsFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_Sources(t *testing.T) {
	files := memFS{
		"/etc/keylayer.toml": `
log_level = "warn"
device = "/dev/input/event2"
shutdown_timeout = "2s"
`,
	}

	cfg, err := Load("/etc/keylayer.toml",
		WithFileSystem(files),
		WithEnvironment([]string{
			"KEYLAYER_LOG_LEVEL=debug",
			"KEYLAYER_WATCH_SETTINGS=false",
		}),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug (environment overrides file)", cfg.LogLevel)
	}
	if cfg.Device != "/dev/input/event2" {
		t.Errorf("Device = %q, want /dev/input/event2", cfg.Device)
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 2s", cfg.ShutdownTimeout)
	}
	if cfg.WatchSettings {
		t.Error("WatchSettings = true, want false")
	}
	if cfg.DeviceName != Default().DeviceName {
		t.Errorf("DeviceName = %q, want default", cfg.DeviceName)
	}
}

func TestLoad_YAML(t *testing.T) {
	files := memFS{
		"/c.yaml": "settings_path: /tmp/bindings.json\nshutdown_timeout: 3\n",
	}

	cfg, err := Load("/c.yaml", WithFileSystem(files), WithEnvironment(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SettingsPath != "/tmp/bindings.json" {
		t.Errorf("SettingsPath = %q", cfg.SettingsPath)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/missing.toml", WithFileSystem(memFS{}), WithEnvironment(nil))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %v", err, ErrFileNotFound)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"unknown setting", `colour = "red"`, ErrSettingNotFound},
		{"wrong type", `watch_settings = "sometimes"`, ErrTypeMismatch},
		{"bad duration", `shutdown_timeout = "soon"`, ErrTypeMismatch},
		{"bad level", `log_level = "chatty"`, ErrValidationFailed},
		{"negative timeout", `shutdown_timeout = "-1s"`, ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := memFS{"/c.toml": tt.content}
			_, err := Load("/c.toml", WithFileSystem(files), WithEnvironment(nil))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApply_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	err := cfg.Apply(map[string]any{
		"nope":           1,
		KeyWatchSettings: "yes",
	})
	if !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("error %v should include %v", err, ErrSettingNotFound)
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error %v should include %v", err, ErrTypeMismatch)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/.keylayer", filepath.Join(home, ".keylayer")},
		{"/abs/path", "/abs/path"},
		{"~user/x", "~user/x"},
	}

	for _, tt := range tests {
		if got := ExpandHome(tt.input); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
