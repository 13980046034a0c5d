package keymap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/keylayer/internal/input/key"
)

// Action discriminators used in settings files.
const (
	sendTextType   = "SendKeysBindingAction"
	runCommandType = "RunCommandBindingAction"
)

// LoadFile loads settings from a JSON file.
func LoadFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening settings file: %w", err)
	}
	defer f.Close()

	return LoadReader(f)
}

// LoadReader loads and validates settings from a reader.
func LoadReader(r io.Reader) (*Settings, error) {
	var s Settings
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &DecodeError{Binding: -1, Err: err}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadOrDefault loads settings from path. A missing file yields the default
// settings and a nil error. Any other failure yields the default settings
// together with the error so that the caller can report it.
func LoadOrDefault(path string) (*Settings, error) {
	s, err := LoadFile(path)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	return DefaultSettings(), err
}

// Encode writes the settings as indented JSON.
func (s *Settings) Encode(w io.Writer) error {
	config, err := s.toConfig()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(config)
}

// SaveFile writes the settings to a JSON file, creating parent directories
// as needed.
func (s *Settings) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// MarshalJSON converts settings to JSON.
func (s *Settings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON parses settings from JSON. It does not validate bindings;
// use LoadReader for that.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var config settingsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return err
	}

	s.Layers = make([]Layer, 0, len(config.Layers))
	for _, lc := range config.Layers {
		layer, err := lc.toLayer()
		if err != nil {
			return err
		}
		s.Layers = append(s.Layers, *layer)
	}
	return nil
}

// settingsConfig is the JSON structure for settings files.
type settingsConfig struct {
	Layers []layerEntry `json:"Layers"`
}

type layerEntry struct {
	LayerName string       `json:"LayerName"`
	Settings  *layerConfig `json:"Settings"`
}

type layerConfig struct {
	LayerKeyTappedTimeout           *string        `json:"LayerKeyTappedTimeout"`
	ModifierReleasedRecentlyTimeout *string        `json:"ModifierReleasedRecentlyTimeout"`
	LayerKey                        string         `json:"LayerKey"`
	VimBindings                     []bindingEntry `json:"VimBindings"`
}

type bindingEntry struct {
	Key   *key.Combo      `json:"Key"`
	Value json.RawMessage `json:"Value"`
}

type actionHeader struct {
	Type string `json:"$type"`
}

type sendTextConfig struct {
	Type string `json:"$type"`
	Text string `json:"Text"`
}

type runCommandConfig struct {
	Type      string `json:"$type"`
	Command   string `json:"Command"`
	Arguments *string `json:"Arguments"`
}

func (e layerEntry) toLayer() (*Layer, error) {
	if e.LayerName == "" {
		return nil, layerError("", fmt.Errorf("%w: LayerName", ErrMissingField))
	}
	if e.Settings == nil {
		return nil, layerError(e.LayerName, fmt.Errorf("%w: Settings", ErrMissingField))
	}
	c := e.Settings

	layer := NewLayer(e.LayerName)
	if c.LayerKey == "" {
		return nil, layerError(e.LayerName, fmt.Errorf("%w: LayerKey", ErrMissingField))
	}
	k, ok := key.FromName(c.LayerKey)
	if !ok {
		return nil, layerError(e.LayerName, fmt.Errorf("%w: LayerKey %q", ErrUnknownKey, c.LayerKey))
	}
	layer.LayerKey = k

	var err error
	if c.LayerKeyTappedTimeout != nil {
		if layer.TapTimeout, err = parseTimeSpan(*c.LayerKeyTappedTimeout); err != nil {
			return nil, layerError(e.LayerName, fmt.Errorf("LayerKeyTappedTimeout: %w", err))
		}
	}
	if c.ModifierReleasedRecentlyTimeout != nil {
		if layer.ModifierReleaseTimeout, err = parseTimeSpan(*c.ModifierReleasedRecentlyTimeout); err != nil {
			return nil, layerError(e.LayerName, fmt.Errorf("ModifierReleasedRecentlyTimeout: %w", err))
		}
	}

	for i, be := range c.VimBindings {
		b, err := be.toBinding()
		if err != nil {
			return nil, bindingError(e.LayerName, i, err)
		}
		layer.Add(b)
	}
	return layer, nil
}

func (e bindingEntry) toBinding() (Binding, error) {
	if e.Key == nil {
		return Binding{}, fmt.Errorf("%w: Key", ErrMissingField)
	}
	if len(e.Value) == 0 || string(e.Value) == "null" {
		return Binding{}, fmt.Errorf("%w: Value", ErrMissingField)
	}

	action, err := decodeAction(e.Value)
	if err != nil {
		return Binding{}, err
	}
	return Binding{Combo: *e.Key, Action: action}, nil
}

func decodeAction(data json.RawMessage) (Action, error) {
	var header actionHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, err
	}

	switch header.Type {
	case sendTextType:
		var c sendTextConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return SendText{Text: c.Text}, nil
	case runCommandType:
		var c runCommandConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		rc := RunCommand{Command: c.Command}
		if c.Arguments != nil {
			rc.Arguments = *c.Arguments
		}
		return rc, nil
	case "":
		return nil, fmt.Errorf("%w: $type", ErrMissingField)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, header.Type)
	}
}

func (s *Settings) toConfig() (settingsConfig, error) {
	config := settingsConfig{Layers: make([]layerEntry, 0, len(s.Layers))}
	for _, l := range s.Layers {
		lc := &layerConfig{
			LayerKeyTappedTimeout:           timeSpanPtr(l.TapTimeout),
			ModifierReleasedRecentlyTimeout: timeSpanPtr(l.ModifierReleaseTimeout),
			LayerKey:                        l.LayerKey.WireName(),
			VimBindings:                     make([]bindingEntry, 0, len(l.Bindings)),
		}
		for i, b := range l.Bindings {
			value, err := encodeAction(b.Action)
			if err != nil {
				return settingsConfig{}, bindingError(l.Name, i, err)
			}
			combo := b.Combo
			lc.VimBindings = append(lc.VimBindings, bindingEntry{Key: &combo, Value: value})
		}
		config.Layers = append(config.Layers, layerEntry{LayerName: l.Name, Settings: lc})
	}
	return config, nil
}

func encodeAction(a Action) (json.RawMessage, error) {
	var v any
	switch a := a.(type) {
	case SendText:
		v = sendTextConfig{Type: sendTextType, Text: a.Text}
	case RunCommand:
		rc := runCommandConfig{Type: runCommandType, Command: a.Command}
		if a.Arguments != "" {
			rc.Arguments = &a.Arguments
		}
		v = rc
	case nil:
		return nil, fmt.Errorf("%w: Value", ErrMissingField)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func timeSpanPtr(d time.Duration) *string {
	s := formatTimeSpan(d)
	return &s
}
