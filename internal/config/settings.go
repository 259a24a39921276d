package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/gridedit/internal/config/loader"
)

// Settings is the user configuration of the interactive grid.
type Settings struct {
	// Keymap overrides action bindings, e.g. commit = ["Enter", "C-s"].
	Keymap map[string]KeySpecs `yaml:"keymap"`

	// Theme overrides style specs by name, e.g. "badge.active" = "fg=green bold".
	Theme map[string]string `yaml:"theme"`

	Menu MenuSettings `yaml:"menu"`
	Grid GridSettings `yaml:"grid"`
	Log  LogSettings  `yaml:"log"`
}

// MenuSettings configures the column menu.
type MenuSettings struct {
	// CloseDelay is how long a blurred menu waits before closing.
	CloseDelay Duration `yaml:"closeDelay"`
}

// GridSettings configures the grid layout.
type GridSettings struct {
	// MaxColumnWidth caps column width in cells. Zero means no cap.
	MaxColumnWidth int `yaml:"maxColumnWidth"`

	// ScrollMargin is the number of rows kept visible around the cursor.
	ScrollMargin int `yaml:"scrollMargin"`
}

// LogSettings configures logging.
type LogSettings struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`

	// File receives log output. Empty discards logs, since the terminal
	// belongs to the grid.
	File string `yaml:"file"`
}

// Duration is a time.Duration read from "150ms" style strings or from an
// integer number of milliseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var ms int64
	if err := n.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// KeySpecs is a list of key specs that may be written as a single string.
type KeySpecs []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *KeySpecs) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		*k = KeySpecs{s}
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*k = list
	return nil
}

// DefaultCloseDelay is the column menu's default blur delay.
const DefaultCloseDelay = 150 * time.Millisecond

// defaults is the lowest configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"menu": map[string]any{"closeDelay": DefaultCloseDelay.String()},
		"grid": map[string]any{"maxColumnWidth": 40, "scrollMargin": 1},
		"log":  map[string]any{"level": "info", "format": "text", "file": ""},
	}
}

// Default returns the built-in settings.
func Default() *Settings {
	s, err := decode(defaults())
	if err != nil {
		panic(fmt.Sprintf("config: bad defaults: %v", err))
	}
	return s
}

// Options selects the layers Load merges.
type Options struct {
	// FS reads the settings file. Nil means the OS file system.
	FS loader.FileSystem

	// Path is the settings file. Empty means defaults only. A missing
	// file is not an error.
	Path string

	// Env overlays environment variables on top of the file. Nil skips it.
	Env *loader.EnvLoader
}

// Load merges defaults, the settings file and the environment, in that
// order, and validates the result.
func Load(opts Options) (*Settings, error) {
	merged := defaults()

	if opts.Path != "" {
		l, err := loader.ForPath(opts.FS, opts.Path)
		if err != nil {
			return nil, err
		}
		file, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, file)
	}
	if opts.Env != nil {
		env, err := opts.Env.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, env)
	}

	s, err := decode(merged)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", opts.Path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// decode converts a merged map into Settings. The map goes through YAML
// so TOML and YAML sources share one set of struct tags.
func decode(m map[string]any) (*Settings, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks value ranges and names.
func (s *Settings) Validate() error {
	if s.Menu.CloseDelay < 0 {
		return &SettingError{Path: "menu.closeDelay", Value: s.Menu.CloseDelay.Std(), Message: "must not be negative"}
	}
	if s.Grid.MaxColumnWidth < 0 {
		return &SettingError{Path: "grid.maxColumnWidth", Value: s.Grid.MaxColumnWidth, Message: "must not be negative"}
	}
	if s.Grid.ScrollMargin < 0 {
		return &SettingError{Path: "grid.scrollMargin", Value: s.Grid.ScrollMargin, Message: "must not be negative"}
	}
	if _, err := s.Log.SlogLevel(); err != nil {
		return &SettingError{Path: "log.level", Value: s.Log.Level, Message: "must be debug, info, warn or error"}
	}
	switch strings.ToLower(s.Log.Format) {
	case "text", "json":
	default:
		return &SettingError{Path: "log.format", Value: s.Log.Format, Message: "must be text or json"}
	}
	return nil
}

// KeymapOverrides returns the keymap section in the form key.Keymap.Apply
// expects.
func (s *Settings) KeymapOverrides() map[string][]string {
	out := make(map[string][]string, len(s.Keymap))
	for action, specs := range s.Keymap {
		out[action] = []string(specs)
	}
	return out
}

// SlogLevel parses Level.
func (l LogSettings) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}
