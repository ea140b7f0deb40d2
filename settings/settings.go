// Package settings manages the application-level settings file.
//
// Unlike the per-project run configuration (see the config package), settings
// apply to every session: the process poll interval, an optional shell
// override, the log buffer cap, and presentation hints the frontend persists
// between launches (theme, window size). Settings live in settings.yaml under
// the config directory and are loaded once at startup.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zhubert/feedback-core/paths"
)

// Defaults for every field. Validate falls back to these for out-of-range values.
const (
	DefaultPollIntervalMS = 100
	DefaultWindowWidth    = 800
	DefaultWindowHeight   = 600
)

// Settings is the fixed-shape application settings record.
type Settings struct {
	// PollIntervalMS is how often the session loop polls child process state,
	// in milliseconds.
	PollIntervalMS int `yaml:"poll_interval_ms"`

	// Shell overrides the shell used to run commands. Empty means the
	// platform default (sh on Unix, cmd on Windows).
	Shell string `yaml:"shell,omitempty"`

	// MaxLogLines caps the log buffer, evicting oldest lines first.
	// Zero means unbounded.
	MaxLogLines int `yaml:"max_log_lines,omitempty"`

	// Theme is a presentation hint carried for the frontend. The core does
	// not interpret it.
	Theme string `yaml:"theme,omitempty"`

	// WindowWidth and WindowHeight are presentation hints carried for the
	// frontend. The core does not interpret them.
	WindowWidth  int `yaml:"window_width"`
	WindowHeight int `yaml:"window_height"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug,omitempty"`
}

// Default returns a Settings record with every field at its default value.
func Default() *Settings {
	return &Settings{
		PollIntervalMS: DefaultPollIntervalMS,
		WindowWidth:    DefaultWindowWidth,
		WindowHeight:   DefaultWindowHeight,
	}
}

// Load reads settings.yaml from the config directory.
// Returns defaults if the file does not exist. Unlike the per-project run
// config, a malformed settings file is reported as an error: the file is
// hand-edited, and silently discarding it would hide the mistake.
func Load() (*Settings, error) {
	fp, err := paths.SettingsFilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(fp)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	s.validate()
	return s, nil
}

// validate normalizes out-of-range values back to their defaults.
func (s *Settings) validate() {
	if s.PollIntervalMS <= 0 {
		s.PollIntervalMS = DefaultPollIntervalMS
	}
	if s.MaxLogLines < 0 {
		s.MaxLogLines = 0
	}
	if s.WindowWidth <= 0 {
		s.WindowWidth = DefaultWindowWidth
	}
	if s.WindowHeight <= 0 {
		s.WindowHeight = DefaultWindowHeight
	}
}

// PollInterval returns the poll interval as a duration.
func (s *Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// Save writes the settings to settings.yaml in the config directory.
func (s *Settings) Save() error {
	fp, err := paths.SettingsFilePath()
	if err != nil {
		return err
	}
	return s.SaveTo(fp)
}

// SaveTo writes the settings to an explicit path, creating the parent
// directory if needed.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
