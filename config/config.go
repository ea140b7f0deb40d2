// Package config manages the per-project run configuration.
//
// Each project directory may contain a .user-feedback.json file holding the
// command to run and whether to run it automatically when a session opens.
// A missing or malformed file is never an error: the session must always be
// able to start, so Load falls back to an empty default configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhubert/feedback-core/logger"
)

// FileName is the name of the per-project configuration file.
const FileName = ".user-feedback.json"

// RunConfig holds the run configuration for one project directory.
// It is mutated in place as the user edits the command or toggles auto-run,
// and persisted only on an explicit Save.
type RunConfig struct {
	RunCommand           string `json:"run_command"`
	ExecuteAutomatically bool   `json:"execute_automatically"`

	mu       sync.RWMutex
	filePath string
}

// FilePath returns the configuration file path for a project directory.
func FilePath(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Load reads the run configuration for the given project directory.
// A missing file or malformed JSON yields the default empty configuration;
// Load never fails.
func Load(projectDir string) *RunConfig {
	cfg := &RunConfig{
		filePath: FilePath(projectDir),
	}

	data, err := os.ReadFile(cfg.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithComponent("config").Debug("failed to read run config, using defaults", "path", cfg.filePath, "error", err)
		}
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		logger.WithComponent("config").Debug("malformed run config, using defaults", "path", cfg.filePath, "error", err)
		// Discard any partially-unmarshaled fields
		cfg.RunCommand = ""
		cfg.ExecuteAutomatically = false
	}

	return cfg
}

// Save writes the configuration to the project's config file, overwriting
// any existing content.
func (c *RunConfig) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.filePath, data, 0644)
}

// SetFilePath overrides the config file path (for testing).
func (c *RunConfig) SetFilePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filePath = path
}

// Command returns the configured run command.
func (c *RunConfig) Command() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RunCommand
}

// SetCommand updates the run command in memory. It does not persist.
func (c *RunConfig) SetCommand(command string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RunCommand = command
}

// AutoRun returns whether the command should run automatically at session start.
func (c *RunConfig) AutoRun() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ExecuteAutomatically
}

// SetAutoRun updates the auto-run flag in memory. It does not persist.
func (c *RunConfig) SetAutoRun(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExecuteAutomatically = enabled
}
