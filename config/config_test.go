package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()

	cfg := Load(dir)
	if cfg == nil {
		t.Fatal("Load returned nil")
	}

	if cfg.Command() != "" {
		t.Errorf("Command = %q, want empty", cfg.Command())
	}
	if cfg.AutoRun() {
		t.Error("AutoRun should default to false")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"run_command": "make test", "execute_automatically": true}`
	if err := os.WriteFile(FilePath(dir), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(dir)

	if got := cfg.Command(); got != "make test" {
		t.Errorf("Command = %q, want %q", got, "make test")
	}
	if !cfg.AutoRun() {
		t.Error("AutoRun should be true")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated object", content: `{"run_command": "make te`},
		{name: "not JSON at all", content: `this is not json`},
		{name: "wrong field type", content: `{"run_command": 42, "execute_automatically": "yes"}`},
		{name: "empty file", content: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(FilePath(dir), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg := Load(dir)
			if cfg == nil {
				t.Fatal("Load returned nil for malformed config")
			}
			if cfg.Command() != "" {
				t.Errorf("Command = %q, want empty after malformed load", cfg.Command())
			}
			if cfg.AutoRun() {
				t.Error("AutoRun should be false after malformed load")
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Load(dir)
	cfg.SetCommand("npm run lint")
	cfg.SetAutoRun(true)

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := Load(dir)
	if got := reloaded.Command(); got != "npm run lint" {
		t.Errorf("Command after reload = %q, want %q", got, "npm run lint")
	}
	if !reloaded.AutoRun() {
		t.Error("AutoRun after reload should be true")
	}
}

func TestSave_Overwrites(t *testing.T) {
	dir := t.TempDir()
	original := `{"run_command": "old command", "execute_automatically": true}`
	if err := os.WriteFile(FilePath(dir), []byte(original), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(dir)
	cfg.SetCommand("new command")
	cfg.SetAutoRun(false)

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(FilePath(dir))
	if err != nil {
		t.Fatal(err)
	}

	var onDisk map[string]any
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("saved config is not valid JSON: %v", err)
	}

	if onDisk["run_command"] != "new command" {
		t.Errorf("run_command on disk = %v, want %q", onDisk["run_command"], "new command")
	}
	if onDisk["execute_automatically"] != false {
		t.Errorf("execute_automatically on disk = %v, want false", onDisk["execute_automatically"])
	}
}

func TestSave_WritesBothFields(t *testing.T) {
	// The on-disk format always carries both keys, even at their zero values,
	// so other tools reading the file see a complete record.
	dir := t.TempDir()

	cfg := Load(dir)
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(FilePath(dir))
	if err != nil {
		t.Fatal(err)
	}

	var onDisk map[string]any
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatal(err)
	}

	if _, ok := onDisk["run_command"]; !ok {
		t.Error("saved config missing run_command key")
	}
	if _, ok := onDisk["execute_automatically"]; !ok {
		t.Error("saved config missing execute_automatically key")
	}
}

func TestSave_UnwritableDir(t *testing.T) {
	dir := t.TempDir()

	cfg := Load(dir)
	cfg.SetFilePath(filepath.Join(dir, "no-such-subdir", FileName))

	if err := cfg.Save(); err == nil {
		t.Error("Save into a missing directory should return an error")
	}
}

func TestUpdate_DoesNotPersist(t *testing.T) {
	dir := t.TempDir()

	cfg := Load(dir)
	cfg.SetCommand("go test ./...")
	cfg.SetAutoRun(true)

	// No Save — the file must not exist
	if _, err := os.Stat(FilePath(dir)); !os.IsNotExist(err) {
		t.Error("config file should not exist before Save")
	}
}
