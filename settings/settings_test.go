package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingFile(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadFrom(filepath.Join(dir, "settings.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if s.PollIntervalMS != DefaultPollIntervalMS {
		t.Errorf("PollIntervalMS = %d, want %d", s.PollIntervalMS, DefaultPollIntervalMS)
	}
	if s.WindowWidth != DefaultWindowWidth {
		t.Errorf("WindowWidth = %d, want %d", s.WindowWidth, DefaultWindowWidth)
	}
	if s.WindowHeight != DefaultWindowHeight {
		t.Errorf("WindowHeight = %d, want %d", s.WindowHeight, DefaultWindowHeight)
	}
	if s.Shell != "" {
		t.Errorf("Shell = %q, want empty", s.Shell)
	}
	if s.MaxLogLines != 0 {
		t.Errorf("MaxLogLines = %d, want 0", s.MaxLogLines)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "settings.yaml")
	content := `
poll_interval_ms: 250
shell: /bin/zsh
max_log_lines: 5000
theme: dark-purple
window_width: 1024
window_height: 768
debug: true
`
	if err := os.WriteFile(fp, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFrom(fp)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if s.PollIntervalMS != 250 {
		t.Errorf("PollIntervalMS = %d, want 250", s.PollIntervalMS)
	}
	if s.Shell != "/bin/zsh" {
		t.Errorf("Shell = %q, want /bin/zsh", s.Shell)
	}
	if s.MaxLogLines != 5000 {
		t.Errorf("MaxLogLines = %d, want 5000", s.MaxLogLines)
	}
	if s.Theme != "dark-purple" {
		t.Errorf("Theme = %q, want dark-purple", s.Theme)
	}
	if !s.Debug {
		t.Error("Debug should be true")
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(fp, []byte("poll_interval_ms: [not an int\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(fp); err == nil {
		t.Error("LoadFrom should fail on malformed YAML")
	}
}

func TestLoadFrom_PartialFile(t *testing.T) {
	// Unset fields keep their defaults
	dir := t.TempDir()
	fp := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(fp, []byte("theme: nord\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFrom(fp)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if s.Theme != "nord" {
		t.Errorf("Theme = %q, want nord", s.Theme)
	}
	if s.PollIntervalMS != DefaultPollIntervalMS {
		t.Errorf("PollIntervalMS = %d, want default %d", s.PollIntervalMS, DefaultPollIntervalMS)
	}
}

func TestValidate_OutOfRangeValues(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "settings.yaml")
	content := `
poll_interval_ms: -5
max_log_lines: -1
window_width: 0
window_height: -100
`
	if err := os.WriteFile(fp, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFrom(fp)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if s.PollIntervalMS != DefaultPollIntervalMS {
		t.Errorf("PollIntervalMS = %d, want default %d", s.PollIntervalMS, DefaultPollIntervalMS)
	}
	if s.MaxLogLines != 0 {
		t.Errorf("MaxLogLines = %d, want 0", s.MaxLogLines)
	}
	if s.WindowWidth != DefaultWindowWidth {
		t.Errorf("WindowWidth = %d, want default %d", s.WindowWidth, DefaultWindowWidth)
	}
	if s.WindowHeight != DefaultWindowHeight {
		t.Errorf("WindowHeight = %d, want default %d", s.WindowHeight, DefaultWindowHeight)
	}
}

func TestPollInterval(t *testing.T) {
	s := Default()
	if got := s.PollInterval(); got != 100*time.Millisecond {
		t.Errorf("PollInterval = %v, want 100ms", got)
	}

	s.PollIntervalMS = 250
	if got := s.PollInterval(); got != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", got)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "nested", "settings.yaml")

	s := Default()
	s.Theme = "solarized"
	s.PollIntervalMS = 50
	s.MaxLogLines = 2000

	if err := s.SaveTo(fp); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	reloaded, err := LoadFrom(fp)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if reloaded.Theme != "solarized" {
		t.Errorf("Theme = %q, want solarized", reloaded.Theme)
	}
	if reloaded.PollIntervalMS != 50 {
		t.Errorf("PollIntervalMS = %d, want 50", reloaded.PollIntervalMS)
	}
	if reloaded.MaxLogLines != 2000 {
		t.Errorf("MaxLogLines = %d, want 2000", reloaded.MaxLogLines)
	}
}
