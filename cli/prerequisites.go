// Package cli validates that the host tools a feedback session depends on
// are available.
package cli

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Prerequisite represents a required host tool.
type Prerequisite struct {
	Name        string // Command name (e.g., "sh")
	Required    bool   // Whether the tool is required to run sessions
	Description string // Human-readable description
}

// DefaultPrerequisites returns the host tools needed to run feedback
// sessions. shell overrides the platform default command shell; empty
// selects sh on Unix and cmd on Windows.
func DefaultPrerequisites(shell string) []Prerequisite {
	if shell == "" {
		if runtime.GOOS == "windows" {
			shell = "cmd"
		} else {
			shell = "sh"
		}
	}
	return []Prerequisite{
		{
			Name:        shell,
			Required:    true,
			Description: "command shell used to run project commands",
		},
	}
}

// CheckResult contains the result of checking a prerequisite.
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Path         string // Path to the executable if found
	Error        error
}

// Check verifies that a host tool is available in PATH.
func Check(prereq Prerequisite) CheckResult {
	result := CheckResult{Prerequisite: prereq}

	path, err := exec.LookPath(prereq.Name)
	if err != nil {
		result.Error = fmt.Errorf("%s not found in PATH", prereq.Name)
		return result
	}

	result.Found = true
	result.Path = path
	return result
}

// CheckAll verifies all prerequisites and returns results.
func CheckAll(prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, prereq := range prereqs {
		results[i] = Check(prereq)
	}
	return results
}

// ValidateRequired checks that all required prerequisites are met.
// Returns nil if all required tools are found, otherwise an error naming
// what is missing.
func ValidateRequired(prereqs []Prerequisite) error {
	var missing []string

	for _, prereq := range prereqs {
		if !prereq.Required {
			continue
		}
		result := Check(prereq)
		if !result.Found {
			missing = append(missing, fmt.Sprintf("  - %s (%s)", prereq.Name, prereq.Description))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required host tools:\n%s", strings.Join(missing, "\n"))
	}

	return nil
}
