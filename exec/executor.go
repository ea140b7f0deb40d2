// Package exec provides an abstraction over shell command execution for
// testability. It allows production code to launch real shell commands while
// tests can inject mock launchers that produce scripted output.
//
// Commands are run through the host shell (sh -c on Unix, cmd /C on Windows)
// in a given working directory. The command string is operator-supplied and
// is passed to the shell unmodified; shell metacharacters are honored.
package exec

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Handle represents a launched shell command.
type Handle interface {
	// PID returns the OS process ID.
	PID() int

	// Stdout returns the process's standard output stream.
	Stdout() io.Reader

	// Stderr returns the process's standard error stream.
	Stderr() io.Reader

	// Wait blocks until the process exits and releases its resources.
	// A non-nil error carrying an ExitCode() int method indicates a
	// non-zero exit status.
	Wait() error

	// Terminate sends a termination signal to the process. It does not
	// wait for exit; the caller must still call Wait to reap.
	Terminate() error

	// Kill forcibly kills the process.
	Kill() error
}

// ShellLauncher abstracts launching a shell command with piped output.
// Production code uses RealLauncher, while tests use MockLauncher.
type ShellLauncher interface {
	// Launch starts the command through the host shell in dir.
	// It returns as soon as the process has been spawned.
	Launch(dir, command string) (Handle, error)
}

// ExitCoder is implemented by errors that carry a process exit status.
// *exec.ExitError satisfies it for real processes.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode extracts the exit status from a Wait error.
// Returns 0 for nil, the reported status for ExitCoder errors, and -1 for
// anything else (killed, signal, spawn anomalies).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(ExitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}

// shellInvocation returns the shell binary and arguments for a command.
// An empty shell selects the platform default.
func shellInvocation(shell, command string) (string, []string) {
	if shell == "" {
		if runtime.GOOS == "windows" {
			return "cmd", []string{"/C", command}
		}
		return "sh", []string{"-c", command}
	}
	if strings.EqualFold(trimExt(shell), "cmd") {
		return shell, []string{"/C", command}
	}
	return shell, []string{"-c", command}
}

// trimExt strips a trailing .exe from a shell name for comparison.
func trimExt(name string) string {
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// RealLauncher launches commands using os/exec.
type RealLauncher struct {
	shell string
}

// NewRealLauncher returns a launcher using the platform default shell.
func NewRealLauncher() *RealLauncher {
	return &RealLauncher{}
}

// NewRealLauncherWithShell returns a launcher using a specific shell binary.
func NewRealLauncherWithShell(shell string) *RealLauncher {
	return &RealLauncher{shell: shell}
}

// Launch starts the command through the shell in dir.
func (l *RealLauncher) Launch(dir, command string) (Handle, error) {
	name, args := shellInvocation(l.shell, command)
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return nil, err
	}

	return &realHandle{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

// realHandle wraps a real exec.Cmd.
type realHandle struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (h *realHandle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

func (h *realHandle) Stdout() io.Reader { return h.stdout }
func (h *realHandle) Stderr() io.Reader { return h.stderr }

func (h *realHandle) Wait() error {
	return h.cmd.Wait()
}

func (h *realHandle) Terminate() error {
	if h.cmd.Process == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		// Windows has no SIGTERM equivalent for console processes
		return h.cmd.Process.Kill()
	}
	return h.cmd.Process.Signal(syscall.SIGTERM)
}

func (h *realHandle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

// MockExitError is a scripted non-zero exit status for mock processes.
type MockExitError struct {
	Code int
}

func (e *MockExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the scripted exit status.
func (e *MockExitError) ExitCode() int { return e.Code }

// MockResponse defines the scripted behavior for a mocked command.
type MockResponse struct {
	Stdout   string        // content delivered on stdout
	Stderr   string        // content delivered on stderr
	ExitCode int           // exit status reported by Wait
	StartErr error         // when set, Launch fails with this error
	RunFor   time.Duration // how long the process "runs" before exiting
	Blocking bool          // when set, the process runs until Terminate/Kill
}

// CommandMatcher is a function that determines if a command matches.
type CommandMatcher func(dir, command string) bool

// MockRule defines a matching rule and its response.
type MockRule struct {
	Match    CommandMatcher
	Response MockResponse
}

// MockCall records a launch invocation for verification.
type MockCall struct {
	Dir     string
	Command string
}

// MockLauncher returns scripted processes for commands.
// Commands are matched in order of rule registration.
type MockLauncher struct {
	mu       sync.RWMutex
	rules    []MockRule
	calls    []MockCall
	fallback ShellLauncher
}

// NewMockLauncher creates a new MockLauncher.
// If fallback is provided, unmatched commands will be delegated to it.
func NewMockLauncher(fallback ShellLauncher) *MockLauncher {
	return &MockLauncher{fallback: fallback}
}

// AddRule adds a matching rule with its response.
func (l *MockLauncher) AddRule(match CommandMatcher, response MockResponse) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rules = append(l.rules, MockRule{Match: match, Response: response})
}

// AddExactMatch adds a rule that matches a specific command string exactly.
func (l *MockLauncher) AddExactMatch(command string, response MockResponse) {
	l.AddRule(func(dir, c string) bool {
		return c == command
	}, response)
}

// GetCalls returns all recorded launch invocations.
func (l *MockLauncher) GetCalls() []MockCall {
	l.mu.RLock()
	defer l.mu.RUnlock()
	calls := make([]MockCall, len(l.calls))
	copy(calls, l.calls)
	return calls
}

// ClearCalls clears the recorded launch invocations.
func (l *MockLauncher) ClearCalls() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

func (l *MockLauncher) findMatch(dir, command string) *MockResponse {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, rule := range l.rules {
		if rule.Match(dir, command) {
			resp := rule.Response
			return &resp
		}
	}
	return nil
}

// Launch returns a scripted process handle for the command.
func (l *MockLauncher) Launch(dir, command string) (Handle, error) {
	l.mu.Lock()
	l.calls = append(l.calls, MockCall{Dir: dir, Command: command})
	l.mu.Unlock()

	if resp := l.findMatch(dir, command); resp != nil {
		if resp.StartErr != nil {
			return nil, resp.StartErr
		}
		return newMockHandle(*resp), nil
	}

	if l.fallback != nil {
		return l.fallback.Launch(dir, command)
	}

	// Default: an immediately-exiting process with no output
	return newMockHandle(MockResponse{}), nil
}

// mockHandle simulates a launched process from a scripted response.
type mockHandle struct {
	response MockResponse
	stdout   io.Reader
	stderr   io.Reader

	termOnce sync.Once
	termCh   chan struct{}
}

func newMockHandle(resp MockResponse) *mockHandle {
	return &mockHandle{
		response: resp,
		stdout:   strings.NewReader(resp.Stdout),
		stderr:   strings.NewReader(resp.Stderr),
		termCh:   make(chan struct{}),
	}
}

func (h *mockHandle) PID() int          { return 1 }
func (h *mockHandle) Stdout() io.Reader { return h.stdout }
func (h *mockHandle) Stderr() io.Reader { return h.stderr }

func (h *mockHandle) Wait() error {
	if h.response.Blocking {
		<-h.termCh
		return &MockExitError{Code: -1}
	}

	if h.response.RunFor > 0 {
		select {
		case <-time.After(h.response.RunFor):
		case <-h.termCh:
			return &MockExitError{Code: -1}
		}
	}

	if h.response.ExitCode != 0 {
		return &MockExitError{Code: h.response.ExitCode}
	}
	return nil
}

func (h *mockHandle) Terminate() error {
	h.termOnce.Do(func() { close(h.termCh) })
	return nil
}

func (h *mockHandle) Kill() error {
	h.termOnce.Do(func() { close(h.termCh) })
	return nil
}

// Ensure implementations satisfy the interfaces.
var _ ShellLauncher = (*RealLauncher)(nil)
var _ ShellLauncher = (*MockLauncher)(nil)
var _ Handle = (*realHandle)(nil)
var _ Handle = (*mockHandle)(nil)

// defaultLauncherMu protects defaultLauncher for concurrent access.
var defaultLauncherMu sync.RWMutex

// defaultLauncher is the global default launcher (can be swapped for testing).
var defaultLauncher ShellLauncher = NewRealLauncher()

// GetDefaultLauncher returns the global default launcher.
func GetDefaultLauncher() ShellLauncher {
	defaultLauncherMu.RLock()
	defer defaultLauncherMu.RUnlock()
	return defaultLauncher
}

// SetDefaultLauncher sets the global default launcher.
func SetDefaultLauncher(l ShellLauncher) {
	defaultLauncherMu.Lock()
	defer defaultLauncherMu.Unlock()
	defaultLauncher = l
}
