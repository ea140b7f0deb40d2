// Package runner manages the lifecycle of a shell command child process.
//
// A Runner owns at most one live child at a time. Start spawns the
// user-supplied command through the host shell, wires a relay goroutine to
// each output stream, and returns without waiting for the child. Stop sends
// a termination signal and lets the monitor goroutine reap the process. Poll
// observes process state without blocking; an exit is reported exactly once.
package runner

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/zhubert/feedback-core/console"
	pexec "github.com/zhubert/feedback-core/exec"
	"github.com/zhubert/feedback-core/logger"
)

const (
	// LineChannelBuffer is the delivery channel capacity. Log volume is
	// operator-controlled, so a modest buffer absorbs bursts while the
	// session loop drains.
	LineChannelBuffer = 256

	// LineSendTimeout is how long a relay waits on a full delivery channel
	// before dropping the line (instead of blocking the reader forever).
	LineSendTimeout = 10 * time.Second

	// StopGracePeriod is how long an implicit stop waits for the old child
	// to exit after termination before force-killing it.
	StopGracePeriod = 2 * time.Second
)

// ErrEmptyCommand is returned by Start when the command string is empty.
var ErrEmptyCommand = errors.New("no command to run")

// StateKind identifies the runner's lifecycle phase.
type StateKind int

const (
	// StateNotStarted means no child is live and no unreported exit exists.
	StateNotStarted StateKind = iota
	// StateRunning means a child process is live.
	StateRunning
	// StateExited means the child exited and this observation reports it.
	StateExited
)

// State is the result of a Poll observation.
// ExitCode is meaningful only when Kind is StateExited.
type State struct {
	Kind     StateKind
	ExitCode int
}

// Runner manages at most one child process at a time.
type Runner struct {
	workDir  string
	launcher pexec.ShellLauncher
	log      *slog.Logger

	// lines is the single delivery channel both relays forward into.
	// It persists across runs.
	lines chan console.Line

	mu       sync.Mutex
	handle   pexec.Handle
	running  bool
	stopping bool
	exited   bool // exit observed by the monitor, not yet reported by Poll
	exitCode int

	// waitDone is closed by the monitor goroutine once the child has been
	// reaped and both relays have drained. Recreated per run.
	waitDone chan struct{}
}

// New creates a Runner for commands executed in workDir.
// A nil launcher selects the package default; a nil log selects the
// component logger.
func New(workDir string, launcher pexec.ShellLauncher, log *slog.Logger) *Runner {
	if launcher == nil {
		launcher = pexec.GetDefaultLauncher()
	}
	if log == nil {
		log = logger.WithComponent("runner")
	}
	return &Runner{
		workDir:  workDir,
		launcher: launcher,
		log:      log,
		lines:    make(chan console.Line, LineChannelBuffer),
	}
}

// Lines returns the delivery channel carrying captured output.
// The channel is never closed; it persists across runs.
func (r *Runner) Lines() <-chan console.Line {
	return r.lines
}

// WorkDir returns the working directory commands run in.
func (r *Runner) WorkDir() string {
	return r.workDir
}

// Start spawns the command through the host shell.
// If a child is already running it is terminated and fully reaped first, so
// two children are never live simultaneously. Start returns once the new
// child has been spawned; output delivery begins immediately.
func (r *Runner) Start(command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}

	// Implicit stop: terminate and reap any previous child before spawning
	r.stopAndReap()

	handle, err := r.launcher.Launch(r.workDir, command)
	if err != nil {
		r.log.Debug("failed to start command", "command", command, "error", err)
		return err
	}

	r.mu.Lock()
	r.handle = handle
	r.running = true
	r.stopping = false
	r.exited = false
	r.exitCode = 0
	r.waitDone = make(chan struct{})
	waitDone := r.waitDone
	r.mu.Unlock()

	r.log.Info("process started", "command", command, "pid", handle.PID())

	// One relay per stream plus a monitor that reaps the child after the
	// relays hit end-of-stream.
	var relays sync.WaitGroup
	relays.Add(2)
	go func() {
		defer relays.Done()
		r.relay(handle.Stdout(), console.SourceStdout)
	}()
	go func() {
		defer relays.Done()
		r.relay(handle.Stderr(), console.SourceStderr)
	}()
	go r.monitorExit(handle, &relays, waitDone)

	return nil
}

// Stop sends a termination signal to the child if one is live.
// It does not block waiting for exit; the monitor goroutine reaps the
// process. Safe to call when no process is running.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running || r.handle == nil {
		r.mu.Unlock()
		return
	}
	r.stopping = true
	handle := r.handle
	r.mu.Unlock()

	r.log.Debug("stopping process", "pid", handle.PID())
	if err := handle.Terminate(); err != nil {
		r.log.Debug("failed to terminate process", "error", err)
	}
}

// stopAndReap terminates any live child and waits for it to be reaped.
// Used by Start so the old child is fully gone before the new spawn; kills
// after a grace period if termination is ignored.
func (r *Runner) stopAndReap() {
	r.mu.Lock()
	if !r.running || r.handle == nil {
		r.mu.Unlock()
		return
	}
	r.stopping = true
	handle := r.handle
	waitDone := r.waitDone
	r.mu.Unlock()

	r.log.Debug("stopping previous process before restart", "pid", handle.PID())
	if err := handle.Terminate(); err != nil {
		r.log.Debug("failed to terminate process", "error", err)
	}

	select {
	case <-waitDone:
	case <-time.After(StopGracePeriod):
		r.log.Debug("force killing process", "pid", handle.PID())
		handle.Kill()
		<-waitDone
	}
}

// Poll observes the process state. An exit is reported as StateExited
// exactly once; subsequent polls return StateNotStarted. A stop-initiated
// termination transitions straight to StateNotStarted with no exit report.
func (r *Runner) Poll() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return State{Kind: StateRunning}
	}
	if r.exited {
		r.exited = false
		return State{Kind: StateExited, ExitCode: r.exitCode}
	}
	return State{Kind: StateNotStarted}
}

// IsRunning returns whether a child process is currently live.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Teardown terminates any live child and waits for it to be reaped.
// Called at session end so no orphaned process survives.
func (r *Runner) Teardown() {
	r.stopAndReap()
}

// monitorExit reaps the child once both relays have drained their streams.
// It is the sole caller of Wait, preventing a double reap. waitDone is
// closed only after the child is reaped and all output has been delivered.
func (r *Runner) monitorExit(handle pexec.Handle, relays *sync.WaitGroup, waitDone chan struct{}) {
	// End-of-stream on both pipes precedes process exit, so waiting here
	// also guarantees no output is lost to an early reap.
	relays.Wait()

	err := handle.Wait()
	code := pexec.ExitCode(err)

	r.mu.Lock()
	wasStopped := r.stopping
	r.running = false
	r.stopping = false
	r.handle = nil
	if !wasStopped {
		r.exited = true
		r.exitCode = code
	}
	r.mu.Unlock()

	close(waitDone)

	r.log.Info("process exited", "exitCode", code, "stopped", wasStopped)
}
