package session

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhubert/feedback-core/config"
	"github.com/zhubert/feedback-core/console"
	pexec "github.com/zhubert/feedback-core/exec"
	"github.com/zhubert/feedback-core/logger"
	"github.com/zhubert/feedback-core/runner"
	"github.com/zhubert/feedback-core/settings"
)

// eventChannelBuffer is the Events channel capacity. Emission never blocks
// the session loop; a frontend that falls behind loses events, not logs.
const eventChannelBuffer = 256

// Result is the outcome of a finished session: every captured log line
// concatenated in delivery order, plus the human's trimmed feedback text.
type Result struct {
	Logs         string `json:"logs"`
	UserFeedback string `json:"user_feedback"`
}

// EventKind identifies what an Event carries.
type EventKind int

const (
	// EventLogLine carries a newly captured log line.
	EventLogLine EventKind = iota
	// EventRunStateChanged signals the child process starting or stopping.
	EventRunStateChanged
	// EventFinished signals the session has produced its Result.
	EventFinished
)

// Event is a notification delivered to the frontend via Events.
type Event struct {
	Kind    EventKind
	Line    console.Line // set for EventLogLine
	Running bool         // set for EventRunStateChanged
}

// Session is one feedback-collection interaction over a project directory.
type Session struct {
	id         string
	projectDir string
	prompt     string

	cfg *config.RunConfig
	set *settings.Settings
	buf *console.Buffer
	run *runner.Runner
	log *slog.Logger

	launcher pexec.ShellLauncher

	cmds   chan func()
	events chan Event
	done   chan struct{}

	// Loop-owned state, touched only by the session loop goroutine.
	lastRunning bool
	finished    bool
	result      Result
}

// Option configures a Session at creation.
type Option func(*Session)

// WithLauncher overrides the shell launcher, used by tests to script
// processes.
func WithLauncher(l pexec.ShellLauncher) Option {
	return func(s *Session) { s.launcher = l }
}

// WithSettings overrides the app settings instead of using defaults.
func WithSettings(set *settings.Settings) Option {
	return func(s *Session) { s.set = set }
}

// New creates a session for projectDir and starts its loop.
// The run configuration is loaded from the project directory; a missing or
// malformed file yields defaults. If auto-run is configured, the configured
// command is started immediately.
func New(projectDir, prompt string, opts ...Option) (*Session, error) {
	info, err := os.Stat(projectDir)
	if err != nil {
		return nil, fmt.Errorf("invalid project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid project directory: %s is not a directory", projectDir)
	}

	s := &Session{
		id:         uuid.NewString(),
		projectDir: projectDir,
		prompt:     prompt,
		cmds:       make(chan func()),
		events:     make(chan Event, eventChannelBuffer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.set == nil {
		s.set = settings.Default()
	}
	if s.launcher == nil {
		if s.set.Shell != "" {
			s.launcher = pexec.NewRealLauncherWithShell(s.set.Shell)
		} else {
			s.launcher = pexec.GetDefaultLauncher()
		}
	}

	s.log = logger.WithSession(s.id)
	s.cfg = config.Load(projectDir)
	s.buf = console.NewBufferWithCap(s.set.MaxLogLines)
	s.run = runner.New(projectDir, s.launcher, s.log.With("component", "runner"))

	s.log.Info("session created", "projectDir", projectDir, "autoRun", s.cfg.AutoRun())

	go s.loop()

	if s.cfg.AutoRun() {
		s.post(func() { s.runCommand(s.cfg.Command()) })
	}

	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// ProjectDir returns the directory commands run in.
func (s *Session) ProjectDir() string { return s.projectDir }

// Prompt returns the question the human is being asked to answer.
func (s *Session) Prompt() string { return s.prompt }

// Command returns the current run command from the configuration.
func (s *Session) Command() string { return s.cfg.Command() }

// AutoRun returns whether the configuration requests an automatic run.
func (s *Session) AutoRun() bool { return s.cfg.AutoRun() }

// Events returns the notification stream for frontends. The channel is
// closed when the session finishes. Events are dropped, never blocked on, if
// the consumer falls behind; Snapshot remains the authoritative log record.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Snapshot returns the captured log lines so far.
func (s *Session) Snapshot() []console.Line {
	return s.buf.Snapshot()
}

// Running reports whether a child process is currently live.
func (s *Session) Running() bool {
	return s.run.IsRunning()
}

// UpdateConfig mutates the in-memory run configuration without persisting.
func (s *Session) UpdateConfig(command string, autoRun bool) {
	s.cfg.SetCommand(command)
	s.cfg.SetAutoRun(autoRun)
}

// SaveConfig writes the run configuration to the per-project file,
// overwriting unconditionally.
func (s *Session) SaveConfig() error {
	return s.cfg.Save()
}

// RunCommand starts command in the project directory, replacing any live
// child. The command is recorded in the in-memory configuration. An empty
// command produces a system log line instead of a spawn. No-op after the
// session has finished.
func (s *Session) RunCommand(command string) {
	s.cfg.SetCommand(command)
	s.post(func() { s.runCommand(command) })
}

// StopCommand terminates the live child, if any. Safe to call when nothing
// is running.
func (s *Session) StopCommand() {
	s.post(func() {
		s.run.Stop()
		s.log.Debug("stop requested")
	})
}

// Submit finishes the session with the given feedback text and returns the
// Result. Valid with an empty buffer, an empty text, or no process ever run.
// A second call returns the original Result.
func (s *Session) Submit(feedbackText string) Result {
	s.post(func() { s.finish(feedbackText) })
	<-s.done
	return s.result
}

// Close finishes the session without feedback, as when the human abandons
// the interaction. Captured logs are still returned through Result.
func (s *Session) Close() {
	s.post(func() { s.finish("") })
	<-s.done
}

// Result blocks until the session finishes and returns its outcome.
func (s *Session) Result() Result {
	<-s.done
	return s.result
}

// post hands fn to the session loop. Returns false if the session already
// finished and the loop is gone.
func (s *Session) post(fn func()) bool {
	select {
	case s.cmds <- fn:
		return true
	case <-s.done:
		return false
	}
}

// loop is the session thread: the sole mutator of the buffer and the sole
// consumer of the runner's delivery channel.
func (s *Session) loop() {
	defer close(s.events)

	ticker := time.NewTicker(s.set.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case line := <-s.run.Lines():
			s.appendLine(line)
		case <-ticker.C:
			s.checkProcess()
		case fn := <-s.cmds:
			fn()
		case <-s.done:
			return
		}
	}
}

// runCommand executes on the session loop.
func (s *Session) runCommand(command string) {
	if s.finished {
		return
	}
	if strings.TrimSpace(command) == "" {
		s.appendLine(console.Line{Source: console.SourceSystem, Text: "Please enter a command to run\n"})
		return
	}

	// A new run owns the console: clear, then echo the command
	s.buf.Clear()
	s.appendLine(console.Line{Source: console.SourceSystem, Text: fmt.Sprintf("$ %s\n", command)})

	if err := s.run.Start(command); err != nil {
		s.appendLine(console.Line{Source: console.SourceSystem, Text: fmt.Sprintf("Error running command: %s\n", err)})
		s.log.Debug("command failed to start", "command", command, "error", err)
		s.syncRunState()
		return
	}
	s.syncRunState()
}

// checkProcess executes on the session loop at every poll tick.
func (s *Session) checkProcess() {
	state := s.run.Poll()
	if state.Kind == runner.StateExited {
		// Output precedes the exit observation; flush it before the notice
		s.drainLines()
		s.appendLine(console.Line{
			Source: console.SourceSystem,
			Text:   fmt.Sprintf("Process exited with code %d\n", state.ExitCode),
		})
	}
	s.syncRunState()
}

// finish executes on the session loop; it produces the Result and ends the
// loop. Idempotent under queued duplicates.
func (s *Session) finish(feedbackText string) {
	if s.finished {
		return
	}
	s.finished = true

	s.run.Teardown()
	s.drainLines()
	s.syncRunState()

	s.result = Result{
		Logs:         s.buf.Text(),
		UserFeedback: strings.TrimSpace(feedbackText),
	}
	s.emit(Event{Kind: EventFinished})
	s.log.Info("session finished", "logLines", s.buf.Len())
	close(s.done)
}

// drainLines moves every line already delivered by the relays into the
// buffer without blocking.
func (s *Session) drainLines() {
	for {
		select {
		case line := <-s.run.Lines():
			s.appendLine(line)
		default:
			return
		}
	}
}

func (s *Session) appendLine(line console.Line) {
	s.buf.Append(line)
	s.emit(Event{Kind: EventLogLine, Line: line})
}

// syncRunState emits a run-state event when the live/idle status changed
// since the last observation.
func (s *Session) syncRunState() {
	running := s.run.IsRunning()
	if running != s.lastRunning {
		s.lastRunning = running
		s.emit(Event{Kind: EventRunStateChanged, Running: running})
	}
}

// emit delivers an event without ever blocking the session loop.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
