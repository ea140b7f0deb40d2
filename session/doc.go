// Package session coordinates one feedback-collection interaction.
//
// # Overview
//
// A Session pairs a command runner with a console buffer and a per-project
// run configuration. The human (through whatever frontend hosts the session)
// runs a shell command in the project directory, watches its output
// accumulate, and submits free-text feedback. The session produces a single
// Result holding the captured logs and the feedback text.
//
// # Session Lifecycle
//
// 1. New: When a session is created:
//   - A UUID is generated for the session ID
//   - The run configuration is loaded from <projectDir>/.user-feedback.json
//     (missing or malformed files fall back to defaults, never an error)
//   - The session loop starts
//   - If the configuration enables auto-run, the configured command is
//     started immediately
//
// 2. Run: RunCommand clears the console buffer, echoes the command as a
// system line, and spawns the command through the host shell in the project
// directory. At most one child process is live at a time; running again
// replaces the previous child. Exits are reported as a system line.
//
// 3. Finish: Submit captures the buffer and the trimmed feedback text into a
// Result and tears the session down. Close does the same with empty feedback,
// matching an abandoned interaction. Either way the child process is stopped
// first, so no orphan survives the session.
//
// # The Session Loop
//
// All buffer mutation happens on a single goroutine, the session loop. It
// drains output lines delivered by the runner's relay goroutines, polls
// process state at a fixed interval, and executes posted commands. Frontends
// observe the session through Events, a stream of log lines and run-state
// transitions, and never mutate shared state directly.
//
// # Functions
//
// New: Creates a session for a project directory and starts its loop.
//
// Collect: Runs a full interaction synchronously, blocking until the session
// finishes. This is the entry point a tool-exposure layer calls.
package session
