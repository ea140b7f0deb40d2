package session

// Present drives a session on behalf of the human: render the prompt and
// the log stream, accept run/stop/config actions, and eventually call
// Submit or Close. The function runs on its own goroutine.
type Present func(*Session)

// Collect runs one full feedback interaction synchronously. It creates a
// session for projectDir, hands it to present, and blocks until the session
// finishes, returning the captured logs and feedback.
//
// This is the surface a tool-exposure layer calls: synchronous from the
// caller's perspective, with the human in the loop via present.
func Collect(projectDir, prompt string, present Present, opts ...Option) (Result, error) {
	s, err := New(projectDir, prompt, opts...)
	if err != nil {
		return Result{}, err
	}
	if present != nil {
		go present(s)
	}
	return s.Result(), nil
}
