// Package console accumulates captured command output.
//
// A Buffer is the durable record of one run's logs: an ordered, append-only
// sequence of lines written by the session loop and read by the presentation
// layer. Appends are serialized; the buffer is cleared only when a new run
// starts, never when a run merely stops, so output stays inspectable until
// the user submits feedback.
package console

import (
	"strings"
	"sync"
)

// Source identifies where a captured line came from.
type Source string

const (
	// SourceStdout marks a line read from the child's standard output.
	SourceStdout Source = "stdout"
	// SourceStderr marks a line read from the child's standard error.
	SourceStderr Source = "stderr"
	// SourceSystem marks a synthetic line (echoed command, exit notice,
	// spawn errors).
	SourceSystem Source = "system"
)

// Line is one immutable piece of captured text.
// Text retains the trailing newline when one was read from the stream.
type Line struct {
	Source Source
	Text   string
}

// Buffer is an ordered, append-only sequence of lines.
// All methods are safe for concurrent use; appends are serialized.
type Buffer struct {
	mu       sync.Mutex
	lines    []Line
	maxLines int
	notify   func(Line)
}

// NewBuffer creates an unbounded buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferWithCap creates a buffer that keeps at most maxLines lines,
// evicting oldest-first. A maxLines of zero means unbounded.
func NewBufferWithCap(maxLines int) *Buffer {
	return &Buffer{maxLines: maxLines}
}

// SetNotify registers a callback invoked after each append with the appended
// line. The callback runs on the appender's goroutine and must not block;
// it exists so a presentation layer can mirror lines as they arrive.
func (b *Buffer) SetNotify(fn func(Line)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notify = fn
}

// Append adds a line to the end of the buffer.
func (b *Buffer) Append(line Line) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	if b.maxLines > 0 && len(b.lines) > b.maxLines {
		// Evict oldest; copy to avoid retaining the old backing array
		overflow := len(b.lines) - b.maxLines
		kept := make([]Line, b.maxLines)
		copy(kept, b.lines[overflow:])
		b.lines = kept
	}
	notify := b.notify
	b.mu.Unlock()

	// Invoke outside the lock so a callback may call Snapshot or Len
	if notify != nil {
		notify(line)
	}
}

// Snapshot returns a copy of the buffer content as of call time.
func (b *Buffer) Snapshot() []Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := make([]Line, len(b.lines))
	copy(lines, b.lines)
	return lines
}

// Text returns the concatenation of every line's text, in buffer order.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, line := range b.lines {
		sb.WriteString(line.Text)
	}
	return sb.String()
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Clear empties the buffer. Invoked at the start of a new run only.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
