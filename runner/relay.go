package runner

import (
	"bufio"
	"io"
	"time"

	"github.com/zhubert/feedback-core/console"
)

// relay reads stream line by line and forwards each line to the delivery
// channel tagged with its source. Each line retains its trailing newline; a
// final partial line without one is forwarded as-is. The relay exits when
// the stream ends or errors.
func (r *Runner) relay(stream io.Reader, source console.Source) {
	reader := bufio.NewReader(stream)
	for {
		text, err := reader.ReadString('\n')
		if len(text) > 0 {
			r.deliver(console.Line{Source: source, Text: text})
		}
		if err != nil {
			if err != io.EOF {
				r.log.Debug("stream read ended", "source", source, "error", err)
			}
			return
		}
	}
}

// deliver sends a line to the delivery channel, waiting up to
// LineSendTimeout if the channel is full. A line that still cannot be sent
// is dropped so a stalled consumer cannot wedge the reader.
func (r *Runner) deliver(line console.Line) {
	select {
	case r.lines <- line:
		return
	default:
	}

	select {
	case r.lines <- line:
	case <-time.After(LineSendTimeout):
		r.log.Warn("line channel full, dropping output line", "source", line.Source)
	}
}
