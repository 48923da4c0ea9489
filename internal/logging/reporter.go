package logging

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Reporter prints timestamped progress lines. Every message is also sent to
// the structured logger at debug level, whether or not the line is printed.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
	now    func() time.Time
}

// NewReporter writes enabled messages to out. out or logger may be nil.
func NewReporter(out io.Writer, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = NewNop()
	}
	return &Reporter{out: out, logger: logger, now: time.Now}
}

// Log prints "<UTC timestamp>: <message>" when enabled is true.
func (r *Reporter) Log(enabled bool, message string) {
	if r == nil {
		return
	}
	r.logger.Debug(message, String(FieldEventType, "progress"))
	if !enabled || r.out == nil {
		return
	}
	ts := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s: %s\n", ts.Format(logTimestampLayout), message)
}
