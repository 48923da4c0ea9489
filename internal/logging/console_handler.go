package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

const logTimestampLayout = "2006-01-02 15:04:05"

// consoleHandler renders one line per record:
//
//	2026-01-02 15:04:05 INFO  [linkage] run 0123abcd tier 1 (confidence 2): tier complete | matched=3
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	scope     []field
	groups    []string
	addSource bool
	color     bool
}

type field struct {
	key   string
	value slog.Value
}

// header holds the attributes promoted out of the key=value tail.
type header struct {
	component  string
	runID      string
	tier       string
	confidence string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource, color bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, out: w, level: lvl, addSource: addSource, color: color}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]field, 0, len(h.scope)+record.NumAttrs())
	fields = append(fields, h.scope...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlattened(fields, h.groups, attr)
		return true
	})

	var head header
	tail := make([]field, 0, len(fields))
	for _, f := range lastWins(fields) {
		switch f.key {
		case FieldComponent:
			head.component = valueString(f.value)
		case FieldRunID:
			head.runID = valueString(f.value)
		case FieldTier:
			head.tier = valueString(f.value)
		case FieldConfidence:
			head.confidence = valueString(f.value)
		default:
			tail = append(tail, f)
		}
	}

	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}

	var buf bytes.Buffer
	buf.WriteString(when.Local().Format(logTimestampLayout))
	buf.WriteByte(' ')
	buf.WriteString(h.levelTag(record.Level))
	if head.component != "" {
		fmt.Fprintf(&buf, " [%s]", head.component)
	}
	if subject := head.subject(); subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
		buf.WriteByte(':')
	}
	buf.WriteByte(' ')
	buf.WriteString(textOr(strings.TrimSpace(record.Message), "(no message)"))
	for i, f := range tail {
		if i == 0 {
			buf.WriteString(" |")
		}
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(quoteIfNeeded(valueString(f.value)))
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&buf, " (%s:%d)", filepath.Base(src.File), src.Line)
		}
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.derive()
	for _, attr := range attrs {
		next.scope = appendFlattened(next.scope, next.groups, attr)
	}
	return next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.derive()
	next.groups = append(next.groups, name)
	return next
}

func (h *consoleHandler) derive() *consoleHandler {
	next := *h
	next.scope = append([]field(nil), h.scope...)
	next.groups = append([]string(nil), h.groups...)
	return &next
}

func (h *consoleHandler) levelTag(level slog.Level) string {
	var (
		label  string
		colors text.Colors
	)
	switch {
	case level >= slog.LevelError:
		label, colors = "ERROR", text.Colors{text.FgRed, text.Bold}
	case level >= slog.LevelWarn:
		label, colors = "WARN ", text.Colors{text.FgYellow}
	case level >= slog.LevelInfo:
		label, colors = "INFO ", text.Colors{text.FgGreen}
	default:
		label, colors = "DEBUG", text.Colors{text.FgHiBlack}
	}
	if h.color {
		return colors.Sprint(label)
	}
	return label
}

func (hd header) subject() string {
	var parts []string
	if id := strings.TrimSpace(hd.runID); id != "" {
		parts = append(parts, "run "+id[:min(len(id), 8)])
	}
	if hd.tier != "" {
		tier := "tier " + hd.tier
		if hd.confidence != "" {
			tier += " (confidence " + hd.confidence + ")"
		}
		parts = append(parts, tier)
	}
	return strings.Join(parts, " ")
}

// lastWins drops earlier duplicates of a key, keeping the position of the
// first occurrence and the value of the last.
func lastWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	at := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if i, seen := at[f.key]; seen {
			out[i].value = f.value
			continue
		}
		at[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func appendFlattened(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		inner := groups
		if attr.Key != "" {
			inner = append(append([]string(nil), groups...), attr.Key)
		}
		for _, member := range attr.Value.Group() {
			dst = appendFlattened(dst, inner, member)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	return append(dst, field{key: key, value: attr.Value})
}

func valueString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Local().Format(logTimestampLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func textOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
