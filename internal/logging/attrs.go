package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func String(key, value string) Attr { return slog.String(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error records err under "error"; a nil error is written as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func Alert(value string) Attr { return slog.String(FieldAlert, value) }

func RunID(id string) Attr { return slog.String(FieldRunID, id) }

// TierIndex tags a record with the zero-based tier position.
func TierIndex(index int) Attr { return slog.Int(FieldTier, index) }

// Confidence tags a record with a tier's confidence level.
func Confidence(level int) Attr { return slog.Int(FieldConfidence, level) }

// Args converts attrs to the variadic form accepted by slog.Logger methods.
func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags logger with a component name. A nil logger is
// replaced by NewNop.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// warningDefaults fills the keys every operator-facing warning carries.
var warningDefaults = []Attr{
	String(FieldErrorHint, "check logs for details"),
	String(FieldImpact, "operation completed with warnings"),
}

// WarnWithContext logs a warning tagged with eventType. error_hint and impact
// fall back to generic text when attrs does not set them.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	out := make([]Attr, 0, len(attrs)+3)
	out = append(out, String(FieldEventType, eventType))
	out = append(out, attrs...)
	for _, def := range warningDefaults {
		if !hasKey(attrs, def.Key) {
			out = append(out, def)
		}
	}
	logger.Warn(msg, Args(out...)...)
}

func hasKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
