package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"tierlink/internal/config"
)

// LogFileName is the JSON log written under paths.log_dir.
const LogFileName = "tierlink.log"

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format is "console" (default) or "json".
	Format string
	// OutputPaths lists "stdout", "stderr" or file paths. Empty means stderr.
	OutputPaths []string
	// FilePath, when set, receives a JSON copy of every record regardless of
	// Format.
	FilePath    string
	Development bool
	// NoColor disables ANSI level colors even when the output is a terminal.
	NoColor bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	out, err := openSinks(opts.OutputPaths)
	if err != nil {
		return nil, err
	}

	var primary slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		primary = newConsoleHandler(out, levelVar, addSource, !opts.NoColor && isTerminal(out))
	case "json":
		primary = newJSONHandler(out, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	path := strings.TrimSpace(opts.FilePath)
	if path == "" {
		return slog.New(primary), nil
	}
	file, err := openSinks([]string{path})
	if err != nil {
		return nil, err
	}
	return slog.New(TeeHandler(primary, newJSONHandler(file, levelVar, addSource))), nil
}

// NewFromConfig creates a logger from the [logging] and [paths] tables. When
// a log directory is configured, records are also appended to LogFileName as
// JSON.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	opts := Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		opts.FilePath = filepath.Join(dir, LogFileName)
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	var parsed slog.Level
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "warning":
		return slog.LevelWarn
	case "":
		return slog.LevelInfo
	default:
		if err := parsed.UnmarshalText([]byte(l)); err != nil {
			return slog.LevelInfo
		}
		return parsed
	}
}

// openSinks resolves output names to a single writer. Duplicate and blank
// entries are skipped; files are opened for append, creating parent
// directories as needed.
func openSinks(paths []string) (io.Writer, error) {
	var (
		writers []io.Writer
		opened  []string
	)
	for _, raw := range paths {
		name := strings.TrimSpace(raw)
		if name == "" || slices.Contains(opened, name) {
			continue
		}
		opened = append(opened, name)
		switch name {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
				return nil, fmt.Errorf("create log directory for %s: %w", name, err)
			}
			f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", name, err)
			}
			writers = append(writers, f)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
