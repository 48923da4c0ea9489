package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tierlink/internal/config"
	"tierlink/internal/logging"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestConsoleLoggerFormatsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRunID(context.Background(), "0123456789abcdef")
	component := logging.NewComponentLogger(logging.WithContext(ctx, logger), "linkage")
	component.Info("tier complete", logging.TierIndex(1), logging.Confidence(2), logging.Int("remaining_a", 4))

	content := readFile(t, logPath)
	for _, want := range []string{"INFO  [linkage] run 01234567 tier 1 (confidence 2): tier complete | remaining_a=4"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("with caller")
	if content := readFile(t, logPath); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerWritesStructuredRecords(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "no matches found", "linkage_no_match")

	content := readFile(t, logPath)
	for _, want := range []string{`"level":"warn"`, `"event_type":"linkage_no_match"`, `"error_hint"`, `"impact"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in %s", want, content)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "warn"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("filtered")
	logger.Warn("kept")

	content := readFile(t, filepath.Join(cfg.Paths.LogDir, "tierlink.log"))
	if strings.Contains(content, "filtered") || !strings.Contains(content, `"msg":"kept"`) {
		t.Fatalf("unexpected log file content %q", content)
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
}
