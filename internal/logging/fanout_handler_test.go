package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if h := TeeHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var info, debug bytes.Buffer
	h := TeeHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be enabled through the debug handler")
	}
	logger := slog.New(h).With(String(FieldRunID, "run-1")).WithGroup("tier")
	logger.Debug("probe", Int("matched", 3))
	logger.Info("done")

	if strings.Contains(info.String(), "probe") {
		t.Fatalf("info handler received debug record: %s", info.String())
	}
	if !strings.Contains(debug.String(), `"tier":{"matched":3}`) {
		t.Fatalf("debug handler missing grouped attrs: %s", debug.String())
	}
	for _, out := range []string{info.String(), debug.String()} {
		if !strings.Contains(out, `"run_id":"run-1"`) || !strings.Contains(out, "done") {
			t.Fatalf("expected run id and info record, got %s", out)
		}
	}
}
