package logging

import (
	"bytes"
	"testing"
	"time"
)

func TestReporterPrintsOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil)
	r.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC) }

	r.Log(false, "hidden")
	r.Log(true, "Warning: No matches found!")

	want := "2024-03-01 12:30:05: Warning: No matches found!\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestReporterNilSafe(t *testing.T) {
	var r *Reporter
	r.Log(true, "ignored")
	NewReporter(nil, nil).Log(true, "no writer")
}
