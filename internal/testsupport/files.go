package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tierlink/internal/recordset"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteCSV writes a header and rows as comma separated lines.
func WriteCSV(t testing.TB, path string, header []string, rows ...[]string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return WriteFile(t, path, b.String())
}

// Records builds a record set from map rows and fails the test on error.
func Records(t testing.TB, columns []string, rows ...map[string]any) *recordset.Set {
	t.Helper()

	set, err := recordset.FromMaps(columns, rows)
	if err != nil {
		t.Fatalf("recordset.FromMaps: %v", err)
	}
	return set
}
