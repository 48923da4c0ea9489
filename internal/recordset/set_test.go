package recordset_test

import (
	"errors"
	"math"
	"testing"

	"tierlink/internal/recordset"
)

func TestNewRejectsDuplicateAndEmptyColumns(t *testing.T) {
	if _, err := recordset.New([]string{"id", "id"}); !errors.Is(err, recordset.ErrDuplicateColumn) {
		t.Fatalf("expected ErrDuplicateColumn, got %v", err)
	}
	if _, err := recordset.New([]string{"id", " "}); !errors.Is(err, recordset.ErrEmptyColumn) {
		t.Fatalf("expected ErrEmptyColumn, got %v", err)
	}
}

func TestAppendAssignsSequentialIndices(t *testing.T) {
	s := recordset.MustNew("id", "name")
	if err := s.Append(1, "acme"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.AppendIndexed(5, 2, "globex"); err != nil {
		t.Fatalf("AppendIndexed: %v", err)
	}
	if err := s.Append(3, "initech"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got := s.Indices()
	want := []int64{0, 5, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("indices = %v, want %v", got, want)
		}
	}
	if err := s.AppendIndexed(5, 4, "dup"); !errors.Is(err, recordset.ErrDuplicateIndex) {
		t.Fatalf("expected ErrDuplicateIndex, got %v", err)
	}
	if err := s.Append(1); !errors.Is(err, recordset.ErrWidthMismatch) {
		t.Fatalf("expected ErrWidthMismatch, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := recordset.MustNew("name")
	_ = s.Append("acme")
	clone := s.Clone()
	clone.Rows()[0].Values[0] = "changed"
	if v := s.Value(s.Row(0), "name"); v != "acme" {
		t.Fatalf("original mutated: %v", v)
	}
}

func TestWithoutAndProjectKeepOriginIndex(t *testing.T) {
	s, err := recordset.FromMaps([]string{"id", "name"}, []map[string]any{
		{"id": 1, "name": "a"},
		{"id": 2, "name": "b"},
		{"id": 3},
	})
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}
	remaining := s.Without(map[int64]struct{}{1: {}})
	if remaining.Len() != 2 || remaining.Row(1).Index != 2 {
		t.Fatalf("unexpected rows after Without: %+v", remaining.Rows())
	}
	if remaining.Value(remaining.Row(1), "name") != nil {
		t.Fatal("expected missing map key to be null")
	}

	extended, err := remaining.WithColumn("proxy", []any{"x", nil})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	projected, err := extended.Project([]string{"name"})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if projected.Width() != 1 || projected.Row(1).Index != 2 {
		t.Fatalf("unexpected projection: %v %+v", projected.Columns(), projected.Rows())
	}
	if _, err := extended.WithColumn("proxy", []any{nil, nil}); !errors.Is(err, recordset.ErrDuplicateColumn) {
		t.Fatalf("expected duplicate column error, got %v", err)
	}
}

func TestKeyEquality(t *testing.T) {
	tests := []struct {
		name  string
		a, b  any
		equal bool
	}{
		{"int and int64", 10, int64(10), true},
		{"int and whole float", 10, 10.0, true},
		{"string and number", "10", 10, false},
		{"strings", "acme", "acme", true},
		{"nulls", nil, nil, true},
		{"nan is null", math.NaN(), nil, true},
		{"fractional floats", 1.5, 1.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recordset.Key(tt.a) == recordset.Key(tt.b)
			if got != tt.equal {
				t.Fatalf("Key(%v) == Key(%v) = %v, want %v", tt.a, tt.b, got, tt.equal)
			}
		})
	}
}
