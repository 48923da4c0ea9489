package textutil

import (
	"testing"

	"tierlink/internal/recordset"
)

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		noise []string
		want  string
	}{
		{"punctuation to space", "Acme,Corp.", nil, "acme corp"},
		{"collapses whitespace", "  Acme \t  Corp  ", nil, "acme corp"},
		{"removes noise token", "Acme Corp Inc", []string{"inc"}, "acme corp"},
		{"noise is case insensitive", "Acme INC", []string{"Inc"}, "acme"},
		{"noise only as whole token", "Incline Partners", []string{"inc"}, "incline partners"},
		{"noise phrase", "Bank of America NA", []string{"of america"}, "bank na"},
		{"adjacent noise repeats", "the the acme", []string{"the"}, "acme"},
		{"noise after punctuation", "Acme, Inc.", []string{"inc"}, "acme"},
		{"blank noise ignored", "Acme", []string{"", "  "}, "acme"},
		{"empty input", "", []string{"inc"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeString(tt.input, tt.noise); got != tt.want {
				t.Errorf("NormalizeString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLeavesInputUntouched(t *testing.T) {
	values := []any{"Acme, Inc.", nil, 42}
	got := Normalize(values, []string{"inc"})

	if values[0] != "Acme, Inc." {
		t.Fatalf("input mutated: %v", values[0])
	}
	if got[0] != "acme" {
		t.Fatalf("got[0] = %v, want acme", got[0])
	}
	if got[1] != nil || got[2] != 42 {
		t.Fatalf("non-string values changed: %v", got)
	}
}

func TestNormalizerFoldsAccents(t *testing.T) {
	n := NewNormalizer(nil, WithAccentFolding(true))
	if got := n.String("Café Noël"); got != "cafe noel" {
		t.Fatalf("String() = %q, want %q", got, "cafe noel")
	}
	if got := NewNormalizer(nil).String("Café"); got != "café" {
		t.Fatalf("accents folded without option: %q", got)
	}
}

func TestNormalizeTextValues(t *testing.T) {
	name := "Globex, Inc."
	values := []any{"ACME Corp.", []byte("Initech LLC"), &name, (*string)(nil), 7, nil}
	got := NewNormalizer([]string{"corp", "inc", "llc"}).Values(values)
	want := []any{"acme", "initech", "globex", nil, 7, nil}
	for i := range want {
		if i == 3 {
			if p, ok := got[i].(*string); !ok || p != nil {
				t.Fatalf("Values()[3] = %#v, want nil *string", got[i])
			}
			continue
		}
		if got[i] != want[i] {
			t.Fatalf("Values()[%d] = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestNormalizeColumnHandlesBytes(t *testing.T) {
	set := recordset.MustNew("name")
	_ = set.Append([]byte("ACME Corp."))

	out, err := NormalizeColumn(set, "name", []string{"corp"})
	if err != nil {
		t.Fatalf("NormalizeColumn: %v", err)
	}
	if v := out.Value(out.Row(0), "name"); v != "acme" {
		t.Fatalf("normalized value = %#v, want acme", v)
	}
}

func TestNormalizeColumn(t *testing.T) {
	set := recordset.MustNew("id", "name")
	_ = set.Append(1, "ACME Corp.")
	_ = set.Append(2, nil)

	out, err := NormalizeColumn(set, "name", []string{"corp"})
	if err != nil {
		t.Fatalf("NormalizeColumn: %v", err)
	}
	if v := out.Value(out.Row(0), "name"); v != "acme" {
		t.Fatalf("normalized value = %v, want acme", v)
	}
	if v := set.Value(set.Row(0), "name"); v != "ACME Corp." {
		t.Fatalf("source set mutated: %v", v)
	}
	if out.Value(out.Row(1), "name") != nil {
		t.Fatal("null value should stay null")
	}
	if _, err := NormalizeColumn(set, "missing", nil); err == nil {
		t.Fatal("expected error for missing column")
	}
}
