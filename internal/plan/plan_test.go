package plan_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"tierlink/internal/plan"
)

func TestBuildAssignsConfidence(t *testing.T) {
	p := plan.Build([]int{2, 1, 3}, 4)
	if p.Len() != 3 {
		t.Fatalf("expected 3 tiers, got %d", p.Len())
	}
	want := []int{5, 6, 7}
	for i, tier := range p.Tiers {
		if tier.Confidence != want[i] {
			t.Fatalf("tier %d confidence = %d, want %d", i, tier.Confidence, want[i])
		}
		if tier.Comparisons != len(tier.Comparators) {
			t.Fatalf("tier %d comparisons %d != slots %d", i, tier.Comparisons, len(tier.Comparators))
		}
		for _, c := range tier.Comparators {
			if c.Filled() {
				t.Fatalf("expected unfilled slot, got %+v", c)
			}
		}
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("skeleton should validate: %v", err)
	}
}

func TestBuildEmpty(t *testing.T) {
	if p := plan.Build(nil, 0); p.Len() != 0 {
		t.Fatalf("expected empty plan, got %d tiers", p.Len())
	}
}

func TestSetFillsSlot(t *testing.T) {
	p := plan.Build([]int{1}, 0)
	if err := p.Set(0, 0, plan.ApproximateMatch("name", "vendor", 0.8)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := p.Tiers[0].Comparators[0]; got.ColumnB != "vendor" || got.Kind != plan.Approximate {
		t.Fatalf("unexpected comparator %+v", got)
	}
	if err := p.Set(0, 1, plan.ExactMatch("a", "b")); !errors.Is(err, plan.ErrSlotOutOfRange) {
		t.Fatalf("expected ErrSlotOutOfRange, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		plan *plan.Plan
		ok   bool
	}{
		{
			name: "valid",
			plan: plan.NewBuilder(0).Tier().Exact("a", "b").Tier().Approximate("a", "b", 0.8).Plan(),
			ok:   true,
		},
		{
			name: "count mismatch",
			plan: &plan.Plan{Tiers: []plan.Tier{{Confidence: 1, Comparisons: 2, Comparators: []plan.Comparator{plan.ExactMatch("a", "b")}}}},
		},
		{
			name: "non ascending",
			plan: &plan.Plan{Tiers: []plan.Tier{
				{Confidence: 2, Comparisons: 1, Comparators: []plan.Comparator{plan.ExactMatch("a", "b")}},
				{Confidence: 2, Comparisons: 1, Comparators: []plan.Comparator{plan.ExactMatch("a", "b")}},
			}},
		},
		{
			name: "zero confidence",
			plan: &plan.Plan{Tiers: []plan.Tier{{Confidence: 0, Comparisons: 1, Comparators: []plan.Comparator{plan.ExactMatch("a", "b")}}}},
		},
		{
			name: "bad cutoff",
			plan: plan.NewBuilder(0).Approximate("a", "b", 1.5).Plan(),
		},
		{
			name: "unknown kind",
			plan: &plan.Plan{Tiers: []plan.Tier{{Confidence: 1, Comparisons: 1, Comparators: []plan.Comparator{{ColumnA: "a", ColumnB: "b", Kind: plan.Kind(9)}}}}},
		},
		{
			name: "empty tier",
			plan: &plan.Plan{Tiers: []plan.Tier{{Confidence: 1}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, plan.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestBuilderPlanIsSnapshot(t *testing.T) {
	b := plan.NewBuilder(10).Exact("name", "name")
	first := b.Plan()
	b.Exact("city", "city")
	if got := len(first.Tiers[0].Comparators); got != 1 {
		t.Fatalf("snapshot changed: %d comparators", got)
	}
	if first.Tiers[0].Confidence != 11 {
		t.Fatalf("confidence = %d, want 11", first.Tiers[0].Confidence)
	}
}

func TestDecode(t *testing.T) {
	src := `
[[tier]]
confidence = 1

  [[tier.compare]]
  a = "name"
  b = "vendor_name"

  [[tier.compare]]
  a = "city"
  b = "city"
  kind = "exact"

[[tier]]

  [[tier.compare]]
  a = "name"
  b = "vendor_name"
  kind = "approximate"
  cutoff = 0.85
`
	p, err := plan.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("expected 2 tiers, got %d", p.Len())
	}
	if p.Tiers[1].Confidence != 2 {
		t.Fatalf("implicit confidence = %d, want 2", p.Tiers[1].Confidence)
	}
	if c := p.Tiers[1].Comparators[0]; c.Kind != plan.Approximate || c.Cutoff != 0.85 {
		t.Fatalf("unexpected comparator %+v", c)
	}
	if p.Tiers[0].Comparisons != 2 {
		t.Fatalf("implicit comparisons = %d, want 2", p.Tiers[0].Comparisons)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	src := "[[tier]]\n[[tier.compare]]\na = \"x\"\nb = \"y\"\nkind = \"sounds-like\"\n"
	if _, err := plan.Decode(strings.NewReader(src)); !errors.Is(err, plan.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestEncodeDecodeKeepsPlan(t *testing.T) {
	original := plan.NewBuilder(0).
		Tier().Exact("name", "name").Exact("zip", "postcode").
		Tier().Approximate("name", "name", 0.75).
		Plan()

	var buf bytes.Buffer
	if err := plan.Encode(&buf, original); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := plan.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, buf.String())
	}
	if decoded.Len() != original.Len() {
		t.Fatalf("tiers = %d, want %d", decoded.Len(), original.Len())
	}
	for i := range original.Tiers {
		for j, c := range original.Tiers[i].Comparators {
			if decoded.Tiers[i].Comparators[j] != c {
				t.Fatalf("tier %d comparator %d = %+v, want %+v", i, j, decoded.Tiers[i].Comparators[j], c)
			}
		}
	}
}

func TestWriteFileAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans", "vendors.toml")
	p := plan.NewBuilder(0).Exact("name", "name").Plan()
	if err := plan.WriteFile(path, p); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loaded, err := plan.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Tiers[0].Comparators[0].ColumnA != "name" {
		t.Fatalf("unexpected plan %+v", loaded)
	}
}

func TestSkeleton(t *testing.T) {
	data, err := plan.Skeleton([]int{2, 1}, 0)
	if err != nil {
		t.Fatalf("Skeleton: %v", err)
	}
	text := string(data)
	if strings.Count(text, "[[tier]]") != 2 {
		t.Fatalf("expected two tier tables:\n%s", text)
	}
	if strings.Count(text, "[[tier.compare]]") != 3 {
		t.Fatalf("expected three comparator tables:\n%s", text)
	}
}
