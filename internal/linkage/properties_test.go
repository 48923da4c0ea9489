package linkage_test

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"tierlink/internal/linkage"
	"tierlink/internal/plan"
	"tierlink/internal/recordset"
)

var sampleNames = []string{"acme", "acme corp", "globex", "globex inc", "initech", "initrode", "umbrella", "hooli", "vandelay", "soylent"}

func randomSets(t *testing.T, seed uint64) (*recordset.Set, *recordset.Set) {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed*7+1))
	a := recordset.MustNew("name", "city")
	b := recordset.MustNew("company", "city")
	cities := []any{"boston", "austin", nil}
	for i := 0; i < 12+r.IntN(8); i++ {
		var name any = sampleNames[r.IntN(len(sampleNames))]
		if r.IntN(10) == 0 {
			name = nil
		}
		if err := a.Append(name, cities[r.IntN(len(cities))]); err != nil {
			t.Fatalf("append A: %v", err)
		}
	}
	for i := 0; i < 10+r.IntN(8); i++ {
		if err := b.AppendIndexed(int64(100+i), sampleNames[r.IntN(len(sampleNames))], cities[r.IntN(len(cities))]); err != nil {
			t.Fatalf("append B: %v", err)
		}
	}
	return a, b
}

func propertyPlan() *plan.Plan {
	return plan.NewBuilder(0).
		Tier().Exact("name", "company").Exact("city", "city").
		Tier().Exact("name", "company").
		Tier().Approximate("name", "company", 0.7).
		Plan()
}

func TestLinkProperties(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		for _, shared := range []bool{false, true} {
			t.Run(fmt.Sprintf("seed %d shared %v", seed, shared), func(t *testing.T) {
				a, b := randomSets(t, seed)
				opts := linkage.DefaultOptions()
				opts.AllowSharedBMatches = shared

				result := link(t, a, b, propertyPlan(), opts)
				again := link(t, a, b, propertyPlan(), opts)
				if !reflect.DeepEqual(result.Set.Rows(), again.Set.Rows()) {
					t.Fatal("repeated runs differ")
				}

				seenA := make(map[int64]int)
				seenB := make(map[int64]int)
				matchedB := make(map[int64]int)
				prevConfidence := 0
				for _, row := range result.Set.Rows() {
					ia, hasA := row.Values[0].(int64)
					ib, hasB := row.Values[1].(int64)
					confidence, matched := row.Values[2].(int)
					if !hasA && !hasB {
						t.Fatalf("row without any origin index: %#v", row.Values)
					}
					if matched != (hasA && hasB) {
						t.Fatalf("confidence present=%v for row %#v", matched, row.Values)
					}
					if matched {
						if confidence < prevConfidence {
							t.Fatalf("matched rows out of tier order: %d after %d", confidence, prevConfidence)
						}
						prevConfidence = confidence
						matchedB[ib]++
					}
					if hasA {
						seenA[ia]++
					}
					if hasB {
						seenB[ib]++
					}
				}

				for _, index := range a.Indices() {
					if seenA[index] != 1 {
						t.Fatalf("A row %d appears %d times", index, seenA[index])
					}
				}
				for _, index := range b.Indices() {
					if seenB[index] == 0 {
						t.Fatalf("B row %d disappeared", index)
					}
					if !shared && seenB[index] != 1 {
						t.Fatalf("B row %d appears %d times", index, seenB[index])
					}
					if matchedB[index] > 0 && seenB[index] != matchedB[index] {
						t.Fatalf("matched B row %d also emitted as leftover", index)
					}
				}
				if got := len(result.MatchedPairs()); got != result.Stats.Matched {
					t.Fatalf("MatchedPairs=%d, Stats.Matched=%d", got, result.Stats.Matched)
				}
				if result.Set.Len() != result.Stats.Matched+result.Stats.LeftoverA+result.Stats.LeftoverB {
					t.Fatalf("row count %d does not add up: %+v", result.Set.Len(), result.Stats)
				}
			})
		}
	}
}
