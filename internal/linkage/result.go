package linkage

import "tierlink/internal/recordset"

// TierStats summarizes one tier.
type TierStats struct {
	Confidence int
	Matched    int
	// RemainingA and RemainingB are the pool sizes after the tier.
	RemainingA int
	RemainingB int
}

// Stats summarizes a run.
type Stats struct {
	Tiers     []TierStats
	Matched   int
	LeftoverA int
	LeftoverB int
}

// Result is the combined output of a run. Set holds the origin index
// columns, the confidence column, then the A and B columns.
type Result struct {
	Set              *recordset.Set
	ConfidenceColumn string
	Stats            Stats
}

// Pair identifies one matched row.
type Pair struct {
	A          int64
	B          int64
	Confidence int
}

// MatchedPairs returns the matched rows in output order. Leftover rows are
// skipped.
func (r *Result) MatchedPairs() []Pair {
	if r == nil || r.Set == nil {
		return nil
	}
	pairs := make([]Pair, 0, r.Stats.Matched)
	for _, row := range r.Set.Rows() {
		confidence, ok := r.Set.Value(row, r.ConfidenceColumn).(int)
		if !ok {
			continue
		}
		a, _ := r.Set.Value(row, ColumnOrigIndexA).(int64)
		b, _ := r.Set.Value(row, ColumnOrigIndexB).(int64)
		pairs = append(pairs, Pair{A: a, B: b, Confidence: confidence})
	}
	return pairs
}

// Empty reports whether the result holds no rows.
func (r *Result) Empty() bool {
	return r == nil || r.Set.Len() == 0
}
