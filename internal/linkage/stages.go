package linkage

import (
	"fmt"
	"strings"

	"tierlink/internal/fuzzy"
	"tierlink/internal/logging"
	"tierlink/internal/plan"
	"tierlink/internal/recordset"
	"tierlink/internal/textutil"
)

// joinPair is one row of the tier join: positions into the tier's A and B
// sets.
type joinPair struct {
	a int
	b int
}

// resolveApproximate adds a lower-cased proxy column pair for every
// approximate comparator. The A proxy holds the B value the row claimed, or
// nil. It returns the extended sets and the comparators redirected to the
// proxies.
func (e *Engine) resolveApproximate(tierIndex int, tier plan.Tier, a, b *recordset.Set) (*recordset.Set, *recordset.Set, []plan.Comparator, error) {
	comps := make([]plan.Comparator, len(tier.Comparators))
	copy(comps, tier.Comparators)

	proxies := 0
	for j, c := range comps {
		if c.Kind != plan.Approximate {
			continue
		}
		nameA := fmt.Sprintf("%s%dA", proxyPrefix, proxies)
		nameB := fmt.Sprintf("%s%dB", proxyPrefix, proxies)
		proxies++

		valuesB := lowerColumn(b, c.ColumnB)
		candidates := make([]string, 0, len(valuesB))
		for _, v := range valuesB {
			if s, ok := v.(string); ok {
				candidates = append(candidates, s)
			}
		}
		pool := fuzzy.NewPool(candidates)

		valuesA := lowerColumn(a, c.ColumnA)
		sampler := logging.NewProgressSampler(len(valuesA), 10)
		label := fmt.Sprintf("tier %d fuzzy %s", tierIndex, c)
		for i, v := range valuesA {
			if query, ok := v.(string); ok {
				if match, found := e.matcher.ClosestMatch(query, pool, c.Cutoff, true); found {
					valuesA[i] = match
				} else {
					valuesA[i] = nil
				}
			}
			if e.opts.Progress {
				if percent, ok := sampler.Tick(i + 1); ok {
					e.logger.Debug("approximate match progress",
						logging.TierIndex(tierIndex),
						logging.Float64(logging.FieldProgressPercent, percent),
					)
					e.opts.Reporter.Log(true, fmt.Sprintf("%s: %d of %d rows (%.0f%%)", label, i+1, len(valuesA), percent))
				}
			}
		}

		var err error
		if a, err = a.WithColumn(nameA, valuesA); err != nil {
			return nil, nil, nil, wrap(ErrSchema, tierIndex, fmt.Sprintf("comparator %d", j), "add proxy column", err)
		}
		if b, err = b.WithColumn(nameB, valuesB); err != nil {
			return nil, nil, nil, wrap(ErrSchema, tierIndex, fmt.Sprintf("comparator %d", j), "add proxy column", err)
		}
		comps[j].ColumnA = nameA
		comps[j].ColumnB = nameB
	}
	return a, b, comps, nil
}

// lowerColumn returns the lower-cased text values of column. Values that
// are not text become nil.
func lowerColumn(set *recordset.Set, column string) []any {
	pos, _ := set.ColumnIndex(column)
	out := make([]any, set.Len())
	for i, row := range set.Rows() {
		if s, ok := textutil.TextValue(row.Values[pos]); ok {
			out[i] = strings.ToLower(s)
		}
	}
	return out
}

// join is an inner equi-join on every comparator pair. Output follows A row
// order, then B row order. Rows with a null A key are never probed since
// they could not survive the null filter; null B keys are not indexed for
// the same reason.
func join(a, b *recordset.Set, comps []plan.Comparator) []joinPair {
	posA := make([]int, len(comps))
	posB := make([]int, len(comps))
	for i, c := range comps {
		posA[i], _ = a.ColumnIndex(c.ColumnA)
		posB[i], _ = b.ColumnIndex(c.ColumnB)
	}

	index := make(map[string][]int, b.Len())
	for i, row := range b.Rows() {
		if key, ok := compositeKey(row, posB); ok {
			index[key] = append(index[key], i)
		}
	}

	var pairs []joinPair
	for i, row := range a.Rows() {
		key, ok := compositeKey(row, posA)
		if !ok {
			continue
		}
		for _, j := range index[key] {
			pairs = append(pairs, joinPair{a: i, b: j})
		}
	}
	return pairs
}

func compositeKey(row recordset.Row, positions []int) (string, bool) {
	var sb strings.Builder
	for i, pos := range positions {
		v := row.Values[pos]
		if recordset.IsNull(v) {
			return "", false
		}
		if i > 0 {
			sb.WriteByte(0x1f)
		}
		sb.WriteString(recordset.Key(v))
	}
	return sb.String(), true
}

// selectUnique walks the joined rows in order and keeps a row when its A
// row is still unclaimed (EnforceUniqueMatch) and its B row is still
// unclaimed (unless AllowSharedBMatches).
func selectUnique(pairs []joinPair, a, b *recordset.Set, opts Options) []joinPair {
	if !opts.EnforceUniqueMatch && opts.AllowSharedBMatches {
		return pairs
	}
	claimedA := make(map[int64]struct{})
	claimedB := make(map[int64]struct{})
	kept := pairs[:0:0]
	for _, p := range pairs {
		ia := a.Row(p.a).Index
		ib := b.Row(p.b).Index
		if opts.EnforceUniqueMatch {
			if _, taken := claimedA[ia]; taken {
				continue
			}
		}
		if !opts.AllowSharedBMatches {
			if _, taken := claimedB[ib]; taken {
				continue
			}
		}
		claimedA[ia] = struct{}{}
		claimedB[ib] = struct{}{}
		kept = append(kept, p)
	}
	return kept
}

// matchedIndices collects the origin indices consumed by a tier.
func matchedIndices(pairs []joinPair, a, b *recordset.Set) (map[int64]struct{}, map[int64]struct{}) {
	usedA := make(map[int64]struct{}, len(pairs))
	usedB := make(map[int64]struct{}, len(pairs))
	for _, p := range pairs {
		usedA[a.Row(p.a).Index] = struct{}{}
		usedB[b.Row(p.b).Index] = struct{}{}
	}
	return usedA, usedB
}
