package linkage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tierlink/internal/fuzzy"
	"tierlink/internal/logging"
	"tierlink/internal/plan"
	"tierlink/internal/recordset"
	"tierlink/internal/textutil"
)

// Engine runs plans against pairs of record sets. An Engine holds no state
// between calls and may be shared by goroutines.
type Engine struct {
	opts    Options
	matcher *fuzzy.Matcher
	logger  *slog.Logger
}

// New constructs an Engine. Blank options fall back to the defaults of
// DefaultOptions; the boolean switches are taken as given.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		opts:    opts,
		matcher: fuzzy.NewMatcher(opts.Scorer),
		logger:  logging.NewComponentLogger(logger, "linkage"),
	}
}

// LinkRecords runs p against a and b with opts. When no tier matches, the
// result still holds the leftover rows unless opts.EmptyOnNoMatch is set.
func LinkRecords(a, b *recordset.Set, p *plan.Plan, opts Options) (*Result, error) {
	return New(opts).Link(context.Background(), a, b, p)
}

// Link matches a against b tier by tier. Configuration and schema problems
// are reported before any matching starts. Finding no matches is not an
// error. ctx is checked between tiers.
func (e *Engine) Link(ctx context.Context, a, b *recordset.Set, p *plan.Plan) (*Result, error) {
	if err := e.opts.validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, wrap(ErrSchema, -1, "input", "record sets must not be nil", nil)
	}
	if err := checkReserved("A", a, e.opts.ConfidenceColumn); err != nil {
		return nil, err
	}
	if err := checkReserved("B", b, e.opts.ConfidenceColumn); err != nil {
		return nil, err
	}
	for i, tier := range p.Tiers {
		if err := checkTier(i, tier, a, b); err != nil {
			return nil, err
		}
	}
	out, err := buildLayout(a, b, e.opts)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	poolA := a.Clone()
	poolB := b.Clone()
	acc := recordset.MustNew(out.columns...)
	result := &Result{Set: acc, ConfidenceColumn: e.opts.ConfidenceColumn}
	// Shared B rows stay in the pool after matching but are not leftovers.
	everMatchedB := make(map[int64]struct{})

	e.logger.Info("linkage started",
		logging.Int("tiers", p.Len()),
		logging.Int("rows_a", poolA.Len()),
		logging.Int("rows_b", poolB.Len()),
	)

	for i, tier := range p.Tiers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: before tier %d: %w", errCanceled, i, err)
		}
		matched, err := e.runTier(i, tier, poolA, poolB, out, acc)
		if err != nil {
			return nil, err
		}
		usedA, usedB := matchedIndices(matched.pairs, matched.a, matched.b)
		poolA = poolA.Without(usedA)
		for index := range usedB {
			everMatchedB[index] = struct{}{}
		}
		if !e.opts.AllowSharedBMatches {
			poolB = poolB.Without(usedB)
		}
		stats := TierStats{
			Confidence: tier.Confidence,
			Matched:    len(matched.pairs),
			RemainingA: poolA.Len(),
			RemainingB: poolB.Len(),
		}
		result.Stats.Tiers = append(result.Stats.Tiers, stats)
		result.Stats.Matched += stats.Matched

		e.logger.Info("tier complete",
			logging.TierIndex(i),
			logging.Confidence(tier.Confidence),
			logging.Int("matched", stats.Matched),
			logging.Int("remaining_a", stats.RemainingA),
			logging.Int("remaining_b", stats.RemainingB),
		)
		e.opts.Reporter.Log(e.opts.Progress, fmt.Sprintf("tier %d (confidence %d): %d matched, %d A and %d B rows remain",
			i, tier.Confidence, stats.Matched, stats.RemainingA, stats.RemainingB))
	}

	if result.Stats.Matched == 0 {
		logging.WarnWithContext(e.logger, "no matches found", "linkage_no_match",
			logging.Alert("no_match"),
			logging.String(logging.FieldErrorHint, "check the plan columns and cutoffs"),
			logging.String(logging.FieldImpact, textutil.Ternary(e.opts.EmptyOnNoMatch, "output is empty", "output holds leftovers only")),
			logging.Int("rows_a", a.Len()),
			logging.Int("rows_b", b.Len()),
		)
		e.opts.Reporter.Log(e.opts.Progress, "Warning: No matches found!")
		if e.opts.EmptyOnNoMatch {
			return result, nil
		}
	}

	if e.opts.KeepLeftoverA {
		for _, row := range poolA.Rows() {
			if err := acc.Append(out.row(row.Index, nil, nil, row.Values, nil)...); err != nil {
				return nil, fmt.Errorf("append leftover A row %d: %w", row.Index, err)
			}
			result.Stats.LeftoverA++
		}
	}
	if e.opts.KeepLeftoverB {
		for _, row := range poolB.Without(everMatchedB).Rows() {
			if err := acc.Append(out.row(nil, row.Index, nil, nil, row.Values)...); err != nil {
				return nil, fmt.Errorf("append leftover B row %d: %w", row.Index, err)
			}
			result.Stats.LeftoverB++
		}
	}

	e.logger.Info("linkage finished",
		logging.Int("matched", result.Stats.Matched),
		logging.Int("leftover_a", result.Stats.LeftoverA),
		logging.Int("leftover_b", result.Stats.LeftoverB),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

type tierMatch struct {
	a     *recordset.Set
	b     *recordset.Set
	pairs []joinPair
}

// runTier resolves, joins and filters one tier and appends its rows to acc.
func (e *Engine) runTier(index int, tier plan.Tier, poolA, poolB *recordset.Set, out layout, acc *recordset.Set) (tierMatch, error) {
	e.logger.Debug("tier started",
		logging.TierIndex(index),
		logging.Confidence(tier.Confidence),
		logging.Int("comparators", len(tier.Comparators)),
		logging.Int("pool_a", poolA.Len()),
		logging.Int("pool_b", poolB.Len()),
	)
	if poolA.Len() == 0 || poolB.Len() == 0 {
		return tierMatch{a: poolA, b: poolB}, nil
	}

	tierA, tierB, comps, err := e.resolveApproximate(index, tier, poolA, poolB)
	if err != nil {
		return tierMatch{}, err
	}
	pairs := selectUnique(join(tierA, tierB, comps), tierA, tierB, e.opts)
	for _, p := range pairs {
		rowA := tierA.Row(p.a)
		rowB := tierB.Row(p.b)
		if err := acc.Append(out.row(rowA.Index, rowB.Index, tier.Confidence, rowA.Values, rowB.Values)...); err != nil {
			return tierMatch{}, fmt.Errorf("append tier %d row: %w", index, err)
		}
	}
	return tierMatch{a: tierA, b: tierB, pairs: pairs}, nil
}
