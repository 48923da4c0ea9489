package plan

// Builder assembles a plan tier by tier. Confidence levels are assigned in
// order starting at offset + 1.
type Builder struct {
	offset int
	tiers  []Tier
}

// NewBuilder starts an empty plan.
func NewBuilder(confidenceOffset int) *Builder {
	return &Builder{offset: confidenceOffset}
}

// Tier starts a new tier.
func (b *Builder) Tier() *Builder {
	b.tiers = append(b.tiers, Tier{Confidence: len(b.tiers) + b.offset + 1})
	return b
}

// Exact adds an exact comparator to the current tier.
func (b *Builder) Exact(columnA, columnB string) *Builder {
	return b.add(ExactMatch(columnA, columnB))
}

// Approximate adds an approximate comparator to the current tier.
func (b *Builder) Approximate(columnA, columnB string, cutoff float64) *Builder {
	return b.add(ApproximateMatch(columnA, columnB, cutoff))
}

func (b *Builder) add(c Comparator) *Builder {
	if len(b.tiers) == 0 {
		b.Tier()
	}
	t := &b.tiers[len(b.tiers)-1]
	t.Comparators = append(t.Comparators, c)
	t.Comparisons = len(t.Comparators)
	return b
}

// Plan returns the assembled plan. The builder can keep being used; later
// calls do not affect plans already returned.
func (b *Builder) Plan() *Plan {
	return (&Plan{Tiers: b.tiers}).Clone()
}
