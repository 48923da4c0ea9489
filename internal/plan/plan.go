package plan

import (
	"errors"
	"fmt"
	"strings"

	"tierlink/internal/fuzzy"
)

var (
	// ErrConfiguration marks plans that are internally inconsistent.
	ErrConfiguration = errors.New("configuration error")
	// ErrSlotOutOfRange is returned by Set for unknown tier or slot positions.
	ErrSlotOutOfRange = errors.New("comparator slot out of range")
)

// Kind selects how a comparator tests a column pair.
type Kind int

const (
	// Exact requires the A and B values to be equal.
	Exact Kind = iota
	// Approximate accepts the closest B value within a similarity cutoff.
	Approximate
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Approximate:
		return "approximate"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Exact, Approximate:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("%w: unknown comparator kind %d", ErrConfiguration, int(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "exact":
		*k = Exact
	case "approximate", "fuzzy":
		*k = Approximate
	default:
		return fmt.Errorf("%w: unknown comparator kind %q", ErrConfiguration, string(text))
	}
	return nil
}

// Comparator tests one column of A against one column of B.
type Comparator struct {
	ColumnA string
	ColumnB string
	Kind    Kind
	// Cutoff is the minimum similarity for Approximate comparators.
	Cutoff float64
}

// ExactMatch builds an exact comparator.
func ExactMatch(columnA, columnB string) Comparator {
	return Comparator{ColumnA: columnA, ColumnB: columnB, Kind: Exact}
}

// ApproximateMatch builds an approximate comparator.
func ApproximateMatch(columnA, columnB string, cutoff float64) Comparator {
	return Comparator{ColumnA: columnA, ColumnB: columnB, Kind: Approximate, Cutoff: cutoff}
}

// Filled reports whether both column names are set.
func (c Comparator) Filled() bool {
	return strings.TrimSpace(c.ColumnA) != "" && strings.TrimSpace(c.ColumnB) != ""
}

// String renders the comparator for logs.
func (c Comparator) String() string {
	if c.Kind == Approximate {
		return fmt.Sprintf("%s ~ %s (>= %.2f)", c.ColumnA, c.ColumnB, c.Cutoff)
	}
	return fmt.Sprintf("%s = %s", c.ColumnA, c.ColumnB)
}

// Tier is one confidence level of a plan.
type Tier struct {
	Confidence int
	// Comparisons is the declared number of comparators.
	Comparisons int
	Comparators []Comparator
}

// Plan is the ordered list of tiers, most confident first.
type Plan struct {
	Tiers []Tier
}

// Len returns the number of tiers.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Tiers)
}

// Build returns an empty plan skeleton. Tier i has counts[i] unfilled
// comparator slots and confidence i + confidenceOffset + 1.
func Build(counts []int, confidenceOffset int) *Plan {
	p := &Plan{Tiers: make([]Tier, len(counts))}
	for i, n := range counts {
		if n < 0 {
			n = 0
		}
		p.Tiers[i] = Tier{
			Confidence:  i + confidenceOffset + 1,
			Comparisons: counts[i],
			Comparators: make([]Comparator, n),
		}
	}
	return p
}

// Set fills a comparator slot.
func (p *Plan) Set(tier, slot int, c Comparator) error {
	if tier < 0 || tier >= p.Len() {
		return fmt.Errorf("%w: tier %d", ErrSlotOutOfRange, tier)
	}
	if slot < 0 || slot >= len(p.Tiers[tier].Comparators) {
		return fmt.Errorf("%w: tier %d slot %d", ErrSlotOutOfRange, tier, slot)
	}
	p.Tiers[tier].Comparators[slot] = c
	return nil
}

// Clone returns a deep copy.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := &Plan{Tiers: make([]Tier, len(p.Tiers))}
	for i, t := range p.Tiers {
		comps := make([]Comparator, len(t.Comparators))
		copy(comps, t.Comparators)
		out.Tiers[i] = Tier{Confidence: t.Confidence, Comparisons: t.Comparisons, Comparators: comps}
	}
	return out
}

// Validate checks the plan's internal consistency. Column names are not
// inspected here; unfilled slots are reported by the engine against the
// record set schemas.
func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: plan is nil", ErrConfiguration)
	}
	prev := 0
	for i, t := range p.Tiers {
		if t.Comparisons != len(t.Comparators) {
			return fmt.Errorf("%w: tier %d declares %d comparisons but has %d", ErrConfiguration, i, t.Comparisons, len(t.Comparators))
		}
		if len(t.Comparators) == 0 {
			return fmt.Errorf("%w: tier %d has no comparators", ErrConfiguration, i)
		}
		if t.Confidence <= 0 {
			return fmt.Errorf("%w: tier %d confidence %d must be positive", ErrConfiguration, i, t.Confidence)
		}
		if i > 0 && t.Confidence <= prev {
			return fmt.Errorf("%w: tier %d confidence %d must be greater than %d", ErrConfiguration, i, t.Confidence, prev)
		}
		prev = t.Confidence
		for j, c := range t.Comparators {
			switch c.Kind {
			case Exact:
			case Approximate:
				if err := fuzzy.ValidateCutoff(c.Cutoff); err != nil {
					return fmt.Errorf("%w: tier %d comparator %d: %w", ErrConfiguration, i, j, err)
				}
			default:
				return fmt.Errorf("%w: tier %d comparator %d: unknown kind %d", ErrConfiguration, i, j, int(c.Kind))
			}
		}
	}
	return nil
}
