package fuzzy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCutoff reports a similarity cutoff outside (0,1].
var ErrInvalidCutoff = errors.New("similarity cutoff must be in (0,1]")

// ValidateCutoff checks that cutoff lies in (0,1].
func ValidateCutoff(cutoff float64) error {
	if !(cutoff > 0 && cutoff <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidCutoff, cutoff)
	}
	return nil
}

// Matcher binds a Scorer for closest-match lookups.
type Matcher struct {
	scorer Scorer
}

// NewMatcher returns a Matcher using scorer, or Ratio when scorer is nil.
func NewMatcher(scorer Scorer) *Matcher {
	if scorer == nil {
		scorer = Ratio{}
	}
	return &Matcher{scorer: scorer}
}

// Scorer returns the bound scorer.
func (m *Matcher) Scorer() Scorer {
	return m.scorer
}

// ClosestMatch returns the candidate in pool with the highest score against
// query, provided the score is at least cutoff. Comparison ignores case; the
// returned value is the candidate as stored in the pool. Equal scores keep the
// candidate seen first. When consume is true the winner is removed from pool.
// A cutoff outside (0,1] matches nothing and leaves pool untouched.
func (m *Matcher) ClosestMatch(query string, pool *Pool, cutoff float64, consume bool) (string, bool) {
	if pool.Len() == 0 || ValidateCutoff(cutoff) != nil {
		return "", false
	}
	score := m.prepare(strings.ToLower(query))

	best := -1
	bestScore := -1.0
	for i, candidate := range pool.values {
		s, ok := score(strings.ToLower(candidate), cutoff)
		if !ok {
			continue
		}
		if s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best < 0 {
		return "", false
	}
	match := pool.values[best]
	if consume {
		pool.removeAt(best)
	}
	return match, true
}

func (m *Matcher) prepare(query string) func(string, float64) (float64, bool) {
	if p, ok := m.scorer.(Preparer); ok {
		return p.Prepare(query)
	}
	return func(candidate string, cutoff float64) (float64, bool) {
		s := m.scorer.Score(query, candidate)
		return s, s >= cutoff
	}
}

// ClosestMatch is Matcher.ClosestMatch with the default Ratio scorer.
func ClosestMatch(query string, pool *Pool, cutoff float64, consume bool) (string, bool) {
	return NewMatcher(nil).ClosestMatch(query, pool, cutoff, consume)
}
