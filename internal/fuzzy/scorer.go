package fuzzy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"

	"tierlink/internal/textutil"
)

// ErrUnknownScorer is returned by ScorerByName for unsupported names.
var ErrUnknownScorer = errors.New("unknown scorer")

// Scorer names accepted by ScorerByName.
const (
	ScorerRatio       = "ratio"
	ScorerJaroWinkler = "jaro_winkler"
	ScorerLevenshtein = "levenshtein"
	ScorerTokenCosine = "token_cosine"
	ScorerTokenSort   = "token_sort"
)

// Scorer rates the similarity of a query and a candidate in [0,1].
type Scorer interface {
	Score(query, candidate string) float64
}

// Preparer is implemented by scorers that can reuse work done on the query
// across many candidates. The returned function reports the score and whether
// it reaches cutoff; it may skip the full computation when cheaper upper
// bounds already fall short.
type Preparer interface {
	Prepare(query string) func(candidate string, cutoff float64) (float64, bool)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(query, candidate string) float64

// Score implements Scorer.
func (f ScorerFunc) Score(query, candidate string) float64 { return f(query, candidate) }

// Ratio scores with the sequence-matcher ratio 2*M/T, where M counts the
// characters in matching blocks and T is the combined length.
type Ratio struct{}

// Score implements Scorer.
func (Ratio) Score(query, candidate string) float64 {
	m := difflib.NewMatcher(splitRunes(candidate), splitRunes(query))
	return m.Ratio()
}

// Prepare implements Preparer. The query is indexed once and candidates are
// screened with the real-quick and quick upper bounds before the full ratio.
func (Ratio) Prepare(query string) func(string, float64) (float64, bool) {
	m := difflib.NewMatcher(nil, splitRunes(query))
	return func(candidate string, cutoff float64) (float64, bool) {
		m.SetSeq1(splitRunes(candidate))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			return 0, false
		}
		score := m.Ratio()
		return score, score >= cutoff
	}
}

// JaroWinkler scores with the Jaro-Winkler similarity.
type JaroWinkler struct{}

// Score implements Scorer.
func (JaroWinkler) Score(query, candidate string) float64 {
	if query == candidate {
		return 1
	}
	return float64(edlib.JaroWinklerSimilarity(query, candidate))
}

// Levenshtein scores with 1 - distance/maxLength.
type Levenshtein struct{}

// Score implements Scorer.
func (Levenshtein) Score(query, candidate string) float64 {
	if query == candidate {
		return 1
	}
	sim, err := edlib.StringsSimilarity(query, candidate, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(sim)
}

// TokenCosine scores with the cosine similarity of token count vectors, which
// ignores word order.
type TokenCosine struct{}

// Score implements Scorer.
func (TokenCosine) Score(query, candidate string) float64 {
	if query == candidate {
		return 1
	}
	return textutil.TokenSimilarity(query, candidate)
}

// TokenSort applies Ratio to the sorted tokens of both values, so "Widgets
// Acme" and "acme widgets" score 1.
type TokenSort struct{}

// Score implements Scorer.
func (TokenSort) Score(query, candidate string) float64 {
	return Ratio{}.Score(textutil.SortedTokens(query), textutil.SortedTokens(candidate))
}

// ScorerByName resolves a configured scorer name. Empty selects Ratio.
func ScorerByName(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ScorerRatio:
		return Ratio{}, nil
	case ScorerJaroWinkler:
		return JaroWinkler{}, nil
	case ScorerLevenshtein:
		return Levenshtein{}, nil
	case ScorerTokenCosine:
		return TokenCosine{}, nil
	case ScorerTokenSort:
		return TokenSort{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
	}
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
