package textutil

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinTokenLength is the shortest token, in runes, that Tokenize keeps.
const MinTokenLength = 2

var tokenBoundary = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Tokenize lower-cases text and splits it on anything that is not a letter or
// digit. Tokens shorter than MinTokenLength are dropped.
func Tokenize(text string) []string {
	parts := tokenBoundary.Split(cases.Lower(language.Und).String(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if len([]rune(part)) < MinTokenLength {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

// SortedTokens joins the tokens of text in lexical order, so values that only
// differ in word order produce the same key.
func SortedTokens(text string) string {
	tokens := Tokenize(text)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

// TokenVector counts token occurrences in one value.
type TokenVector struct {
	counts    map[string]int
	magnitude float64
}

// NewTokenVector tokenizes text. It returns nil when no token survives.
func NewTokenVector(text string) *TokenVector {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	v := &TokenVector{counts: make(map[string]int, len(tokens))}
	for _, token := range tokens {
		v.counts[token]++
	}
	var sum float64
	for _, n := range v.counts {
		sum += float64(n * n)
	}
	v.magnitude = math.Sqrt(sum)
	return v
}

// Distinct reports how many different tokens the vector holds.
func (v *TokenVector) Distinct() int {
	if v == nil {
		return 0
	}
	return len(v.counts)
}

// Cosine returns the cosine of the angle between a and b, in [0,1]. Nil or
// empty vectors score 0.
func Cosine(a, b *TokenVector) float64 {
	if a.Distinct() == 0 || b.Distinct() == 0 || a.magnitude == 0 || b.magnitude == 0 {
		return 0
	}
	if len(b.counts) < len(a.counts) {
		a, b = b, a
	}
	var dot float64
	for token, n := range a.counts {
		dot += float64(n * b.counts[token])
	}
	return min(dot/(a.magnitude*b.magnitude), 1)
}

// Jaccard returns the share of distinct tokens the two vectors have in common.
func Jaccard(a, b *TokenVector) float64 {
	if a.Distinct() == 0 || b.Distinct() == 0 {
		return 0
	}
	shared := 0
	for token := range a.counts {
		if _, ok := b.counts[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a.counts)+len(b.counts)-shared)
}

// TokenSimilarity is the cosine similarity of the token vectors of a and b.
func TokenSimilarity(a, b string) float64 {
	return Cosine(NewTokenVector(a), NewTokenVector(b))
}
