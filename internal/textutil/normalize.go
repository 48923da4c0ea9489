package textutil

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tierlink/internal/recordset"
)

// punctuationPattern covers the fixed set of characters that are treated as
// separators before comparison.
var punctuationPattern = regexp.MustCompile("[!@#$%^&*()_\\-+=\\[{\\]}\\\\|;:'\"<,>.?/`~]+")

var whitespacePattern = regexp.MustCompile(`\s+`)

// Normalizer strips punctuation and noise words from strings and lower-cases
// the result. A zero Normalizer only handles punctuation and whitespace.
type Normalizer struct {
	noise       []*regexp.Regexp
	foldAccents bool
}

// NormalizerOption customizes a Normalizer.
type NormalizerOption func(*Normalizer)

// WithAccentFolding removes combining marks so "Café" and "cafe" compare equal.
func WithAccentFolding(enabled bool) NormalizerOption {
	return func(n *Normalizer) {
		n.foldAccents = enabled
	}
}

// NewNormalizer compiles the noise list. Each entry is matched as a whole
// token, case-insensitively; blank entries are ignored.
func NewNormalizer(noise []string, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{}
	for _, word := range noise {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		n.noise = append(n.noise, regexp.MustCompile(`(?i)(^|\s)`+regexp.QuoteMeta(word)+`(\s|$)`))
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// String normalizes a single value.
func (n *Normalizer) String(s string) string {
	if s == "" {
		return s
	}
	out := punctuationPattern.ReplaceAllString(s, " ")
	for _, re := range n.noise {
		// Adjacent repeats share a separator, so one pass can leave a copy behind.
		for {
			next := re.ReplaceAllString(out, " ")
			if next == out {
				break
			}
			out = next
		}
	}
	out = whitespacePattern.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)
	if n.foldAccents {
		out = stripAccents(out)
	}
	return cases.Lower(language.Und).String(out)
}

// TextValue reports the text held by v. Strings, byte slices and non-nil
// string pointers count as text.
func TextValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case *string:
		if t != nil {
			return *t, true
		}
	}
	return "", false
}

// Values returns a normalized copy of values. Text values are normalized to
// strings; nil and other values pass through unchanged.
func (n *Normalizer) Values(values []any) []any {
	out := make([]any, len(values))
	for i, value := range values {
		if s, ok := TextValue(value); ok {
			out[i] = n.String(s)
		} else {
			out[i] = value
		}
	}
	return out
}

// Column returns a copy of set whose named column holds normalized values.
func (n *Normalizer) Column(set *recordset.Set, column string) (*recordset.Set, error) {
	pos, ok := set.ColumnIndex(column)
	if !ok {
		return nil, fmt.Errorf("normalize: %w: %q", recordset.ErrUnknownColumn, column)
	}
	out := set.Clone()
	for _, row := range out.Rows() {
		if s, ok := TextValue(row.Values[pos]); ok {
			row.Values[pos] = n.String(s)
		}
	}
	return out, nil
}

// NormalizeString removes punctuation and noise words from s.
func NormalizeString(s string, noise []string) string {
	return NewNormalizer(noise).String(s)
}

// Normalize applies NormalizeString to every string in values and returns a
// new slice; the input is not modified.
func Normalize(values []any, noise []string) []any {
	return NewNormalizer(noise).Values(values)
}

// NormalizeColumn returns a copy of set with column normalized.
func NormalizeColumn(set *recordset.Set, column string, noise []string) (*recordset.Set, error) {
	return NewNormalizer(noise).Column(set, column)
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
