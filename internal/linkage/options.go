package linkage

import (
	"log/slog"

	"tierlink/internal/fuzzy"
)

const (
	// DefaultConfidenceColumn names the confidence column when Options leaves
	// it blank.
	DefaultConfidenceColumn = "matchConfidence"
	// ColumnOrigIndexA holds the origin index of the A row in output rows.
	ColumnOrigIndexA = "origIndexA"
	// ColumnOrigIndexB holds the origin index of the B row in output rows.
	ColumnOrigIndexB = "origIndexB"

	// proxyPrefix is reserved for the per-tier lower-cased proxy columns.
	proxyPrefix = "findMatchString"
)

// Reporter receives human-readable progress and warning lines. enabled
// mirrors Options.Progress so a reporter can decide whether to print.
type Reporter interface {
	Log(enabled bool, message string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(enabled bool, message string)

// Log implements Reporter.
func (f ReporterFunc) Log(enabled bool, message string) {
	f(enabled, message)
}

type nopReporter struct{}

func (nopReporter) Log(bool, string) {}

// Options tune a linkage run.
type Options struct {
	ConfidenceColumn string
	// EnforceUniqueMatch keeps one B match per A row within a tier.
	EnforceUniqueMatch bool
	// AllowSharedBMatches leaves matched B rows in the pool so other A rows
	// can claim them.
	AllowSharedBMatches bool
	KeepLeftoverA       bool
	KeepLeftoverB       bool
	// EmptyOnNoMatch drops the leftovers and returns an empty result when no
	// tier matched anything.
	EmptyOnNoMatch bool
	// SuffixA and SuffixB disambiguate column names present in both inputs.
	SuffixA string
	SuffixB string
	// Progress enables the reporter's progress lines.
	Progress bool

	Scorer   fuzzy.Scorer
	Logger   *slog.Logger
	Reporter Reporter
}

// DefaultOptions returns the standard settings: unique matches, exclusive B
// rows and leftovers on both sides.
func DefaultOptions() Options {
	return Options{
		ConfidenceColumn:   DefaultConfidenceColumn,
		EnforceUniqueMatch: true,
		KeepLeftoverA:      true,
		KeepLeftoverB:      true,
		SuffixA:            "_a",
		SuffixB:            "_b",
	}
}

func (o Options) withDefaults() Options {
	if o.ConfidenceColumn == "" {
		o.ConfidenceColumn = DefaultConfidenceColumn
	}
	if o.SuffixA == "" {
		o.SuffixA = "_a"
	}
	if o.SuffixB == "" {
		o.SuffixB = "_b"
	}
	if o.Scorer == nil {
		o.Scorer = fuzzy.Ratio{}
	}
	if o.Reporter == nil {
		o.Reporter = nopReporter{}
	}
	return o
}

func (o Options) validate() error {
	switch o.ConfidenceColumn {
	case ColumnOrigIndexA, ColumnOrigIndexB:
		return wrap(ErrConfiguration, -1, "options", "confidence column "+o.ConfidenceColumn+" is reserved", nil)
	}
	if o.SuffixA == o.SuffixB {
		return wrap(ErrConfiguration, -1, "options", "column suffixes must differ", nil)
	}
	return nil
}
