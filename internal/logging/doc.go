// Package logging assembles structured slog loggers and formatting helpers used
// across tierlink.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so linkage code can tag log lines
// with run identifiers, tiers and confidence levels. The package also provides
// a no-op logger for tests, a progress sampler that throttles per-row progress
// lines, and a Reporter that turns the engine's plain progress messages into
// timestamped console lines.
package logging
