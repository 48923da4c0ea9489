package linkage

import (
	"errors"
	"fmt"
	"strings"

	"tierlink/internal/plan"
)

var (
	// ErrConfiguration marks inconsistent plans or options. It is the same
	// sentinel plan.Validate reports.
	ErrConfiguration = plan.ErrConfiguration
	// ErrSchema marks record sets that do not fit the plan: missing or
	// reserved columns and unfilled comparator slots.
	ErrSchema = errors.New("schema error")
)

// wrap tags err with marker and a "tier N: operation: message" detail so
// callers can classify failures with errors.Is.
func wrap(marker error, tier int, operation, message string, err error) error {
	detail := buildDetail(tier, operation, message)
	if marker == nil {
		marker = ErrSchema
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(tier int, operation, message string) string {
	parts := make([]string, 0, 3)
	if tier >= 0 {
		parts = append(parts, fmt.Sprintf("tier %d", tier))
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "linkage failure"
	}
	return strings.Join(parts, ": ")
}

// Kind classifies err as "configuration", "schema", "canceled" or "" when
// it carries none of the engine's markers.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, errCanceled):
		return "canceled"
	default:
		return ""
	}
}

var errCanceled = errors.New("linkage canceled")
