package config

import (
	"errors"
	"fmt"
	"strings"

	"tierlink/internal/fuzzy"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	switch strings.TrimSpace(m.ConfidenceColumn) {
	case "":
		return errors.New("matching.confidence_column must be set")
	case "origIndexA", "origIndexB":
		return fmt.Errorf("matching.confidence_column: %q is reserved", m.ConfidenceColumn)
	}
	if m.SuffixA == m.SuffixB {
		return errors.New("matching.suffix_a and matching.suffix_b must differ")
	}
	if _, err := fuzzy.ScorerByName(m.Scorer); err != nil {
		return fmt.Errorf("matching.scorer: %w", err)
	}
	return nil
}
