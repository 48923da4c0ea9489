package config

import (
	"fmt"
	"os"
	"strings"

	"tierlink/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeMatching()
	c.normalizeNoise()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = ExpandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.OutputDir, err = ExpandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	if value, ok := os.LookupEnv("TIERLINK_DATABASE"); ok {
		c.Storage.DatabasePath = value
	}
	path := strings.TrimSpace(c.Storage.DatabasePath)
	if path == "" || path == ":memory:" {
		c.Storage.DatabasePath = path
		return nil
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return fmt.Errorf("storage.database_path: %w", err)
	}
	c.Storage.DatabasePath = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("TIERLINK_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(textutil.FirstNonEmpty(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(textutil.FirstNonEmpty(c.Logging.Level, defaultLogLevel))
}

func (c *Config) normalizeMatching() {
	c.Matching.ConfidenceColumn = textutil.FirstNonEmpty(c.Matching.ConfidenceColumn, defaultConfidenceColumn)
	c.Matching.Scorer = strings.ToLower(textutil.FirstNonEmpty(c.Matching.Scorer, defaultScorer))
	c.Matching.SuffixA = textutil.FirstNonEmpty(c.Matching.SuffixA, defaultSuffixA)
	c.Matching.SuffixB = textutil.FirstNonEmpty(c.Matching.SuffixB, defaultSuffixB)
}

func (c *Config) normalizeNoise() {
	seen := make(map[string]struct{}, len(c.Normalize.NoiseWords))
	words := make([]string, 0, len(c.Normalize.NoiseWords))
	for _, word := range c.Normalize.NoiseWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	c.Normalize.NoiseWords = words
}
