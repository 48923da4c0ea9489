package testsupport

import (
	"path/filepath"
	"testing"

	"tierlink/internal/config"
)

// ConfigOption adjusts a generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig returns the default configuration rooted in a fresh temp
// directory: data, logs and out live under it and the database is
// data/tierlink.db. Options are applied before validation.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		DataDir:   filepath.Join(root, "data"),
		LogDir:    filepath.Join(root, "logs"),
		OutputDir: filepath.Join(root, "out"),
	}
	cfg.Storage.DatabasePath = filepath.Join(cfg.Paths.DataDir, "tierlink.db")
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithNoiseWords sets the normalizer noise list.
func WithNoiseWords(words ...string) ConfigOption {
	return func(c *config.Config) { c.Normalize.NoiseWords = words }
}

// WithSharedB allows B rows to be matched by more than one A row.
func WithSharedB() ConfigOption {
	return func(c *config.Config) { c.Matching.AllowSharedBMatches = true }
}

// WithoutDatabase clears the database path so run history is skipped.
func WithoutDatabase() ConfigOption {
	return func(c *config.Config) { c.Storage.DatabasePath = "" }
}

// BaseDir returns the temp directory that NewConfig rooted cfg in.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
