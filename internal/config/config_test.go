package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tierlink/internal/config"
)

func TestDefaultConfigValidates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TIERLINK_DATABASE", "")
	os.Unsetenv("TIERLINK_DATABASE")

	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config file, got %s", path)
	}
	if cfg.Matching.ConfidenceColumn != "matchConfidence" {
		t.Fatalf("unexpected confidence column %q", cfg.Matching.ConfidenceColumn)
	}
	if !cfg.Matching.EnforceUniqueMatch || cfg.Matching.AllowSharedBMatches {
		t.Fatalf("unexpected uniqueness defaults: %+v", cfg.Matching)
	}
	if !cfg.Matching.KeepLeftoverA || !cfg.Matching.KeepLeftoverB {
		t.Fatalf("expected leftovers kept by default: %+v", cfg.Matching)
	}
	if !filepath.IsAbs(cfg.Storage.DatabasePath) {
		t.Fatalf("expected expanded database path, got %q", cfg.Storage.DatabasePath)
	}
}

func TestLoadFileOverridesAndNormalizes(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "tierlink.toml")
	content := `
[paths]
output_dir = "~/out"

[logging]
format = "JSON"
level = "Debug"

[matching]
confidence_column = "tier"
allow_shared_b_matches = true
scorer = "Jaro_Winkler"
suffix_a = ""

[normalize]
noise_words = [" Inc ", "inc", "", "LLC"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config %s to be read, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.Matching.Scorer != "jaro_winkler" || !cfg.Matching.AllowSharedBMatches {
		t.Fatalf("matching not applied: %+v", cfg.Matching)
	}
	if cfg.Matching.SuffixA != "_a" {
		t.Fatalf("blank suffix should fall back to default, got %q", cfg.Matching.SuffixA)
	}
	if got := strings.Join(cfg.Normalize.NoiseWords, ","); got != "inc,llc" {
		t.Fatalf("noise words = %q, want inc,llc", got)
	}
	if want := filepath.Join(home, "out"); cfg.Paths.OutputDir != want {
		t.Fatalf("output dir = %q, want %q", cfg.Paths.OutputDir, want)
	}
	if got := cfg.OutputPath("links.csv"); got != filepath.Join(home, "out", "links.csv") {
		t.Fatalf("OutputPath = %q", got)
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	t.Setenv("TIERLINK_DATABASE", dbPath)
	t.Setenv("TIERLINK_LOG_LEVEL", "WARN")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.DatabasePath != dbPath {
		t.Fatalf("database path = %q, want %q", cfg.Storage.DatabasePath, dbPath)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("log level = %q, want warn", cfg.Logging.Level)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"reserved confidence column", func(c *config.Config) { c.Matching.ConfidenceColumn = "origIndexA" }, "reserved"},
		{"equal suffixes", func(c *config.Config) { c.Matching.SuffixB = c.Matching.SuffixA }, "must differ"},
		{"unknown scorer", func(c *config.Config) { c.Matching.Scorer = "soundex" }, "matching.scorer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[matching]\nfuzziness = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if err := config.CreateSample(path, false); !errors.Is(err, config.ErrExists) {
		t.Fatalf("expected ErrExists on second write, got %v", err)
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Fatalf("CreateSample with overwrite: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists || len(cfg.Normalize.NoiseWords) == 0 {
		t.Fatalf("expected sample noise words, got %+v", cfg.Normalize)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.OutputDir = ""
	cfg.Storage.DatabasePath = filepath.Join(root, "db", "tierlink.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, filepath.Join(root, "db")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestLoadHonoursConfigEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "from-env.toml")
	if err := os.WriteFile(path, []byte("[matching]\nscorer = \"levenshtein\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.ConfigEnv, path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path || cfg.Matching.Scorer != "levenshtein" {
		t.Fatalf("env config not used: path=%s exists=%v scorer=%q", resolved, exists, cfg.Matching.Scorer)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.Normalize.NoiseWords = []string{"inc", "llc"}
	cfg.Matching.AllowSharedBMatches = true

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "encoded.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("encoded config should load: %v\n%s", err, buf.String())
	}
	if !loaded.Matching.AllowSharedBMatches || strings.Join(loaded.Normalize.NoiseWords, ",") != "inc,llc" {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}
