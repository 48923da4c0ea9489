package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"tierlink/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrExists is returned by CreateSample when the target is already present.
var ErrExists = errors.New("config file already exists")

// ConfigEnv names an environment variable that points at the config file
// when no explicit path is given.
const ConfigEnv = "TIERLINK_CONFIG"

// Paths holds filesystem locations.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`
}

// Logging controls the structured logger.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Matching holds the engine defaults. CLI flags override them per run.
type Matching struct {
	ConfidenceColumn    string `toml:"confidence_column"`
	EnforceUniqueMatch  bool   `toml:"enforce_unique_match"`
	AllowSharedBMatches bool   `toml:"allow_shared_b_matches"`
	KeepLeftoverA       bool   `toml:"keep_leftover_a"`
	KeepLeftoverB       bool   `toml:"keep_leftover_b"`
	EmptyOnNoMatch      bool   `toml:"empty_on_no_match"`
	Scorer              string `toml:"scorer"`
	SuffixA             string `toml:"suffix_a"`
	SuffixB             string `toml:"suffix_b"`
	Progress            bool   `toml:"progress"`
}

// Normalize configures the text normalizer.
type Normalize struct {
	NoiseWords  []string `toml:"noise_words"`
	FoldAccents bool     `toml:"fold_accents"`
}

// Storage configures the SQLite database used for run history and for
// loading or saving record sets.
type Storage struct {
	DatabasePath string `toml:"database_path"`
}

// Config encapsulates all configuration values for tierlink.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
	Matching  Matching  `toml:"matching"`
	Normalize Normalize `toml:"normalize"`
	Storage   Storage   `toml:"storage"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load reads the config at path, or the first existing candidate when path
// is empty: $TIERLINK_CONFIG, the per-user file, then ./tierlink.toml.
// Defaults fill anything the file leaves out. The returned path is the file
// that was (or would have been) read, and the boolean reports whether it
// existed.
func Load(path string) (*Config, string, bool, error) {
	target, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}
	cfg := Default()
	if exists {
		if err := decodeFile(target, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, target, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	err = dec.Decode(cfg)
	var strict *toml.StrictMissingError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &strict):
		return fmt.Errorf("parse config %s: %s", path, strict.String())
	default:
		return fmt.Errorf("parse config %s: %w", path, err)
	}
}

func locate(explicit string) (string, bool, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return statCandidate(explicit)
	}
	if env := strings.TrimSpace(os.Getenv(ConfigEnv)); env != "" {
		return statCandidate(env)
	}
	fallback, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultConfigPath, "tierlink.toml"} {
		path, exists, err := statCandidate(candidate)
		if err != nil {
			return "", false, err
		}
		if exists {
			return path, true, nil
		}
	}
	return fallback, false, nil
}

func statCandidate(raw string) (string, bool, error) {
	path, err := ExpandPath(raw)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return path, false, nil
	case err != nil:
		return "", false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return "", false, fmt.Errorf("config path %s is a directory", path)
	}
	return path, true, nil
}

// EnsureDirectories creates the configured data, log and output directories
// and the parent of the database file.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.OutputDir}
	if db := strings.TrimSpace(c.Storage.DatabasePath); db != "" && db != ":memory:" {
		dirs = append(dirs, filepath.Dir(db))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OutputPath resolves name against the output directory unless it is absolute.
func (c *Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) || c.Paths.OutputDir == "" {
		return name
	}
	return filepath.Join(c.Paths.OutputDir, name)
}

// Encode writes the effective configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading "~" to the home directory and returns an
// absolute, cleaned path. Empty input is returned unchanged.
func ExpandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	abs, err := filepath.Abs(filepath.Clean(value))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// CreateSample writes the annotated sample configuration to path, creating
// parent directories. An existing file is replaced only when overwrite is
// true; otherwise ErrExists is returned.
func CreateSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w at %s (use --overwrite to replace it)", ErrExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check config path: %w", err)
		}
	}
	_, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, sampleConfig)
		return err
	})
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
