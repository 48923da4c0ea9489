package config

const (
	defaultConfigPath       = "~/.config/tierlink/config.toml"
	defaultDataDir          = "~/.local/share/tierlink"
	defaultLogDir           = "~/.local/share/tierlink/logs"
	defaultDatabasePath     = "~/.local/share/tierlink/tierlink.db"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultConfidenceColumn = "matchConfidence"
	defaultScorer           = "ratio"
	defaultSuffixA          = "_a"
	defaultSuffixB          = "_b"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Matching: Matching{
			ConfidenceColumn:   defaultConfidenceColumn,
			EnforceUniqueMatch: true,
			KeepLeftoverA:      true,
			KeepLeftoverB:      true,
			Scorer:             defaultScorer,
			SuffixA:            defaultSuffixA,
			SuffixB:            defaultSuffixB,
		},
		Storage: Storage{
			DatabasePath: defaultDatabasePath,
		},
	}
}
