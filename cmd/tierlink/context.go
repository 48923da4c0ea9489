package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tierlink/internal/config"
	"tierlink/internal/logging"
	"tierlink/internal/store"
)

// skipConfigLoad is a command annotation. Commands carrying it (or whose
// parent carries it) run without loading the configuration file.
const skipConfigLoad = "tierlink/skip-config"

var errNoDatabase = errors.New("no database configured; set storage.database_path or pass --db")

// commandContext carries the persistent flags and the configuration shared by
// every subcommand. The configuration is loaded once per process.
type commandContext struct {
	configFlag   *string
	databaseFlag *string

	once   sync.Once
	config *config.Config
	err    error
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) databaseOverride() (string, error) {
	if c.databaseFlag == nil {
		return "", nil
	}
	db := strings.TrimSpace(*c.databaseFlag)
	if db == "" || db == ":memory:" {
		return db, nil
	}
	expanded, err := config.ExpandPath(db)
	if err != nil {
		return "", fmt.Errorf("resolve database path: %w", err)
	}
	return expanded, nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() {
		c.config, c.err = c.loadConfig()
	})
	return c.config, c.err
}

func (c *commandContext) loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(c.configPath())
	if err != nil {
		return nil, err
	}
	db, err := c.databaseOverride()
	if err != nil {
		return nil, err
	}
	if db != "" {
		cfg.Storage.DatabasePath = db
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// openStore opens the configured database. A blank database path yields a
// nil store and no error so callers can treat history as optional.
func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Storage.DatabasePath)
	switch {
	case errors.Is(err, store.ErrNoPath):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

func (c *commandContext) requireStore() (*store.Store, error) {
	st, err := c.openStore()
	if err == nil && st == nil {
		err = errNoDatabase
	}
	return st, err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations[skipConfigLoad] == "true" {
			return true
		}
	}
	return false
}
