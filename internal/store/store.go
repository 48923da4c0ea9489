package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a run does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoPath is returned by Open when no database path is configured.
	ErrNoPath = errors.New("database path is empty")
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// connPragmas run on every Open. WAL is skipped for in-memory databases,
// which cannot use it.
var connPragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Store is a migrated SQLite database holding run history and any tables the
// caller loads records from or saves results to.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the database at path, creating the file and its directory
// when missing, and brings the schema up to date.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrNoPath
	}
	pragmas := connPragmas
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, path: path}
	if err := s.init(context.Background(), pragmas); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context, pragmas []string) error {
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return s.migrate(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the handle for callers that need raw access, such as tests
// seeding source tables.
func (s *Store) DB() *sql.DB {
	return s.db
}
