package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by WithLock when another process holds the lock.
var ErrLocked = errors.New("file is locked by another process")

// Written describes a file produced by WriteAtomic.
type Written struct {
	Path   string
	Bytes  int64
	SHA256 string
}

// WriteAtomic streams write into a temporary file next to path and renames it
// into place once write succeeds. A failed write leaves path untouched.
func WriteAtomic(path string, mode os.FileMode, write func(io.Writer) error) (Written, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Written{}, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Written{}, err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	counter := &countingWriter{}
	if err := write(io.MultiWriter(tmp, hasher, counter)); err != nil {
		_ = tmp.Close()
		return Written{}, err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return Written{}, err
	}
	if err := tmp.Close(); err != nil {
		return Written{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Written{}, err
	}
	return Written{Path: path, Bytes: counter.n, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// WithLock runs fn while holding an exclusive lock on lockPath. It does not
// wait: a held lock yields ErrLocked.
func WithLock(lockPath string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fn()
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
