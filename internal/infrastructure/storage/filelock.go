package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// fileLock serializes access to one file across goroutines (mutex) and
// processes (advisory lock on "<path>.lock").
type fileLock struct {
	mu   sync.Mutex
	lock *flock.Flock
}

func newFileLock(path string) *fileLock {
	return &fileLock{lock: flock.New(path + ".lock")}
}

// with runs fn while holding the lock; the lock is released on every return path.
func (l *fileLock) with(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.lock.Path(), err)
	}
	defer l.lock.Unlock()

	return fn()
}

// writeFileAtomic replaces path with data via a temporary file in the same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
