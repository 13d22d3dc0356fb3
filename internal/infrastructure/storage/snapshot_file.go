package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/ports"
)

// SnapshotFile persists the stored state of every tracked course as one JSON object.
type SnapshotFile struct {
	path string
	lock *fileLock
}

var _ ports.SnapshotStore = (*SnapshotFile)(nil)

// NewSnapshotFile binds the store to path.
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path, lock: newFileLock(path)}
}

// Path returns the backing file.
func (s *SnapshotFile) Path() string {
	return s.path
}

// Load returns the persisted states. A missing file is a cold start and
// returns an empty map without error. An unreadable or corrupt file returns an
// empty map together with a *domain.StateIOError.
func (s *SnapshotFile) Load(ctx context.Context) (domain.TrackedCourses, error) {
	tracked := domain.TrackedCourses{}

	err := s.lock.with(func() error {
		raw, err := os.ReadFile(s.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return &domain.StateIOError{Path: s.path, Err: err}
		}

		var decoded domain.TrackedCourses
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return &domain.StateIOError{Path: s.path, Err: err}
		}
		for id, state := range decoded {
			tracked[id] = state
		}
		return nil
	})
	if err != nil {
		return domain.TrackedCourses{}, err
	}
	return tracked, nil
}

// Save overwrites the file with the complete set of tracked courses.
func (s *SnapshotFile) Save(ctx context.Context, tracked domain.TrackedCourses) error {
	if tracked == nil {
		tracked = domain.TrackedCourses{}
	}
	raw, err := json.MarshalIndent(tracked, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	return s.lock.with(func() error {
		return writeFileAtomic(s.path, raw, 0o644)
	})
}
