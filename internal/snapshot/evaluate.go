package snapshot

import "CourseWatcher/internal/domain"

// Result is the outcome of comparing a fresh scrape with the stored state.
type Result struct {
	// Changed is false when the fingerprint matches the stored hash.
	Changed bool
	// FirstSeen is true when the course had no stored state.
	FirstSeen bool
	// State replaces the stored state when Changed is true.
	State domain.StoredState
	// Changes lists the new items in announcement order.
	Changes []domain.Change
}

// Evaluate drives the per-course state machine. An untracked course is diffed
// against an empty snapshot, so every item is new on its first scrape. A
// tracked course is diffed only when its fingerprint differs from the stored one.
func Evaluate(previous domain.StoredState, tracked bool, title string, current domain.CourseSnapshot) (Result, error) {
	hash, err := Fingerprint(current)
	if err != nil {
		return Result{}, err
	}

	if tracked && previous.Hash == hash {
		return Result{State: previous}, nil
	}

	base := domain.NewCourseSnapshot()
	if tracked {
		base = previous.Data
	}

	return Result{
		Changed:   true,
		FirstSeen: !tracked,
		State: domain.StoredState{
			Title: title,
			Hash:  hash,
			Data:  current,
		},
		Changes: Diff(base, current),
	}, nil
}
