package ports

import (
	"context"
	"time"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/markup"
)

// DocumentSource retrieves a course page as a queryable document.
type DocumentSource interface {
	Fetch(ctx context.Context, courseURL string) (markup.Node, error)
}

// CourseList provides the ordered course URLs to poll. found is false when no
// course list has been configured at all.
type CourseList interface {
	List(ctx context.Context) (urls []string, found bool, err error)
}

// SnapshotStore persists the last known state of every tracked course.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.TrackedCourses, error)
	Save(ctx context.Context, tracked domain.TrackedCourses) error
}

// Notifier announces one new course item (Discord, Telegram, etc.).
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// DeliveryLog remembers delivered notifications to avoid announcing an item twice.
type DeliveryLog interface {
	AlreadyDelivered(ctx context.Context, courseID string, keys []string) (map[string]bool, error)
	RecordDelivered(ctx context.Context, n domain.Notification, key string) error
}

// Scheduler controls when polling cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
