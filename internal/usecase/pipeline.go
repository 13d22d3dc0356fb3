package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/extract"
	"CourseWatcher/internal/metrics"
	"CourseWatcher/internal/ports"
	"CourseWatcher/internal/snapshot"
)

// Notification outcomes recorded in metrics.
const (
	notifySent    = "sent"
	notifyFailed  = "failed"
	notifySkipped = "skipped"
	notifyLogged  = "logged"
)

// PipelineDeps wires all driven adapters into the polling pipeline.
type PipelineDeps struct {
	Courses     ports.CourseList
	Source      ports.DocumentSource
	Store       ports.SnapshotStore
	Notifiers   []ports.Notifier
	DeliveryLog ports.DeliveryLog
	Metrics     *metrics.Collector
	Logger      *slog.Logger
}

// Pipeline runs polling cycles: scrape every listed course, detect new items,
// announce them and persist the new states.
type Pipeline struct {
	courses     ports.CourseList
	source      ports.DocumentSource
	store       ports.SnapshotStore
	notifiers   []ports.Notifier
	deliveryLog ports.DeliveryLog
	metrics     *metrics.Collector
	log         *slog.Logger

	mu     sync.Mutex
	states domain.TrackedCourses
	loaded bool
	// unsaved is set while in-memory states are ahead of the store.
	unsaved bool
}

// CycleReport summarises one polling cycle.
type CycleReport struct {
	Courses  int
	Changed  int
	Failed   int
	NewItems int
	Notified int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	notifiers := make([]ports.Notifier, 0, len(deps.Notifiers))
	for _, n := range deps.Notifiers {
		if n != nil {
			notifiers = append(notifiers, n)
		}
	}
	return &Pipeline{
		courses:     deps.Courses,
		source:      deps.Source,
		store:       deps.Store,
		notifiers:   notifiers,
		deliveryLog: deps.DeliveryLog,
		metrics:     deps.Metrics,
		log:         log.With("component", "pipeline"),
	}
}

// RunCycle processes every listed course once. Per-course failures are logged
// and counted; the returned error covers only course list and state persistence.
func (p *Pipeline) RunCycle(ctx context.Context, now time.Time) (CycleReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var report CycleReport
	started := time.Now()
	defer func() { p.metrics.ObserveCycle(time.Since(started)) }()

	if p.courses == nil || p.source == nil {
		return report, nil
	}

	urls, found, err := p.courses.List(ctx)
	if err != nil {
		return report, fmt.Errorf("load course list: %w", err)
	}
	if !found {
		p.log.Warn("no courses configured: course list file not found")
		return report, nil
	}
	if len(urls) == 0 {
		p.log.Info("course list is empty")
		return report, nil
	}

	p.ensureStates(ctx)

	dirty := false
	seen := make(map[string]string, len(urls))
	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}
		id := domain.CourseID(url)
		if first, ok := seen[id]; ok {
			p.log.Warn("course id listed more than once, skipping duplicate URL",
				"course_id", id,
				"url", url,
				"first_url", first,
			)
			continue
		}
		seen[id] = url
		report.Courses++

		outcome, err := p.processCourse(ctx, url)
		if err != nil {
			report.Failed++
			p.metrics.CourseScraped(metrics.ResultFailed)
			p.log.Error("course processing failed",
				"course_id", domain.CourseID(url),
				"url", url,
				"title", p.knownTitle(url),
				"err", err,
			)
			continue
		}

		report.NewItems += outcome.newItems
		report.Notified += outcome.notified
		if outcome.changed {
			report.Changed++
			dirty = true
		}
	}

	p.metrics.SetTracked(len(p.states))

	if (dirty || p.unsaved) && p.store != nil {
		if err := p.store.Save(ctx, p.states); err != nil {
			p.unsaved = true
			return report, fmt.Errorf("save state: %w", err)
		}
		p.unsaved = false
	}

	p.log.Info("cycle finished",
		"trigger", now.Format(time.RFC3339),
		"courses", report.Courses,
		"changed", report.Changed,
		"failed", report.Failed,
		"new_items", report.NewItems,
		"notified", report.Notified,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	return report, nil
}

// Tracked returns a copy of the in-memory states.
func (p *Pipeline) Tracked() domain.TrackedCourses {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(domain.TrackedCourses, len(p.states))
	for id, state := range p.states {
		out[id] = state
	}
	return out
}

func (p *Pipeline) ensureStates(ctx context.Context) {
	if p.loaded {
		return
	}
	p.loaded = true
	p.states = domain.TrackedCourses{}

	if p.store == nil {
		return
	}

	states, err := p.store.Load(ctx)
	if err != nil {
		var ioErr *domain.StateIOError
		if errors.As(err, &ioErr) {
			p.log.Warn("stored state unreadable, starting cold", "path", ioErr.Path, "err", ioErr.Err)
		} else {
			p.log.Warn("load stored state failed, starting cold", "err", err)
		}
		return
	}
	if states != nil {
		p.states = states
	}
}

func (p *Pipeline) knownTitle(url string) string {
	return p.states[domain.CourseID(url)].Title
}

type courseOutcome struct {
	changed  bool
	newItems int
	notified int
}

func (p *Pipeline) processCourse(ctx context.Context, url string) (outcome courseOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	id := domain.CourseID(url)
	if id == "" {
		return outcome, fmt.Errorf("course URL %s has no id parameter", url)
	}

	title, data, err := ScrapeCourse(ctx, p.source, url)
	if err != nil {
		return outcome, err
	}

	previous, tracked := p.states[id]
	result, err := snapshot.Evaluate(previous, tracked, title, data)
	if err != nil {
		return outcome, err
	}

	log := p.log.With("course_id", id, "url", url, "title", title)

	if !result.Changed {
		p.metrics.CourseScraped(metrics.ResultUnchanged)
		log.Debug("course unchanged")
		return outcome, nil
	}

	if result.FirstSeen {
		p.metrics.CourseScraped(metrics.ResultFirstSeen)
		log.Info("course tracked for the first time", "items", len(result.Changes))
	} else {
		p.metrics.CourseScraped(metrics.ResultChanged)
		log.Info("course changed", "new_items", len(result.Changes))
	}

	outcome.changed = true
	outcome.newItems = len(result.Changes)
	outcome.notified = p.announce(ctx, log, id, url, title, result.Changes)

	p.states[id] = result.State
	return outcome, nil
}

// announce hands every change to the sinks in diff order and returns the
// number of items delivered to at least one sink.
func (p *Pipeline) announce(ctx context.Context, log *slog.Logger, id, url, title string, changes []domain.Change) int {
	if len(changes) == 0 {
		return 0
	}

	notes := make([]domain.Notification, len(changes))
	keys := make([]string, len(changes))
	for i, change := range changes {
		p.metrics.ChangeDetected(change.Category)
		notes[i] = domain.Notification{
			CourseID:    id,
			CourseTitle: title,
			CourseURL:   url,
			Section:     change.Section,
			Category:    change.Category,
			Item:        change.Item,
		}
		keys[i] = snapshot.DeliveryKey(notes[i])
	}

	delivered := map[string]bool{}
	if p.deliveryLog != nil {
		found, err := p.deliveryLog.AlreadyDelivered(ctx, id, keys)
		if err != nil {
			log.Warn("delivery log lookup failed", "err", err)
		} else {
			delivered = found
		}
	}

	notified := 0
	for i, note := range notes {
		itemLog := log.With("section", note.Section, "category", string(note.Category))

		if delivered[keys[i]] {
			p.metrics.NotificationResult(notifySkipped)
			itemLog.Debug("item already delivered")
			continue
		}

		if len(p.notifiers) == 0 {
			p.metrics.NotificationResult(notifyLogged)
			itemLog.Info("new course item", "item_title", note.Item.Title, "item_url", note.Item.URL, "notice", note.Item.Notice)
			continue
		}

		sent := false
		for _, notifier := range p.notifiers {
			if err := notifier.Notify(ctx, note); err != nil {
				p.metrics.NotificationResult(notifyFailed)
				itemLog.Error("notification failed", "err", err)
				continue
			}
			p.metrics.NotificationResult(notifySent)
			sent = true
		}
		if !sent {
			continue
		}
		notified++

		if p.deliveryLog != nil {
			if err := p.deliveryLog.RecordDelivered(ctx, note, keys[i]); err != nil {
				itemLog.Warn("record delivery failed", "err", err)
			}
		}
	}

	return notified
}

// ScrapeCourse fetches url and extracts its title and categorized content.
func ScrapeCourse(ctx context.Context, source ports.DocumentSource, url string) (string, domain.CourseSnapshot, error) {
	doc, err := source.Fetch(ctx, url)
	if err != nil {
		return "", domain.CourseSnapshot{}, err
	}

	title, data, err := extract.Course(doc)
	if err != nil {
		var parseErr *domain.ParseError
		if errors.As(err, &parseErr) && parseErr.URL == "" {
			parseErr.URL = url
		}
		return "", domain.CourseSnapshot{}, err
	}
	return title, data, nil
}
