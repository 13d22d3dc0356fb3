package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"CourseWatcher/internal/ports"
	"CourseWatcher/pkg/logger"
)

// CronScheduler runs the polling job on a fixed interval or a cron expression.
// The first run starts immediately; a run still in progress causes the next
// tick to be skipped.
type CronScheduler struct {
	schedule cron.Schedule
	log      cron.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	initial sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler uses expression when set, otherwise "every interval".
func NewCronScheduler(interval time.Duration, expression string, log *slog.Logger) (*CronScheduler, error) {
	var schedule cron.Schedule
	if expression != "" {
		parsed, err := cron.ParseStandard(expression)
		if err != nil {
			return nil, fmt.Errorf("parse cron expression %q: %w", expression, err)
		}
		schedule = parsed
	} else {
		if interval <= 0 {
			return nil, fmt.Errorf("polling interval must be positive, got %s", interval)
		}
		schedule = cron.Every(interval)
	}

	return &CronScheduler{
		schedule: schedule,
		log:      logger.Cron(log, "scheduler"),
	}, nil
}

// Start schedules job and triggers it once right away.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	wrapped := cron.NewChain(
		cron.Recover(c.log),
		cron.SkipIfStillRunning(c.log),
	).Then(cron.FuncJob(func() { job(time.Now()) }))

	c.cron = cron.New(cron.WithLogger(c.log))
	c.cron.Schedule(c.schedule, wrapped)
	c.cron.Start()

	c.initial.Add(1)
	go func() {
		defer c.initial.Done()
		wrapped.Run()
	}()

	runner := c.cron
	go func() {
		<-ctx.Done()
		runner.Stop()
	}()

	return nil
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner := c.cron
	c.cron = nil
	c.mu.Unlock()

	if runner == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		<-runner.Stop().Done()
		c.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
