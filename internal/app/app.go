package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"CourseWatcher/internal/config"
	"CourseWatcher/internal/infrastructure/discord"
	"CourseWatcher/internal/infrastructure/moodle"
	"CourseWatcher/internal/infrastructure/scheduler"
	"CourseWatcher/internal/infrastructure/storage"
	"CourseWatcher/internal/infrastructure/telegram"
	"CourseWatcher/internal/logging"
	"CourseWatcher/internal/metrics"
	"CourseWatcher/internal/ports"
	"CourseWatcher/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	log         *slog.Logger
	logForward  *discord.LogHandler
	courses     *storage.CourseListFile
	credentials *storage.CredentialFile
	deliveryLog *storage.PostgresDeliveryLog
	metrics     *metrics.Collector
	pipeline    *usecase.Pipeline
}

// New builds the application. Optional collaborators that cannot be reached
// (the delivery log database) are logged and left out.
func New(ctx context.Context, cfg config.Config, console io.Writer) *Application {
	if console == nil {
		console = os.Stdout
	}

	a := &Application{
		cfg:         cfg,
		courses:     storage.NewCourseListFile(cfg.Files.CourseList),
		credentials: storage.NewCredentialFile(cfg.Files.Cookie),
		metrics:     metrics.New(),
	}
	a.log = a.buildLogger(console)

	var deliveryLog ports.DeliveryLog
	if cfg.Database.DSN != "" {
		dl, err := storage.OpenDeliveryLog(ctx, cfg.Database.DSN)
		if err != nil {
			a.log.Warn("delivery log unavailable, items may be announced again after state loss", "err", err)
		} else {
			a.deliveryLog = dl
			deliveryLog = dl
		}
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Courses:     a.courses,
		Source:      NewSource(cfg, ""),
		Store:       storage.NewSnapshotFile(cfg.Files.Snapshots),
		Notifiers:   a.notifiers(),
		DeliveryLog: deliveryLog,
		Metrics:     a.metrics,
		Logger:      a.log,
	})

	return a
}

func (a *Application) buildLogger(console io.Writer) *slog.Logger {
	handlers := []slog.Handler{logging.NewConsoleHandler(console, logging.LevelVar(a.cfg.Logging.Level))}

	dc := a.cfg.Notifications.Discord
	if dc.LogForwardingEnabled() {
		a.logForward = discord.NewLogHandler(discord.LogHandlerOptions{
			BaseURL:   dc.APIBaseURL,
			BotToken:  dc.BotToken,
			ChannelID: dc.LogChannelID,
			Level:     logging.LevelVar(dc.LogLevel),
		})
		handlers = append(handlers, a.logForward)
	}

	return slog.New(logging.NewFanout(handlers...))
}

func (a *Application) notifiers() []ports.Notifier {
	var sinks []ports.Notifier

	dc := a.cfg.Notifications.Discord
	if dc.Enabled() {
		sinks = append(sinks, discord.NewNotifier(dc.APIBaseURL, dc.BotToken, dc.NotifyChannelID, dc.Mention))
	}

	tg := a.cfg.Notifications.Telegram
	if tg.Enabled() {
		sinks = append(sinks, telegram.NewNotifier(tg.APIBaseURL, tg.BotToken, tg.ChatID))
	}

	if len(sinks) == 0 {
		a.log.Warn("no notification sink configured, new items will only be logged")
	}
	return sinks
}

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger {
	return a.log
}

// NewSource returns the saved page at htmlPath when set, otherwise the Moodle
// HTTP client authenticated with the configured cookie file.
func NewSource(cfg config.Config, htmlPath string) ports.DocumentSource {
	if htmlPath != "" {
		return moodle.FileSource{Path: htmlPath}
	}
	return moodle.NewClient(storage.NewCredentialFile(cfg.Files.Cookie), moodle.Options{
		Timeout:            cfg.Fetch.Timeout,
		UserAgent:          cfg.Fetch.UserAgent,
		InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
		RequestsPerSecond:  cfg.Fetch.RequestsPerSecond,
	})
}

// StartupChecks warns about missing inputs; none of them stop the watcher.
func (a *Application) StartupChecks(ctx context.Context) {
	urls, found, err := a.courses.List(ctx)
	switch {
	case err != nil:
		a.log.Error("course list unreadable", "path", a.courses.Path(), "err", err)
	case !found:
		a.log.Warn("no courses configured: add courses with `coursewatcher courses add <url>`", "path", a.courses.Path())
	default:
		a.log.Info("courses configured", "count", len(urls))
	}

	found, valid, err := a.credentials.Check(ctx)
	switch {
	case err != nil:
		a.log.Error("cookie file unreadable", "path", a.credentials.Path(), "err", err)
	case !found:
		a.log.Warn("cookie file not found: pages are fetched without a MoodleSession cookie", "path", a.credentials.Path())
	case !valid:
		a.log.Warn("cookie file malformed and ignored: set it with `coursewatcher cookie set <json>`", "path", a.credentials.Path())
	}
}

// RunOnce executes a single polling cycle.
func (a *Application) RunOnce(ctx context.Context) (usecase.CycleReport, error) {
	a.StartupChecks(ctx)
	return a.pipeline.RunCycle(ctx, time.Now())
}

// Run polls on the configured schedule until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	a.StartupChecks(ctx)

	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.CronExpression, a.log)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	srv := a.startMetricsServer()

	sched := usecase.NewScheduler(driver, a.pipeline, a.log)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.log.Info("watcher started",
		"interval", a.cfg.Scheduler.Interval,
		"cron", a.cfg.Scheduler.CronExpression,
	)

	<-ctx.Done()
	a.log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := sched.Stop(stopCtx); err != nil {
		errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
	}
	if srv != nil {
		if err := srv.Shutdown(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop metrics server: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *Application) startMetricsServer() *http.Server {
	if a.cfg.Metrics.Listen == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.log.Info("metrics listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}

// Close flushes forwarded logs and releases the database.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.deliveryLog != nil {
		if err := a.deliveryLog.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.logForward != nil {
		if err := a.logForward.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
