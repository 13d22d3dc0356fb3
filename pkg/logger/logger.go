package logger

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Cron adapts a slog.Logger to the cron.Logger interface with a component attribute.
// Cron's chatty info records are demoted to debug.
func Cron(base *slog.Logger, component string) cron.Logger {
	if base == nil {
		base = slog.Default()
	}
	return cronLogger{log: base.With("component", component)}
}

type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{"err", err}, keysAndValues...)...)
}
