package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCronLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	log := Cron(base, "scheduler")

	log.Info("schedule", "entry", 1)
	log.Error(errors.New("boom"), "panic", "entry", 1)

	out := buf.String()
	for _, want := range []string{
		`level=DEBUG msg="cron: schedule" component=scheduler entry=1`,
		`level=ERROR msg="cron: panic" component=scheduler err=boom entry=1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
