package discord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"CourseWatcher/internal/logging"
)

const (
	maxDescription = 3800
	logFooter      = "lms-scraper logs"
	logQueueSize   = 256
	defaultPause   = 250 * time.Millisecond
)

var levelColors = []struct {
	min   slog.Level
	color int
}{
	{logging.LevelCritical, 0x732FCE},
	{slog.LevelError, 0xED4245},
	{slog.LevelWarn, 0xFAA61A},
	{slog.LevelInfo, 0x57F287},
}

func colorFor(level slog.Level) int {
	for _, c := range levelColors {
		if level >= c.min {
			return c.color
		}
	}
	return 0x99AAB5
}

type logEntry struct {
	level slog.Level
	text  string
}

// logSink owns the queue and the sender goroutine shared by all derived handlers.
type logSink struct {
	api       *api
	channelID string
	pause     time.Duration
	errOut    io.Writer
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan logEntry
	done   chan struct{}
}

// LogHandler is a slog.Handler that forwards records to a Discord channel.
// Records are queued and sent by a background goroutine; a full queue drops
// records instead of blocking the caller.
type LogHandler struct {
	sink   *logSink
	level  slog.Leveler
	attrs  string
	prefix string
}

var _ slog.Handler = (*LogHandler)(nil)

// LogHandlerOptions configure log forwarding.
type LogHandlerOptions struct {
	BaseURL   string
	BotToken  string
	ChannelID string
	Level     slog.Leveler
	// Pause between two sends; zero means 250ms.
	Pause time.Duration
}

// NewLogHandler starts the sender goroutine. Call Close to flush and stop it.
func NewLogHandler(opts LogHandlerOptions) *LogHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelWarn
	}
	if opts.Pause <= 0 {
		opts.Pause = defaultPause
	}

	sink := &logSink{
		api:       newAPI(opts.BaseURL, opts.BotToken),
		channelID: opts.ChannelID,
		pause:     opts.Pause,
		errOut:    os.Stderr,
		now:       time.Now,
		queue:     make(chan logEntry, logQueueSize),
		done:      make(chan struct{}),
	}
	go sink.run()

	return &LogHandler{sink: sink, level: opts.Level}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Time.Format("2006-01-02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(logging.LevelName(record.Level))
	b.WriteString("] ")
	b.WriteString(record.Message)
	b.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})

	h.sink.enqueue(logEntry{level: record.Level, text: b.String()})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&b, h.prefix, a)
	}
	return &LogHandler{sink: h.sink, level: h.level, attrs: b.String(), prefix: h.prefix}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &LogHandler{sink: h.sink, level: h.level, attrs: h.attrs, prefix: h.prefix + name + "."}
}

// Close stops accepting records and waits until queued ones are sent or ctx ends.
func (h *LogHandler) Close(ctx context.Context) error {
	h.sink.close()
	select {
	case <-h.sink.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, group, ga)
		}
		return
	}
	fmt.Fprintf(b, " %s%s=%s", prefix, a.Key, a.Value.String())
}

func (s *logSink) enqueue(entry logEntry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- entry:
	default:
		fmt.Fprintln(s.errOut, "discord log queue full, dropping:", entry.text)
	}
}

func (s *logSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.queue)
}

func (s *logSink) run() {
	defer close(s.done)
	for entry := range s.queue {
		for _, msg := range s.messages(entry) {
			if err := s.api.send(context.Background(), s.channelID, msg); err != nil {
				fmt.Fprintln(s.errOut, "forward log to discord:", err)
			}
		}
		time.Sleep(s.pause)
	}
}

func (s *logSink) messages(entry logEntry) []message {
	name := logging.LevelName(entry.level)
	color := colorFor(entry.level)
	stamp := s.now().UTC().Format(time.RFC3339)

	chunks := chunk(entry.text, maxDescription)
	out := make([]message, 0, len(chunks))
	for i, part := range chunks {
		title := "[" + name + "]"
		if len(chunks) > 1 {
			title = fmt.Sprintf("[%s] (part %d)", name, i+1)
		}
		out = append(out, message{Embeds: []embed{{
			Title:       title,
			Description: part,
			Color:       color,
			Timestamp:   stamp,
			Footer:      &footer{Text: logFooter},
		}}})
	}
	return out
}

// chunk splits text into pieces of at most size runes.
func chunk(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	parts := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
