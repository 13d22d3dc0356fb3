package discord

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseWatcher/internal/domain"
)

type recorder struct {
	mu       sync.Mutex
	paths    []string
	auth     []string
	messages []message
	failures int
}

func (r *recorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.failures > 0 {
			r.failures--
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"rate limited","retry_after":0.01}`))
			return
		}

		body, _ := io.ReadAll(req.Body)
		var msg message
		if err := json.Unmarshal(body, &msg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		r.paths = append(r.paths, req.URL.Path)
		r.auth = append(r.auth, req.Header.Get("Authorization"))
		r.messages = append(r.messages, msg)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNotifierResourceEmbed(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	srv := rec.server(t)

	n := NewNotifier(srv.URL, "token-1", "123", "")
	err := n.Notify(context.Background(), domain.Notification{
		CourseID:    "42",
		CourseTitle: "Course X",
		Section:     "Week 1",
		Category:    domain.CategoryPreLecture,
		Item:        domain.Resource("Pre-Lecture Quiz", "https://lms/x?id=1"),
	})
	require.NoError(t, err)

	require.Len(t, rec.messages, 1)
	assert.Equal(t, "/channels/123/messages", rec.paths[0])
	assert.Equal(t, "Bot token-1", rec.auth[0])

	msg := rec.messages[0]
	assert.Equal(t, "@here 📢 New course update", msg.Content)
	require.Len(t, msg.Embeds, 1)
	e := msg.Embeds[0]
	assert.Equal(t, "Pre-Lecture Quiz", e.Title)
	assert.Equal(t, "https://lms/x?id=1", e.URL)
	assert.Equal(t, "[Open resource](https://lms/x?id=1)", e.Description)
	assert.Equal(t, notificationColor, e.Color)
	assert.Equal(t, []field{
		{Name: "Course", Value: "Course X", Inline: true},
		{Name: "Section", Value: "Week 1", Inline: true},
		{Name: "Type", Value: "Resource", Inline: true},
	}, e.Fields)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "lms-scraper", e.Footer.Text)
}

func TestNotifierNoticeEmbedAfterRateLimit(t *testing.T) {
	t.Parallel()

	rec := &recorder{failures: 1}
	srv := rec.server(t)

	n := NewNotifier(srv.URL, "token-1", "123", "@everyone")
	err := n.Notify(context.Background(), domain.Notification{
		CourseID: "42",
		Section:  "General Activities",
		Category: domain.CategoryNotices,
		Item:     domain.NoticeItem("Exam moved to Friday"),
	})
	require.NoError(t, err)

	require.Len(t, rec.messages, 1)
	msg := rec.messages[0]
	assert.True(t, strings.HasPrefix(msg.Content, "@everyone"))
	e := msg.Embeds[0]
	assert.Equal(t, "New Notice", e.Title)
	assert.Equal(t, "Exam moved to Friday", e.Description)
	assert.Empty(t, e.URL)
	assert.Equal(t, "42", e.Fields[0].Value)
	assert.Equal(t, "Notice", e.Fields[2].Value)
}

func TestNotifierServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewNotifier(srv.URL, "t", "123", "").Notify(context.Background(), domain.Notification{
		Item: domain.NoticeItem("x"),
	})
	assert.Error(t, err)
}

func TestLogHandlerForwardsAndChunks(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	srv := rec.server(t)

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	handler := NewLogHandler(LogHandlerOptions{
		BaseURL:   srv.URL,
		BotToken:  "token-1",
		ChannelID: "999",
		Level:     level,
		Pause:     time.Millisecond,
	})
	logger := slog.New(handler).With("component", "pipeline")

	logger.Debug("ignored")
	logger.Info("ignored too")
	logger.Warn("cookie missing", "path", "cookies.json")
	logger.Error(strings.Repeat("x", 5000))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, handler.Close(ctx))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.messages, 3)

	first := rec.messages[0].Embeds[0]
	assert.Equal(t, "[WARNING]", first.Title)
	assert.Equal(t, 0xFAA61A, first.Color)
	assert.Contains(t, first.Description, "cookie missing component=pipeline path=cookies.json")
	assert.Equal(t, "lms-scraper logs", first.Footer.Text)

	assert.Equal(t, "[ERROR] (part 1)", rec.messages[1].Embeds[0].Title)
	assert.Equal(t, "[ERROR] (part 2)", rec.messages[2].Embeds[0].Title)
	assert.Len(t, []rune(rec.messages[1].Embeds[0].Description), maxDescription)
	assert.Equal(t, 0xED4245, rec.messages[2].Embeds[0].Color)

	logger.Error("after close")
	assert.Len(t, rec.messages, 3)
}

func TestColorFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0x99AAB5, colorFor(slog.LevelDebug))
	assert.Equal(t, 0x57F287, colorFor(slog.LevelInfo))
	assert.Equal(t, 0x732FCE, colorFor(slog.Level(12)))
}

func TestChunk(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"abc"}, chunk("abc", 5))
	assert.Equal(t, []string{"ab", "cd", "e"}, chunk("abcde", 2))
	assert.Equal(t, []string{"éé", "é"}, chunk("ééé", 2))
}
