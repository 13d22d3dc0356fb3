package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/ports"
)

const defaultAPIBaseURL = "https://api.telegram.org"

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// Notifier sends course updates to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *resty.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty baseURL targets api.telegram.org.
func NewNotifier(baseURL, botToken, chatID string) *Notifier {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(5 * time.Second)

	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   client,
	}
}

// Notify posts a Markdown message describing one new item.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetPathParam("token", n.botToken).
		SetFormData(map[string]string{
			"chat_id":    n.chatID,
			"text":       Format(note),
			"parse_mode": "Markdown",
		}).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram error: %s", resp.Status())
	}

	return nil
}

// Format renders a notification as Telegram Markdown.
func Format(note domain.Notification) string {
	course := note.CourseTitle
	if course == "" {
		course = note.CourseID
	}

	var b strings.Builder
	b.WriteString("📢 *New course update*\n")
	fmt.Fprintf(&b, "*Course:* %s\n", escape(course))
	fmt.Fprintf(&b, "*Section:* %s\n", escape(note.Section))
	fmt.Fprintf(&b, "*Category:* %s\n", escape(string(note.Category)))
	if note.Item.IsNotice() {
		fmt.Fprintf(&b, "*Notice:* %s", escape(note.Item.Notice))
	} else {
		fmt.Fprintf(&b, "[%s](%s)", escape(note.Item.Title), note.Item.URL)
	}
	return b.String()
}

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
