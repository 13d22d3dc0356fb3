package discord

import (
	"context"
	"fmt"
	"time"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/ports"
)

const (
	notificationColor  = 0x5865F2
	notificationFooter = "lms-scraper"
	defaultMention     = "@here"
)

// Notifier announces new course items as embeds in one channel.
type Notifier struct {
	api       *api
	channelID string
	mention   string
	now       func() time.Time
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and channel. An empty mention defaults to @here.
func NewNotifier(baseURL, botToken, channelID, mention string) *Notifier {
	if mention == "" {
		mention = defaultMention
	}
	return &Notifier{
		api:       newAPI(baseURL, botToken),
		channelID: channelID,
		mention:   mention,
		now:       time.Now,
	}
}

// Notify posts one embed describing n.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	if n.channelID == "" {
		return fmt.Errorf("discord notifier misconfigured")
	}
	return n.api.send(ctx, n.channelID, n.message(note))
}

func (n *Notifier) message(note domain.Notification) message {
	e := embed{
		Color:     notificationColor,
		Timestamp: n.now().UTC().Format(time.RFC3339),
		Footer:    &footer{Text: notificationFooter},
	}

	kind := "Resource"
	if note.Item.IsNotice() {
		kind = "Notice"
		e.Title = "New Notice"
		e.Description = note.Item.Notice
	} else {
		e.Title = note.Item.Title
		e.URL = note.Item.URL
		e.Description = fmt.Sprintf("[Open resource](%s)", note.Item.URL)
	}

	e.Fields = []field{
		{Name: "Course", Value: fallback(note.CourseTitle, note.CourseID), Inline: true},
		{Name: "Section", Value: fallback(note.Section, "-"), Inline: true},
		{Name: "Type", Value: kind, Inline: true},
	}

	return message{
		Content:         n.mention + " 📢 New course update",
		Embeds:          []embed{e},
		AllowedMentions: &allowedMentions{Parse: []string{"everyone"}},
	}
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
