// Package discord posts course updates and forwarded log records to Discord
// channels through the bot REST API.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultAPIBaseURL is the Discord REST endpoint.
const DefaultAPIBaseURL = "https://discord.com/api/v10"

type message struct {
	Content         string           `json:"content,omitempty"`
	Embeds          []embed          `json:"embeds,omitempty"`
	AllowedMentions *allowedMentions `json:"allowed_mentions,omitempty"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

type embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
	Color       int     `json:"color"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Fields      []field `json:"fields,omitempty"`
	Footer      *footer `json:"footer,omitempty"`
}

type field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type footer struct {
	Text string `json:"text"`
}

type rateLimited struct {
	RetryAfter float64 `json:"retry_after"`
}

// api posts messages to channels with the bot token.
type api struct {
	http *resty.Client
}

func newAPI(baseURL, botToken string) *api {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(10 * time.Second)
	httpClient.SetHeader("Authorization", "Bot "+botToken)
	httpClient.SetHeader("Content-Type", "application/json")
	httpClient.SetRetryCount(3)
	httpClient.SetRetryWaitTime(100 * time.Millisecond)
	httpClient.SetRetryMaxWaitTime(10 * time.Second)
	httpClient.AddRetryCondition(func(resp *resty.Response, err error) bool {
		return err == nil && resp != nil && resp.StatusCode() == 429
	})
	httpClient.SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		var body rateLimited
		if resp == nil || json.Unmarshal(resp.Body(), &body) != nil {
			return 0, nil
		}
		return time.Duration(body.RetryAfter * float64(time.Second)), nil
	})

	return &api{http: httpClient}
}

func (a *api) send(ctx context.Context, channelID string, msg message) error {
	resp, err := a.http.R().
		SetContext(ctx).
		SetPathParam("channel", channelID).
		SetBody(msg).
		Post("/channels/{channel}/messages")
	if err != nil {
		return fmt.Errorf("post discord message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("discord error: %s", resp.Status())
	}
	return nil
}
