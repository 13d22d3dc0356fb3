// Package moodle fetches course pages from a Moodle site using the stored
// MoodleSession cookie.
package moodle

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/markup"
	"CourseWatcher/internal/ports"
)

const (
	defaultUserAgent = "Mozilla/5.0"
	defaultTimeout   = 30 * time.Second
	sessionCookie    = "MoodleSession"
)

// SessionProvider returns the current session cookie value ("" when none).
type SessionProvider interface {
	Session(ctx context.Context) (string, error)
}

// Options tune the HTTP client.
type Options struct {
	Timeout            time.Duration
	UserAgent          string
	InsecureSkipVerify bool
	RequestsPerSecond  float64
}

// Client downloads course pages and parses them into markup documents.
type Client struct {
	http     *resty.Client
	sessions SessionProvider
	limiter  *rate.Limiter
}

var _ ports.DocumentSource = (*Client)(nil)

// NewClient wires a resty client. The session cookie is read on every fetch so
// that a cookie replaced while running is picked up by the next cycle.
func NewClient(sessions SessionProvider, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("User-Agent", opts.UserAgent)
	if opts.InsecureSkipVerify {
		httpClient.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // self-hosted Moodle instances
	}

	c := &Client{http: httpClient, sessions: sessions}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// Fetch downloads courseURL and returns the parsed document.
func (c *Client) Fetch(ctx context.Context, courseURL string) (markup.Node, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.FetchError{URL: courseURL, Err: err}
		}
	}

	req := c.http.R().SetContext(ctx)
	if c.sessions != nil {
		session, err := c.sessions.Session(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session cookie: %w", err)
		}
		if session != "" {
			req.SetCookie(&http.Cookie{Name: sessionCookie, Value: session})
		}
	}

	resp, err := req.Get(courseURL)
	if err != nil {
		return nil, &domain.FetchError{URL: courseURL, Err: err}
	}
	if resp.IsError() {
		return nil, &domain.FetchError{URL: courseURL, StatusCode: resp.StatusCode()}
	}

	doc, err := markup.FromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &domain.ParseError{URL: courseURL, Reason: err.Error()}
	}
	return doc, nil
}

// FileSource serves a saved HTML page regardless of the requested URL.
type FileSource struct {
	Path string
}

var _ ports.DocumentSource = FileSource{}

// Fetch parses the file at Path.
func (f FileSource) Fetch(ctx context.Context, courseURL string) (markup.Node, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer file.Close()

	doc, err := markup.FromReader(file)
	if err != nil {
		return nil, &domain.ParseError{URL: courseURL, Reason: err.Error()}
	}
	return doc, nil
}
