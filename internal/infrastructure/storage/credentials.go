package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// SessionCookieName is the Moodle session cookie.
const SessionCookieName = "MoodleSession"

var ErrInvalidCookie = errors.New("cookie must be a full JSON object with name \"MoodleSession\", value and domain")

var errMalformedCookie = errors.New("malformed cookie file")

// CredentialFile stores the exported MoodleSession cookie object.
type CredentialFile struct {
	path string
	lock *fileLock
}

// NewCredentialFile binds the store to path.
func NewCredentialFile(path string) *CredentialFile {
	return &CredentialFile{path: path, lock: newFileLock(path)}
}

// Path returns the backing file.
func (c *CredentialFile) Path() string {
	return c.path
}

// Session returns the session cookie value. Any JSON object with a non-empty
// string value is accepted; the full cookie shape is only enforced by Set.
// A missing or malformed cookie file yields "" so that pages are requested
// without a session.
func (c *CredentialFile) Session(ctx context.Context) (string, error) {
	var value string
	err := c.lock.with(func() error {
		obj, found, err := c.read()
		if errors.Is(err, errMalformedCookie) || !found {
			return nil
		}
		if err != nil {
			return err
		}
		if v, ok := obj["value"].(string); ok {
			value = v
		}
		return nil
	})
	return value, err
}

// Check reports whether a cookie file exists and has the full cookie shape.
func (c *CredentialFile) Check(ctx context.Context) (found, valid bool, err error) {
	err = c.lock.with(func() error {
		obj, ok, rErr := c.read()
		if rErr != nil {
			found = true
			return nil
		}
		found = ok
		valid = ok && fullCookieShape(obj)
		return nil
	})
	return found, valid, err
}

// Set validates raw as a full cookie object and overwrites the file with it.
func (c *CredentialFile) Set(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") {
		return ErrInvalidCookie
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	if !fullCookieShape(obj) {
		return ErrInvalidCookie
	}

	encoded, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookie: %w", err)
	}

	return c.lock.with(func() error {
		return writeFileAtomic(c.path, encoded, 0o600)
	})
}

func (c *CredentialFile) read() (map[string]any, bool, error) {
	raw, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cookie file: %w", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, true, fmt.Errorf("%w %s: %v", errMalformedCookie, c.path, err)
	}
	return obj, true, nil
}

func fullCookieShape(obj map[string]any) bool {
	for _, key := range []string{"name", "value", "domain"} {
		if _, ok := obj[key]; !ok {
			return false
		}
	}
	name, _ := obj["name"].(string)
	return name == SessionCookieName
}

// Mask hides all but the first and last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
