package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/purell"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/ports"
)

var (
	ErrInvalidCourseURL = errors.New("course URL must start with http(s) and include id= followed by digits")
	ErrCourseExists     = errors.New("course URL is already present")
	ErrCourseNotFound   = errors.New("course URL not found in the list")
)

const normalizeFlags = purell.FlagsSafe |
	purell.FlagRemoveFragment |
	purell.FlagSortQuery

// CourseListFile stores the polled course URLs as a JSON array.
type CourseListFile struct {
	path string
	lock *fileLock
}

var _ ports.CourseList = (*CourseListFile)(nil)

// NewCourseListFile binds the list to path.
func NewCourseListFile(path string) *CourseListFile {
	return &CourseListFile{path: path, lock: newFileLock(path)}
}

// Path returns the backing file.
func (c *CourseListFile) Path() string {
	return c.path
}

// List returns the configured URLs in file order; found is false when the file does not exist.
func (c *CourseListFile) List(ctx context.Context) ([]string, bool, error) {
	var (
		urls  []string
		found bool
	)
	err := c.lock.with(func() error {
		var err error
		urls, found, err = c.read()
		return err
	})
	return urls, found, err
}

// Add appends url after validation and returns the new number of courses.
func (c *CourseListFile) Add(ctx context.Context, url string) (int, error) {
	url = strings.TrimSpace(url)
	if !domain.ValidCourseURL(url) {
		return 0, ErrInvalidCourseURL
	}

	var total int
	err := c.lock.with(func() error {
		urls, _, err := c.read()
		if err != nil {
			return err
		}
		if indexOf(urls, url) >= 0 || indexOfCourse(urls, domain.CourseID(url)) >= 0 {
			return ErrCourseExists
		}
		urls = append(urls, url)
		total = len(urls)
		return c.write(urls)
	})
	return total, err
}

// Remove deletes url and returns the remaining number of courses.
func (c *CourseListFile) Remove(ctx context.Context, url string) (int, error) {
	url = strings.TrimSpace(url)

	var total int
	err := c.lock.with(func() error {
		urls, _, err := c.read()
		if err != nil {
			return err
		}
		idx := indexOf(urls, url)
		if idx < 0 {
			return ErrCourseNotFound
		}
		urls = append(urls[:idx], urls[idx+1:]...)
		total = len(urls)
		return c.write(urls)
	})
	return total, err
}

func (c *CourseListFile) read() ([]string, bool, error) {
	raw, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read course list: %w", err)
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, true, fmt.Errorf("parse course list %s: %w", c.path, err)
	}
	return urls, true, nil
}

func (c *CourseListFile) write(urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	raw, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return fmt.Errorf("encode course list: %w", err)
	}
	return writeFileAtomic(c.path, raw, 0o644)
}

// indexOf matches exact URLs first, then URLs equal after normalization.
func indexOf(urls []string, url string) int {
	for i, u := range urls {
		if u == url {
			return i
		}
	}
	target := normalize(url)
	for i, u := range urls {
		if normalize(u) == target {
			return i
		}
	}
	return -1
}

// indexOfCourse finds a URL that resolves to the same course id. Snapshots are
// keyed by id, so two such URLs would overwrite each other's state.
func indexOfCourse(urls []string, id string) int {
	for i, u := range urls {
		if domain.CourseID(u) == id {
			return i
		}
	}
	return -1
}

func normalize(url string) string {
	normalized, err := purell.NormalizeURLString(url, normalizeFlags)
	if err != nil {
		return url
	}
	return normalized
}
