package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir    string
	config string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	cfg := fmt.Sprintf("files:\n  snapshots: %s\n  courseList: %s\n  cookie: %s\n",
		filepath.Join(dir, "scraper_state.json"),
		filepath.Join(dir, "course_urls.json"),
		filepath.Join(dir, "cookies.json"),
	)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return fixture{dir: dir, config: path}
}

func (f fixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--config", f.config}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCoursesLifecycle(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "", "courses", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No courses configured")

	out, err = f.run(t, "", "courses", "add", "https://lms.example.edu/course/view.php?id=42")
	require.NoError(t, err)
	assert.Contains(t, out, "Now tracking 1 course(s)")

	_, err = f.run(t, "", "courses", "add", "https://lms.example.edu/course/view.php?id=42")
	require.Error(t, err)

	_, err = f.run(t, "", "courses", "add", "not a url")
	require.Error(t, err)

	out, err = f.run(t, "", "courses", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. https://lms.example.edu/course/view.php?id=42")

	out, err = f.run(t, "n\n", "courses", "remove", "https://lms.example.edu/course/view.php?id=42")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = f.run(t, "y\n", "courses", "remove", "https://lms.example.edu/course/view.php?id=42")
	require.NoError(t, err)
	assert.Contains(t, out, "0 course(s) remaining")
}

func TestCoursesRemoveUnknownWithYes(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "", "courses", "add", "https://lms.example.edu/course/view.php?id=1")
	require.NoError(t, err)

	_, err = f.run(t, "", "courses", "remove", "--yes", "https://lms.example.edu/course/view.php?id=2")
	require.Error(t, err)
}

func TestCookieSetAndShow(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "", "cookie", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No MoodleSession cookie set.")

	_, err = f.run(t, "", "cookie", "set", `{"name":"Other","value":"x","domain":"lms"}`)
	require.Error(t, err)

	_, err = f.run(t, "", "cookie", "set", `{"name":"MoodleSession","value":"abcdef123456","domain":"lms.example.edu"}`)
	require.NoError(t, err)

	out, err = f.run(t, "", "cookie", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "MoodleSession: abcd...3456")
	assert.NotContains(t, out, "abcdef123456")
}

func TestScrapeSavedPage(t *testing.T) {
	f := newFixture(t)

	fixturePath, err := filepath.Abs(filepath.Join("..", "..", "..", "internal", "extract", "testdata", "course.html"))
	require.NoError(t, err)

	out, err := f.run(t, "", "scrape", "--html", fixturePath, "https://lms.example.edu/course/view.php?id=42")
	require.NoError(t, err)
	assert.Contains(t, out, `"Software Engineering": {`)
	assert.Contains(t, out, `"Pre-Lecture Quiz"`)
}

func TestScrapeRequiresURL(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "", "scrape")
	require.Error(t, err)
}
