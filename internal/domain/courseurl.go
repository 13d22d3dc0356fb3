package domain

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	schemeExpr   = regexp.MustCompile(`^https?://`)
	courseIDExpr = regexp.MustCompile(`[?&]id=(\d+)`)
)

// ValidCourseURL reports whether raw is an http(s) URL carrying a numeric id parameter.
func ValidCourseURL(raw string) bool {
	return schemeExpr.MatchString(raw) && courseIDExpr.MatchString(raw)
}

// CourseID derives the stable course identifier from the URL's id query parameter.
// URLs without a parsable id fall back to the text after the last "id=".
func CourseID(raw string) string {
	if parsed, err := url.Parse(raw); err == nil {
		if id := parsed.Query().Get("id"); id != "" {
			return id
		}
	}
	if m := courseIDExpr.FindStringSubmatch(raw); len(m) == 2 {
		return m[1]
	}
	parts := strings.Split(raw, "id=")
	return parts[len(parts)-1]
}
