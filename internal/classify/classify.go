// Package classify sorts course items into lecture-related categories using
// keyword rules over their title and description.
package classify

import (
	"regexp"
	"strings"

	"CourseWatcher/internal/domain"
)

type rule struct {
	expr     *regexp.Regexp
	category domain.Category
}

// Evaluated in order; the first match wins.
var rules = []rule{
	{regexp.MustCompile(`\bpost[- ]?lecture\b`), domain.CategoryPostLecture},
	{regexp.MustCompile(`\bpre[- ]?lecture\b`), domain.CategoryPreLecture},
	{regexp.MustCompile(`\blecture\b`), domain.CategoryLecture},
	{regexp.MustCompile(`\btutorial\b`), domain.CategoryTutorial},
}

// Classify returns the category for an item with the given title and description.
// Items matching no rule land in CategoryOthers.
func Classify(title, description string) domain.Category {
	text := strings.ToLower(title + " " + description)
	for _, r := range rules {
		if r.expr.MatchString(text) {
			return r.category
		}
	}
	return domain.CategoryOthers
}
