// Package markup exposes course pages as a tree queried by role, so that
// extraction does not depend on a particular HTML engine.
//
// Two implementations exist: a goquery-backed document built from HTML
// (FromReader) and an in-memory Element tree used for synthetic documents.
package markup

import (
	"regexp"
	"strings"
)

// Role names a structural part of a course page.
type Role int

const (
	// RoleHeading is the page's primary heading (the course title).
	RoleHeading Role = iota + 1
	// RoleGeneralActivity is an activity in the top-level list outside any section.
	RoleGeneralActivity
	// RoleSection is a week or topic section container.
	RoleSection
	// RoleSectionName holds a section's title.
	RoleSectionName
	// RoleActivity is one learning-object entry inside a section.
	RoleActivity
	// RoleInstanceName holds an activity's visible title.
	RoleInstanceName
	// RoleLink is the activity's anchor.
	RoleLink
	// RoleDescription is the activity's description paragraph.
	RoleDescription
	// RoleNoticeBlock is the inner block of a label/notice activity.
	RoleNoticeBlock
	// RoleNoticeHeading is a heading fragment inside a notice block.
	RoleNoticeHeading
	// RoleAccessibilityOnly marks screen-reader-only fragments.
	RoleAccessibilityOnly
)

var roleNames = map[Role]string{
	RoleHeading:           "heading",
	RoleGeneralActivity:   "general-activity",
	RoleSection:           "section",
	RoleSectionName:       "section-name",
	RoleActivity:          "activity",
	RoleInstanceName:      "instance-name",
	RoleLink:              "link",
	RoleDescription:       "description",
	RoleNoticeBlock:       "notice-block",
	RoleNoticeHeading:     "notice-heading",
	RoleAccessibilityOnly: "accessibility-only",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Node is a queryable element of a course page.
type Node interface {
	// Find returns the first descendant carrying role.
	Find(role Role) (Node, bool)
	// FindAll returns every descendant carrying role, in document order.
	FindAll(role Role) []Node
	// Text returns the normalized text content, leaving out descendants with any of the excluded roles.
	Text(exclude ...Role) string
	// Attr returns an attribute value.
	Attr(name string) (string, bool)
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// NormalizeText trims s and collapses whitespace runs into single spaces.
func NormalizeText(s string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
