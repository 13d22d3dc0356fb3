package extract

import (
	"strings"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/markup"
)

// Course extracts the course title and its categorized sections.
// A page without a primary heading yields a *domain.ParseError.
func Course(doc markup.Node) (string, domain.CourseSnapshot, error) {
	heading, ok := doc.Find(markup.RoleHeading)
	if !ok {
		return "", domain.CourseSnapshot{}, &domain.ParseError{Reason: "primary heading not found"}
	}
	title := heading.Text()

	data := domain.NewCourseSnapshot()

	if general := doc.FindAll(markup.RoleGeneralActivity); len(general) > 0 {
		data.Set(domain.GeneralActivitiesSection, Activities(general, false))
	}

	for _, section := range doc.FindAll(markup.RoleSection) {
		nameNode, ok := section.Find(markup.RoleSectionName)
		if !ok {
			continue
		}
		name := nameNode.Text()

		parsed := Activities(section.FindAll(markup.RoleActivity), IsWeekSection(name))
		if len(parsed) > 0 {
			data.Set(name, parsed)
		}
	}

	return title, data, nil
}

// IsWeekSection reports whether items of a section titled name are classified.
func IsWeekSection(name string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), "week")
}
