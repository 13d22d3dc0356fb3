package extract

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/markup"
)

func resourceNode(title, href string, extra ...*markup.Element) *markup.Element {
	children := []*markup.Element{
		markup.El(markup.RoleInstanceName, title, markup.El(markup.RoleAccessibilityOnly, "File")),
		markup.El(markup.RoleLink, "").WithAttr("href", href),
	}
	return markup.El(markup.RoleActivity, "", append(children, extra...)...)
}

func noticeNode(headings ...string) *markup.Element {
	var spans []*markup.Element
	for _, h := range headings {
		spans = append(spans, markup.El(markup.RoleNoticeHeading, h))
	}
	return markup.El(markup.RoleActivity, "", markup.El(markup.RoleNoticeBlock, "", spans...))
}

func nodes(elements ...*markup.Element) []markup.Node {
	out := make([]markup.Node, len(elements))
	for i, e := range elements {
		out[i] = e
	}
	return out
}

func TestActivitiesClassified(t *testing.T) {
	t.Parallel()

	got := Activities(nodes(
		resourceNode("Pre-Lecture Quiz", "/mod/quiz/view.php?id=1"),
		resourceNode("Slides", "/mod/resource/view.php?id=2",
			markup.El(markup.RoleDescription, "Lecture slides")),
		resourceNode("Tutorial 1", "/mod/assign/view.php?id=3"),
		resourceNode("Reading list", "/mod/page/view.php?id=4"),
		noticeNode("Important:", "Exam moved to Friday"),
		markup.El(markup.RoleActivity, "separator"),
	), true)

	want := domain.CategorizedSection{
		domain.CategoryPreLecture: {domain.Resource("Pre-Lecture Quiz", "/mod/quiz/view.php?id=1")},
		domain.CategoryLecture:    {domain.Resource("Slides", "/mod/resource/view.php?id=2")},
		domain.CategoryTutorial:   {domain.Resource("Tutorial 1", "/mod/assign/view.php?id=3")},
		domain.CategoryOthers:     {domain.Resource("Reading list", "/mod/page/view.php?id=4")},
		domain.CategoryNotices:    {domain.NoticeItem("Important: Exam moved to Friday")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Activities mismatch (-want +got):\n%s", diff)
	}
}

func TestActivitiesUnclassified(t *testing.T) {
	t.Parallel()

	got := Activities(nodes(
		resourceNode("Lecture 1", "/a"),
		resourceNode("Tutorial 1", "/b"),
	), false)

	want := domain.CategorizedSection{
		domain.CategoryOthers: {domain.Resource("Lecture 1", "/a"), domain.Resource("Tutorial 1", "/b")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Activities mismatch (-want +got):\n%s", diff)
	}
}

func TestActivitiesNeverKeepsEmptyCategories(t *testing.T) {
	t.Parallel()

	got := Activities(nodes(
		noticeNode(),
		noticeNode("", "  "),
		markup.El(markup.RoleActivity, ""),
		// title without link is not a resource
		markup.El(markup.RoleActivity, "", markup.El(markup.RoleInstanceName, "Dangling")),
	), true)

	if len(got) != 0 {
		t.Fatalf("expected empty section, got %v", got)
	}
	for category, items := range Activities(nodes(resourceNode("Lecture", "/l")), true) {
		if len(items) == 0 {
			t.Fatalf("category %s present with no items", category)
		}
	}
}

func TestActivitiesStripsAccessibilitySpans(t *testing.T) {
	t.Parallel()

	got := Activities(nodes(resourceNode("Week 1 notes", "/n")), false)
	items := got[domain.CategoryOthers]
	if len(items) != 1 || items[0].Title != "Week 1 notes" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestActivitiesPreservesDocumentOrder(t *testing.T) {
	t.Parallel()

	got := Activities(nodes(
		resourceNode("Lecture 2", "/2"),
		resourceNode("Lecture 1", "/1"),
		resourceNode("Lecture 3", "/3"),
	), true)

	var titles []string
	for _, item := range got[domain.CategoryLecture] {
		titles = append(titles, item.Title)
	}
	if diff := cmp.Diff([]string{"Lecture 2", "Lecture 1", "Lecture 3"}, titles); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCourseSyntheticTree(t *testing.T) {
	t.Parallel()

	doc := markup.El(0, "",
		markup.El(markup.RoleHeading, "Algorithms"),
		markup.El(0, "",
			&markup.Element{
				Roles: []markup.Role{markup.RoleGeneralActivity},
				Children: []*markup.Element{
					markup.El(markup.RoleInstanceName, "Lecture recordings"),
					markup.El(markup.RoleLink, "").WithAttr("href", "/rec"),
				},
			},
		),
		markup.El(markup.RoleSection, "",
			markup.El(markup.RoleSectionName, "  WEEK 1 "),
			resourceNode("Pre-Lecture Quiz", "/mod/quiz/view.php?id=1"),
		),
		markup.El(markup.RoleSection, "",
			markup.El(markup.RoleSectionName, "Resources"),
			resourceNode("Lecture handbook", "/hb"),
		),
		markup.El(markup.RoleSection, "",
			resourceNode("No title", "/nt"),
		),
		markup.El(markup.RoleSection, "",
			markup.El(markup.RoleSectionName, "Week 2"),
		),
	)

	title, data, err := Course(doc)
	if err != nil {
		t.Fatalf("Course: %v", err)
	}
	if title != "Algorithms" {
		t.Fatalf("title = %q", title)
	}

	if diff := cmp.Diff([]string{domain.GeneralActivitiesSection, "WEEK 1", "Resources"}, data.Sections()); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}

	general, _ := data.Get(domain.GeneralActivitiesSection)
	if diff := cmp.Diff(domain.CategorizedSection{
		domain.CategoryOthers: {domain.Resource("Lecture recordings", "/rec")},
	}, general); diff != "" {
		t.Fatalf("general activities must not be classified (-want +got):\n%s", diff)
	}

	if items := data.Items("WEEK 1", domain.CategoryPreLecture); len(items) != 1 {
		t.Fatalf("week section not classified: %v", items)
	}
	if items := data.Items("Resources", domain.CategoryOthers); len(items) != 1 {
		t.Fatalf("non-week section must not be classified: %v", items)
	}
}

func TestCourseMissingHeading(t *testing.T) {
	t.Parallel()

	_, _, err := Course(markup.El(0, "", markup.El(markup.RoleSection, "")))
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestCourseFromHTML(t *testing.T) {
	t.Parallel()

	f, err := os.Open("testdata/course.html")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	doc, err := markup.FromReader(f)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}

	title, data, err := Course(doc)
	if err != nil {
		t.Fatalf("Course: %v", err)
	}
	if title != "Software Engineering" {
		t.Fatalf("title = %q", title)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"General Activities":{"notices":[{"notice":"Welcome! Read the handbook first."}],"others":[{"title":"Announcements","url":"https://lms.example.edu/mod/forum/view.php?id=11"}]},` +
		`"Week 1":{"lecture":[{"title":"Slides","url":"https://lms.example.edu/mod/resource/view.php?id=2"}],"notices":[{"notice":"Important: Exam moved to Friday"}],"pre_lecture":[{"title":"Pre-Lecture Quiz","url":"https://lms.example.edu/mod/quiz/view.php?id=1"}]},` +
		`"Assessments":{"others":[{"title":"Tutorial submission","url":"https://lms.example.edu/mod/assign/view.php?id=3"}]}}`
	if string(raw) != want {
		t.Fatalf("unexpected snapshot:\n got: %s\nwant: %s", raw, want)
	}
}

func TestIsWeekSection(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		"Week 1":      true,
		"  week 12 ":  true,
		"Weekly quiz": true,
		"Assessments": false,
		"Final week":  false,
	} {
		if got := IsWeekSection(name); got != want {
			t.Fatalf("IsWeekSection(%q) = %v, want %v", name, got, want)
		}
	}
}
