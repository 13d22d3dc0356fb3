package domain

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Category is the bucket a course item is sorted into.
type Category string

const (
	CategoryPreLecture  Category = "pre_lecture"
	CategoryLecture     Category = "lecture"
	CategoryPostLecture Category = "post_lecture"
	CategoryTutorial    Category = "tutorial"
	CategoryOthers      Category = "others"
	CategoryNotices     Category = "notices"
)

// Categories lists every category in canonical traversal order.
var Categories = []Category{
	CategoryPreLecture,
	CategoryLecture,
	CategoryPostLecture,
	CategoryTutorial,
	CategoryOthers,
	CategoryNotices,
}

// GeneralActivitiesSection is the section name used for the course-level activity list.
const GeneralActivitiesSection = "General Activities"

// Item is either a linked resource (Title, URL) or a notice (Notice).
// Items are compared with ==.
type Item struct {
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Notice string `json:"notice,omitempty"`
}

// Resource builds a linked item.
func Resource(title, url string) Item {
	return Item{Title: title, URL: url}
}

// NoticeItem builds a notice item.
func NoticeItem(text string) Item {
	return Item{Notice: text}
}

// IsNotice reports whether the item carries notice text instead of a link.
func (i Item) IsNotice() bool {
	return i.Notice != ""
}

// MarshalJSON renders resources as {"title","url"} and notices as {"notice"}.
func (i Item) MarshalJSON() ([]byte, error) {
	if i.IsNotice() {
		return json.Marshal(struct {
			Notice string `json:"notice"`
		}{i.Notice})
	}
	return json.Marshal(struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}{i.Title, i.URL})
}

// CategorizedSection maps categories to the items found in one section.
// Categories without items are never stored.
type CategorizedSection map[Category][]Item

// Len returns the total number of items across all categories.
func (s CategorizedSection) Len() int {
	n := 0
	for _, items := range s {
		n += len(items)
	}
	return n
}

// CourseSnapshot is one scrape of a course: section names in document order,
// each mapped to its categorized items.
type CourseSnapshot struct {
	sections *orderedmap.OrderedMap[string, CategorizedSection]
}

// NewCourseSnapshot returns an empty snapshot.
func NewCourseSnapshot() CourseSnapshot {
	return CourseSnapshot{sections: orderedmap.New[string, CategorizedSection]()}
}

// Set records a section, keeping its first insertion position on overwrite.
func (s *CourseSnapshot) Set(section string, content CategorizedSection) {
	if s.sections == nil {
		s.sections = orderedmap.New[string, CategorizedSection]()
	}
	s.sections.Set(section, content)
}

// Get returns the section content and whether the section exists.
func (s CourseSnapshot) Get(section string) (CategorizedSection, bool) {
	if s.sections == nil {
		return nil, false
	}
	return s.sections.Get(section)
}

// Items returns the items stored under section/category, or nil.
func (s CourseSnapshot) Items(section string, category Category) []Item {
	content, ok := s.Get(section)
	if !ok {
		return nil
	}
	return content[category]
}

// Sections returns the section names in insertion order.
func (s CourseSnapshot) Sections() []string {
	if s.sections == nil {
		return nil
	}
	names := make([]string, 0, s.sections.Len())
	for pair := s.sections.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of sections.
func (s CourseSnapshot) Len() int {
	if s.sections == nil {
		return 0
	}
	return s.sections.Len()
}

// MarshalJSON writes the sections as a JSON object in insertion order.
func (s CourseSnapshot) MarshalJSON() ([]byte, error) {
	if s.sections == nil {
		return []byte("{}"), nil
	}
	return s.sections.MarshalJSON()
}

// UnmarshalJSON reads a JSON object, keeping the key order of the input.
func (s *CourseSnapshot) UnmarshalJSON(data []byte) error {
	s.sections = orderedmap.New[string, CategorizedSection]()
	if string(data) == "null" {
		return nil
	}
	return s.sections.UnmarshalJSON(data)
}

// StoredState is the last known scrape of one course.
type StoredState struct {
	Title string         `json:"title"`
	Hash  string         `json:"hash"`
	Data  CourseSnapshot `json:"data"`
}

// TrackedCourses holds the stored state of every tracked course, keyed by course id.
type TrackedCourses map[string]StoredState

// Change is one item present in the current snapshot but absent from the previous one.
type Change struct {
	Section  string
	Category Category
	Item     Item
}

// Notification is handed to sinks for every new item.
type Notification struct {
	CourseID    string
	CourseTitle string
	CourseURL   string
	Section     string
	Category    Category
	Item        Item
}
