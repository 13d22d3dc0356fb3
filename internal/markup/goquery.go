package markup

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Selectors maps roles to CSS selectors. MoodleSelectors covers Moodle 4.x course pages.
type Selectors map[Role]string

// MoodleSelectors are the selectors of the Moodle "course/view.php" page.
var MoodleSelectors = Selectors{
	RoleHeading:           "h1",
	RoleGeneralActivity:   "ul.general-section-activities > li.activity",
	RoleSection:           "li.section.main",
	RoleSectionName:       ".sectionname",
	RoleActivity:          "li.activity",
	RoleInstanceName:      ".instancename",
	RoleLink:              "a.aalink",
	RoleDescription:       "div.description p",
	RoleNoticeBlock:       ".description-inner",
	RoleNoticeHeading:     "h6 span",
	RoleAccessibilityOnly: "span.accesshide",
}

type selection struct {
	sel       *goquery.Selection
	selectors Selectors
}

var _ Node = selection{}

// FromReader parses HTML and returns its root node queried with MoodleSelectors.
func FromReader(r io.Reader) (Node, error) {
	return FromReaderWithSelectors(r, MoodleSelectors)
}

// FromReaderWithSelectors parses HTML and queries it with custom selectors.
func FromReaderWithSelectors(r io.Reader, selectors Selectors) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return FromSelection(doc.Selection, selectors), nil
}

// FromSelection wraps an existing goquery selection.
func FromSelection(sel *goquery.Selection, selectors Selectors) Node {
	return selection{sel: sel, selectors: selectors}
}

func (s selection) Find(role Role) (Node, bool) {
	query, ok := s.selectors[role]
	if !ok {
		return nil, false
	}
	found := s.sel.Find(query).First()
	if found.Length() == 0 {
		return nil, false
	}
	return selection{sel: found, selectors: s.selectors}, true
}

func (s selection) FindAll(role Role) []Node {
	query, ok := s.selectors[role]
	if !ok {
		return nil
	}
	found := s.sel.Find(query)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, item *goquery.Selection) {
		nodes = append(nodes, selection{sel: item, selectors: s.selectors})
	})
	return nodes
}

func (s selection) Text(exclude ...Role) string {
	target := s.sel
	if len(exclude) > 0 {
		target = s.sel.Clone()
		for _, role := range exclude {
			if query, ok := s.selectors[role]; ok {
				target.Find(query).Remove()
			}
		}
	}
	return NormalizeText(target.Text())
}

func (s selection) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}
