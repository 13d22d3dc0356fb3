// Package extract turns a course page into a CourseSnapshot: activities are
// read per section, classified when the section is a teaching week, and
// bucketed by category.
package extract

import (
	"strings"

	"CourseWatcher/internal/classify"
	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/markup"
)

// Activities parses activity nodes in document order. With classification
// disabled every resource lands in CategoryOthers. Nodes that are neither a
// titled link nor a notice are dropped.
func Activities(nodes []markup.Node, classifyItems bool) domain.CategorizedSection {
	section := domain.CategorizedSection{}

	for _, node := range nodes {
		if item, ok := resource(node); ok {
			category := domain.CategoryOthers
			if classifyItems {
				category = classify.Classify(item.Title, description(node))
			}
			section[category] = append(section[category], item)
			continue
		}

		if item, ok := notice(node); ok {
			section[domain.CategoryNotices] = append(section[domain.CategoryNotices], item)
		}
	}

	for category, items := range section {
		if len(items) == 0 {
			delete(section, category)
		}
	}
	return section
}

func resource(node markup.Node) (domain.Item, bool) {
	name, ok := node.Find(markup.RoleInstanceName)
	if !ok {
		return domain.Item{}, false
	}
	link, ok := node.Find(markup.RoleLink)
	if !ok {
		return domain.Item{}, false
	}
	href, _ := link.Attr("href")
	return domain.Resource(name.Text(markup.RoleAccessibilityOnly), href), true
}

func description(node markup.Node) string {
	if desc, ok := node.Find(markup.RoleDescription); ok {
		return desc.Text()
	}
	return ""
}

func notice(node markup.Node) (domain.Item, bool) {
	block, ok := node.Find(markup.RoleNoticeBlock)
	if !ok {
		return domain.Item{}, false
	}

	var parts []string
	for _, heading := range block.FindAll(markup.RoleNoticeHeading) {
		if text := heading.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return domain.Item{}, false
	}
	return domain.NoticeItem(strings.Join(parts, " ")), true
}
