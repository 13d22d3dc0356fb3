package snapshot

import "CourseWatcher/internal/domain"

// Diff returns the items of current that are not present, by structural
// equality, under the same section and category in previous. Results follow
// current's section order, then canonical category order, then item order.
// Moved items are not reported; items with changed fields are.
func Diff(previous, current domain.CourseSnapshot) []domain.Change {
	var changes []domain.Change

	for _, section := range current.Sections() {
		content, _ := current.Get(section)
		for _, category := range domain.Categories {
			items := content[category]
			if len(items) == 0 {
				continue
			}

			known := make(map[domain.Item]struct{})
			for _, item := range previous.Items(section, category) {
				known[item] = struct{}{}
			}

			for _, item := range items {
				if _, ok := known[item]; ok {
					continue
				}
				changes = append(changes, domain.Change{
					Section:  section,
					Category: category,
					Item:     item,
				})
			}
		}
	}

	return changes
}
