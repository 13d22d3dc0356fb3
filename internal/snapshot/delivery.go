package snapshot

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"CourseWatcher/internal/domain"
)

// DeliveryKey identifies one announced item of one course. Two notifications
// for the same course, section, category and item share a key.
func DeliveryKey(n domain.Notification) string {
	parts := []string{
		n.CourseID,
		n.Section,
		string(n.Category),
		n.Item.Title,
		n.Item.URL,
		n.Item.Notice,
	}
	sum := md5.Sum([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
