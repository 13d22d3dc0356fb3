// Package snapshot detects course changes between polling cycles: a content
// fingerprint short-circuits unchanged courses and a structural diff yields the
// items to announce.
package snapshot

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"CourseWatcher/internal/domain"
)

// canonical converts the snapshot into plain maps so that encoding/json emits
// every object with sorted keys.
func canonical(data domain.CourseSnapshot) map[string]domain.CategorizedSection {
	out := make(map[string]domain.CategorizedSection, data.Len())
	for _, name := range data.Sections() {
		content, _ := data.Get(name)
		if content == nil {
			content = domain.CategorizedSection{}
		}
		out[name] = content
	}
	return out
}

// Fingerprint returns the hex MD5 digest of the snapshot's canonical JSON form.
// Section and category key order do not affect the result; item content and
// item order within a category do.
func Fingerprint(data domain.CourseSnapshot) (string, error) {
	raw, err := json.Marshal(canonical(data))
	if err != nil {
		return "", &domain.SerializationError{Err: err}
	}
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:]), nil
}
