package intake

import "strings"

// ParseTags splits comma separated free text into trimmed, non-empty tags.
// The result is never nil.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags renders tags back into the comma separated input form
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
