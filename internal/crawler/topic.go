package crawler

import (
	"strings"
)

// NormalizeTopic turns free text into the slug used in topic URLs:
// trimmed, lowercased, whitespace runs joined by single hyphens.
func NormalizeTopic(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "-")
}

// TopicURL builds the first results page URL for slug.
func TopicURL(baseURL, slug string) string {
	return strings.TrimSuffix(baseURL, "/") + "/topics/" + slug + "-quotes"
}
