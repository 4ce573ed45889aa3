package search

import (
	"regexp"
	"strings"
)

var (
	markdownImage = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	htmlImage     = regexp.MustCompile(`(?i)<img\b[^>]*>`)
)

// DisplayName strips image markup from a frame label: markdown images are
// replaced by their alt text and <img> tags are removed.
func DisplayName(name string) string {
	if !strings.ContainsAny(name, "!<") {
		return name
	}
	name = markdownImage.ReplaceAllString(name, "$1")
	name = htmlImage.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
