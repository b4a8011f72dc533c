package content

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

const ellipsis = "…"

// ToExcerpt strips markup and truncates to max runes. A truncated excerpt
// keeps max-1 runes of content followed by an ellipsis.
func ToExcerpt(src string, max int) string {
	if src == "" {
		return ""
	}
	text := tagRe.ReplaceAllString(src, "")
	text = html.UnescapeString(text)
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))

	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max-1])) + ellipsis
}
