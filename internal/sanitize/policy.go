// Package sanitize holds the fixed HTML allow-list applied to every body
// that reaches a view.
package sanitize

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var frameStyleValue = regexp.MustCompile(`^[0-9a-z.%/ ]+$`)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Policy returns the shared policy: user content rules plus embed frames
// and the presentation attributes they need. Scripts never pass.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("iframe")
		p.AllowAttrs(
			"allow", "allowfullscreen", "frameborder", "scrolling", "src",
			"width", "height", "title", "data-thumbnail-src",
			"allowtransparency", "referrerpolicy",
		).OnElements("iframe")
		p.AllowStyles("width", "height", "aspect-ratio", "max-width").
			Matching(frameStyleValue).
			OnElements("iframe")
		p.AllowAttrs("class").Globally()
		policy = p
	})
	return policy
}

// HTML sanitizes s with Policy.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	return Policy().Sanitize(s)
}
