package site

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseFragment maps a navigation fragment ("#tag/x/2"), a server path
// ("/tag/x/2") or a bare form ("tag/x/2") to a Route. Unknown input falls
// back to the first index page.
func ParseFragment(s string) Route {
	h := strings.TrimPrefix(s, "#")
	h = strings.TrimPrefix(h, "/")
	h = strings.TrimSuffix(h, "/")

	parts := strings.Split(h, "/")
	head := parts[0]

	switch {
	case h == "" || h == "topics" || h == "archive" || h == "contact":
		return IndexRoute(1)
	case head == "post" && len(parts) > 1:
		return PostRoute(unescape(parts[1]))
	case head == "page" && len(parts) > 1:
		return IndexRoute(parsePage(parts, 1))
	case head == "view" && len(parts) > 1:
		return ViewRoute(unescape(parts[1]))
	case head == "tag" && len(parts) > 1:
		return TagRoute(unescape(parts[1]), parsePage(parts, 2))
	case head == "archive" && len(parts) > 1:
		return ArchiveRoute(parts[1], parsePage(parts, 2))
	default:
		return IndexRoute(1)
	}
}

func unescape(seg string) string {
	if v, err := url.PathUnescape(seg); err == nil {
		return v
	}
	return seg
}

// parsePage reads the leading digits of parts[i]; missing, malformed or
// non-positive values give page 1.
func parsePage(parts []string, i int) int {
	if i >= len(parts) {
		return 1
	}
	s := parts[i]
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
