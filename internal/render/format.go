package render

import (
	"net/url"
	"regexp"
	"strings"
)

// Image size segments understood by the platform's image host.
const (
	SizeCard   = "/s400/"
	SizeHero   = "/s1600/"
	SizeThumb  = "/s72-c/"
	SizeAvatar = "/s128-c/"
)

// PlaceholderThumb is shown in the sidebar for posts without a cover.
const PlaceholderThumb = "https://picsum.photos/72?grayscale"

var sizeSegment = regexp.MustCompile(`/s\d+(-c)?/`)

// Resize swaps the first size segment of an image URL. URLs without one
// are returned unchanged.
func Resize(src, size string) string {
	if src == "" {
		return ""
	}
	loc := sizeSegment.FindStringIndex(src)
	if loc == nil {
		return src
	}
	return src[:loc[0]] + size + src[loc[1]:]
}

// Share holds the outbound share targets of one post.
type Share struct {
	Title    string
	URL      string
	Facebook string
	Twitter  string
	Mail     string
}

// ShareLinks builds share targets for title and the canonical url.
func ShareLinks(title, canonical string) Share {
	t := componentEscape(title)
	u := componentEscape(canonical)
	return Share{
		Title:    title,
		URL:      canonical,
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + u,
		Twitter:  "https://twitter.com/intent/tweet?url=" + u + "&text=" + t,
		Mail:     "mailto:?subject=" + t + "&body=" + u,
	}
}

// componentEscape escapes like a URI component: spaces become %20, not '+',
// so mail clients show them as spaces.
func componentEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// JoinURL joins a site root and an absolute path without doubling slashes.
func JoinURL(root, path string) string {
	return strings.TrimSuffix(root, "/") + "/" + strings.TrimPrefix(path, "/")
}
