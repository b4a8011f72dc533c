package content

import (
	"strings"
	"time"
)

type Post struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Date    string   `json:"date"` // YYYY-MM-DD
	Tags    []string `json:"tags"`
	HTML    string   `json:"html"`
	Cover   string   `json:"cover,omitempty"`
	Excerpt string   `json:"excerpt"`
	URL     string   `json:"url,omitempty"`
}

type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Page is a static page shown under /view/{name}.
type Page struct {
	Name  string
	Title string
	HTML  string
}

// Month returns the YYYY-MM bucket of the post date, or "" when the date is
// too short to carry one.
func (p Post) Month() string {
	if len(p.Date) < 7 {
		return ""
	}
	return p.Date[:7]
}

// HasTag matches case-insensitively; display keeps the original case.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func ValidDate(s string) bool {
	if len(s) != len(time.DateOnly) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// NormalizeTags trims terms and drops empty and exactly repeated ones,
// keeping first-seen order. Case is preserved.
func NormalizeTags(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
