// Package taxonomy derives the sidebar counts from a post list. Results are
// computed fresh on each call and owned by the caller.
package taxonomy

import (
	"sort"
	"strings"

	"prizma/internal/domain/content"
)

// Count is one tag or month bucket with its number of posts.
type Count struct {
	Key   string
	Count int
}

type View struct {
	Tags   []Count
	Months []Count
}

// Tags counts tag occurrences, most used first. Equal counts keep the order
// in which the tags were first seen.
func Tags(posts []content.Post) []Count {
	idx := make(map[string]int)
	var out []Count
	for _, p := range posts {
		for _, t := range p.Tags {
			if t == "" {
				continue
			}
			if i, ok := idx[t]; ok {
				out[i].Count++
				continue
			}
			idx[t] = len(out)
			out = append(out, Count{Key: t, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Folded merges tags that differ only in case under their most used
// spelling, one entry per distinct tag page.
func Folded(posts []content.Post) []Count {
	idx := make(map[string]int)
	var out []Count
	for _, c := range Tags(posts) {
		k := strings.ToLower(c.Key)
		if i, ok := idx[k]; ok {
			out[i].Count += c.Count
			continue
		}
		idx[k] = len(out)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Spellings maps each lower-cased tag to its Folded key.
func Spellings(posts []content.Post) map[string]string {
	m := make(map[string]string)
	for _, c := range Folded(posts) {
		m[strings.ToLower(c.Key)] = c.Key
	}
	return m
}

// Months counts posts per YYYY-MM bucket, most recent bucket first.
func Months(posts []content.Post) []Count {
	counts := make(map[string]int)
	for _, p := range posts {
		if ym := p.Month(); ym != "" {
			counts[ym]++
		}
	}
	out := make([]Count, 0, len(counts))
	for ym, c := range counts {
		out = append(out, Count{Key: ym, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key > out[j].Key
	})
	return out
}

func Compute(posts []content.Post) View {
	return View{Tags: Tags(posts), Months: Months(posts)}
}
