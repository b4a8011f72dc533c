package feed

import (
	"github.com/mmcdole/gofeed"
)

// fromGofeed maps a parsed Atom feed onto the JSON schema so both formats
// share one ingest path. Atom authors carry no avatar.
func fromGofeed(f *gofeed.Feed) *Document {
	out := &Feed{Title: Text{T: f.Title}}

	for _, a := range f.Authors {
		if a == nil {
			continue
		}
		out.Author = append(out.Author, Person{Name: Text{T: a.Name}})
	}

	for _, it := range f.Items {
		if it == nil {
			continue
		}
		e := Entry{
			ID:        Text{T: it.GUID},
			Title:     Text{T: it.Title},
			Published: Text{T: it.Published},
			Updated:   Text{T: it.Updated},
		}
		if it.Content != "" {
			e.Content = &Text{T: it.Content}
		}
		if it.Description != "" {
			e.Summary = &Text{T: it.Description}
		}
		for _, term := range it.Categories {
			e.Category = append(e.Category, Category{Term: term})
		}
		if it.Link != "" {
			e.Link = append(e.Link, Link{Rel: "alternate", Type: "text/html", Href: it.Link})
		}
		if thumb := mediaThumbnail(it); thumb != "" {
			e.Thumbnail = &Thumbnail{URL: thumb}
		}
		out.Entry = append(out.Entry, e)
	}
	return &Document{Feed: out}
}

func mediaThumbnail(it *gofeed.Item) string {
	media, ok := it.Extensions["media"]
	if !ok {
		return ""
	}
	for _, ext := range media["thumbnail"] {
		if u := ext.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}
