package feed

import (
	"fmt"
	"strings"

	domainerr "prizma/internal/domain/errors"
)

// Document mirrors the platform's JSON export, keeping only the fields the
// ingest pipeline reads.
type Document struct {
	Feed *Feed `json:"feed"`
}

type Feed struct {
	Title  Text     `json:"title"`
	Entry  []Entry  `json:"entry"`
	Author []Person `json:"author"`
}

// Text is the {"$t": "..."} wrapper used for every scalar value.
type Text struct {
	T string `json:"$t"`
}

type Person struct {
	Name  Text   `json:"name"`
	Image *Image `json:"gd$image"`
}

type Image struct {
	Src string `json:"src"`
}

type Category struct {
	Term string `json:"term"`
}

type Link struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

type Thumbnail struct {
	URL string `json:"url"`
}

type Entry struct {
	ID        Text       `json:"id"`
	Title     Text       `json:"title"`
	Published Text       `json:"published"`
	Updated   Text       `json:"updated"`
	Category  []Category `json:"category"`
	Content   *Text      `json:"content"`
	Summary   *Text      `json:"summary"`
	Link      []Link     `json:"link"`
	Thumbnail *Thumbnail `json:"media$thumbnail"`
}

// Body returns the entry HTML, falling back to the summary for short feeds.
func (e Entry) Body() string {
	if e.Content != nil {
		return e.Content.T
	}
	if e.Summary != nil {
		return e.Summary.T
	}
	return ""
}

// Alternate returns the href of the rel="alternate" link.
func (e Entry) Alternate() string {
	for _, l := range e.Link {
		if l.Rel == "alternate" {
			return l.Href
		}
	}
	return ""
}

// PostID extracts the numeric id from a composite identifier such as
// "tag:blogger.com,1999:blog-123.post-456". Anything but digits after the
// marker gives "", since the id ends up in URLs and export file names.
func (e Entry) PostID() string {
	_, after, ok := strings.Cut(e.ID.T, ".post-")
	if !ok {
		return ""
	}
	id := strings.TrimSpace(after)
	if id == "" {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return ""
		}
	}
	return id
}

// Validate checks the shape required for a post listing: a feed with an
// entry array and at least one author.
func (d *Document) Validate() error {
	if d == nil || d.Feed == nil {
		return fmt.Errorf("%w: missing feed", domainerr.ErrInvalidFeedFormat)
	}
	if d.Feed.Entry == nil {
		return fmt.Errorf("%w: missing feed.entry", domainerr.ErrInvalidFeedFormat)
	}
	if len(d.Feed.Author) == 0 {
		return fmt.Errorf("%w: missing feed.author", domainerr.ErrInvalidFeedFormat)
	}
	return nil
}
