package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"prizma/internal/domain/content"
	domainerr "prizma/internal/domain/errors"
	"prizma/internal/feed"
)

func entry(id, published, body string, tags ...string) feed.Entry {
	e := feed.Entry{
		ID:        feed.Text{T: "tag:blogger.com,1999:blog-1.post-" + id},
		Title:     feed.Text{T: "Post " + id},
		Published: feed.Text{T: published},
		Content:   &feed.Text{T: body},
		Link:      []feed.Link{{Rel: "alternate", Href: "https://blog.test/" + id + ".html"}},
	}
	for _, t := range tags {
		e.Category = append(e.Category, feed.Category{Term: t})
	}
	return e
}

func doc(entries ...feed.Entry) *feed.Document {
	if entries == nil {
		entries = []feed.Entry{}
	}
	return &feed.Document{Feed: &feed.Feed{
		Entry: entries,
		Author: []feed.Person{{
			Name:  feed.Text{T: "Stranded"},
			Image: &feed.Image{Src: "https://img.test/s32-c/me.jpg"},
		}},
	}}
}

func TestPostsMapsEntries(t *testing.T) {
	d := doc(
		entry("1", "2023-12-01T10:00:00.000+02:00", `<p>Old <img class="x" src="https://img.test/a.jpg"></p>`, "b"),
		entry("2", "2024-01-20T10:00:00.000+02:00", `<p>New</p><script>x()</script>`, "a", "a", "B"),
	)
	d.Feed.Entry[0].Thumbnail = &feed.Thumbnail{URL: "https://img.test/s72-c/thumb.jpg"}

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	coll, warns, err := Posts(d, Options{LoadID: "load-1", Workers: 2, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if coll.Len() != 2 {
		t.Fatalf("Len = %d", coll.Len())
	}
	posts := coll.Posts()
	if posts[0].ID != "2" || posts[1].ID != "1" {
		t.Fatalf("order = %s, %s", posts[0].ID, posts[1].ID)
	}
	newest := posts[0]
	if newest.Date != "2024-01-20" {
		t.Errorf("Date = %q", newest.Date)
	}
	if strings.Contains(newest.HTML, "script") {
		t.Errorf("script survived: %s", newest.HTML)
	}
	if len(newest.Tags) != 2 || newest.Tags[0] != "a" || newest.Tags[1] != "B" {
		t.Errorf("Tags = %v", newest.Tags)
	}
	if newest.URL != "https://blog.test/2.html" || newest.Excerpt != "Newx()" {
		t.Errorf("URL/Excerpt = %q / %q", newest.URL, newest.Excerpt)
	}
	if posts[1].Cover != "https://img.test/s72-c/thumb.jpg" {
		t.Errorf("thumbnail cover = %q", posts[1].Cover)
	}
	if coll.Author().Name != "Stranded" || coll.Author().Avatar == "" {
		t.Errorf("Author = %+v", coll.Author())
	}
	if coll.LoadID() != "load-1" || !coll.LoadedAt().Equal(now) {
		t.Errorf("info = %s %s", coll.LoadID(), coll.LoadedAt())
	}
}

func TestPostsCoverFromContent(t *testing.T) {
	coll, _, err := Posts(doc(entry("1", "2024-01-01", `<div><img alt="c" src="https://img.test/first.jpg"><img src="https://img.test/second.jpg"></div>`)), Options{})
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if got := coll.Posts()[0].Cover; got != "https://img.test/first.jpg" {
		t.Fatalf("Cover = %q", got)
	}
}

func TestPostsSkipsBadEntries(t *testing.T) {
	noID := entry("1", "2024-01-01", "x")
	noID.ID = feed.Text{T: "tag:blogger.com,1999:blog-1"}

	coll, warns, err := Posts(doc(
		noID,
		entry("../../escaped", "2024-01-01", "x"),
		entry("2", "not-a-date", "x"),
		entry("3", "2024-13-40T00:00:00Z", "x"),
		entry("4", "2024-01-02", "first"),
		entry("4", "2024-01-03", "again"),
	), Options{})
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if coll.Len() != 1 {
		t.Fatalf("Len = %d", coll.Len())
	}
	if p := coll.Posts()[0]; p.ID != "4" || p.Date != "2024-01-02" {
		t.Fatalf("kept %+v", p)
	}
	if len(warns) != 5 {
		t.Fatalf("warnings = %v", warns)
	}
}

func TestPostsInvariants(t *testing.T) {
	var entries []feed.Entry
	dates := []string{"2023-05-01", "2024-01-05", "2023-12-01", "2024-01-20", "2022-07-07"}
	for i, d := range dates {
		entries = append(entries, entry(string(rune('a'+i)), d+"T00:00:00Z", "<p>x</p>"))
	}
	coll, _, err := Posts(doc(entries...), Options{Workers: 3})
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	posts := coll.Posts()
	for i, p := range posts {
		if !content.ValidDate(p.Date) {
			t.Errorf("invalid date %q", p.Date)
		}
		if i > 0 && posts[i-1].Date < p.Date {
			t.Errorf("not sorted at %d: %s < %s", i, posts[i-1].Date, p.Date)
		}
	}
}

func TestPostsCapsEntries(t *testing.T) {
	var entries []feed.Entry
	for i := 0; i < 10; i++ {
		entries = append(entries, entry(string(rune('a'+i)), "2024-01-01", ""))
	}
	coll, _, err := Posts(doc(entries...), Options{MaxEntries: 4})
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if coll.Len() != 4 {
		t.Fatalf("Len = %d, want 4", coll.Len())
	}
}

func TestPostsInvalidDocument(t *testing.T) {
	_, _, err := Posts(&feed.Document{}, Options{})
	if !errors.Is(err, domainerr.ErrInvalidFeedFormat) {
		t.Fatalf("err = %v", err)
	}
	_, _, err = Posts(&feed.Document{Feed: &feed.Feed{Entry: []feed.Entry{}}}, Options{})
	if !errors.Is(err, domainerr.ErrInvalidFeedFormat) {
		t.Fatalf("missing author: err = %v", err)
	}
}

func TestPage(t *testing.T) {
	e := entry("9", "2024-01-01", `<p>Пишете ни</p><iframe src="https://www.youtube.com/watch?v=QQ"></iframe>`)
	e.Title = feed.Text{T: "Контакти"}
	p := Page("contact", e)
	if p.Name != "contact" || p.Title != "Контакти" {
		t.Fatalf("page = %+v", p)
	}
	if !strings.Contains(p.HTML, `src="https://www.youtube.com/embed/QQ"`) {
		t.Fatalf("HTML = %s", p.HTML)
	}
}
