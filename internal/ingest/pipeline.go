package ingest

import (
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"prizma/internal/domain/config"
	"prizma/internal/domain/content"
	"prizma/internal/embed"
	"prizma/internal/feed"
	"prizma/internal/sanitize"
)

// Warning reports an entry or file that was skipped or partially mapped.
// Source is the feed entry id or the file path.
type Warning struct {
	Source string
	Msg    string
}

func (w Warning) String() string {
	if w.Source == "" {
		return w.Msg
	}
	return w.Source + ": " + w.Msg
}

type Result struct {
	Post  content.Post
	Warns []Warning
	Skip  bool
}

type Options struct {
	ExcerptLimit int
	MaxEntries   int
	Workers      int
	LoadID       string
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.ExcerptLimit <= 1 {
		o.ExcerptLimit = 150
	}
	if o.MaxEntries <= 0 || o.MaxEntries > config.MaxFeedResults {
		o.MaxEntries = config.MaxFeedResults
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Posts maps a validated feed document into a collection. Entries are
// normalized concurrently; the output keeps feed order before the collection
// sorts it by date. Entries without an id or a usable date, and repeated ids,
// are dropped with a warning.
func Posts(doc *feed.Document, opt Options) (*content.Collection, []Warning, error) {
	if err := doc.Validate(); err != nil {
		return nil, nil, err
	}
	opt = opt.withDefaults()

	entries := doc.Feed.Entry
	if len(entries) > opt.MaxEntries {
		entries = entries[:opt.MaxEntries]
	}

	results := make([]Result, len(entries))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < opt.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = mapEntry(entries[idx], opt.ExcerptLimit)
			}
		}()
	}
	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var warns []Warning
	posts := make([]content.Post, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		warns = append(warns, r.Warns...)
		if r.Skip {
			continue
		}
		if _, dup := seen[r.Post.ID]; dup {
			warns = append(warns, Warning{Source: r.Post.ID, Msg: "duplicate post id, skipped"})
			continue
		}
		seen[r.Post.ID] = struct{}{}
		posts = append(posts, r.Post)
	}

	coll := content.NewCollection(posts, authorOf(doc.Feed), content.CollectionInfo{
		LoadedAt: opt.Now(),
		LoadID:   opt.LoadID,
	})
	return coll, warns, nil
}

func mapEntry(e feed.Entry, excerptLimit int) Result {
	id := e.PostID()
	if id == "" {
		return Result{
			Warns: []Warning{{Source: e.ID.T, Msg: "entry id has no numeric post identifier, skipped"}},
			Skip:  true,
		}
	}

	date := e.Published.T
	if len(date) >= len(time.DateOnly) {
		date = date[:len(time.DateOnly)]
	}
	if !content.ValidDate(date) {
		return Result{
			Warns: []Warning{{Source: id, Msg: "published date " + strconv.Quote(e.Published.T) + " is not a valid day, skipped"}},
			Skip:  true,
		}
	}

	raw := e.Body()
	var warns []Warning
	if strings.TrimSpace(e.Title.T) == "" {
		warns = append(warns, Warning{Source: id, Msg: "title is empty"})
	}

	tags := make([]string, 0, len(e.Category))
	for _, c := range e.Category {
		tags = append(tags, c.Term)
	}

	return Result{
		Post: content.Post{
			ID:      id,
			Title:   e.Title.T,
			Date:    date,
			Tags:    content.NormalizeTags(tags),
			HTML:    Body(raw),
			Cover:   coverOf(e, raw),
			Excerpt: content.ToExcerpt(raw, excerptLimit),
			URL:     e.Alternate(),
		},
		Warns: warns,
	}
}

// Body runs raw entry content through the embed rewrite and the sanitizer.
func Body(raw string) string {
	return sanitize.HTML(embed.Normalize(raw))
}

var firstImg = regexp.MustCompile(`<img[^>]+src="([^">]+)"`)

func coverOf(e feed.Entry, raw string) string {
	if e.Thumbnail != nil && e.Thumbnail.URL != "" {
		return e.Thumbnail.URL
	}
	if m := firstImg.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

func authorOf(f *feed.Feed) content.Author {
	if f == nil || len(f.Author) == 0 {
		return content.Author{}
	}
	a := content.Author{Name: f.Author[0].Name.T}
	if f.Author[0].Image != nil {
		a.Avatar = f.Author[0].Image.Src
	}
	return a
}

// Page normalizes a static page entry fetched from the feed.
func Page(name string, e feed.Entry) content.Page {
	return content.Page{
		Name:  name,
		Title: e.Title.T,
		HTML:  Body(e.Body()),
	}
}
