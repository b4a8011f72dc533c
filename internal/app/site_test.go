package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"prizma/internal/domain/config"
	"prizma/internal/domain/content"
	domainerr "prizma/internal/domain/errors"
	"prizma/internal/domain/site"
	"prizma/internal/feed"
	"prizma/internal/index"
)

type fakeFeed struct {
	mu   sync.Mutex
	doc  *feed.Document
	err  error
	page map[string]feed.Entry
	// When gate is set, Posts closes entered and blocks until gate closes.
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeFeed) Posts(ctx context.Context) (*feed.Document, error) {
	if f.gate != nil {
		close(f.entered)
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc, f.err
}

func (f *fakeFeed) Page(ctx context.Context, kind, path string) (feed.Entry, error) {
	e, ok := f.page[path]
	if !ok {
		return feed.Entry{}, domainerr.ErrInvalidFeedFormat
	}
	return e, nil
}

func (f *fakeFeed) set(doc *feed.Document, err error) {
	f.mu.Lock()
	f.doc, f.err = doc, err
	f.mu.Unlock()
}

func testEntry(id, published, title string, tags ...string) feed.Entry {
	e := feed.Entry{
		ID:        feed.Text{T: "tag:blogger.com,1999:blog-1.post-" + id},
		Title:     feed.Text{T: title},
		Published: feed.Text{T: published},
		Content:   &feed.Text{T: "<p>body of " + title + "</p>"},
		Link:      []feed.Link{{Rel: "alternate", Href: "https://blog.test/" + id + ".html"}},
	}
	for _, t := range tags {
		e.Category = append(e.Category, feed.Category{Term: t})
	}
	return e
}

func testDoc(entries ...feed.Entry) *feed.Document {
	return &feed.Document{Feed: &feed.Feed{
		Entry:  entries,
		Author: []feed.Person{{Name: feed.Text{T: "Stranded"}}},
	}}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Build.ThemeDir = t.TempDir()
	cfg.Cache.Path = filepath.Join(t.TempDir(), "snapshot.db")
	return cfg
}

func newTestSite(t *testing.T, f *fakeFeed, store Snapshots) *Site {
	t.Helper()
	s, err := New(Options{Config: testConfig(t), Feed: f, Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestReloadKeepsPreviousOnFailure(t *testing.T) {
	f := &fakeFeed{doc: testDoc(testEntry("1", "2024-01-20T10:00:00Z", "First", "вино"))}
	s := newTestSite(t, f, nil)

	if _, err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	before := s.Collection()
	if before.Len() != 1 || before.LoadID() == "" {
		t.Fatalf("first load: len=%d id=%q", before.Len(), before.LoadID())
	}

	f.set(&feed.Document{}, nil)
	_, err := s.Reload(context.Background())
	if !errors.Is(err, domainerr.ErrInvalidFeedFormat) {
		t.Fatalf("err = %v, want ErrInvalidFeedFormat", err)
	}
	if s.Collection() != before {
		t.Fatal("a failed reload replaced the collection")
	}
}

func TestReloadInProgress(t *testing.T) {
	f := &fakeFeed{doc: testDoc(testEntry("1", "2024-01-20T10:00:00Z", "First")), gate: make(chan struct{}), entered: make(chan struct{})}
	s := newTestSite(t, f, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Reload(context.Background())
		done <- err
	}()

	<-f.entered
	_, err := s.Reload(context.Background())
	close(f.gate)
	if !errors.Is(err, domainerr.ErrLoadInProgress) {
		t.Fatalf("concurrent reload err = %v, want ErrLoadInProgress", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first reload: %v", err)
	}
}

func TestLoadFallsBackToSnapshot(t *testing.T) {
	store, err := index.Open(index.OpenOptions{Path: filepath.Join(t.TempDir(), "snap.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	f := &fakeFeed{doc: testDoc(testEntry("7", "2023-05-01T10:00:00Z", "Saved"))}
	warm := newTestSite(t, f, store)
	if err := warm.Load(context.Background()); err != nil {
		t.Fatalf("warm Load: %v", err)
	}

	down := &fakeFeed{err: domainerr.ErrFeedUnavailable}
	cold := newTestSite(t, down, store)
	if err := cold.Load(context.Background()); err != nil {
		t.Fatalf("cold Load: %v", err)
	}
	if _, ok := cold.Collection().Get("7"); !ok {
		t.Fatal("snapshot post missing after fallback")
	}
}

func TestLoadWithoutFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Fallback = false
	s, err := New(Options{Config: cfg, Feed: &fakeFeed{err: domainerr.ErrFeedUnavailable}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Load(context.Background()); !errors.Is(err, domainerr.ErrFeedUnavailable) {
		t.Fatalf("err = %v, want ErrFeedUnavailable", err)
	}
}

func TestRenderStatuses(t *testing.T) {
	f := &fakeFeed{
		doc: testDoc(
			testEntry("1", "2024-01-20T10:00:00Z", "First", "вино"),
			testEntry("2", "2023-12-01T10:00:00Z", "Second"),
		),
		page: map[string]feed.Entry{
			"/p/blog-page.html": testEntry("9", "2020-01-01T00:00:00Z", "Пишете ми"),
		},
	}
	s := newTestSite(t, f, nil)
	ctx := context.Background()

	out, status, err := s.Render(ctx, site.IndexRoute(1))
	if err != nil || status != http.StatusServiceUnavailable {
		t.Fatalf("before load: status=%d err=%v", status, err)
	}
	if !strings.Contains(string(out), "Възникна грешка") {
		t.Error("load error message missing")
	}

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cases := []struct {
		route  site.Route
		status int
		want   string
	}{
		{site.IndexRoute(1), http.StatusOK, "First"},
		{site.PostRoute("2"), http.StatusOK, "body of Second"},
		{site.PostRoute("404"), http.StatusNotFound, "Статията не е намерена."},
		{site.TagRoute("вино", 1), http.StatusOK, "Тема: вино"},
		{site.TagRoute("нищо", 1), http.StatusOK, "Няма публикации с тема „нищо“."},
		{site.ArchiveRoute("2023-12", 1), http.StatusOK, "Second"},
		{site.ViewRoute("privacy"), http.StatusOK, "Поверителност"},
		{site.ViewRoute("contact"), http.StatusOK, "Пишете ми"},
		{site.ViewRoute("poetry"), http.StatusBadGateway, "страницата е празна"},
		{site.ViewRoute("missing"), http.StatusNotFound, "Страницата не е намерена."},
	}
	for _, c := range cases {
		out, status, err := s.Render(ctx, c.route)
		if err != nil {
			t.Errorf("%v: %v", c.route, err)
			continue
		}
		if status != c.status {
			t.Errorf("%v: status = %d, want %d", c.route, status, c.status)
		}
		if !strings.Contains(string(out), c.want) {
			t.Errorf("%v: output misses %q", c.route, c.want)
		}
	}
}

func TestMarkdown(t *testing.T) {
	f := &fakeFeed{doc: testDoc(testEntry("1", "2024-01-20T10:00:00Z", "First"))}
	s := newTestSite(t, f, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, md, err := s.Markdown("1")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.HasPrefix(md, "# First\n\n") || !strings.Contains(md, "body of First") {
		t.Errorf("markdown = %q", md)
	}
	if _, _, err := s.Markdown("nope"); !errors.Is(err, domainerr.ErrPostNotFound) {
		t.Errorf("err = %v, want ErrPostNotFound", err)
	}
}

func TestFingerprintFollowsLoad(t *testing.T) {
	f := &fakeFeed{doc: testDoc(testEntry("1", "2024-01-20T10:00:00Z", "First"))}
	s := newTestSite(t, f, nil)
	empty := s.Fingerprint()

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	first := s.Fingerprint()
	if first.ETag() == empty.ETag() {
		t.Error("ETag unchanged after load")
	}
	if _, err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Fingerprint().ETag() != first.ETag() {
		t.Error("reloading an unchanged feed changed the ETag")
	}

	f.set(testDoc(testEntry("1", "2024-01-20T10:00:00Z", "First, edited")), nil)
	if _, err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Fingerprint().ETag() == first.ETag() {
		t.Error("ETag unchanged after the feed changed")
	}
}

func TestFingerprintStableAcrossSites(t *testing.T) {
	doc := testDoc(testEntry("1", "2024-01-20T10:00:00Z", "First", "вино"))
	cfg := testConfig(t)

	var tags []string
	for i := 0; i < 2; i++ {
		s, err := New(Options{Config: cfg, Feed: &fakeFeed{doc: doc}})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
		tags = append(tags, s.Fingerprint().ETag())
	}
	if tags[0] != tags[1] {
		t.Errorf("separate loads of one feed: %s vs %s", tags[0], tags[1])
	}
}

func TestLocalPageFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "author.md"), "---\ntitle: Аз\n---\nЗдравейте, **аз** съм.")

	cfg := testConfig(t)
	cfg.Pages.LocalDir = dir
	s, err := New(Options{Config: cfg, Feed: &fakeFeed{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pg, err := s.Page(context.Background(), "author")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if pg.Title != "Аз" || !strings.Contains(pg.HTML, "<strong>аз</strong>") {
		t.Errorf("page = %+v", pg)
	}
}

func TestRoutes(t *testing.T) {
	var posts []content.Post
	for i, d := range []string{"2024-01-20", "2024-01-05", "2023-12-01"} {
		posts = append(posts, content.Post{ID: string(rune('a' + i)), Date: d, Tags: []string{"x"}})
	}
	coll := content.NewCollection(posts, content.Author{}, content.CollectionInfo{})
	rb := RouteBuilder{PageSize: 2, Pages: []config.PageConfig{{Name: "privacy"}}}

	got := rb.Routes(coll)
	want := []site.Route{
		site.IndexRoute(1), site.IndexRoute(2),
		site.PostRoute("a"), site.PostRoute("b"), site.PostRoute("c"),
		site.TagRoute("x", 1), site.TagRoute("x", 2),
		site.ArchiveRoute("2024-01", 1), site.ArchiveRoute("2023-12", 1),
		site.ViewRoute("privacy"),
	}
	if len(got) != len(want) {
		t.Fatalf("routes = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("routes[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTagRoutesFoldCase(t *testing.T) {
	posts := []content.Post{
		{ID: "1", Date: "2024-01-03", Tags: []string{"Travel"}},
		{ID: "2", Date: "2024-01-02", Tags: []string{"travel"}},
		{ID: "3", Date: "2024-01-01", Tags: []string{"travel"}},
	}
	coll := content.NewCollection(posts, content.Author{}, content.CollectionInfo{})
	rb := RouteBuilder{PageSize: 2}

	got := rb.BuildTagRoutes(coll)
	want := []site.Route{site.TagRoute("travel", 1), site.TagRoute("travel", 2)}
	if len(got) != len(want) {
		t.Fatalf("tag routes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag routes[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOutPath(t *testing.T) {
	cases := map[site.Route]string{
		site.IndexRoute(1):              "index.html",
		site.IndexRoute(3):              "page/3/index.html",
		site.PostRoute("12"):            "post/12/index.html",
		site.PostRoute(".."):            "post/%2E./index.html",
		site.PostRoute("../x"):          "post/..%2Fx/index.html",
		site.TagRoute("Zumba Fit", 2):   "tag/Zumba Fit/2/index.html",
		site.TagRoute("a/b", 1):         "tag/a%2Fb/index.html",
		site.ArchiveRoute("2024-01", 1): "archive/2024-01/index.html",
		site.ViewRoute("author"):        "view/author/index.html",
		site.ViewRoute("поезия"):        "view/поезия/index.html",
	}
	for r, want := range cases {
		if got := OutPath(r); got != want {
			t.Errorf("OutPath(%v) = %q, want %q", r, got, want)
		}
	}
}

func TestMarkdownPath(t *testing.T) {
	cases := map[string]string{
		"12":      "post/12.md",
		"../../x": "post/..%2F..%2Fx.md",
		`..\x`:    "post/..%5Cx.md",
		"":        "post/%2E.md",
	}
	for id, want := range cases {
		if got := MarkdownPath(id); got != want {
			t.Errorf("MarkdownPath(%q) = %q, want %q", id, got, want)
		}
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}
