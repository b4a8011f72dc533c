// Package app is the application controller: it owns the loaded collection
// and turns routes into rendered pages.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"prizma/internal/domain/build"
	"prizma/internal/domain/config"
	"prizma/internal/domain/content"
	domainerr "prizma/internal/domain/errors"
	"prizma/internal/domain/site"
	"prizma/internal/feed"
	"prizma/internal/ingest"
	"prizma/internal/logger"
	"prizma/internal/render"
)

// Feed is the remote source of posts and static pages.
type Feed interface {
	Posts(ctx context.Context) (*feed.Document, error)
	Page(ctx context.Context, kind, path string) (feed.Entry, error)
}

// Snapshots persists the last good collection.
type Snapshots interface {
	Save(coll *content.Collection) error
	Load() (*content.Collection, error)
}

type Options struct {
	Config config.Config
	Feed   Feed
	// Store is optional; without it there is no snapshot fallback.
	Store Snapshots
}

// themeState is swapped as a whole when the templates change on disk.
type themeState struct {
	tpl    render.Renderer
	views  *render.Views
	static fs.FS
	hash   string
	dir    string
}

type Site struct {
	cfg        config.Config
	configHash string
	feed       Feed
	store      Snapshots
	md         *render.MarkdownRenderer
	theme      atomic.Pointer[themeState]
	local      map[string]content.Page

	state State
}

func New(opt Options) (*Site, error) {
	if opt.Feed == nil {
		return nil, errors.New("app: missing feed")
	}
	if err := opt.Config.Validate(); err != nil {
		return nil, err
	}
	cfgBytes, err := yaml.Marshal(opt.Config)
	if err != nil {
		return nil, fmt.Errorf("app: hash config: %w", err)
	}

	s := &Site{
		cfg:        opt.Config,
		configHash: build.HashBytes(cfgBytes),
		feed:       opt.Feed,
		store:      opt.Store,
		md:         render.NewMarkdownRenderer(),
	}
	if err := s.ReloadTheme(); err != nil {
		return nil, err
	}
	local, err := loadLocalPages(opt.Config, s.md)
	if err != nil {
		return nil, err
	}
	s.local = local
	return s, nil
}

func (s *Site) Config() config.Config { return s.cfg }

// Collection is the collection currently served, nil before any load.
func (s *Site) Collection() *content.Collection { return s.state.Collection() }

// ReloadTheme re-reads the templates and assets; the old theme stays in use
// when the new one fails to parse.
func (s *Site) ReloadTheme() error {
	tpl, err := render.NewTemplateRenderer(s.cfg.Build.ThemeDir, s.cfg.Build.Theme)
	if err != nil {
		return fmt.Errorf("load theme %s: %w", s.cfg.Build.Theme, err)
	}
	s.theme.Store(&themeState{
		tpl:    tpl,
		views:  render.NewViews(s.cfg, tpl.ThemeHash()),
		static: tpl.Static(),
		hash:   tpl.ThemeHash(),
		dir:    tpl.OverrideDir(),
	})
	return nil
}

// Static is the asset tree of the current theme.
func (s *Site) Static() fs.FS { return s.theme.Load().static }

// ThemeDir is the on-disk template directory to watch, "" when none.
func (s *Site) ThemeDir() string { return s.theme.Load().dir }

// Fingerprint identifies what Render would currently produce.
func (s *Site) Fingerprint() build.Fingerprint {
	f := build.Fingerprint{
		ContentHash:  s.Collection().Hash(),
		ThemeHash:    s.theme.Load().hash,
		ConfigHash:   s.configHash,
		RendererHash: build.RendererVersion,
	}
	f.ComputeRenderHash()
	return f
}

func (s *Site) fetch(ctx context.Context) (*content.Collection, error) {
	doc, err := s.feed.Posts(ctx)
	if err != nil {
		return nil, err
	}
	coll, warns, err := ingest.Posts(doc, ingest.Options{
		ExcerptLimit: s.cfg.Feed.ExcerptLimit,
		MaxEntries:   s.cfg.Feed.MaxResults,
		LoadID:       uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		logger.Warnf("[ingest] %s", w)
	}
	if s.store != nil {
		if err := s.store.Save(coll); err != nil {
			logger.Warnf("[app] snapshot save failed: %v", err)
		}
	}
	return coll, nil
}

// Reload fetches the feed and replaces the collection. Only one reload runs
// at a time; a concurrent call gets ErrLoadInProgress.
func (s *Site) Reload(ctx context.Context) (*content.Collection, error) {
	coll, err := s.state.Reload(ctx, s.fetch)
	if err != nil {
		return nil, err
	}
	logger.Infof("[app] loaded %d posts (load %s)", coll.Len(), coll.LoadID())
	return coll, nil
}

// Load is the startup load. When the feed fails and the cache fallback is
// enabled, the last snapshot is served instead.
func (s *Site) Load(ctx context.Context) error {
	_, err := s.Reload(ctx)
	if err == nil {
		return nil
	}
	if !s.cfg.Cache.Fallback || s.store == nil {
		return err
	}
	coll, serr := s.store.Load()
	if serr != nil {
		logger.Warnf("[app] no usable snapshot: %v", serr)
		return err
	}
	if s.Collection() == nil {
		s.state.Set(coll)
	}
	logger.Warnf("[app] feed load failed, serving snapshot from %s: %v",
		coll.LoadedAt().Format("2006-01-02 15:04:05"), err)
	return nil
}

// Render produces the page for r and the HTTP status to send with it.
// Not-found and fetch failures are rendered as in-page messages; the error
// is non-nil only when rendering itself fails.
func (s *Site) Render(ctx context.Context, r site.Route) ([]byte, int, error) {
	th := s.theme.Load()
	v, tpl := th.views, th.tpl
	l := v.Locale()

	coll := s.Collection()
	if coll == nil {
		return s.message(ctx, th, nil, r, l.LoadError, http.StatusServiceUnavailable)
	}

	switch r.Kind {
	case site.RoutePost:
		p, ok := coll.Get(r.Slug)
		if !ok {
			return s.message(ctx, th, coll, r, l.PostNotFound, http.StatusNotFound)
		}
		out, err := tpl.RenderPost(ctx, v.Post(coll, p))
		return out, http.StatusOK, err

	case site.RouteTag:
		posts := coll.ByTag(r.Key)
		if len(posts) == 0 {
			return s.message(ctx, th, coll, r, l.NoTagPostsFor(r.Key), http.StatusOK)
		}
		out, err := tpl.RenderList(ctx, v.List(coll, r, posts, l.TagHeading+" "+r.Key))
		return out, http.StatusOK, err

	case site.RouteArchive:
		posts := coll.ByMonth(r.Key)
		heading := l.ArchiveHeading + " " + l.FormatMonth(r.Key)
		out, err := tpl.RenderList(ctx, v.List(coll, r, posts, heading))
		return out, http.StatusOK, err

	case site.RouteView:
		pg, err := s.Page(ctx, r.Slug)
		switch {
		case errors.Is(err, domainerr.ErrPageNotFound):
			return s.message(ctx, th, coll, r, l.PageNotFound, http.StatusNotFound)
		case errors.Is(err, domainerr.ErrInvalidFeedFormat):
			logger.Warnf("[app] page %s: %v", r.Slug, err)
			return s.message(ctx, th, coll, r, l.PageError, http.StatusBadGateway)
		case err != nil:
			logger.Warnf("[app] page %s: %v", r.Slug, err)
			return s.message(ctx, th, coll, r, l.LoadError, http.StatusBadGateway)
		}
		out, err := tpl.RenderStatic(ctx, v.Static(coll, pg))
		return out, http.StatusOK, err

	default:
		out, err := tpl.RenderList(ctx, v.List(coll, r, coll.Posts(), ""))
		return out, http.StatusOK, err
	}
}

func (s *Site) message(ctx context.Context, th *themeState, coll *content.Collection, r site.Route, msg string, status int) ([]byte, int, error) {
	out, err := th.tpl.RenderMessage(ctx, th.views.Message(coll, r, msg, status))
	return out, status, err
}

// NotFound renders the generic not-found page.
func (s *Site) NotFound(ctx context.Context) ([]byte, error) {
	th := s.theme.Load()
	out, _, err := s.message(ctx, th, s.Collection(), site.IndexRoute(1), th.views.Locale().PageNotFound, http.StatusNotFound)
	return out, err
}

// Page resolves a configured static page, locally or through the feed.
func (s *Site) Page(ctx context.Context, name string) (content.Page, error) {
	pc, ok := s.cfg.Page(name)
	if !ok {
		return content.Page{}, fmt.Errorf("%w: %s", domainerr.ErrPageNotFound, name)
	}
	if pc.Source == config.PageLocal {
		pg, ok := s.local[name]
		if !ok {
			return content.Page{}, fmt.Errorf("%w: %s has no source", domainerr.ErrPageNotFound, name)
		}
		return pg, nil
	}

	e, err := s.feed.Page(ctx, pc.Feed, pc.Path)
	if err != nil {
		return content.Page{}, err
	}
	pg := ingest.Page(name, e)
	if pg.Title == "" {
		pg.Title = pc.Title
	}
	return pg, nil
}

// Markdown exports the body of post id.
func (s *Site) Markdown(id string) (content.Post, string, error) {
	p, ok := s.Collection().Get(id)
	if !ok {
		return content.Post{}, "", fmt.Errorf("%w: %s", domainerr.ErrPostNotFound, id)
	}
	md, err := render.ToMarkdown(p.HTML)
	if err != nil {
		return p, "", err
	}
	return p, "# " + p.Title + "\n\n" + md + "\n", nil
}
