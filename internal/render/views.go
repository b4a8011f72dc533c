package render

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"prizma/internal/domain/config"
	"prizma/internal/domain/content"
	"prizma/internal/domain/site"
	"prizma/internal/taxonomy"
)

// Views turns collection slices into page models. It holds no collection
// of its own; every call takes the one to read from.
type Views struct {
	site   config.SiteConfig
	pages  []config.PageConfig
	locale Locale
	assets string // asset version appended to css/js links
	now    func() time.Time
}

func NewViews(cfg config.Config, assetVersion string) *Views {
	return &Views{
		site:   cfg.Site,
		pages:  cfg.Pages.Items,
		locale: LocaleFor(cfg.Site.Language),
		assets: assetVersion,
		now:    time.Now,
	}
}

func (v *Views) Locale() Locale { return v.locale }

// Link is the site-relative URL of r, base path included.
func (v *Views) Link(r site.Route) string {
	return v.site.BasePath + r.Path()
}

// Absolute is the public URL of r.
func (v *Views) Absolute(r site.Route) string {
	return JoinURL(v.site.SiteURL, v.Link(r))
}

func (v *Views) asset(p string) string {
	u := v.site.BasePath + p
	if v.assets != "" {
		u += "?v=" + v.assets
	}
	return u
}

// Layout builds the shared frame. Sidebar data comes from the whole
// collection, not from the slice a page shows.
func (v *Views) Layout(coll *content.Collection, title string, canonical site.Route) Layout {
	l := Layout{
		Site:      v.site,
		L:         v.locale,
		Title:     title,
		Canonical: v.Absolute(canonical),
		Home:      v.Link(site.IndexRoute(1)),
		CSS:       v.asset("/css/app.css"),
		JS:        v.asset("/js/app.js"),
		Generated: v.now(),
	}
	if title == "" {
		l.Title = v.site.Title
	} else if title != v.site.Title {
		l.Title = title + " · " + v.site.Title
	}

	for _, p := range v.pages {
		label := p.Title
		if label == "" {
			label = p.Name
		}
		l.Nav = append(l.Nav, NavItem{Title: label, Link: v.Link(site.ViewRoute(p.Name))})
	}

	a := coll.Author()
	l.Author = AuthorCard{Name: a.Name, Avatar: Resize(a.Avatar, SizeAvatar)}

	for _, p := range coll.Latest(v.site.SidebarPosts) {
		thumb := Resize(p.Cover, SizeThumb)
		if thumb == "" {
			thumb = PlaceholderThumb
		}
		l.Latest = append(l.Latest, MiniPost{
			Title: p.Title,
			Link:  v.Link(site.PostRoute(p.ID)),
			Thumb: thumb,
			Date:  v.locale.FormatDate(p.Date),
		})
	}

	tax := taxonomy.Compute(coll.Posts())
	for i, t := range tax.Tags {
		l.TagCloud = append(l.TagCloud, TagItem{
			Name:   t.Key,
			Link:   v.Link(site.TagRoute(t.Key, 1)),
			Count:  t.Count,
			Hidden: i >= v.site.SidebarTags,
		})
	}
	l.TagTotal = len(tax.Tags)
	l.MoreTags = l.TagTotal > v.site.SidebarTags

	for i, m := range tax.Months {
		l.Months = append(l.Months, MonthItem{
			Label:  v.locale.FormatMonth(m.Key),
			Link:   v.Link(site.ArchiveRoute(m.Key, 1)),
			Count:  m.Count,
			Hidden: i >= v.site.SidebarArchive,
		})
	}
	l.MonthTotal = len(tax.Months)
	l.MoreMonths = l.MonthTotal > v.site.SidebarArchive
	return l
}

// tagLinks keeps each tag's own spelling as text but links to the page of
// its folded spelling, which is the one exported.
func (v *Views) tagLinks(coll *content.Collection, tags []string) []TagLink {
	sp := taxonomy.Spellings(coll.Posts())
	out := make([]TagLink, 0, len(tags))
	for _, t := range tags {
		key := t
		if k, ok := sp[strings.ToLower(t)]; ok {
			key = k
		}
		out = append(out, TagLink{Name: t, Link: v.Link(site.TagRoute(key, 1))})
	}
	return out
}

// List pages posts for route r. r carries the requested page; page links
// keep r's kind and key.
func (v *Views) List(coll *content.Collection, r site.Route, posts []content.Post, heading string) ListPage {
	slice := content.Paginate(posts, r.Page, v.site.PageSize)

	title := heading
	if slice.Page > 1 {
		title = strings.TrimSpace(title + " " + pageSuffix(slice.Page))
	}
	canonical := r
	canonical.Page = slice.Page

	page := ListPage{
		Layout:  v.Layout(coll, title, canonical),
		Heading: heading,
		Page:    slice.Page,
		Pages:   slice.Pages,
		Total:   slice.Total,
	}
	for _, p := range slice.Items {
		page.Cards = append(page.Cards, Card{
			ID:      p.ID,
			Title:   p.Title,
			Link:    v.Link(site.PostRoute(p.ID)),
			Cover:   Resize(p.Cover, SizeCard),
			Date:    v.locale.FormatDate(p.Date),
			Excerpt: p.Excerpt,
			Tags:    v.tagLinks(coll, p.Tags),
		})
	}
	page.Pager = NewPager(slice.Page, slice.Pages, func(n int) string {
		next := r
		next.Page = n
		return v.Link(next)
	})
	return page
}

func pageSuffix(n int) string {
	return "(" + strconv.Itoa(n) + ")"
}

// Post builds the single post page. The share URL prefers the post's
// canonical external URL.
func (v *Views) Post(coll *content.Collection, p content.Post) PostPage {
	r := site.PostRoute(p.ID)
	shareURL := p.URL
	if shareURL == "" {
		shareURL = v.Absolute(r)
	}
	return PostPage{
		Layout:   v.Layout(coll, p.Title, r),
		ID:       p.ID,
		Heading:  p.Title,
		Hero:     Resize(p.Cover, SizeHero),
		Date:     v.locale.FormatDate(p.Date),
		Tags:     v.tagLinks(coll, p.Tags),
		HTML:     template.HTML(p.HTML), // sanitizer output
		Share:    ShareLinks(p.Title, shareURL),
		Markdown: v.site.BasePath + r.Path() + ".md",
	}
}

// Static wraps a static page whose HTML is already sanitized or rendered
// from trusted markdown.
func (v *Views) Static(coll *content.Collection, pg content.Page) StaticPage {
	return StaticPage{
		Layout:  v.Layout(coll, pg.Title, site.ViewRoute(pg.Name)),
		Name:    pg.Name,
		Heading: pg.Title,
		HTML:    template.HTML(pg.HTML),
	}
}

func (v *Views) Message(coll *content.Collection, r site.Route, msg string, status int) MessagePage {
	return MessagePage{
		Layout:  v.Layout(coll, "", r),
		Message: msg,
		Status:  status,
	}
}
