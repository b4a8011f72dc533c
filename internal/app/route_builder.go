package app

import (
	"path"
	"strconv"
	"strings"

	"prizma/internal/domain/config"
	"prizma/internal/domain/content"
	"prizma/internal/domain/site"
	"prizma/internal/taxonomy"
)

// RouteBuilder enumerates every route a collection can serve, for the
// static export.
type RouteBuilder struct {
	PageSize int
	Pages    []config.PageConfig
}

func (rb *RouteBuilder) BuildIndexRoutes(coll *content.Collection) []site.Route {
	return pagedRoutes(coll.Len(), rb.PageSize, site.IndexRoute)
}

func (rb *RouteBuilder) BuildPostRoutes(coll *content.Collection) []site.Route {
	routes := make([]site.Route, 0, coll.Len())
	for _, p := range coll.Posts() {
		routes = append(routes, site.PostRoute(p.ID))
	}
	return routes
}

// BuildTagRoutes emits one page set per tag. Tag pages match case-insensitively,
// so spellings that differ only in case share the pages of the most used one.
func (rb *RouteBuilder) BuildTagRoutes(coll *content.Collection) []site.Route {
	var routes []site.Route
	for _, t := range taxonomy.Folded(coll.Posts()) {
		routes = append(routes, pagedRoutes(len(coll.ByTag(t.Key)), rb.PageSize, func(n int) site.Route {
			return site.TagRoute(t.Key, n)
		})...)
	}
	return routes
}

func (rb *RouteBuilder) BuildArchiveRoutes(coll *content.Collection) []site.Route {
	var routes []site.Route
	for _, m := range taxonomy.Months(coll.Posts()) {
		routes = append(routes, pagedRoutes(m.Count, rb.PageSize, func(n int) site.Route {
			return site.ArchiveRoute(m.Key, n)
		})...)
	}
	return routes
}

func (rb *RouteBuilder) BuildViewRoutes() []site.Route {
	routes := make([]site.Route, 0, len(rb.Pages))
	for _, p := range rb.Pages {
		routes = append(routes, site.ViewRoute(p.Name))
	}
	return routes
}

// Routes is every route in export order.
func (rb *RouteBuilder) Routes(coll *content.Collection) []site.Route {
	var all []site.Route
	all = append(all, rb.BuildIndexRoutes(coll)...)
	all = append(all, rb.BuildPostRoutes(coll)...)
	all = append(all, rb.BuildTagRoutes(coll)...)
	all = append(all, rb.BuildArchiveRoutes(coll)...)
	all = append(all, rb.BuildViewRoutes()...)
	return all
}

// pagedRoutes always yields page 1, so an empty list still gets its page.
func pagedRoutes(total, size int, mk func(n int) site.Route) []site.Route {
	if size <= 0 {
		size = content.DefaultPageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	routes := make([]site.Route, 0, pages)
	for n := 1; n <= pages; n++ {
		routes = append(routes, mk(n))
	}
	return routes
}

// OutPath is the file a route is exported to, relative to the output root.
// Tag keys, post ids and view names are written unescaped so the file server maps the
// escaped URL back onto them.
func OutPath(r site.Route) string {
	var p string
	switch r.Kind {
	case site.RouteTag:
		p = withPageSeg("tag/"+safeSegment(r.Key), r.Page)
	case site.RoutePost:
		p = "post/" + safeSegment(r.Slug)
	case site.RouteView:
		p = "view/" + safeSegment(r.Slug)
	default:
		p = strings.TrimPrefix(r.Path(), "/")
	}
	return path.Join(p, "index.html")
}

// MarkdownPath is the export file of a post's Markdown form, next to its
// page directory.
func MarkdownPath(id string) string {
	return "post/" + safeSegment(id) + ".md"
}

func withPageSeg(base string, page int) string {
	if page > 1 {
		return base + "/" + strconv.Itoa(page)
	}
	return base
}

// safeSegment keeps a key usable as a single file name: separators are
// escaped and a dot-only name cannot climb out of its directory.
func safeSegment(s string) string {
	s = strings.ReplaceAll(s, "/", "%2F")
	s = strings.ReplaceAll(s, `\`, "%5C")
	if s == "" || s == "." || s == ".." {
		return "%2E" + strings.TrimPrefix(s, ".")
	}
	return s
}
