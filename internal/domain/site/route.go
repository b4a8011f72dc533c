package site

import (
	"fmt"
	"net/url"
	"strings"
)

type RouteKind string

const (
	RouteIndex   RouteKind = "index"
	RoutePost    RouteKind = "post"
	RouteTag     RouteKind = "tag"
	RouteArchive RouteKind = "archive"
	RouteView    RouteKind = "view"
)

// Route is one navigable view. Slug holds a post id or a static page name,
// Key a tag (display case) or a YYYY-MM bucket.
type Route struct {
	Kind RouteKind
	Slug string
	Key  string
	Page int
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", r.Page))
	}
	return strings.Join(parts, " ")
}

// Path is the canonical server path of the route. Page 1 of a list has no
// page segment.
func (r Route) Path() string {
	switch r.Kind {
	case RoutePost:
		return "/post/" + url.PathEscape(r.Slug)
	case RouteView:
		return "/view/" + url.PathEscape(r.Slug)
	case RouteTag:
		return withPage("/tag/"+url.PathEscape(r.Key), r.Page)
	case RouteArchive:
		return withPage("/archive/"+r.Key, r.Page)
	default:
		if r.Page > 1 {
			return fmt.Sprintf("/page/%d", r.Page)
		}
		return "/"
	}
}

// Fragment is the hash form of Path, e.g. "#post/123".
func (r Route) Fragment() string {
	p := strings.TrimPrefix(r.Path(), "/")
	return "#" + p
}

// PageBase is the prefix pagination links append "/{n}" to.
func (r Route) PageBase() string {
	switch r.Kind {
	case RouteTag:
		return "/tag/" + url.PathEscape(r.Key)
	case RouteArchive:
		return "/archive/" + r.Key
	default:
		return "/page"
	}
}

func withPage(base string, page int) string {
	if page > 1 {
		return fmt.Sprintf("%s/%d", base, page)
	}
	return base
}

func PostRoute(id string) Route {
	return Route{Kind: RoutePost, Slug: id}
}

func TagRoute(tag string, page int) Route {
	return Route{Kind: RouteTag, Key: tag, Page: page}
}

func ArchiveRoute(ym string, page int) Route {
	return Route{Kind: RouteArchive, Key: ym, Page: page}
}

func ViewRoute(name string) Route {
	return Route{Kind: RouteView, Slug: name}
}

func IndexRoute(page int) Route {
	return Route{Kind: RouteIndex, Page: page}
}
