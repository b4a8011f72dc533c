// Package embed rewrites third-party rich content into a minimal subset
// before sanitization. Platform widgets and scripts are removed and every
// recognizable video frame is replaced by one canonical embed.
package embed

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	domainerr "prizma/internal/domain/errors"
	"prizma/internal/logger"
)

const (
	embedBase  = "https://www.youtube.com/embed/"
	embedAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share; compute-pressure"
	embedStyle = "width: 100%; height: auto; aspect-ratio: 16/9; max-width: 100%;"
)

// widgetSel matches platform sharing and widget machinery. Attribute
// substring matching is case-sensitive.
var widgetSel = cascadia.MustCompile(
	`[class*="google"], [id*="google"], [class*="blogger"], [id*="blogger"], ` +
		`[class*="share"], [id*="share"], [class*="widget"], [id*="widget"]`,
)

var (
	contentMarkers   = []string{"google", "blogger.com", "share-widget"}
	attributeMarkers = []string{"google", "blogger", "share-widget"}
)

// Normalize is Rewrite with decode failures logged instead of returned.
func Normalize(raw string) string {
	out, err := Rewrite(raw)
	if err != nil {
		logger.Warnf("[embed] %v", err)
	}
	return out
}

// Rewrite parses raw once, applies the removal and frame rules and
// serializes the result once. A non-nil error reports frames whose
// share-widget URL could not be decoded; those frames are kept as they
// were and the returned markup is still usable.
func Rewrite(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(raw), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return raw, fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script").Remove()
	doc.FindMatcher(widgetSel).Not("iframe").Remove()
	pruneMarked(root)

	var errs []error
	doc.Find("iframe").Each(func(_ int, frame *goquery.Selection) {
		src, _ := frame.Attr("src")
		id, err := VideoID(src)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if id == "" {
			return
		}
		n := frame.Get(0)
		n.Parent.InsertBefore(canonicalFrame(id), n)
		n.Parent.RemoveChild(n)
	})

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return raw, fmt.Errorf("render fragment: %w", err)
		}
	}
	return b.String(), errors.Join(errs...)
}

// pruneMarked walks the children of n in document order and detaches every
// non-frame element whose inner markup or attribute values reference the
// platform. n itself is never removed.
func pruneMarked(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom != atom.Iframe && marked(c) {
			n.RemoveChild(c)
		} else {
			pruneMarked(c)
		}
		c = next
	}
}

func marked(n *html.Node) bool {
	for _, a := range n.Attr {
		if containsAny(a.Val, attributeMarkers) {
			return true
		}
	}
	if n.FirstChild == nil {
		return false
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return containsAny(b.String(), contentMarkers)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// VideoID extracts the video identifier from a frame source. Direct sources
// use the embed, watch or short-link form. Share-widget sources carry the
// real target URL encoded in their u parameter. An empty id with a nil
// error means the source is not a recognized video.
func VideoID(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	if id := directID(src); id != "" {
		return id, nil
	}
	if !strings.Contains(src, "/share-widget") || !strings.Contains(src, "u=") {
		return "", nil
	}

	_, query, _ := strings.Cut(src, "?")
	values, qerr := url.ParseQuery(query)
	target := values.Get("u")
	if target == "" {
		if qerr != nil {
			return "", fmt.Errorf("%w: %s: %w", domainerr.ErrEmbedDecode, src, qerr)
		}
		return "", nil
	}
	decoded, err := url.PathUnescape(target)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domainerr.ErrEmbedDecode, src, err)
	}
	return directID(decoded), nil
}

func directID(u string) string {
	switch {
	case strings.Contains(u, "youtube.com/embed/"):
		_, rest, _ := strings.Cut(u, "youtube.com/embed/")
		return untilAny(rest, "?&")
	case strings.Contains(u, "youtube.com/watch?v="):
		_, rest, _ := strings.Cut(u, "v=")
		return untilAny(rest, "&")
	case strings.Contains(u, "youtu.be/"):
		_, rest, _ := strings.Cut(u, "youtu.be/")
		return untilAny(rest, "?&")
	}
	return ""
}

func untilAny(s, chars string) string {
	if i := strings.IndexAny(s, chars); i >= 0 {
		return s[:i]
	}
	return s
}

// canonicalFrame builds the one frame shape that leaves here.
func canonicalFrame(id string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "iframe",
		DataAtom: atom.Iframe,
		Attr: []html.Attribute{
			{Key: "src", Val: embedBase + id},
			{Key: "allow", Val: embedAllow},
			{Key: "allowfullscreen", Val: ""},
			{Key: "frameborder", Val: "0"},
			{Key: "style", Val: embedStyle},
		},
	}
}

// CanonicalHTML renders the canonical frame for id.
func CanonicalHTML(id string) string {
	var b strings.Builder
	_ = html.Render(&b, canonicalFrame(id))
	return b.String()
}
