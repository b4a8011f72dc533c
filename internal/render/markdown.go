package render

import (
	"bytes"
	"fmt"
	"io/fs"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownRenderer turns local static pages into HTML. Page sources are
// owned by the site, so raw HTML inside them is kept.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &MarkdownRenderer{md: md}
}

func (r *MarkdownRenderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuiltinPage returns the markdown source shipped for name.
func BuiltinPage(name string) ([]byte, bool) {
	data, err := fs.ReadFile(themeFS, "theme/pages/"+name+".md")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ToMarkdown exports a sanitized post body as Markdown.
func ToMarkdown(body string) (string, error) {
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return md, nil
}
