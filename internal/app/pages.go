package app

import (
	"fmt"
	"os"

	"prizma/internal/domain/config"
	"prizma/internal/domain/content"
	"prizma/internal/ingest"
	"prizma/internal/logger"
	"prizma/internal/render"
)

// loadLocalPages renders every local page once at startup. A page's source
// is its File when set, then "{name}.md" under the local dir, then the page
// shipped with the theme.
func loadLocalPages(cfg config.Config, md *render.MarkdownRenderer) (map[string]content.Page, error) {
	disk, warns, err := ingest.LoadPages(cfg.Pages.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("load pages from %s: %w", cfg.Pages.LocalDir, err)
	}
	for _, w := range warns {
		logger.Warnf("[pages] %s", w)
	}
	byName := make(map[string]ingest.LocalPage, len(disk))
	for _, p := range disk {
		byName[p.Name] = p
	}

	out := make(map[string]content.Page)
	for _, pc := range cfg.Pages.Items {
		if pc.Source != config.PageLocal {
			continue
		}

		var title string
		var body []byte
		switch lp, ok := byName[pc.Name]; {
		case pc.File != "":
			raw, err := os.ReadFile(pc.File)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", pc.Name, err)
			}
			fm, rest, err := ingest.SplitPage(raw)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", pc.Name, err)
			}
			title, body = fm.Title, rest
		case ok:
			title, body = lp.Title, lp.Body
		default:
			raw, ok := render.BuiltinPage(pc.Name)
			if !ok {
				logger.Warnf("[pages] %s has no source, skipped", pc.Name)
				continue
			}
			fm, rest, err := ingest.SplitPage(raw)
			if err != nil {
				return nil, fmt.Errorf("builtin page %s: %w", pc.Name, err)
			}
			title, body = fm.Title, rest
		}

		html, err := md.Render(body)
		if err != nil {
			return nil, fmt.Errorf("render page %s: %w", pc.Name, err)
		}
		if title == "" {
			title = pc.Title
		}
		out[pc.Name] = content.Page{Name: pc.Name, Title: title, HTML: string(html)}
	}
	return out, nil
}
