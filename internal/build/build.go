// Package build exports every route of the loaded site as static files.
package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"prizma/internal/app"
	dbuild "prizma/internal/domain/build"
	"prizma/internal/domain/site"
	"prizma/internal/logger"
)

// ManifestName is written at the output root after a successful export.
const ManifestName = ".prizma-build.json"

type Builder struct {
	Site   *app.Site
	OutDir string
	// Workers bounds concurrent renders; 0 means GOMAXPROCS.
	Workers int
	// Force rebuilds even when the manifest matches the current state.
	Force bool
}

type Result struct {
	Pages    int
	Posts    int
	Warnings int
	Skipped  bool
}

type manifest struct {
	RenderHash string    `json:"render_hash"`
	Renderer   string    `json:"renderer"`
	LoadID     string    `json:"load_id"`
	BuiltAt    time.Time `json:"built_at"`
	Pages      int       `json:"pages"`
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	coll := b.Site.Collection()
	if coll == nil {
		return nil, errors.New("build: no collection loaded")
	}
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	fp := b.Site.Fingerprint()
	if !b.Force {
		if old, err := readManifest(b.OutDir); err == nil && old.RenderHash == fp.RenderHash {
			logger.Infof("[build] %s is up to date (%s)", b.OutDir, fp.ETag())
			return &Result{Posts: coll.Len(), Skipped: true}, nil
		}
	}

	cfg := b.Site.Config()
	rb := app.RouteBuilder{PageSize: cfg.Site.PageSize, Pages: cfg.Pages.Items}
	routes := rb.Routes(coll)

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var pages, warns atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, r := range routes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, status, err := b.Site.Render(gctx, r)
			if err != nil {
				return fmt.Errorf("render %s: %w", r, err)
			}
			if status != http.StatusOK {
				logger.Warnf("[build] %s rendered with status %d", r.Path(), status)
				warns.Add(1)
			}
			if err := writeFile(b.OutDir, app.OutPath(r), out); err != nil {
				return err
			}
			pages.Add(1)

			if r.Kind == site.RoutePost {
				_, md, err := b.Site.Markdown(r.Slug)
				if err != nil {
					return fmt.Errorf("export %s: %w", r, err)
				}
				return writeFile(b.OutDir, app.MarkdownPath(r.Slug), []byte(md))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := b.buildNotFound(ctx); err != nil {
		return nil, fmt.Errorf("build 404: %w", err)
	}
	if err := b.copyStaticAssets(); err != nil {
		return nil, fmt.Errorf("copy static assets: %w", err)
	}

	m := manifest{
		RenderHash: fp.RenderHash,
		Renderer:   dbuild.RendererVersion,
		LoadID:     coll.LoadID(),
		BuiltAt:    time.Now().UTC(),
		Pages:      int(pages.Load()),
	}
	if err := writeManifest(b.OutDir, m); err != nil {
		return nil, err
	}

	res := &Result{Pages: int(pages.Load()), Posts: coll.Len(), Warnings: int(warns.Load())}
	logger.Infof("[build] wrote %d pages for %d posts to %s", res.Pages, res.Posts, b.OutDir)
	return res, nil
}

func (b *Builder) buildNotFound(ctx context.Context) error {
	out, err := b.Site.NotFound(ctx)
	if err != nil {
		return err
	}
	return writeFile(b.OutDir, "404.html", out)
}

func (b *Builder) copyStaticAssets() error {
	src := b.Site.Static()
	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		return writeFile(b.OutDir, p, data)
	})
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func readManifest(dir string) (manifest, error) {
	var m manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}

func writeManifest(dir string, m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(dir, ManifestName, data)
}
