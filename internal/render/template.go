package render

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"
)

//go:embed theme
var themeFS embed.FS

var requiredTemplates = []string{
	"list.tmpl",
	"post.tmpl",
	"page.tmpl",
	"message.tmpl",
}

// TemplateRenderer executes the built-in theme, optionally overridden file by
// file from themes/<name>/templates and themes/<name>/static.
type TemplateRenderer struct {
	tpl         *template.Template
	static      fs.FS
	overrideDir string
	hash        string
}

func NewTemplateRenderer(themeDir, themeName string) (*TemplateRenderer, error) {
	builtinTpl, err := fs.Sub(themeFS, "theme/templates")
	if err != nil {
		return nil, err
	}
	builtinStatic, err := fs.Sub(themeFS, "theme/static")
	if err != nil {
		return nil, err
	}

	tpl, err := template.New("").Funcs(templateFuncs()).ParseFS(builtinTpl, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse built-in theme: %w", err)
	}

	r := &TemplateRenderer{static: builtinStatic}
	hashes := []fs.FS{builtinTpl, builtinStatic}

	if themeDir != "" && themeName != "" {
		root := filepath.Join(themeDir, themeName)
		tplDir := filepath.Join(root, "templates")
		if isDir(tplDir) {
			matches, _ := filepath.Glob(filepath.Join(tplDir, "*.tmpl"))
			if len(matches) > 0 {
				if tpl, err = tpl.ParseFiles(matches...); err != nil {
					return nil, fmt.Errorf("parse theme %s: %w", themeName, err)
				}
			}
			r.overrideDir = root
			hashes = append(hashes, os.DirFS(tplDir))
		}
		if staticDir := filepath.Join(root, "static"); isDir(staticDir) {
			upper := os.DirFS(staticDir)
			r.static = overlayFS{upper: upper, lower: builtinStatic}
			r.overrideDir = root
			hashes = append(hashes, upper)
		}
	}

	if err := CheckThemeTemplates(tpl); err != nil {
		return nil, err
	}
	r.tpl = tpl

	h, err := hashTrees(hashes...)
	if err != nil {
		return nil, fmt.Errorf("hash theme: %w", err)
	}
	r.hash = h
	return r, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"nowYear": func() int {
			return time.Now().Year()
		},
		"resize": Resize,
		"add":    func(a, b int) int { return a + b },
		"sub":    func(a, b int) int { return a - b },
	}
}

func (r *TemplateRenderer) RenderList(ctx context.Context, page ListPage) ([]byte, error) {
	return r.exec("list.tmpl", page)
}

func (r *TemplateRenderer) RenderPost(ctx context.Context, page PostPage) ([]byte, error) {
	return r.exec("post.tmpl", page)
}

func (r *TemplateRenderer) RenderStatic(ctx context.Context, page StaticPage) ([]byte, error) {
	return r.exec("page.tmpl", page)
}

func (r *TemplateRenderer) RenderMessage(ctx context.Context, page MessagePage) ([]byte, error) {
	return r.exec("message.tmpl", page)
}

func (r *TemplateRenderer) exec(name string, data interface{}) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Static serves css/ and js/ assets.
func (r *TemplateRenderer) Static() fs.FS { return r.static }

// ThemeHash changes whenever a template or asset changes.
func (r *TemplateRenderer) ThemeHash() string { return r.hash }

// OverrideDir is the on-disk theme root, "" when only the built-in theme is
// in use.
func (r *TemplateRenderer) OverrideDir() string { return r.overrideDir }

func CheckThemeTemplates(tpl *template.Template) error {
	for _, name := range requiredTemplates {
		if tpl.Lookup(name) == nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

// overlayFS reads from upper and falls back to lower for missing files.
type overlayFS struct {
	upper fs.FS
	lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.lower.Open(name)
}

func hashTrees(trees ...fs.FS) (string, error) {
	h := sha256.New()
	for _, tree := range trees {
		var files []string
		err := fs.WalkDir(tree, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		sort.Strings(files)
		for _, f := range files {
			data, err := fs.ReadFile(tree, f)
			if err != nil {
				return "", err
			}
			h.Write([]byte(path.Clean(f)))
			h.Write([]byte{0})
			h.Write(data)
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
