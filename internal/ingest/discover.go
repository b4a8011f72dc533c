package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type SourceFile struct {
	Path string
}

// DiscoverPages lists the markdown files under root. A missing root is an
// empty result, not an error.
func DiscoverPages(root string) ([]SourceFile, error) {
	if root == "" {
		return nil, nil
	}
	var out []SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown") {
			out = append(out, SourceFile{Path: path})
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return out, err
}

// LocalPage is a markdown static page read from disk, before rendering.
type LocalPage struct {
	Name  string
	Title string
	Body  []byte
	Path  string
}

// LoadPages reads every page under root. Files with broken front matter or
// no usable name are skipped with a warning; a repeated name keeps the
// first file.
func LoadPages(root string) ([]LocalPage, []Warning, error) {
	files, err := DiscoverPages(root)
	if err != nil {
		return nil, nil, err
	}

	var out []LocalPage
	var warns []Warning
	seen := make(map[string]struct{}, len(files))
	for _, sf := range files {
		raw, err := os.ReadFile(sf.Path)
		if err != nil {
			return nil, nil, err
		}
		fm, body, fmErr := ParseFrontMatter(raw)
		if fmErr != nil && !errors.Is(fmErr, errNoFrontMatter) {
			warns = append(warns, Warning{Source: sf.Path, Msg: "failed to parse front matter: " + fmErr.Error()})
			continue
		}
		name := ResolveName(fm, sf.Path)
		if name == "" {
			warns = append(warns, Warning{Source: sf.Path, Msg: "empty page name"})
			continue
		}
		if _, dup := seen[name]; dup {
			warns = append(warns, Warning{Source: sf.Path, Msg: "duplicate page name, skipped: " + name})
			continue
		}
		seen[name] = struct{}{}
		if strings.TrimSpace(fm.Title) == "" {
			warns = append(warns, Warning{Source: sf.Path, Msg: "title is empty"})
		}
		out = append(out, LocalPage{Name: name, Title: fm.Title, Body: body, Path: sf.Path})
	}
	return out, warns, nil
}
