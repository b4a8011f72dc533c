package ingest

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var errNoFrontMatter = errors.New("no front matter found")
var errInvalidFrontMatter = errors.New("invalid front matter")

type FrontMatter struct {
	Title string `yaml:"title"`
	Name  string `yaml:"name"`
}

// ParseFrontMatter splits a "---" delimited YAML header from the body. With
// no header the whole input is the body and errNoFrontMatter is returned.
func ParseFrontMatter(raw []byte) (FrontMatter, []byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return FrontMatter{}, raw, errNoFrontMatter
	}

	// normalize line endings
	norm := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	norm = bytes.ReplaceAll(norm, []byte("\r"), []byte("\n"))

	const (
		sep      = "---"
		sepLine  = sep + "\n"
		closeMid = "\n" + sep + "\n"
	)

	if !bytes.HasPrefix(norm, []byte(sepLine)) {
		return FrontMatter{}, norm, errNoFrontMatter
	}
	// drop the opening "---\n"
	rest := norm[len(sepLine):]

	var yamlPart, bodyPart []byte
	switch parts := bytes.SplitN(rest, []byte(closeMid), 2); {
	case len(parts) == 2:
		// the usual shape: header, "\n---\n", body
		yamlPart, bodyPart = parts[0], parts[1]
	case bytes.HasSuffix(rest, []byte("\n"+sep)):
		// closing "\n---" at the end, no body
		yamlPart = rest[:len(rest)-len("\n"+sep)]
	case bytes.Equal(bytes.TrimSpace(rest), []byte(sep)):
		// "---\n---": empty header, no body
	default:
		return FrontMatter{}, raw, errInvalidFrontMatter
	}

	yamlPart = bytes.TrimSpace(yamlPart)
	bodyPart = bytes.TrimSpace(bodyPart)

	var fm FrontMatter
	if len(yamlPart) > 0 {
		if err := yaml.Unmarshal(yamlPart, &fm); err != nil {
			return FrontMatter{}, raw, err
		}
	}
	return fm, bodyPart, nil
}

// ResolveName picks the /view/{name} key: front matter name, else the file
// name without extension. Either is slugified: letters and digits of any
// script are lower-cased, every other run becomes one dash, so "Поезия и
// проза.md" resolves to "поезия-и-проза".
func ResolveName(fm FrontMatter, path string) string {
	if s := strings.TrimSpace(fm.Name); s != "" {
		return slugify(s)
	}
	base := filepath.Base(path)
	return slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

func slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var out []rune
	lastDash := false

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out = append(out, unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash && len(out) > 0 {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}

// SplitPage is ParseFrontMatter for sources where the header is optional.
func SplitPage(raw []byte) (FrontMatter, []byte, error) {
	fm, body, err := ParseFrontMatter(raw)
	if errors.Is(err, errNoFrontMatter) {
		return fm, body, nil
	}
	return fm, body, err
}
