package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("---\ntitle: Поверителност\nname: privacy\n---\n# Heading\n\nText"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "Поверителност" || fm.Name != "privacy" {
		t.Errorf("fm = %+v", fm)
	}
	if string(body) != "# Heading\n\nText" {
		t.Errorf("body = %q", body)
	}

	_, body, err = ParseFrontMatter([]byte("plain body"))
	if !errors.Is(err, errNoFrontMatter) || string(body) != "plain body" {
		t.Errorf("no header: %v %q", err, body)
	}

	if _, _, err := ParseFrontMatter([]byte("---\ntitle: x\nno close")); !errors.Is(err, errInvalidFrontMatter) {
		t.Errorf("unterminated header: %v", err)
	}
}

func TestResolveName(t *testing.T) {
	cases := []struct {
		fm   FrontMatter
		path string
		want string
	}{
		{FrontMatter{Name: "About Me"}, "x.md", "about-me"},
		{FrontMatter{}, "/pages/Zumba_Steps.md", "zumba-steps"},
		{FrontMatter{}, "/pages/автор.md", "автор"},
		{FrontMatter{}, "/pages/Поезия и проза.md", "поезия-и-проза"},
		{FrontMatter{Name: "Poetry"}, "/pages/поезия.md", "poetry"},
		{FrontMatter{}, "/pages/—.md", ""},
	}
	for _, tc := range cases {
		if got := ResolveName(tc.fm, tc.path); got != tc.want {
			t.Errorf("ResolveName(%+v, %q) = %q, want %q", tc.fm, tc.path, got, tc.want)
		}
	}
}

func TestLoadPages(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("privacy.md", "---\ntitle: Privacy\n---\nWe keep nothing.")
	write("notes.txt", "ignored")
	write("broken.md", "---\ntitle: [unclosed\n---\nbody")
	write("again.md", "---\nname: privacy\ntitle: Other\n---\nx")

	pages, warns, err := LoadPages(dir)
	if err != nil {
		t.Fatalf("LoadPages: %v", err)
	}
	if len(pages) != 1 || pages[0].Name != "privacy" || pages[0].Title == "" {
		t.Fatalf("pages = %+v", pages)
	}
	if len(warns) != 2 {
		t.Fatalf("warnings = %v", warns)
	}
}

func TestLoadPagesCyrillicFileName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Поезия.md"), []byte("---\ntitle: Поезия\n---\nстих"), 0o644); err != nil {
		t.Fatal(err)
	}
	pages, warns, err := LoadPages(dir)
	if err != nil {
		t.Fatalf("LoadPages: %v", err)
	}
	if len(warns) != 0 || len(pages) != 1 || pages[0].Name != "поезия" {
		t.Fatalf("pages = %+v, warnings = %v", pages, warns)
	}
}

func TestLoadPagesMissingDir(t *testing.T) {
	pages, warns, err := LoadPages(filepath.Join(t.TempDir(), "absent"))
	if err != nil || len(pages) != 0 || len(warns) != 0 {
		t.Fatalf("got %v %v %v", pages, warns, err)
	}
}
