package render

import "testing"

func TestResize(t *testing.T) {
	cases := []struct{ src, size, want string }{
		{"https://img.test/a/s72-c/pic.jpg", SizeCard, "https://img.test/a/s400/pic.jpg"},
		{"https://img.test/a/s1600/pic.jpg", SizeThumb, "https://img.test/a/s72-c/pic.jpg"},
		{"https://img.test/s32-c/me/s64/x.jpg", SizeAvatar, "https://img.test/s128-c/me/s64/x.jpg"},
		{"https://img.test/plain.jpg", SizeHero, "https://img.test/plain.jpg"},
		{"", SizeHero, ""},
	}
	for _, tc := range cases {
		if got := Resize(tc.src, tc.size); got != tc.want {
			t.Errorf("Resize(%q, %q) = %q, want %q", tc.src, tc.size, got, tc.want)
		}
	}
}

func TestShareLinks(t *testing.T) {
	s := ShareLinks("Здравей & свят", "https://blog.test/p?id=1")
	if s.Facebook != "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fblog.test%2Fp%3Fid%3D1" {
		t.Errorf("Facebook = %s", s.Facebook)
	}
	if s.Mail != "mailto:?subject=%D0%97%D0%B4%D1%80%D0%B0%D0%B2%D0%B5%D0%B9%20%26%20%D1%81%D0%B2%D1%8F%D1%82&body=https%3A%2F%2Fblog.test%2Fp%3Fid%3D1" {
		t.Errorf("Mail = %s", s.Mail)
	}
}

func TestLocaleDates(t *testing.T) {
	l := LocaleFor("bg")
	if got := l.FormatDate("2024-01-05"); got != "05 януари 2024 г." {
		t.Errorf("bg date = %q", got)
	}
	if got := l.FormatMonth("2023-12"); got != "декември 2023 г." {
		t.Errorf("bg month = %q", got)
	}
	e := LocaleFor("en")
	if got := e.FormatDate("2024-03-09"); got != "09 March 2024" {
		t.Errorf("en date = %q", got)
	}
	if got := e.FormatMonth("bad"); got != "bad" {
		t.Errorf("bad month = %q", got)
	}
	if got := l.FormatDate("2024-1-5"); got != "2024-1-5" {
		t.Errorf("bad date = %q", got)
	}
}
