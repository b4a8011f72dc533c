package build

import "testing"

func TestFingerprintETag(t *testing.T) {
	a := Fingerprint{ContentHash: "load-1", ThemeHash: "t", ConfigHash: "c", RendererHash: RendererVersion}
	b := a
	b.ContentHash = "load-2"

	ea, eb := a.ETag(), b.ETag()
	if ea == eb {
		t.Fatal("different loads should give different tags")
	}
	if len(ea) != 26 || ea[0] != '"' || ea[len(ea)-1] != '"' {
		t.Fatalf("malformed tag %s", ea)
	}
	again := Fingerprint{ContentHash: "load-1", ThemeHash: "t", ConfigHash: "c", RendererHash: RendererVersion}
	if again.ETag() != ea {
		t.Fatal("tag should be stable")
	}
}
