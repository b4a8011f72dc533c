package build

import (
	"crypto/sha256"
	"encoding/hex"
)

// RendererVersion changes when page markup changes independently of the
// theme files.
const RendererVersion = "prizma-render-1"

// Fingerprint identifies one rendered state of the site: the loaded
// collection, the theme files, the site config and the renderer itself.
type Fingerprint struct {
	ContentHash  string
	ThemeHash    string
	ConfigHash   string
	RendererHash string
	RenderHash   string
}

func (f *Fingerprint) ComputeRenderHash() {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte{0})
	h.Write([]byte(f.ThemeHash))
	h.Write([]byte{0})
	h.Write([]byte(f.ConfigHash))
	h.Write([]byte{0})
	h.Write([]byte(f.RendererHash))
	f.RenderHash = hex.EncodeToString(h.Sum(nil))
}

// ETag is a strong entity tag derived from RenderHash.
func (f Fingerprint) ETag() string {
	if f.RenderHash == "" {
		f.ComputeRenderHash()
	}
	return `"` + f.RenderHash[:24] + `"`
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
