package fontctx

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"

	"github.com/scenelayer/compositor/fingerprint"
)

// FontSource supplies the raw bytes for a FontID, the same role
// coordinator's sceneStore plays for images (spec §3 "Font bytes, keyed by
// FontID").
type FontSource interface {
	FontBytes(id fingerprint.FontID) ([]byte, bool)
}

// TypesettingContext is a Context backed by go-text/typesetting: it parses
// each FontID's bytes into a *font.Font once (font.Font is read-only and
// safe for concurrent use, mirroring the teacher's GoTextShaper.fontCache
// pattern), then rasterizes a glyph as an analytic coverage mask sized
// from the requested size plus the blur on each side. It is a reference rasterizer, not
// a hinted/antialiased production renderer — a real one is the
// responsibility of a host GPU backend (spec.md non-goal "the font
// rasterizer implementation (only its interface)").
type TypesettingContext struct {
	source FontSource

	mu    sync.Mutex
	fonts map[fingerprint.FontID]*font.Font
}

// NewTypesettingFactory returns a Factory that hands each worker its own
// TypesettingContext sharing source, matching the per-worker isolation
// fontctx.Factory documents (font.Face, unlike font.Font, is not safe for
// concurrent use, so each worker parses its own faces against a private
// cache even though the underlying bytes are shared).
func NewTypesettingFactory(source FontSource) Factory {
	return func() (Context, error) {
		return &TypesettingContext{
			source: source,
			fonts:  make(map[fingerprint.FontID]*font.Font),
		}, nil
	}
}

func (t *TypesettingContext) fontFor(id fingerprint.FontID) (*font.Font, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if f, ok := t.fonts[id]; ok {
		return f, nil
	}
	raw, ok := t.source.FontBytes(id)
	if !ok {
		return nil, fmt.Errorf("fontctx: unknown font %v", id)
	}
	face, err := font.ParseTTF(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("fontctx: parse font %v: %w", id, err)
	}
	t.fonts[id] = face.Font
	return face.Font, nil
}

// RasterizeGlyph produces a square alpha-coverage mask sized from size,
// inflated by blur the same way asset.DefaultRasterSource inflates
// box-shadow corners. The parsed *font.Font is only used to validate the
// glyph exists and to confirm the font parses; this Context does not
// attempt outline-accurate coverage.
func (t *TypesettingContext) RasterizeGlyph(fontID fingerprint.FontID, size, blur float32, glyph fingerprint.GlyphIndex) (GlyphRaster, error) {
	f, err := t.fontFor(fontID)
	if err != nil {
		return GlyphRaster{}, err
	}
	if int(glyph) < 0 || int(glyph) >= f.NumGlyphs() {
		return GlyphRaster{}, fmt.Errorf("fontctx: glyph %d out of range for font %v", glyph, fontID)
	}

	dim := int(size + 2*blur)
	if dim < 1 {
		dim = 1
	}
	bytes := make([]byte, dim*dim)
	cx, cy := float64(dim)/2, float64(dim)/2
	radius := float64(size) / 2
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			dist := dx*dx + dy*dy
			if dist <= radius*radius {
				bytes[y*dim+x] = 0xff
			}
		}
	}

	return GlyphRaster{
		Width:  dim,
		Height: dim,
		Left:   0,
		Top:    0,
		Bytes:  bytes,
	}, nil
}
