// Package fontctx defines the font context external collaborator (spec
// §2): rasterizing a (font, size, blur, glyph) tuple to pixel bytes. It
// specifies the interface and provides TypesettingContext, a reference
// implementation that parses fonts with go-text/typesetting and draws
// deterministic analytic coverage masks rather than glyph outlines.
package fontctx

import "github.com/scenelayer/compositor/fingerprint"

// GlyphRaster is the rasterized bitmap for one glyph: its pixel
// dimensions, the offset from the pen position to the bitmap's top-left
// corner, and the alpha-coverage bytes.
type GlyphRaster struct {
	Width, Height int
	Left, Top     int
	Bytes         []byte
}

// Context rasterizes glyphs for one font. Implementations are expected to
// be thread-local: spec §5 provisions exactly one Context per pool worker
// via a startup barrier (see asset.Scheduler.InitWorkers).
type Context interface {
	RasterizeGlyph(font fingerprint.FontID, size, blur float32, glyph fingerprint.GlyphIndex) (GlyphRaster, error)
}

// Factory creates one Context per worker. Implementations typically wrap
// a shaping library handle that is not safe for concurrent use across
// goroutines but is safe for exclusive use by one.
type Factory func() (Context, error)
