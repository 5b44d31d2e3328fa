package compiler

import (
	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
)

// addImage emits a single quad when the image is stretched to exactly
// rect.size, or tiles across rect in StretchSize steps otherwise (spec
// §4.4 Image).
func (c *TileCompiler) addImage(b *DrawCommandBuilder, key fingerprint.ItemKey, item *displaylist.DisplayItem, fdl *flatten.FlatDrawList, clip geom.Rect) {
	img := item.Image
	region := c.textureRegion(img.Image)

	if img.StretchSize == (geom.Size{W: item.Rect.W, H: item.Rect.H}) {
		rect := item.Rect.Intersect(clip)
		if rect.Empty() {
			return
		}
		verts := quadVertices(rect, region, opaqueWhite)
		b.AddQuad(key, key.DrawList, ProgramImage, img.Image, DummyMask, verts)
		return
	}

	stepW, stepH := img.StretchSize.W, img.StretchSize.H
	if stepW <= 0 || stepH <= 0 {
		return // shape violation: zero-size stretch, silently skipped
	}
	for y := item.Rect.Y; y < item.Rect.MaxY(); y += stepH {
		for x := item.Rect.X; x < item.Rect.MaxX(); x += stepW {
			tile := geom.Rect{X: x, Y: y, W: stepW, H: stepH}.Intersect(item.Rect).Intersect(clip)
			if tile.Empty() {
				continue
			}
			verts := quadVertices(tile, region, opaqueWhite)
			b.AddQuad(key, key.DrawList, ProgramImage, img.Image, DummyMask, verts)
		}
	}
}
