package compiler

import (
	"image/color"

	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
)

// quadVertices builds a 4-vertex quad for rect with UVs taken from
// region (in [0,1] normalized atlas space already, or identity for
// non-atlas textures) and col carried per-vertex so same-program,
// different-color items can still merge into one batch.
func quadVertices(rect geom.Rect, region geom.Rect, col color.RGBA) [4]Vertex {
	r, g, bl, a := vertexColor(col)
	return [4]Vertex{
		{X: float32(rect.X), Y: float32(rect.Y), U: float32(region.X), V: float32(region.Y), R: r, G: g, B: bl, A: a},
		{X: float32(rect.MaxX()), Y: float32(rect.Y), U: float32(region.MaxX()), V: float32(region.Y), R: r, G: g, B: bl, A: a},
		{X: float32(rect.MaxX()), Y: float32(rect.MaxY()), U: float32(region.MaxX()), V: float32(region.MaxY()), R: r, G: g, B: bl, A: a},
		{X: float32(rect.X), Y: float32(rect.MaxY()), U: float32(region.X), V: float32(region.MaxY()), R: r, G: g, B: bl, A: a},
	}
}

// addRectangle emits a solid-color quad: white color texture, dummy mask,
// item color carried per-vertex, clipped against the clip it is given.
func (c *TileCompiler) addRectangle(b *DrawCommandBuilder, key fingerprint.ItemKey, item *displaylist.DisplayItem, fdl *flatten.FlatDrawList, clip geom.Rect) {
	rect := item.Rect.Intersect(clip)
	if rect.Empty() {
		return
	}
	verts := quadVertices(rect, geom.Rect{X: 0, Y: 0, W: 1, H: 1}, item.Rectangle.Color)
	b.AddQuad(key, key.DrawList, ProgramRectangle, WhiteTexture, DummyMask, verts)
}
