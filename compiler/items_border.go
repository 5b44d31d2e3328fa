package compiler

import (
	"image/color"
	"math"

	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
)

// insetScale and outsetScale asymmetrically tint an Inset/Outset border
// side by scaling its RGB components, per spec §4.4 Border.
const (
	insetScale  = 0.7
	outsetScale = 1.3
)

// addBorder emits four per-side edge rectangles (respecting Solid,
// Dashed, Dotted, Double, Inset, Outset stepping) and four corner quads
// masked by the per-corner radius raster (spec §4.4 Border).
func (c *TileCompiler) addBorder(b *DrawCommandBuilder, key fingerprint.ItemKey, item *displaylist.DisplayItem, fdl *flatten.FlatDrawList, clip geom.Rect) {
	r := item.Rect
	border := item.Border

	emitSide := func(side displaylist.BorderSide, rect geom.Rect, horizontal bool) {
		if side.Width <= 0 {
			return
		}
		rect = rect.Intersect(clip)
		if rect.Empty() {
			return
		}
		switch side.Style {
		case displaylist.BorderDashed:
			emitDashed(b, key, rect, horizontal, side.Width, side.Color)
		case displaylist.BorderDotted:
			emitDotted(b, key, rect, horizontal, side.Width, side.Color)
		case displaylist.BorderDouble:
			emitDouble(b, key, rect, horizontal, side.Width, side.Color)
		case displaylist.BorderInset, displaylist.BorderOutset:
			// Inset/Outset asymmetrically tint the side's RGB by
			// insetScale/outsetScale (spec §4.4 Border).
			scale := insetScale
			if side.Style == displaylist.BorderOutset {
				scale = outsetScale
			}
			tinted := scaleColor(side.Color, scale)
			b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, DummyMask, quadVertices(rect, geom.Rect{W: 1, H: 1}, tinted))
		default:
			b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, DummyMask, quadVertices(rect, geom.Rect{W: 1, H: 1}, side.Color))
		}
	}

	emitSide(border.Top, geom.Rect{X: r.X, Y: r.Y, W: r.W, H: border.Top.Width}, true)
	emitSide(border.Bottom, geom.Rect{X: r.X, Y: r.MaxY() - border.Bottom.Width, W: r.W, H: border.Bottom.Width}, true)
	emitSide(border.Left, geom.Rect{X: r.X, Y: r.Y, W: border.Left.Width, H: r.H}, false)
	emitSide(border.Right, geom.Rect{X: r.MaxX() - border.Right.Width, Y: r.Y, W: border.Right.Width, H: r.H}, false)

	addCorner := func(radius float64, cx, cy float64, col color.RGBA) {
		if radius <= 0 {
			return
		}
		rk := fingerprint.RasterKey{Kind: fingerprint.RasterBorderCorner, OuterRadiusX: radius, OuterRadiusY: radius}
		mask := rk.ImageID()
		rect := geom.Rect{X: cx, Y: cy, W: radius, H: radius}.Intersect(clip)
		if rect.Empty() {
			return
		}
		b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, mask, quadVertices(rect, geom.Rect{W: 1, H: 1}, col))
	}
	radii := border.Radii
	addCorner(radii.TopLeft, r.X, r.Y, blendColor(border.Left.Color, border.Top.Color))
	addCorner(radii.TopRight, r.MaxX()-radii.TopRight, r.Y, blendColor(border.Right.Color, border.Top.Color))
	addCorner(radii.BottomRight, r.MaxX()-radii.BottomRight, r.MaxY()-radii.BottomRight, blendColor(border.Right.Color, border.Bottom.Color))
	addCorner(radii.BottomLeft, r.X, r.MaxY()-radii.BottomLeft, blendColor(border.Left.Color, border.Bottom.Color))
}

// emitDashed splits rect into dash-on segments. Stepping is
// dashStepMultiplier * width (spec §9 carried from original_source); the
// on/off period is 2*stepping, so the visible dash count for a side of
// length L is ceil(L / (2*stepping)) (spec §8 S6).
func emitDashed(b *DrawCommandBuilder, key fingerprint.ItemKey, rect geom.Rect, horizontal bool, width float64, col color.RGBA) {
	step := dashStepMultiplier * width
	period := 2 * step
	length := rect.W
	if !horizontal {
		length = rect.H
	}
	count := int(math.Ceil(length / period))
	for i := 0; i < count; i++ {
		offset := float64(i) * period
		var dash geom.Rect
		if horizontal {
			dash = geom.Rect{X: rect.X + offset, Y: rect.Y, W: math.Min(step, rect.W-offset), H: rect.H}
		} else {
			dash = geom.Rect{X: rect.X, Y: rect.Y + offset, W: rect.W, H: math.Min(step, rect.H-offset)}
		}
		if dash.Empty() {
			continue
		}
		b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, DummyMask, quadVertices(dash, geom.Rect{W: 1, H: 1}, col))
	}
}

// emitDotted places width-diameter dots spaced 2*width apart.
func emitDotted(b *DrawCommandBuilder, key fingerprint.ItemKey, rect geom.Rect, horizontal bool, width float64, col color.RGBA) {
	period := 2 * width
	length := rect.W
	if !horizontal {
		length = rect.H
	}
	count := int(math.Ceil(length / period))
	for i := 0; i < count; i++ {
		offset := float64(i) * period
		var dot geom.Rect
		if horizontal {
			dot = geom.Rect{X: rect.X + offset, Y: rect.Y, W: math.Min(width, rect.W-offset), H: rect.H}
		} else {
			dot = geom.Rect{X: rect.X, Y: rect.Y + offset, W: rect.W, H: math.Min(width, rect.H-offset)}
		}
		if dot.Empty() {
			continue
		}
		b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, DummyMask, quadVertices(dot, geom.Rect{W: 1, H: 1}, col))
	}
}

// emitDouble splits the side into two parallel stripes each 1/3 of the width.
func emitDouble(b *DrawCommandBuilder, key fingerprint.ItemKey, rect geom.Rect, horizontal bool, width float64, col color.RGBA) {
	stripe := width / 3
	if horizontal {
		b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, DummyMask,
			quadVertices(geom.Rect{X: rect.X, Y: rect.Y, W: rect.W, H: stripe}, geom.Rect{W: 1, H: 1}, col))
		b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, DummyMask,
			quadVertices(geom.Rect{X: rect.X, Y: rect.MaxY() - stripe, W: rect.W, H: stripe}, geom.Rect{W: 1, H: 1}, col))
		return
	}
	b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, DummyMask,
		quadVertices(geom.Rect{X: rect.X, Y: rect.Y, W: stripe, H: rect.H}, geom.Rect{W: 1, H: 1}, col))
	b.AddQuad(key, key.DrawList, ProgramBorder, WhiteTexture, DummyMask,
		quadVertices(geom.Rect{X: rect.MaxX() - stripe, Y: rect.Y, W: stripe, H: rect.H}, geom.Rect{W: 1, H: 1}, col))
}
