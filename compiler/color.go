package compiler

import "image/color"

// opaqueWhite is the color channel value for textured items (images) that
// should not be tinted: the sampled texture is used unmodified.
var opaqueWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// vertexColor converts a display-item color to the normalized float32
// channels a Vertex carries.
func vertexColor(c color.RGBA) (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}

// blendColor averages two colors, used where a border corner touches two
// differently-colored sides (spec §4.4 Border).
func blendColor(a, b color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8((uint16(a.R) + uint16(b.R)) / 2),
		G: uint8((uint16(a.G) + uint16(b.G)) / 2),
		B: uint8((uint16(a.B) + uint16(b.B)) / 2),
		A: uint8((uint16(a.A) + uint16(b.A)) / 2),
	}
}

// scaleColor multiplies a color's RGB channels by scale, clamped to
// [0,255], leaving alpha untouched — used for Inset/Outset border shading.
func scaleColor(c color.RGBA, scale float64) color.RGBA {
	clamp := func(v uint8) uint8 {
		scaled := float64(v) * scale
		if scaled < 0 {
			return 0
		}
		if scaled > 255 {
			return 255
		}
		return uint8(scaled)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: c.A}
}
