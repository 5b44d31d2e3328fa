package coordinator

import (
	"image"

	"golang.org/x/image/draw"
)

// normalizeImage ensures an AddImage payload's bytes are an RGBA8 buffer
// exactly w*h*4 bytes long, the shape every other component (texturecache,
// compiler's image program) assumes. If the supplied bytes already match
// that size they pass through untouched; otherwise they are treated as a
// same-total-pixel-count source of unknown aspect and rescaled into the
// declared dimensions with golang.org/x/image/draw, the teacher's own
// choice for resampling (text/draw_emoji.go imports it under the xdraw
// alias for the analogous glyph-bitmap scaling problem).
func normalizeImage(w, h int, bytes []byte) []byte {
	want := w * h * 4
	if len(bytes) == want || w <= 0 || h <= 0 {
		return bytes
	}

	pixels := len(bytes) / 4
	if pixels == 0 {
		return make([]byte, want)
	}
	srcW := pixels
	srcH := 1
	for d := 1; d*d <= pixels; d++ {
		if pixels%d == 0 {
			srcW, srcH = d, pixels/d
		}
	}

	src := &image.RGBA{
		Pix:    bytes[:srcW*srcH*4],
		Stride: srcW * 4,
		Rect:   image.Rect(0, 0, srcW, srcH),
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix
}
