package asset

import (
	"math"

	"github.com/scenelayer/compositor/fingerprint"
)

// DefaultRasterSource produces single-channel (alpha-only) masks for
// rounded-corner, box-shadow-corner, and border-corner RasterKeys using an
// analytic signed-distance-to-quarter-circle fill. It exists to exercise
// the scheduler and tile compiler without a real rasterizer backend; a
// production build supplies its own RasterSource (spec §2 non-goal: "the
// font rasterizer implementation... the texture atlas allocator" are
// external, but the procedural-raster producer itself is not named as an
// external collaborator, so a reference implementation lives here).
type DefaultRasterSource struct{}

// Rasterize implements asset.RasterSource.
func (DefaultRasterSource) Rasterize(key fingerprint.RasterKey) (w, h int, bytes []byte, ok bool) {
	switch key.Kind {
	case fingerprint.RasterRoundedCorner, fingerprint.RasterBorderCorner:
		return quarterCircleMask(key.OuterRadiusX, key.OuterRadiusY, 0)
	case fingerprint.RasterBoxShadowCorner:
		return quarterCircleMask(key.OuterRadiusX, key.OuterRadiusY, key.BlurRadius)
	default:
		return 0, 0, nil, false
	}
}

// quarterCircleMask rasterizes the top-left quarter of an ellipse with
// semi-axes (rx, ry), feathering blur units past the boundary when blur>0.
func quarterCircleMask(rx, ry, blur float64) (int, int, []byte, bool) {
	if rx <= 0 || ry <= 0 {
		return 0, 0, nil, false
	}
	size := math.Ceil(math.Max(rx, ry) + blur)
	w, h := int(size), int(size)
	if w == 0 || h == 0 {
		return 0, 0, nil, false
	}
	bytes := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Normalized distance from the ellipse center, which sits just
			// past pixel (w-1, h-1); pixel (0, 0) is the outer corner.
			nx := (float64(w-1-x) + 0.5) / rx
			ny := (float64(h-1-y) + 0.5) / ry
			d := math.Hypot(nx, ny) - 1 // <0 inside, >0 outside
			var a float64
			switch {
			case blur <= 0:
				if d <= 0 {
					a = 1
				}
			default:
				// Linear feather across the blur band, in ellipse-normalized units.
				a = 1 - clamp01(d/(blur/math.Max(rx, ry)+1e-9))
			}
			bytes[y*w+x] = byte(clamp01(a) * 255)
		}
	}
	return w, h, bytes, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
