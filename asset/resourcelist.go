// Package asset implements the per-tile asset scheduler (spec §4.3): for
// each visible tile, ensures every required image, glyph, and procedural
// raster is present in the texture cache before the tile compiler runs.
package asset

import (
	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
)

// ResourceList enumerates the images, glyphs, and procedural rasters one
// tile's items require.
type ResourceList struct {
	Images  []fingerprint.ImageID
	Glyphs  []fingerprint.GlyphKey
	Rasters []fingerprint.RasterKey
}

// BuildResourceList scans items owned by this tile (those whose Node field
// equals the tile currently being examined, tracked by the caller) and
// collects their resource requirements. items here is exactly the tile's
// Items slice of ItemKeys resolved to DisplayItems by the caller.
func BuildResourceList(items []*displaylist.DisplayItem) ResourceList {
	var rl ResourceList
	seenImg := make(map[fingerprint.ImageID]bool)
	seenGlyph := make(map[fingerprint.GlyphKey]bool)
	seenRaster := make(map[fingerprint.RasterKey]bool)

	addRaster := func(k fingerprint.RasterKey) {
		if !seenRaster[k] {
			seenRaster[k] = true
			rl.Rasters = append(rl.Rasters, k)
		}
	}

	for _, item := range items {
		switch item.Kind {
		case displaylist.KindImage:
			if id := item.Image.Image; !seenImg[id] {
				seenImg[id] = true
				rl.Images = append(rl.Images, id)
			}
		case displaylist.KindText:
			t := item.Text
			for _, g := range t.Glyphs {
				k := fingerprint.GlyphKey{Font: t.Font, Size: t.Size, Blur: t.Blur, Glyph: g.Index}
				if !seenGlyph[k] {
					seenGlyph[k] = true
					rl.Glyphs = append(rl.Glyphs, k)
				}
			}
		case displaylist.KindBoxShadow:
			bs := item.BoxShadow
			if bs.CornerRadius > 0 || bs.BlurRadius > 0 {
				addRaster(fingerprint.RasterKey{
					Kind:         fingerprint.RasterBoxShadowCorner,
					OuterRadiusX: bs.CornerRadius,
					OuterRadiusY: bs.CornerRadius,
					BlurRadius:   bs.BlurRadius,
				})
			}
		case displaylist.KindBorder:
			r := item.Border.Radii
			for _, radius := range []float64{r.TopLeft, r.TopRight, r.BottomRight, r.BottomLeft} {
				if radius > 0 {
					addRaster(fingerprint.RasterKey{Kind: fingerprint.RasterBorderCorner, OuterRadiusX: radius, OuterRadiusY: radius})
				}
			}
		}
	}
	return rl
}
