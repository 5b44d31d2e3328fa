package compiler

import (
	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
)

// addComposite flushes any open batch on this render target, then emits a
// standalone composite command blending the source offscreen target back
// in with the item's blend mode (spec §4.4 Composite, invariant 3).
func (c *TileCompiler) addComposite(b *DrawCommandBuilder, key fingerprint.ItemKey, item *displaylist.DisplayItem) {
	comp := item.Composite
	r := item.Rect
	b.Composite(key, CompositeCommand{
		SourceTexture: comp.Source,
		BlendMode:     comp.BlendMode,
		Rect:          [4]float64{r.X, r.Y, r.W, r.H},
	})
}
