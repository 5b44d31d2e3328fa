package compiler

import (
	"log/slog"

	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
	"github.com/scenelayer/compositor/spatial"
	"github.com/scenelayer/compositor/texturecache"
)

// WhiteTexture is the always-present 1x1 opaque white texture used as the
// color texture for solid fills (spec §8 S1 "white color texture").
const WhiteTexture fingerprint.ImageID = 0

// DummyMask is the always-present 1x1 fully-opaque mask texture used when
// an item needs no clip mask (spec §8 S1 "dummy mask").
const DummyMask fingerprint.ImageID = 1

// dashStepMultiplier is the dashed-border stepping constant from
// original_source: dashes step by 3x the border width, so one dash-plus-gap
// period is 6x the width (spec §8 S6).
const dashStepMultiplier = 3.0

// TileCompiler compiles one visible, not-yet-compiled tile into a
// CompiledNode, per spec §4.4.
type TileCompiler struct {
	Scene  *flatten.Result
	Cache  texturecache.Cache
	Logger *slog.Logger
}

func (c *TileCompiler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Compile compiles the tile at tileIdx, scanning every flattened item in
// scene order (spec §4.4 "src_items"): items this tile owns are dispatched
// into batches, items owned elsewhere but overlapping this tile's
// rectangle force a finalize of the relevant render target's builder —
// the sole mechanism that preserves paint order across nodes sharing
// coverage (spec §4.4 step 3).
func (c *TileCompiler) Compile(tileIdx fingerprint.NodeIndex, tree *spatial.Tree) CompiledNode {
	tileRect := tree.Node(tileIdx).Rect
	out := CompiledNode{}
	builders := make(map[int]*DrawCommandBuilder)

	builderFor := func(target int) *DrawCommandBuilder {
		b, ok := builders[target]
		if !ok {
			b = NewDrawCommandBuilder(target, &out)
			builders[target] = b
		}
		return b
	}

	for dlIdx, fdl := range c.Scene.FlatDrawLists {
		for itemIdx := range fdl.DrawList.Items {
			item := &fdl.DrawList.Items[itemIdx]
			key := fingerprint.ItemKey{DrawList: dlIdx, Item: itemIdx}

			if item.Node == tileIdx {
				clip := item.Clip.Main.Intersect(fdl.Context.Overflow)
				if clip.Empty() {
					continue // shape violation, silently skipped (spec §7b)
				}
				c.dispatch(builderFor(fdl.Context.RenderTargetIndex), key, item, &fdl, clip)
				continue
			}

			if item.Node == fingerprint.NoNode {
				continue // dropped insert (spec §7b): never painted
			}

			worldRect := fdl.Context.FinalTransform.TransformRect(item.Rect)
			if worldRect.Intersects(tileRect) {
				builderFor(fdl.Context.RenderTargetIndex).Flush()
			}
		}
	}

	for _, b := range builders {
		b.Flush()
	}

	return out
}

func (c *TileCompiler) dispatch(b *DrawCommandBuilder, key fingerprint.ItemKey, item *displaylist.DisplayItem, fdl *flatten.FlatDrawList, clip geom.Rect) {
	switch item.Kind {
	case displaylist.KindRectangle:
		c.addRectangle(b, key, item, fdl, clip)
	case displaylist.KindImage:
		c.addImage(b, key, item, fdl, clip)
	case displaylist.KindText:
		c.addText(b, key, item, fdl, clip)
	case displaylist.KindGradient:
		c.addGradient(b, key, item, fdl, clip)
	case displaylist.KindBoxShadow:
		c.addBoxShadow(b, key, item, fdl, clip)
	case displaylist.KindBorder:
		c.addBorder(b, key, item, fdl, clip)
	case displaylist.KindComposite:
		c.addComposite(b, key, item)
	default:
		c.logger().Debug("unknown item kind, skipping", "kind", item.Kind)
	}
}

// textureRegion looks up id's atlas region for UV computation, falling
// back to the full [0,1]x[0,1] unit square when the cache has no entry
// (e.g. the white/dummy textures, which are not atlas-packed).
func (c *TileCompiler) textureRegion(id fingerprint.ImageID) geom.Rect {
	if c.Cache != nil {
		if e, ok := c.Cache.Get(id); ok {
			return e.Region
		}
	}
	return geom.Rect{X: 0, Y: 0, W: 1, H: 1}
}
