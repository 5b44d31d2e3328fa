package compiler

import (
	"image/color"
	"testing"

	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
	"github.com/scenelayer/compositor/spatial"
)

func rectItem(node fingerprint.NodeIndex, rect geom.Rect) displaylist.DisplayItem {
	return displaylist.DisplayItem{
		Kind:      displaylist.KindRectangle,
		Rect:      rect,
		Clip:      geom.NoClip(),
		Node:      node,
		Rectangle: &displaylist.RectangleItem{Color: color.RGBA{R: 255, A: 255}},
	}
}

func singleTileTree(rect geom.Rect) *spatial.Tree {
	// A split size larger than the scene keeps the tree at a single root
	// node, so tileIdx 0 always refers to that node.
	return spatial.NewTree(rect, rect.W+rect.H+1)
}

func TestTileCompilerCompileDispatchesOwnedItem(t *testing.T) {
	tree := singleTileTree(geom.Rect{W: 100, H: 100})
	scene := &flatten.Result{
		FlatDrawLists: []flatten.FlatDrawList{{
			Context: flatten.DrawContext{Overflow: geom.Rect{W: 100, H: 100}},
			DrawList: &displaylist.DrawList{
				Items: []displaylist.DisplayItem{rectItem(0, geom.Rect{X: 0, Y: 0, W: 10, H: 10})},
			},
		}},
	}
	c := &TileCompiler{Scene: scene}
	out := c.Compile(0, tree)

	if len(out.Batches) != 1 || len(out.Batches[0].Vertices) != 4 {
		t.Fatalf("expected one quad compiled for the owning tile, got %+v", out.Batches)
	}
}

func TestTileCompilerCompileSkipsNoNodeItem(t *testing.T) {
	tree := singleTileTree(geom.Rect{W: 100, H: 100})
	scene := &flatten.Result{
		FlatDrawLists: []flatten.FlatDrawList{{
			Context: flatten.DrawContext{Overflow: geom.Rect{W: 100, H: 100}},
			DrawList: &displaylist.DrawList{
				Items: []displaylist.DisplayItem{rectItem(fingerprint.NoNode, geom.Rect{X: 0, Y: 0, W: 10, H: 10})},
			},
		}},
	}
	c := &TileCompiler{Scene: scene}
	out := c.Compile(0, tree)

	if len(out.Batches) != 0 {
		t.Errorf("a NoNode item should never be painted, got %+v", out.Batches)
	}
}

func TestTileCompilerCompileSkipsEmptyClip(t *testing.T) {
	tree := singleTileTree(geom.Rect{W: 100, H: 100})
	item := rectItem(0, geom.Rect{X: 0, Y: 0, W: 10, H: 10})
	item.Clip = geom.ClipRegion{Main: geom.Rect{X: 50, Y: 50, W: 0, H: 0}}
	scene := &flatten.Result{
		FlatDrawLists: []flatten.FlatDrawList{{
			Context: flatten.DrawContext{Overflow: geom.Rect{W: 100, H: 100}},
			DrawList: &displaylist.DrawList{
				Items: []displaylist.DisplayItem{item},
			},
		}},
	}
	c := &TileCompiler{Scene: scene}
	out := c.Compile(0, tree)

	if len(out.Batches) != 0 {
		t.Errorf("an item whose clip is empty should be silently skipped, got %+v", out.Batches)
	}
}

func TestTileCompilerCompileForeignOverlapForcesFlush(t *testing.T) {
	tree := singleTileTree(geom.Rect{W: 100, H: 100})
	// Two items owned by this tile that would otherwise merge into one
	// batch, separated by an item belonging to a different node whose
	// world rect overlaps this tile — forcing the builder to flush
	// between them and keep paint order intact.
	items := []displaylist.DisplayItem{
		rectItem(0, geom.Rect{X: 0, Y: 0, W: 10, H: 10}),
		rectItem(1, geom.Rect{X: 20, Y: 20, W: 10, H: 10}),
		rectItem(0, geom.Rect{X: 0, Y: 0, W: 10, H: 10}),
	}
	scene := &flatten.Result{
		FlatDrawLists: []flatten.FlatDrawList{{
			Context: flatten.DrawContext{
				Overflow:       geom.Rect{W: 100, H: 100},
				FinalTransform: geom.Identity(),
			},
			DrawList: &displaylist.DrawList{Items: items},
		}},
	}
	c := &TileCompiler{Scene: scene}
	out := c.Compile(0, tree)

	if len(out.Batches) != 2 {
		t.Fatalf("expected the foreign overlapping item to split the batch in two, got %d batches", len(out.Batches))
	}
}

func TestTileCompilerCompileDistinctRenderTargetsGetOwnBuilders(t *testing.T) {
	tree := singleTileTree(geom.Rect{W: 100, H: 100})
	scene := &flatten.Result{
		FlatDrawLists: []flatten.FlatDrawList{
			{
				Context: flatten.DrawContext{Overflow: geom.Rect{W: 100, H: 100}, RenderTargetIndex: 0},
				DrawList: &displaylist.DrawList{
					Items: []displaylist.DisplayItem{rectItem(0, geom.Rect{X: 0, Y: 0, W: 10, H: 10})},
				},
			},
			{
				Context: flatten.DrawContext{Overflow: geom.Rect{W: 100, H: 100}, RenderTargetIndex: 1},
				DrawList: &displaylist.DrawList{
					Items: []displaylist.DisplayItem{rectItem(0, geom.Rect{X: 0, Y: 0, W: 10, H: 10})},
				},
			},
		},
	}
	c := &TileCompiler{Scene: scene}
	out := c.Compile(0, tree)

	if len(out.Batches) != 2 {
		t.Fatalf("items on two distinct render targets must not share a batch, got %d", len(out.Batches))
	}
	targets := map[int]bool{out.Batches[0].RenderTarget: true, out.Batches[1].RenderTarget: true}
	if !targets[0] || !targets[1] {
		t.Errorf("expected batches on render targets 0 and 1, got %+v", targets)
	}
}
