package frame

import (
	"testing"

	"github.com/scenelayer/compositor/compiler"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
)

func sceneWithTargets(targets ...flatten.RenderTarget) *flatten.Result {
	return &flatten.Result{
		RenderTargets: targets,
		FlatDrawLists: []flatten.FlatDrawList{
			{Context: flatten.DrawContext{FinalTransform: geom.Identity()}},
		},
	}
}

func TestAssembleGroupsByRenderTargetAndDropsEmpty(t *testing.T) {
	scene := sceneWithTargets(
		flatten.RenderTarget{},
		flatten.RenderTarget{HasBackingTexture: true, BackingTexture: 9},
	)
	compiled := []compiler.CompiledNode{{
		Commands: []compiler.DrawCommand{
			{RenderTarget: 0, SortKey: fingerprint.ItemKey{DrawList: 0, Item: 0}},
		},
	}}

	a := &Assembler{}
	out := a.Assemble(compiled, scene, geom.Point{})

	if len(out.Layers) != 1 {
		t.Fatalf("got %d layers, want 1 (target 1 has no commands and must be dropped)", len(out.Layers))
	}
	if out.Layers[0].RenderTarget != 0 {
		t.Errorf("layer render target = %d, want 0", out.Layers[0].RenderTarget)
	}
}

func TestAssembleSortsCommandsByItemKey(t *testing.T) {
	scene := sceneWithTargets(flatten.RenderTarget{})
	compiled := []compiler.CompiledNode{{
		Commands: []compiler.DrawCommand{
			{RenderTarget: 0, SortKey: fingerprint.ItemKey{DrawList: 2, Item: 0}},
			{RenderTarget: 0, SortKey: fingerprint.ItemKey{DrawList: 0, Item: 5}},
			{RenderTarget: 0, SortKey: fingerprint.ItemKey{DrawList: 0, Item: 1}},
		},
	}}

	a := &Assembler{}
	out := a.Assemble(compiled, scene, geom.Point{})

	if len(out.Layers) != 1 || len(out.Layers[0].Commands) != 3 {
		t.Fatalf("expected a single layer with 3 commands, got %+v", out.Layers)
	}
	cmds := out.Layers[0].Commands
	for i := 1; i < len(cmds); i++ {
		if cmds[i].SortKey.Less(cmds[i-1].SortKey) {
			t.Fatalf("commands are not sorted ascending by item key: %+v", cmds)
		}
	}
}

func TestAssembleRecomputesPaletteWithScrollOffset(t *testing.T) {
	scene := sceneWithTargets(flatten.RenderTarget{})
	scene.FlatDrawLists[0].Context.FinalTransform = geom.Translate(10, 0)
	compiled := []compiler.CompiledNode{{
		Batches: []*compiler.RenderBatch{{
			ID:        fingerprint.BatchID(1),
			MatrixMap: []int{0},
		}},
	}}

	a := &Assembler{}
	out := a.Assemble(compiled, scene, geom.Point{X: 5, Y: 0})

	if len(out.Uniforms) != 1 {
		t.Fatalf("got %d uniform updates, want 1", len(out.Uniforms))
	}
	got := out.Uniforms[0].MatrixPalette[0]
	want := geom.Translate(10, 0).Multiply(geom.Translate(5, 0))
	if got != want {
		t.Errorf("recomputed palette matrix = %+v, want %+v (draw-list transform composed with scroll)", got, want)
	}
}

func TestAssembleEmptyInputProducesEmptyFrame(t *testing.T) {
	scene := sceneWithTargets(flatten.RenderTarget{})
	a := &Assembler{}
	out := a.Assemble(nil, scene, geom.Point{})
	if len(out.Layers) != 0 || len(out.Uniforms) != 0 {
		t.Errorf("expected an empty frame, got %+v", out)
	}
}
