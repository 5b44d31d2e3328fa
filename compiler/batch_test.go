package compiler

import (
	"testing"

	"github.com/scenelayer/compositor/fingerprint"
)

func key(dl, item int) fingerprint.ItemKey { return fingerprint.ItemKey{DrawList: dl, Item: item} }

func TestAddQuadMergesSameProgramAndTextures(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)

	var verts [4]Vertex
	b.AddQuad(key(0, 0), 0, ProgramRectangle, WhiteTexture, DummyMask, verts)
	b.AddQuad(key(0, 1), 1, ProgramRectangle, WhiteTexture, DummyMask, verts)
	b.Flush()

	if len(out.Batches) != 1 {
		t.Fatalf("got %d batches, want 1 (same program/textures should merge)", len(out.Batches))
	}
	if len(out.Batches[0].Vertices) != 8 {
		t.Errorf("got %d vertices, want 8 (two quads)", len(out.Batches[0].Vertices))
	}
	if len(out.Batches[0].Indices) != 12 {
		t.Errorf("got %d indices, want 12 (two quads x 6)", len(out.Batches[0].Indices))
	}
}

func TestAddQuadSplitsOnTextureMismatch(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)

	var verts [4]Vertex
	b.AddQuad(key(0, 0), 0, ProgramImage, fingerprint.ImageID(1), DummyMask, verts)
	b.AddQuad(key(0, 1), 1, ProgramImage, fingerprint.ImageID(2), DummyMask, verts)
	b.Flush()

	if len(out.Batches) != 2 {
		t.Fatalf("got %d batches, want 2 (different color textures must not merge)", len(out.Batches))
	}
}

func TestAddQuadSplitsOnProgramMismatch(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)

	var verts [4]Vertex
	b.AddQuad(key(0, 0), 0, ProgramRectangle, WhiteTexture, DummyMask, verts)
	b.AddQuad(key(0, 1), 1, ProgramImage, WhiteTexture, DummyMask, verts)
	b.Flush()

	if len(out.Batches) != 2 {
		t.Fatalf("got %d batches, want 2 (different programs must not merge)", len(out.Batches))
	}
}

func TestAddQuadSharesSlotForSameDrawListIndex(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)

	var verts [4]Vertex
	b.AddQuad(key(0, 0), 5, ProgramRectangle, WhiteTexture, DummyMask, verts)
	b.AddQuad(key(0, 1), 5, ProgramRectangle, WhiteTexture, DummyMask, verts)
	b.Flush()

	if len(out.Batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(out.Batches))
	}
	if len(out.Batches[0].MatrixMap) != 1 {
		t.Errorf("got %d palette slots, want 1 (both quads share drawListIndex 5)", len(out.Batches[0].MatrixMap))
	}
	for _, v := range out.Batches[0].Vertices {
		if v.PaletteSlot != 0 {
			t.Errorf("vertex palette slot = %d, want 0", v.PaletteSlot)
		}
	}
}

func TestAddQuadFlushesWhenPaletteFull(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)

	var verts [4]Vertex
	for i := 0; i < MaxPaletteSlots; i++ {
		b.AddQuad(key(0, i), i, ProgramRectangle, WhiteTexture, DummyMask, verts)
	}
	// One more distinct drawListIndex should force a new batch.
	b.AddQuad(key(0, MaxPaletteSlots), MaxPaletteSlots, ProgramRectangle, WhiteTexture, DummyMask, verts)
	b.Flush()

	if len(out.Batches) != 2 {
		t.Fatalf("got %d batches, want 2 (palette overflow forces a new batch)", len(out.Batches))
	}
	if len(out.Batches[0].MatrixMap) != MaxPaletteSlots {
		t.Errorf("first batch has %d palette slots, want %d", len(out.Batches[0].MatrixMap), MaxPaletteSlots)
	}
}

func TestFlushNoOpWhenNothingPending(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)
	b.Flush()
	if len(out.Batches) != 0 || len(out.Commands) != 0 {
		t.Errorf("Flush on an empty builder should not emit anything, got %d batches, %d commands", len(out.Batches), len(out.Commands))
	}
}

func TestCompositeFlushesOpenBatchFirst(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)

	var verts [4]Vertex
	b.AddQuad(key(0, 0), 0, ProgramRectangle, WhiteTexture, DummyMask, verts)
	b.Composite(key(0, 1), CompositeCommand{SourceTexture: 7})

	if len(out.Batches) != 1 {
		t.Fatalf("got %d batches, want 1 (open batch flushed before composite)", len(out.Batches))
	}
	if len(out.Commands) != 2 {
		t.Fatalf("got %d commands, want 2 (batch command + composite command)", len(out.Commands))
	}
	if !out.Commands[1].IsComposite || out.Commands[1].Composite.SourceTexture != 7 {
		t.Errorf("second command = %+v, want a composite referencing target 7", out.Commands[1])
	}
}

func TestAddTriangleFanRejectsTooFewVertices(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)
	b.AddTriangleFan(key(0, 0), 0, ProgramGradient, WhiteTexture, DummyMask, []Vertex{{}, {}})
	b.Flush()
	if len(out.Batches) != 0 {
		t.Errorf("a 2-vertex fan should be rejected, got %d batches", len(out.Batches))
	}
}

func TestAddTriangleFanEmitsNMinus2Triangles(t *testing.T) {
	out := &CompiledNode{}
	b := NewDrawCommandBuilder(0, out)
	verts := make([]Vertex, 5)
	b.AddTriangleFan(key(0, 0), 0, ProgramGradient, WhiteTexture, DummyMask, verts)
	b.Flush()
	if len(out.Batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(out.Batches))
	}
	if got, want := len(out.Batches[0].Indices), 3*3; got != want {
		t.Errorf("got %d indices, want %d (3 triangles x 3 indices for 5 verts)", got, want)
	}
}
