package compiler

import "github.com/scenelayer/compositor/fingerprint"

// batchIDCounter is process-wide because batch ids must stay unique across
// frames for the delta protocol's Create/Destroy pairing (spec invariant
// 5). Batch-id allocation happens inside parallel tile compilation, so
// the counter is atomic.
var batchIDCounter atomicCounter

// DrawCommandBuilder accumulates render items for one render target and
// flushes them into RenderBatches and DrawCommands (spec §4.4, §4.5).
type DrawCommandBuilder struct {
	renderTarget int
	current      *RenderBatch
	out          *CompiledNode
}

// NewDrawCommandBuilder creates a builder for renderTarget, appending
// finished batches/commands into out.
func NewDrawCommandBuilder(renderTarget int, out *CompiledNode) *DrawCommandBuilder {
	return &DrawCommandBuilder{renderTarget: renderTarget, out: out}
}

// canAddToBatch reports whether an item needing (program, colorTex,
// maskTex) and belonging to drawListIndex can be merged into the
// in-progress batch, per spec §4.5.
func (b *DrawCommandBuilder) canAddToBatch(program Program, colorTex, maskTex fingerprint.ImageID, drawListIndex, addVertices int) bool {
	if b.current == nil {
		return false
	}
	c := b.current
	if c.Program != program || c.ColorTexture != colorTex || c.MaskTexture != maskTex {
		return false
	}
	if len(c.Vertices)+addVertices >= MaxVertices {
		return false
	}
	if _, ok := c.SlotFor(drawListIndex); ok {
		return true
	}
	return len(c.MatrixMap) < MaxPaletteSlots
}

// begin starts a new in-progress batch for the given program/textures.
func (b *DrawCommandBuilder) begin(sortKey fingerprint.ItemKey, program Program, colorTex, maskTex fingerprint.ImageID) {
	b.current = &RenderBatch{
		ID:           fingerprint.BatchID(batchIDCounter.next()),
		SortKey:      sortKey,
		Program:      program,
		ColorTexture: colorTex,
		MaskTexture:  maskTex,
		RenderTarget: b.renderTarget,
	}
}

// paletteSlot returns drawListIndex's palette slot in the in-progress
// batch, assigning one (first-come, per spec §4.5) if it doesn't have one.
func (b *DrawCommandBuilder) paletteSlot(drawListIndex int) uint8 {
	if slot, ok := b.current.SlotFor(drawListIndex); ok {
		return slot
	}
	return b.current.assignSlot(drawListIndex)
}

// AddQuad appends a quad (4 vertices, {0,1,2,2,3,1} indices) to the
// in-progress batch, flushing first if the item does not fit.
func (b *DrawCommandBuilder) AddQuad(sortKey fingerprint.ItemKey, drawListIndex int, program Program, colorTex, maskTex fingerprint.ImageID, verts [4]Vertex) {
	if !b.canAddToBatch(program, colorTex, maskTex, drawListIndex, 4) {
		b.Flush()
		b.begin(sortKey, program, colorTex, maskTex)
	}
	slot := b.paletteSlot(drawListIndex)
	base := uint16(len(b.current.Vertices))
	for i := range verts {
		verts[i].PaletteSlot = slot
	}
	b.current.Vertices = append(b.current.Vertices, verts[:]...)
	b.current.Indices = append(b.current.Indices,
		base+0, base+1, base+2, base+2, base+3, base+1)
}

// AddTriangleFan appends a triangle fan of n vertices (n>=3), emitting
// {0, i, i+1} for each interior vertex — used by gradient extrusion (spec
// §4.4 Gradient, §4.5 "Index generation").
func (b *DrawCommandBuilder) AddTriangleFan(sortKey fingerprint.ItemKey, drawListIndex int, program Program, colorTex, maskTex fingerprint.ImageID, verts []Vertex) {
	if len(verts) < 3 {
		return
	}
	if !b.canAddToBatch(program, colorTex, maskTex, drawListIndex, len(verts)) {
		b.Flush()
		b.begin(sortKey, program, colorTex, maskTex)
	}
	slot := b.paletteSlot(drawListIndex)
	base := uint16(len(b.current.Vertices))
	for i := range verts {
		verts[i].PaletteSlot = slot
	}
	b.current.Vertices = append(b.current.Vertices, verts...)
	for i := 1; i < len(verts)-1; i++ {
		b.current.Indices = append(b.current.Indices, base, base+uint16(i), base+uint16(i+1))
	}
}

// Flush closes the in-progress batch (if any), recording it as a Batch
// draw command.
func (b *DrawCommandBuilder) Flush() {
	if b.current == nil {
		return
	}
	batch := b.current
	b.current = nil
	b.out.Batches = append(b.out.Batches, batch)
	b.out.Commands = append(b.out.Commands, DrawCommand{
		RenderTarget: b.renderTarget,
		SortKey:      batch.SortKey,
		BatchID:      batch.ID,
	})
}

// Composite always flushes any open batch first (spec §4.4 Composite),
// then emits a standalone composite command.
func (b *DrawCommandBuilder) Composite(sortKey fingerprint.ItemKey, cmd CompositeCommand) {
	b.Flush()
	b.out.Commands = append(b.out.Commands, DrawCommand{
		RenderTarget: b.renderTarget,
		SortKey:      sortKey,
		IsComposite:  true,
		Composite:    cmd,
	})
}
