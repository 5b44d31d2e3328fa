// Package compiler implements the per-tile compiler and batch builder
// (spec §4.4, §4.5): for each visible, not-yet-compiled tile, it consumes
// display items in scene order and emits RenderBatch buffers and
// DrawCommands.
package compiler

import (
	"github.com/gogpu/gputypes"

	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
)

// MaxPaletteSlots is the matrix palette's per-batch capacity (spec
// invariant 4).
const MaxPaletteSlots = 32

// MaxVertices is the per-batch vertex cap, chosen so indices fit in
// uint16 (spec §3 RenderBatch invariants).
const MaxVertices = 65535

// Program names the vertex/fragment program family a batch is drawn with.
type Program uint8

const (
	ProgramRectangle Program = iota
	ProgramGlyph
	ProgramImage
	ProgramGradient
	ProgramBoxShadow
	ProgramBorder
)

// Vertex is one packed GPU vertex: position, texture coordinate, a
// per-vertex color, and a matrix-palette slot index. Color travels here
// rather than as a batch-level uniform so that two items sharing a
// program and textures but differing only in color (spec §8 S2) can
// still merge into one RenderBatch.
type Vertex struct {
	X, Y        float32
	U, V        float32
	R, G, B, A  float32
	PaletteSlot uint8
}

// vertexStride is Vertex's packed byte size: 2 float32 + 2 float32 + 4
// float32 + 1 uint8, padded to a 4-byte boundary the way a GPU vertex
// buffer layout requires.
const vertexStride = 4*4 + 4*4 + 4

// VertexAttributes describes Vertex's layout as a slice of
// gputypes.VertexAttribute, in the shape backend/native's
// RenderPipelineDescriptor.VertexBufferLayouts expects: one attribute per
// shader-visible field, each with its shader location, format, and byte
// offset within the packed vertex.
func VertexAttributes() []gputypes.VertexAttribute {
	return []gputypes.VertexAttribute{
		{ShaderLocation: 0, Format: gputypes.VertexFormatFloat32x2, Offset: 0},
		{ShaderLocation: 1, Format: gputypes.VertexFormatFloat32x2, Offset: 8},
		{ShaderLocation: 2, Format: gputypes.VertexFormatFloat32x4, Offset: 16},
		{ShaderLocation: 3, Format: gputypes.VertexFormatUint8x4, Offset: 32},
	}
}

// RenderBatch is a maximal group of items sharing program and textures,
// emitted as one GPU draw call (spec GLOSSARY "Batch").
type RenderBatch struct {
	ID             fingerprint.BatchID
	SortKey        fingerprint.ItemKey
	Program        Program
	ColorTexture   fingerprint.ImageID
	MaskTexture    fingerprint.ImageID
	RenderTarget   int
	Vertices       []Vertex
	Indices        []uint16
	MatrixMap      []int // DrawListIndex, indexed by palette slot
	matrixSlot     map[int]uint8
}

// SlotFor returns the palette slot drawListIndex already occupies, or
// (0, false) if it has not been assigned one yet.
func (b *RenderBatch) SlotFor(drawListIndex int) (uint8, bool) {
	slot, ok := b.matrixSlot[drawListIndex]
	return slot, ok
}

// assignSlot assigns drawListIndex the next free palette slot. Caller
// must have already verified there is room (len(MatrixMap) < MaxPaletteSlots).
func (b *RenderBatch) assignSlot(drawListIndex int) uint8 {
	if b.matrixSlot == nil {
		b.matrixSlot = make(map[int]uint8)
	}
	slot := uint8(len(b.MatrixMap))
	b.matrixSlot[drawListIndex] = slot
	b.MatrixMap = append(b.MatrixMap, drawListIndex)
	return slot
}

// DrawCommand is either a reference to a compiled batch or a standalone
// composite. Both carry a render-target index and sort key for frame
// assembly ordering.
type DrawCommand struct {
	RenderTarget int
	SortKey      fingerprint.ItemKey

	IsComposite bool
	BatchID     fingerprint.BatchID // valid when !IsComposite

	Composite CompositeCommand // valid when IsComposite
}

// CompositeCommand blends an offscreen render target back into its parent.
type CompositeCommand struct {
	SourceTexture fingerprint.RenderTargetID
	BlendMode     displaylist.BlendMode
	Rect          [4]float64 // x, y, w, h
}

// CompiledNode is the output of compiling one tile: its batches and
// commands. It is exclusively owned by the worker that compiled it until
// the parallel scope joins (spec §5).
type CompiledNode struct {
	Batches  []*RenderBatch
	Commands []DrawCommand
}
