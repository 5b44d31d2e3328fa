// Package frame collects compiled tiles into per-render-target layers and
// recomputes matrix-palette uniforms against the current scroll offset
// (spec §4.6 Frame assembler).
package frame

import (
	"sort"

	"github.com/scenelayer/compositor/compiler"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
)

// DrawLayer is one render target's sort-ordered command stream.
type DrawLayer struct {
	RenderTarget      int
	Size              geom.Size
	HasBackingTexture bool
	BackingTexture    fingerprint.RenderTargetID
	Commands          []compiler.DrawCommand
}

// UpdateUniforms carries a batch's recomputed matrix palette: one entry per
// palette slot, in MatrixMap order.
type UpdateUniforms struct {
	BatchID       fingerprint.BatchID
	MatrixPalette []geom.Matrix
}

// Frame is the per-frame output handed to the delta protocol and, from
// there, to the renderer.
type Frame struct {
	Layers   []DrawLayer
	Uniforms []UpdateUniforms
}

// Assembler builds a Frame from the tiles compiled this pass.
type Assembler struct{}

// Assemble drains compiled's commands into one layer per render target
// (dropping empty layers), sorts each layer by DisplayItemKey, and
// recomputes every batch's uniform matrix palette against scrollOffset
// (spec §4.6, §4.7 "UpdateUniforms").
func (a *Assembler) Assemble(compiled []compiler.CompiledNode, scene *flatten.Result, scrollOffset geom.Point) Frame {
	layers := make(map[int]*DrawLayer, len(scene.RenderTargets))

	for _, node := range compiled {
		for _, cmd := range node.Commands {
			l, ok := layers[cmd.RenderTarget]
			if !ok {
				rt := scene.RenderTargets[cmd.RenderTarget]
				l = &DrawLayer{
					RenderTarget:      cmd.RenderTarget,
					Size:              rt.Size,
					HasBackingTexture: rt.HasBackingTexture,
					BackingTexture:    rt.BackingTexture,
				}
				layers[cmd.RenderTarget] = l
			}
			l.Commands = append(l.Commands, cmd)
		}
	}

	out := Frame{}
	for idx := range scene.RenderTargets {
		l, ok := layers[idx]
		if !ok || len(l.Commands) == 0 {
			continue
		}
		sort.SliceStable(l.Commands, func(i, j int) bool {
			return l.Commands[i].SortKey.Less(l.Commands[j].SortKey)
		})
		out.Layers = append(out.Layers, *l)
	}

	scrollTranslate := geom.Translate(scrollOffset.X, scrollOffset.Y)
	for _, node := range compiled {
		for _, batch := range node.Batches {
			palette := make([]geom.Matrix, len(batch.MatrixMap))
			for slot, drawListIdx := range batch.MatrixMap {
				final := scene.FlatDrawLists[drawListIdx].Context.FinalTransform
				palette[slot] = final.Multiply(scrollTranslate)
			}
			out.Uniforms = append(out.Uniforms, UpdateUniforms{BatchID: batch.ID, MatrixPalette: palette})
		}
	}

	return out
}
