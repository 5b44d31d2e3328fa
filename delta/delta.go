// Package delta produces the totally-ordered BatchUpdate stream the
// coordinator emits to the renderer between frames: destructions for
// batches that no longer exist, creations for batches built this pass, and
// uniform updates for everything retained (spec §4.7).
package delta

import (
	"github.com/scenelayer/compositor/compiler"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/frame"
	"github.com/scenelayer/compositor/geom"
)

// UpdateKind tags a BatchUpdate's variant.
type UpdateKind uint8

const (
	Destroy UpdateKind = iota
	Create
	UpdateUniforms
)

// BatchUpdate is one entry of the delta stream.
type BatchUpdate struct {
	Kind UpdateKind
	ID   fingerprint.BatchID

	// Valid when Kind == Create.
	Vertices     []compiler.Vertex
	Indices      []uint16
	Program      compiler.Program
	ColorTexture fingerprint.ImageID
	MaskTexture  fingerprint.ImageID

	// Valid when Kind == UpdateUniforms.
	MatrixPalette []geom.Matrix
}

// Tracker holds the set of batch ids the renderer currently knows about
// across frames, so Reset/Compile/Assemble can be translated into the
// Destroy/Create/UpdateUniforms stream (spec invariant 5, §4.7).
type Tracker struct {
	known map[fingerprint.BatchID]struct{}
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{known: make(map[fingerprint.BatchID]struct{})}
}

// Reset emits a Destroy for every currently-known batch and forgets them.
// Called before a full recompile (spec §4.7 "At reset time all currently-
// known batches are destroyed"); this is always ordered ahead of any
// Create for the new frame, since reset happens before compile (spec §5
// ordering guarantee iii).
func (t *Tracker) Reset() []BatchUpdate {
	updates := make([]BatchUpdate, 0, len(t.known))
	for id := range t.known {
		updates = append(updates, BatchUpdate{Kind: Destroy, ID: id})
	}
	t.known = make(map[fingerprint.BatchID]struct{})
	return updates
}

// Create emits a Create for every batch produced by this compile pass and
// records it as known.
func (t *Tracker) Create(compiled []compiler.CompiledNode) []BatchUpdate {
	var updates []BatchUpdate
	for _, node := range compiled {
		for _, b := range node.Batches {
			t.known[b.ID] = struct{}{}
			updates = append(updates, BatchUpdate{
				Kind:         Create,
				ID:           b.ID,
				Vertices:     b.Vertices,
				Indices:      b.Indices,
				Program:      b.Program,
				ColorTexture: b.ColorTexture,
				MaskTexture:  b.MaskTexture,
			})
		}
	}
	return updates
}

// Uniforms emits an UpdateUniforms entry for every retained batch this
// frame's assembly produced a palette for.
func (t *Tracker) Uniforms(f frame.Frame) []BatchUpdate {
	updates := make([]BatchUpdate, 0, len(f.Uniforms))
	for _, u := range f.Uniforms {
		updates = append(updates, BatchUpdate{Kind: UpdateUniforms, ID: u.BatchID, MatrixPalette: u.MatrixPalette})
	}
	return updates
}

// KnownIDs returns the set of batch ids the tracker currently believes the
// renderer holds, for the delta-closure property (spec §8 property 6):
// after N SetRootStackingContext messages, (Create ids) - (Destroy ids)
// must equal the ids referenced by the most recent frame.
func (t *Tracker) KnownIDs() map[fingerprint.BatchID]struct{} {
	out := make(map[fingerprint.BatchID]struct{}, len(t.known))
	for id := range t.known {
		out[id] = struct{}{}
	}
	return out
}
