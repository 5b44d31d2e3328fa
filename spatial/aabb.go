// Package spatial implements the AABB tree spatial index: binary
// subdivision of the root overflow rectangle used to assign each display
// item to exactly one tile, and to cull tiles against a viewport. Nodes
// are stored in a flat arena addressed by index rather than owning child
// pointers, so tiles are cheap to pass around and compile in parallel
// (spec §9 "Cyclic-graph avoidance").
package spatial

import (
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/geom"
)

// DefaultSplitSize is the default split threshold in device-independent
// units (spec §4.2).
const DefaultSplitSize = 512

// Node is one node of the AABB tree: its rectangle, optional child pair,
// visibility flag, and the display-item keys assigned here.
type Node struct {
	Rect     geom.Rect
	Children *[2]fingerprint.NodeIndex // nil until split
	Visible  bool
	Items    []fingerprint.ItemKey

	// Resources and Compiled are opaque payload slots for later stages,
	// so that package spatial has no dependency on them. The coordinator
	// stores each tile's compiled output in Compiled; no stage in this
	// module populates Resources.
	Resources any
	Compiled  any
}

// Tree is the AABB tree over a single root overflow rectangle.
type Tree struct {
	nodes     []Node
	splitSize float64
}

// NewTree creates a tree over sceneRect with the given split threshold.
// A splitSize <= 0 uses DefaultSplitSize.
func NewTree(sceneRect geom.Rect, splitSize float64) *Tree {
	if splitSize <= 0 {
		splitSize = DefaultSplitSize
	}
	return &Tree{
		nodes:     []Node{{Rect: sceneRect}},
		splitSize: splitSize,
	}
}

// Node returns the node at idx.
func (t *Tree) Node(idx fingerprint.NodeIndex) *Node { return &t.nodes[idx] }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// splitIfNeeded splits a leaf node on its dominant axis when it exceeds
// the split threshold, per spec §4.2: "split on read" (lazily, the first
// time a rect is inserted against it), 50/50 on the dominant axis.
func (t *Tree) splitIfNeeded(idx fingerprint.NodeIndex) {
	n := &t.nodes[idx]
	if n.Children != nil {
		return
	}
	r := n.Rect

	var left, right geom.Rect
	switch {
	case r.W > t.splitSize && r.W >= r.H:
		half := r.W * 0.5
		left = geom.Rect{X: r.X, Y: r.Y, W: half, H: r.H}
		right = geom.Rect{X: r.X + half, Y: r.Y, W: r.W - half, H: r.H}
	case r.H > t.splitSize:
		half := r.H * 0.5
		left = geom.Rect{X: r.X, Y: r.Y, W: r.W, H: half}
		right = geom.Rect{X: r.X, Y: r.Y + half, W: r.W, H: r.H - half}
	default:
		return
	}

	childIdx := fingerprint.NodeIndex(len(t.nodes))
	t.nodes = append(t.nodes, Node{Rect: left}, Node{Rect: right})
	// Re-fetch n: append may have reallocated the backing array.
	n = &t.nodes[idx]
	n.Children = &[2]fingerprint.NodeIndex{childIdx, childIdx + 1}
}

// findBestNode descends from idx toward the deepest node whose rectangle
// fully-or-singly intersects rect, per spec §4.2.
func (t *Tree) findBestNode(idx fingerprint.NodeIndex, rect geom.Rect) fingerprint.NodeIndex {
	t.splitIfNeeded(idx)

	n := &t.nodes[idx]
	if n.Children == nil {
		return idx
	}
	left, right := n.Children[0], n.Children[1]
	leftHit := t.nodes[left].Rect.Intersects(rect)
	rightHit := t.nodes[right].Rect.Intersects(rect)

	switch {
	case leftHit && rightHit:
		return idx
	case leftHit:
		return t.findBestNode(left, rect)
	case rightHit:
		return t.findBestNode(right, rect)
	default:
		return fingerprint.NoNode
	}
}

// Insert assigns rect (the item's transformed rectangle) to the deepest
// node that fully-or-singly contains it and records key there. Returns
// the assigned node, or fingerprint.NoNode if the insert was dropped
// because rect intersects neither child (spec invariant 1 is maintained
// by construction: every insert call stores at most one node).
func (t *Tree) Insert(rect geom.Rect, key fingerprint.ItemKey) fingerprint.NodeIndex {
	idx := t.findBestNode(0, rect)
	if idx == fingerprint.NoNode {
		return fingerprint.NoNode
	}
	t.nodes[idx].Items = append(t.nodes[idx].Items, key)
	return idx
}

// Cull marks every node whose rectangle intersects viewport as visible,
// stopping descent at non-intersecting nodes (spec §4.2).
func (t *Tree) Cull(viewport geom.Rect) {
	for i := range t.nodes {
		t.nodes[i].Visible = false
	}
	if len(t.nodes) > 0 {
		t.checkVisibility(0, viewport)
	}
}

func (t *Tree) checkVisibility(idx fingerprint.NodeIndex, viewport geom.Rect) {
	n := &t.nodes[idx]
	if !n.Rect.Intersects(viewport) {
		return
	}
	n.Visible = true
	if n.Children != nil {
		t.checkVisibility(n.Children[0], viewport)
		t.checkVisibility(n.Children[1], viewport)
	}
}

// VisibleNodes returns the indices of all currently visible nodes, in
// arena order.
func (t *Tree) VisibleNodes() []fingerprint.NodeIndex {
	var out []fingerprint.NodeIndex
	for i := range t.nodes {
		if t.nodes[i].Visible {
			out = append(out, fingerprint.NodeIndex(i))
		}
	}
	return out
}
