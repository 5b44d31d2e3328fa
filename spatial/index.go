package spatial

import (
	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/geom"
)

// Source supplies every flattened draw list's items in scene order.
// BuildFromFlat takes the lists directly and does not use it.
type Source interface {
	DrawLists() []FlatList
}

// FlatList is the minimal shape the indexer needs from a flatten.FlatDrawList:
// its items and the transform mapping them into tree space.
type FlatList struct {
	Items     []displaylist.DisplayItem
	Transform geom.Matrix
}

// BuildFromFlat inserts every item from lists into t in scene order,
// setting each DisplayItem's Node field to the tile it was assigned to
// (spec invariant 1: every visible display item appears in exactly one
// tile node).
func BuildFromFlat(t *Tree, lists []FlatList) {
	for dlIdx, fl := range lists {
		for itemIdx := range fl.Items {
			item := &fl.Items[itemIdx]
			if item.Kind == displaylist.KindComposite {
				// Composite commands are not spatially indexed: they flush
				// and stand alone regardless of tile coverage.
				continue
			}
			worldRect := fl.Transform.TransformRect(item.Rect)
			if worldRect.Empty() {
				continue // shape violation: zero-size item, silently skipped (spec §7b)
			}
			key := fingerprint.ItemKey{DrawList: dlIdx, Item: itemIdx}
			node := t.Insert(worldRect, key)
			item.Node = node
		}
	}
}
