package coordinator

import (
	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/geom"
)

// Message is the ingress API (spec §6): one of AddFont, AddImage,
// AddDisplayList, SetRootStackingContext, Scroll.
type Message interface{ isMessage() }

// AddFont registers a font template.
type AddFont struct {
	ID    fingerprint.FontID
	Bytes []byte
}

func (AddFont) isMessage() {}

// AddImage registers an image template.
type AddImage struct {
	ID     fingerprint.ImageID
	Width  int
	Height int
	Bytes  []byte
}

func (AddImage) isMessage() {}

// AddDisplayList stores a display list under id, assigning its per-slot
// draw lists.
type AddDisplayList struct {
	ID       fingerprint.DisplayListID
	Pipeline fingerprint.PipelineID
	Epoch    fingerprint.Epoch
	Mode     displaylist.Mode
	Slots    map[displaylist.Slot][]*displaylist.DrawList
}

func (AddDisplayList) isMessage() {}

// SetRootStackingContext replaces the root for Root.PipelineID, evicting
// older-epoch display lists for that pipeline and rebuilding the scene
// from scratch (spec §6).
type SetRootStackingContext struct {
	Root *displaylist.RootStackingContext
}

func (SetRootStackingContext) isMessage() {}

// Scroll updates the scroll offset (clamped ≤0 on each axis) and
// rerenders without reflattening (spec §6, §8 property 5).
type Scroll struct {
	Delta geom.Point
}

func (Scroll) isMessage() {}
