package displaylist

import (
	"image/color"

	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/geom"
)

// DrawList is an ordered sequence of display items sharing a paint slot.
// It has a stable identity so it can be referenced from a StackingContext
// without copying its contents.
type DrawList struct {
	ID    fingerprint.DisplayListID
	Items []DisplayItem
}

// Mode selects how a DisplayList's slots are routed during flatten. This
// implements the CSS float/positioned pseudo-stacking contexts (spec §4.1
// "DisplayListMode rewires slot destinations").
type Mode uint8

const (
	// ModeDefault routes each slot to its own paint-order position.
	ModeDefault Mode = iota
	// ModePseudoFloat routes all slots to Floats.
	ModePseudoFloat
	// ModePseudoPositionedContent routes all slots to PositionedContent.
	ModePseudoPositionedContent
)

// Slot names the six CSS paint-order slots a DisplayList can populate.
type Slot uint8

const (
	SlotBackgroundAndBorders Slot = iota
	SlotBlockBackgroundAndBorders
	SlotFloats
	SlotContent
	SlotPositionedContent
	SlotOutlines
	slotCount
)

// DisplayList is identified by (pipeline, epoch) and carries up to six
// ordered slots of draw lists, named by the CSS paint order.
type DisplayList struct {
	Pipeline fingerprint.PipelineID
	Epoch    fingerprint.Epoch
	Mode     Mode
	Slots    [slotCount][]*DrawList
}

// Route returns the effective slot a draw list placed in `from` resolves
// to, honoring Mode's rewiring.
func (d *DisplayList) Route(from Slot) Slot {
	switch d.Mode {
	case ModePseudoFloat:
		return SlotFloats
	case ModePseudoPositionedContent:
		return SlotPositionedContent
	default:
		return from
	}
}

// StackingContext carries bounds, an overflow rectangle, a blend mode,
// z-index, child stacking contexts, and the display lists it references.
type StackingContext struct {
	Bounds        geom.Rect
	Overflow      geom.Rect
	MixBlendMode  BlendMode
	ZIndex        int
	Children      []*StackingContext
	DisplayLists  []fingerprint.DisplayListID
}

// RootStackingContext is a StackingContext plus the identity needed to
// address it as the top of a pipeline's content stream.
type RootStackingContext struct {
	StackingContext
	PipelineID fingerprint.PipelineID
	Epoch      fingerprint.Epoch
	Background color.RGBA
}

// NeedsRenderTarget reports whether this context requires offscreen
// compositing: any non-Normal blend mode (spec invariant 3).
func (sc *StackingContext) NeedsRenderTarget() bool {
	return sc.MixBlendMode != BlendNormal
}
