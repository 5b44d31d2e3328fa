// Package displaylist holds the immutable, declarative scene description
// produced by the layout engine: stacking contexts, display lists, and the
// display items they contain. Nothing in this package is mutated by the
// compiler; each message replacing the root produces a new tree.
package displaylist

import (
	"image/color"

	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/geom"
)

// ItemKind tags the variant carried by a DisplayItem. A tagged union (one
// tag per kind, dispatched with a switch on Kind in the compiler) is used
// instead of an inheritance hierarchy, per spec §9 "Polymorphic display
// items".
type ItemKind uint8

const (
	KindRectangle ItemKind = iota
	KindText
	KindImage
	KindGradient
	KindBoxShadow
	KindBorder
	KindComposite
	KindIframe
)

// BlendMode mirrors the CSS mix-blend-mode values relevant to compositing
// isolation (spec invariant 3 / 4).
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendDarken
	BlendLighten
)

// DisplayItem is one paint primitive. Exactly one of the Kind-selected
// fields below is populated; the compiler dispatches on Kind.
type DisplayItem struct {
	Kind ItemKind
	Rect geom.Rect
	Clip geom.ClipRegion

	// Node is set once the item has been inserted into the spatial index;
	// it records which tile "owns" the item for compilation purposes
	// (spec invariant 1).
	Node fingerprint.NodeIndex

	Rectangle   *RectangleItem
	Text        *TextItem
	Image       *ImageItem
	Gradient    *GradientItem
	BoxShadow   *BoxShadowItem
	Border      *BorderItem
	Composite   *CompositeItem
	Iframe      *IframeItem
}

// RectangleItem is a solid-color filled rectangle.
type RectangleItem struct {
	Color color.RGBA
}

// GlyphInstance is one shaped glyph within a text run.
type GlyphInstance struct {
	Index  fingerprint.GlyphIndex
	Offset geom.Point // pen-relative offset within the run
}

// TextItem is a run of shaped glyphs painted with one font/size/color.
type TextItem struct {
	Font  fingerprint.FontID
	Size  float32
	Blur  float32
	Color color.RGBA
	Glyphs []GlyphInstance

	// Text is the original logical-order text the glyphs were shaped
	// from, one rune per entry in Glyphs. It is optional: a display list
	// built directly from pre-shaped glyphs (the common case for a
	// retained scene) may leave it empty, in which case glyphs are
	// treated as already being in visual (paint) order. When present, it
	// lets the compiler resolve bidi visual order before grouping glyphs
	// by atlas texture (spec §4.4, §8 S4).
	Text string
}

// ImageItem references a registered image, optionally tiled.
type ImageItem struct {
	Image       fingerprint.ImageID
	StretchSize geom.Size
}

// GradientStop is one color stop along a gradient axis.
type GradientStop struct {
	Offset float64 // 0..1 along Start->End
	Color  color.RGBA
}

// GradientItem is a linear gradient between two points.
type GradientItem struct {
	Start geom.Point
	End   geom.Point
	Stops []GradientStop
}

// ClipMode controls how a box-shadow's inner region is clipped.
type ClipMode uint8

const (
	ClipModeNone ClipMode = iota
	ClipModeInset
)

// BoxShadowItem is a CSS box-shadow.
type BoxShadowItem struct {
	Offset       geom.Point
	Color        color.RGBA
	BlurRadius   float64
	SpreadRadius float64
	CornerRadius float64
	Clip         ClipMode
}

// BorderStyle is the paint style of one border side.
type BorderStyle uint8

const (
	BorderSolid BorderStyle = iota
	BorderDashed
	BorderDotted
	BorderDouble
	BorderInset
	BorderOutset
)

// BorderSide describes one edge of a border.
type BorderSide struct {
	Width float64
	Style BorderStyle
	Color color.RGBA
}

// CornerRadii is a per-corner outer radius.
type CornerRadii struct {
	TopLeft, TopRight, BottomRight, BottomLeft float64
}

// BorderItem is a four-sided border with independent per-side style and
// per-corner outer radius.
type BorderItem struct {
	Top, Right, Bottom, Left BorderSide
	Radii                    CornerRadii
}

// CompositeItem references an offscreen render target to be blended back
// into its enclosing target (spec invariant 3).
type CompositeItem struct {
	Source    fingerprint.RenderTargetID
	BlendMode BlendMode
}

// IframeItem recurses into another pipeline's root stacking context at a
// fixed offset. Per spec §4.1 step 8, iframes ignore z-index against
// siblings and do not inherit arbitrary transforms — this is a documented
// limitation, not a bug to fix here.
type IframeItem struct {
	Pipeline fingerprint.PipelineID
	Offset   geom.Point
}
