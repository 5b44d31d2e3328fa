// Package flatten walks the stacking-context tree and materializes it into
// a flat, depth-ordered array of draw lists with accumulated transforms —
// the "painter's algorithm" linearization that every later stage (spatial
// indexing, compilation, frame assembly) operates on.
package flatten

import (
	"log/slog"

	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/geom"
)

// DrawContext is the per-draw-list state accumulated during flatten: which
// render target it paints into, its overflow clip, device pixel ratio, and
// final transform.
type DrawContext struct {
	RenderTargetIndex int
	Overflow          geom.Rect
	DevicePixelRatio  float64
	FinalTransform    geom.Matrix
}

// FlatDrawList is a draw list materialized into the scene. Its index in
// the FlatDrawLists slice is its sort key within its render target (spec
// §3 "The array index is the draw-list's sort key").
type FlatDrawList struct {
	Context  DrawContext
	DrawList *displaylist.DrawList
}

// RenderTarget is either the default framebuffer (HasBackingTexture == false)
// or an allocated offscreen texture, and the set of draw-list indices that
// paint into it.
type RenderTarget struct {
	Size              geom.Size
	HasBackingTexture bool
	BackingTexture    fingerprint.RenderTargetID
	DrawListIndices   []int
}

// Result is the output of a Flatten pass.
type Result struct {
	FlatDrawLists    []FlatDrawList
	RenderTargets    []RenderTarget
	PipelineEpochMap map[fingerprint.PipelineID]fingerprint.Epoch
}

// Item resolves an ItemKey to its DisplayItem and owning FlatDrawList.
// Returns ok=false if the key is out of range (e.g. stale after a
// re-flatten).
func (r *Result) Item(key fingerprint.ItemKey) (*displaylist.DisplayItem, *FlatDrawList, bool) {
	if key.DrawList < 0 || key.DrawList >= len(r.FlatDrawLists) {
		return nil, nil, false
	}
	fdl := &r.FlatDrawLists[key.DrawList]
	if key.Item < 0 || key.Item >= len(fdl.DrawList.Items) {
		return nil, nil, false
	}
	return &fdl.DrawList.Items[key.Item], fdl, true
}

// Allocator allocates an offscreen texture for a newly pushed render
// target. This is the external texture-cache collaborator named in spec
// §2 — the flattener only needs to reserve an id and size, not produce
// pixels.
type Allocator interface {
	AllocateRenderTarget(size geom.Size) fingerprint.RenderTargetID
}

// DisplayListSource resolves a DisplayListID to its DisplayList and, for
// Iframe items, a PipelineID to its current RootStackingContext.
type DisplayListSource interface {
	DisplayList(id fingerprint.DisplayListID) (*displaylist.DisplayList, bool)
	RootStackingContext(pipeline fingerprint.PipelineID) (*displaylist.RootStackingContext, bool)
}

// Flattener performs the depth-first walk described in spec §4.1.
type Flattener struct {
	Allocator Allocator
	Source    DisplayListSource
	Logger    *slog.Logger

	targets []RenderTarget
	flat    []FlatDrawList
	epochs  map[fingerprint.PipelineID]fingerprint.Epoch

	// targetStack is a pushdown automaton used only during flatten; it is
	// not needed once the flat list is frozen (spec §9 "Render-target stack").
	targetStack []int
}

func (f *Flattener) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Flatten walks root and produces the flat draw-list array, render-target
// list, and pipeline/epoch map.
func (f *Flattener) Flatten(root *displaylist.RootStackingContext, dpr float64) Result {
	f.targets = []RenderTarget{{Size: geom.Size{W: root.Overflow.W, H: root.Overflow.H}}}
	f.flat = nil
	f.epochs = make(map[fingerprint.PipelineID]fingerprint.Epoch)
	f.targetStack = []int{0}

	f.walkRoot(root, geom.Identity(), dpr)

	return Result{
		FlatDrawLists:    f.flat,
		RenderTargets:    f.targets,
		PipelineEpochMap: f.epochs,
	}
}

func (f *Flattener) currentTarget() int { return f.targetStack[len(f.targetStack)-1] }

func (f *Flattener) pushFlat(dl *displaylist.DrawList, transform geom.Matrix, overflow geom.Rect, dpr float64) {
	if dl == nil || len(dl.Items) == 0 {
		return
	}
	idx := len(f.flat)
	target := f.currentTarget()
	f.flat = append(f.flat, FlatDrawList{
		Context: DrawContext{
			RenderTargetIndex: target,
			Overflow:          overflow,
			DevicePixelRatio:  dpr,
			FinalTransform:    transform,
		},
		DrawList: dl,
	})
	f.targets[target].DrawListIndices = append(f.targets[target].DrawListIndices, idx)
}

// walkRoot handles the root-variant specific background rectangle (step 3)
// before recursing as an ordinary stacking context.
func (f *Flattener) walkRoot(root *displaylist.RootStackingContext, transform geom.Matrix, dpr float64) {
	f.epochs[root.PipelineID] = root.Epoch

	transform = transform.Multiply(geom.Translate(root.Bounds.X, root.Bounds.Y))

	if root.Background.A > 0 {
		bg := &displaylist.DrawList{
			Items: []displaylist.DisplayItem{{
				Kind:      displaylist.KindRectangle,
				Rect:      root.Overflow,
				Clip:      geom.ClipRegion{Main: root.Overflow},
				Node:      fingerprint.NoNode,
				Rectangle: &displaylist.RectangleItem{Color: root.Background},
			}},
		}
		f.pushFlat(bg, transform, root.Overflow, dpr)
	}

	f.walkChildrenAndSlots(&root.StackingContext, transform, dpr)
}

// walk handles an ordinary (non-root) stacking context: steps 1,2,4-10 of
// spec §4.1.
func (f *Flattener) walk(sc *displaylist.StackingContext, transform geom.Matrix, dpr float64) {
	transform = transform.Multiply(geom.Translate(sc.Bounds.X, sc.Bounds.Y))

	if sc.NeedsRenderTarget() {
		texID := fingerprint.RenderTargetID(0)
		if f.Allocator != nil {
			texID = f.Allocator.AllocateRenderTarget(geom.Size{W: sc.Overflow.W, H: sc.Overflow.H})
		}

		composite := &displaylist.DrawList{
			Items: []displaylist.DisplayItem{{
				Kind: displaylist.KindComposite,
				Rect: sc.Overflow,
				Clip: geom.ClipRegion{Main: sc.Overflow},
				Node: fingerprint.NoNode,
				Composite: &displaylist.CompositeItem{
					Source:    texID,
					BlendMode: sc.MixBlendMode,
				},
			}},
		}
		f.pushFlat(composite, transform, sc.Overflow, dpr)

		newTargetIdx := len(f.targets)
		f.targets = append(f.targets, RenderTarget{
			Size:              geom.Size{W: sc.Overflow.W, H: sc.Overflow.H},
			HasBackingTexture: true,
			BackingTexture:    texID,
		})
		f.targetStack = append(f.targetStack, newTargetIdx)
		defer func() { f.targetStack = f.targetStack[:len(f.targetStack)-1] }()

		// Step 2: identity transform replaces the accumulated transform
		// inside the new isolated target.
		transform = geom.Identity()
	}

	f.walkChildrenAndSlots(sc, transform, dpr)
}

// walkChildrenAndSlots implements steps 4-9: background/border slots,
// negative-z children, mid slots, non-negative-z children, iframe
// recursion, outlines.
func (f *Flattener) walkChildrenAndSlots(sc *displaylist.StackingContext, transform geom.Matrix, dpr float64) {
	lists := f.resolveLists(sc)

	// Step 4: background-and-borders.
	f.emitSlot(lists, displaylist.SlotBackgroundAndBorders, transform, sc.Overflow, dpr)

	// Step 5: recurse into negative z-index children, in order.
	for _, child := range sortedByZ(sc.Children, true) {
		f.walk(child, transform, dpr)
	}

	// Step 6.
	f.emitSlot(lists, displaylist.SlotBlockBackgroundAndBorders, transform, sc.Overflow, dpr)
	f.emitSlot(lists, displaylist.SlotFloats, transform, sc.Overflow, dpr)
	f.emitSlot(lists, displaylist.SlotContent, transform, sc.Overflow, dpr)
	f.emitSlot(lists, displaylist.SlotPositionedContent, transform, sc.Overflow, dpr)

	// Step 7: recurse into non-negative z-index children, in order.
	for _, child := range sortedByZ(sc.Children, false) {
		f.walk(child, transform, dpr)
	}

	// Step 8: iframe recursion. Known limitation (spec §4.1 step 8):
	// iframes do not inherit arbitrary transforms and ignore z-index
	// against siblings — they are painted here, between positioned
	// content and outlines, using a translated identity transform.
	for _, dl := range lists {
		for slot := displaylist.Slot(0); slot < displaylist.SlotOutlines; slot++ {
			for _, item := range dl.Slots[slot] {
				f.emitIframes(item, dpr)
			}
		}
	}

	// Step 9: outlines.
	f.emitSlot(lists, displaylist.SlotOutlines, transform, sc.Overflow, dpr)
}

// emitSlot appends every draw list whose origin slot routes to `target`
// (see DisplayList.Route) into the flat list, in origin-slot order. For
// Mode == Default, origin and target coincide; for the pseudo-stacking
// modes every origin slot routes to a single target, so the whole display
// list is emitted once, at that target's position in the paint order.
func (f *Flattener) emitSlot(lists []*displaylist.DisplayList, target displaylist.Slot, transform geom.Matrix, overflow geom.Rect, dpr float64) {
	for _, dl := range lists {
		for origin := displaylist.Slot(0); origin <= displaylist.SlotOutlines; origin++ {
			if dl.Route(origin) != target {
				continue
			}
			for _, drawList := range dl.Slots[origin] {
				f.pushFlat(drawList, transform, overflow, dpr)
			}
		}
	}
}

func (f *Flattener) emitIframes(item *displaylist.DrawList, dpr float64) {
	if item == nil {
		return
	}
	for _, di := range item.Items {
		if di.Kind != displaylist.KindIframe || di.Iframe == nil {
			continue
		}
		root, ok := f.Source.RootStackingContext(di.Iframe.Pipeline)
		if !ok {
			f.logger().Debug("iframe pipeline not found", "pipeline", di.Iframe.Pipeline)
			continue
		}
		iframeTransform := geom.Translate(di.Iframe.Offset.X, di.Iframe.Offset.Y)
		f.walkRoot(root, iframeTransform, dpr)
	}
}

func (f *Flattener) resolveLists(sc *displaylist.StackingContext) []*displaylist.DisplayList {
	lists := make([]*displaylist.DisplayList, 0, len(sc.DisplayLists))
	for _, id := range sc.DisplayLists {
		if dl, ok := f.Source.DisplayList(id); ok {
			lists = append(lists, dl)
		} else {
			f.logger().Debug("display list not found, skipping", "id", id)
		}
	}
	return lists
}

// sortedByZ returns children with ZIndex < 0 (if negative) or >= 0 (if
// !negative), preserving original order (stable, matching spec §4.1 steps
// 5 and 7: "in order").
func sortedByZ(children []*displaylist.StackingContext, negative bool) []*displaylist.StackingContext {
	out := make([]*displaylist.StackingContext, 0, len(children))
	for _, c := range children {
		if (c.ZIndex < 0) == negative {
			out = append(out, c)
		}
	}
	return out
}
