// Package coordinator runs the single-threaded scene-compiler loop (spec
// §5): it owns the scene store, texture cache, worker pool, and spatial
// index, services ingress messages strictly FIFO, and emits egress
// results through a Sink. There is no cancellation or per-message timeout
// — a frame that begins completes, and a closed ingress channel ends the
// loop cleanly (spec §5 "Cancellation and timeouts: none").
package coordinator

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"

	"github.com/scenelayer/compositor/asset"
	"github.com/scenelayer/compositor/compiler"
	"github.com/scenelayer/compositor/delta"
	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/fontctx"
	"github.com/scenelayer/compositor/frame"
	"github.com/scenelayer/compositor/geom"
	"github.com/scenelayer/compositor/internal/wpool"
	"github.com/scenelayer/compositor/spatial"
	"github.com/scenelayer/compositor/texturecache"
)

// Sink receives the coordinator's egress results (spec §6 "Egress
// channel").
type Sink interface {
	UpdateTextureCache(updates []texturecache.TextureUpdate)
	UpdateBatches(updates []delta.BatchUpdate)
	NewFrame(f frame.Frame)
	FrameReady()
}

// Config configures a Coordinator.
type Config struct {
	// ViewportSize is the fixed window size culling is performed against;
	// Scroll translates this rectangle through content space rather than
	// reflattening (spec §6 Scroll, §8 property 5).
	ViewportSize     geom.Size
	DevicePixelRatio float64
	SplitSize        float64 // spatial.DefaultSplitSize if <= 0
	Workers          int     // 8 if <= 0 (spec §5 default)
	FontFactory      fontctx.Factory
	Cache            texturecache.Cache // NewMemCache default if nil
	RasterSource     asset.RasterSource // asset.DefaultRasterSource if nil
	Logger           *slog.Logger

	// Device, when set and Cache is nil, is passed to
	// texturecache.NewMemCacheForDevice so the default cache shares a GPU
	// device handle with the host application (render.DeviceHandle in the
	// gogpu ecosystem) instead of allocating its own.
	Device gpucontext.DeviceProvider
}

// Coordinator is the scene compiler's single-threaded control loop.
type Coordinator struct {
	cache  texturecache.Cache
	pool   *wpool.WorkerPool
	sched  *asset.Scheduler
	store  *sceneStore
	logger *slog.Logger

	viewport geom.Size
	dpr      float64
	splitSize float64

	scrollOffset geom.Point
	tracker      *delta.Tracker

	scene *flatten.Result
	tree  *spatial.Tree
}

// New constructs a Coordinator and provisions its worker pool's font
// contexts. The returned Coordinator is ready for Run.
func New(cfg Config) (*Coordinator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := cfg.Cache
	if cache == nil {
		cache = texturecache.NewMemCacheForDevice(0, 0, cfg.Device)
	}
	rasters := cfg.RasterSource
	if rasters == nil {
		rasters = asset.DefaultRasterSource{}
	}
	dpr := cfg.DevicePixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	store := newSceneStore()
	pool := wpool.NewWorkerPool(workers)
	sched := &asset.Scheduler{Cache: cache, Images: store, Rasters: rasters, Pool: pool, Logger: logger}
	if cfg.FontFactory != nil {
		if err := sched.InitWorkers(cfg.FontFactory); err != nil {
			pool.Close()
			return nil, fmt.Errorf("coordinator: %w", err)
		}
	}

	return &Coordinator{
		cache:     cache,
		pool:      pool,
		sched:     sched,
		store:     store,
		logger:    logger,
		viewport:  cfg.ViewportSize,
		dpr:       dpr,
		splitSize: cfg.SplitSize,
		tracker:   delta.NewTracker(),
	}, nil
}

// Close releases the worker pool.
func (c *Coordinator) Close() { c.pool.Close() }

// Run services messages strictly FIFO until the channel is closed.
func (c *Coordinator) Run(messages <-chan Message, sink Sink) {
	for msg := range messages {
		c.handle(msg, sink)
	}
}

func (c *Coordinator) handle(msg Message, sink Sink) {
	switch m := msg.(type) {
	case AddFont:
		c.store.addFont(m.ID, m.Bytes)
	case AddImage:
		c.store.addImage(m.ID, m.Width, m.Height, m.Bytes)
	case AddDisplayList:
		dl := &displaylist.DisplayList{Pipeline: m.Pipeline, Epoch: m.Epoch, Mode: m.Mode}
		for slot, lists := range m.Slots {
			dl.Slots[slot] = lists
		}
		c.store.addDisplayList(m.ID, dl)
	case SetRootStackingContext:
		c.store.evictOlderEpochs(m.Root.PipelineID, m.Root.Epoch)
		c.store.setRoot(m.Root)
		c.rebuild(m.Root, sink)
	case Scroll:
		c.scroll(m.Delta, sink)
	default:
		c.logger.Warn("coordinator: unknown message type", "type", fmt.Sprintf("%T", msg))
	}
}

// viewportRect is the culling rectangle in content space: the fixed
// viewport window translated opposite the (clamped-negative) scroll
// offset, so scrolling down/right reveals content further down/right
// without needing a separate reflatten.
func (c *Coordinator) viewportRect() geom.Rect {
	return geom.Rect{
		X: -c.scrollOffset.X, Y: -c.scrollOffset.Y,
		W: c.viewport.W, H: c.viewport.H,
	}
}

// rebuild runs the full pipeline: flatten, index, cull, schedule assets,
// compile, assemble, emit deltas (spec §2 "Control flow per frame").
func (c *Coordinator) rebuild(root *displaylist.RootStackingContext, sink Sink) {
	f := &flatten.Flattener{Allocator: c.cache, Source: c.store, Logger: c.logger}
	scene := f.Flatten(root, c.dpr)
	c.scene = &scene

	tree := spatial.NewTree(root.Overflow, c.splitSize)
	spatial.BuildFromFlat(tree, flatListsFor(scene))
	c.tree = tree

	destroys := c.tracker.Reset()

	c.renderCurrent(sink, destroys)
}

// scroll updates the offset (clamped ≤0 per axis), re-culls the retained
// tree against the translated viewport, and recompiles only the
// newly-visible tiles (spec §6 Scroll, §8 property 5).
func (c *Coordinator) scroll(delta geom.Point, sink Sink) {
	c.scrollOffset.X = clampNonPositive(c.scrollOffset.X + delta.X)
	c.scrollOffset.Y = clampNonPositive(c.scrollOffset.Y + delta.Y)

	if c.tree == nil {
		return // nothing flattened yet
	}
	c.renderCurrent(sink, nil)
}

func clampNonPositive(v float64) float64 {
	if v > 0 {
		return 0
	}
	return v
}

// renderCurrent culls the current tree, compiles any visible-but-uncompiled
// tile, assembles the frame against the current scroll offset, and emits
// the egress results. destroys, when non-nil, are batch updates from a
// preceding Reset (spec §5 ordering guarantee: Destroy precedes Create).
func (c *Coordinator) renderCurrent(sink Sink, destroys []delta.BatchUpdate) {
	c.tree.Cull(c.viewportRect())
	visible := c.tree.VisibleNodes()

	newlyCompiled := c.scheduleAndCompile(visible)

	all := make([]compiler.CompiledNode, 0, len(visible))
	for _, idx := range visible {
		n := c.tree.Node(idx)
		if cn, ok := n.Compiled.(compiler.CompiledNode); ok {
			all = append(all, cn)
		}
	}

	assembler := &frame.Assembler{}
	fr := assembler.Assemble(all, c.scene, c.scrollOffset)

	updates := destroys
	updates = append(updates, c.tracker.Create(newlyCompiled)...)
	updates = append(updates, c.tracker.Uniforms(fr)...)

	if texUpdates := c.cache.DrainPendingUpdates(); len(texUpdates) > 0 {
		sink.UpdateTextureCache(texUpdates)
	}
	if len(updates) > 0 {
		sink.UpdateBatches(updates)
	}
	sink.NewFrame(fr)
	sink.FrameReady()
}

// scheduleAndCompile builds resource lists and schedules assets for every
// visible tile lacking a compiled state, then compiles those tiles across
// the worker pool (spec §5 "used twice per frame"). Already-compiled tiles
// (retained across a scroll) are left untouched.
func (c *Coordinator) scheduleAndCompile(visible []fingerprint.NodeIndex) []compiler.CompiledNode {
	var pending []fingerprint.NodeIndex
	for _, idx := range visible {
		if c.tree.Node(idx).Compiled == nil {
			pending = append(pending, idx)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	resourceLists := make([]asset.ResourceList, len(pending))
	buildWork := make([]func(), len(pending))
	for i, idx := range pending {
		i, idx := i, idx
		buildWork[i] = func() {
			node := c.tree.Node(idx)
			items := make([]*displaylist.DisplayItem, 0, len(node.Items))
			for _, key := range node.Items {
				if item, _, ok := c.scene.Item(key); ok {
					items = append(items, item)
				}
			}
			resourceLists[i] = asset.BuildResourceList(items)
		}
	}
	c.pool.ExecuteAll(buildWork)

	for _, rl := range resourceLists {
		if err := c.sched.Run(rl); err != nil {
			c.logger.Error("coordinator: asset scheduling failed", "error", err)
		}
	}

	compiled := make([]compiler.CompiledNode, len(pending))
	compileWork := make([]func(), len(pending))
	for i, idx := range pending {
		i, idx := i, idx
		compileWork[i] = func() {
			tc := &compiler.TileCompiler{Scene: c.scene, Cache: c.cache, Logger: c.logger}
			compiled[i] = tc.Compile(idx, c.tree)
		}
	}
	c.pool.ExecuteAll(compileWork)

	for i, idx := range pending {
		c.tree.Node(idx).Compiled = compiled[i]
	}
	return compiled
}

func flatListsFor(scene flatten.Result) []spatial.FlatList {
	out := make([]spatial.FlatList, len(scene.FlatDrawLists))
	for i, fdl := range scene.FlatDrawLists {
		out[i] = spatial.FlatList{Items: fdl.DrawList.Items, Transform: fdl.Context.FinalTransform}
	}
	return out
}
