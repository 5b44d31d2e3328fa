// Package texturecache defines the texture cache external collaborator
// (spec §2) and provides an in-memory reference implementation for tests
// and for driving the rest of the pipeline without a real GPU backend.
//
// The shelf-packing allocator is adapted from the teacher's
// internal/gpu/atlas.go RectAllocator; the LRU bookkeeping reuses
// internal/lru.Cache.
package texturecache

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/geom"
	"github.com/scenelayer/compositor/internal/lru"
)

// InsertOp is one of BlitOp or BlurOp, describing how to populate a
// texture-cache entry for an image, glyph, or procedural raster.
type InsertOp interface{ isInsertOp() }

// BlitOp is a straight copy of decoded pixel bytes (images, procedural
// rasters).
type BlitOp struct {
	Width, Height int
	Bytes         []byte
}

func (BlitOp) isInsertOp() {}

// BlurOp requests a blurred insert, used for glyphs rasterized with a
// blur radius (spec §4.3).
type BlurOp struct {
	Width, Height int
	Bytes         []byte
	BlurRadius    float64
}

func (BlurOp) isInsertOp() {}

// TextureEntry describes where an id landed in the cache.
type TextureEntry struct {
	Texture fingerprint.ImageID
	Region  geom.Rect
}

// TextureUpdate is one pending upload the renderer must apply before the
// next frame is used (spec §6 "UpdateTextureCache").
type TextureUpdate struct {
	ID     fingerprint.ImageID
	Region geom.Rect
	Bytes  []byte
}

// Cache is the external texture cache collaborator: insert, existence and
// lookup, render-target allocation/free, and a drain of pending uploads.
//
// Format reports the pixel format backing the atlas, expressed as a
// gputypes.TextureFormat so a real GPU-backed implementation shares the
// same vocabulary as the rest of the gogpu ecosystem (render.TextureDescriptor,
// render.LayeredTarget.Format) rather than this module inventing its own.
type Cache interface {
	Insert(id fingerprint.ImageID, op InsertOp) error
	Exists(id fingerprint.ImageID) bool
	Get(id fingerprint.ImageID) (TextureEntry, bool)
	AllocateRenderTarget(size geom.Size) fingerprint.RenderTargetID
	FreeRenderTarget(id fingerprint.RenderTargetID)
	DrainPendingUpdates() []TextureUpdate
	Format() gputypes.TextureFormat
}

// shelf is one horizontal strip of the packer.
type shelf struct {
	y, height, nextX int
}

// MemCache is an in-memory Cache, sized to one fixed atlas and packed with
// a shelf allocator. It exists to exercise the asset scheduler and tile
// compiler in tests without a GPU backend.
type MemCache struct {
	mu      sync.Mutex
	width   int
	height  int
	padding int
	format  gputypes.TextureFormat
	shelves []*shelf

	// device, when non-nil, is the shared GPU device a real upload path
	// would use to realize DrainPendingUpdates against (gpucontext.DeviceProvider,
	// the same handle render.DeviceHandle aliases). MemCache never calls
	// into it directly: spec.md names the texture cache an external
	// collaborator and only its interface is this module's concern.
	device gpucontext.DeviceProvider

	entries map[fingerprint.ImageID]TextureEntry
	pending []TextureUpdate

	nextTarget fingerprint.RenderTargetID
	targets    map[fingerprint.RenderTargetID]geom.Size

	// lru tracks recency for eviction diagnostics; the atlas itself never
	// evicts mid-frame (spec §7: missing entries at compile time are a
	// programmer error, so eviction must happen only between frames).
	lru *lru.Cache[fingerprint.ImageID, struct{}]
}

// NewMemCache creates an in-memory texture cache of the given atlas size,
// backed by an RGBA8 atlas.
func NewMemCache(width, height int) *MemCache {
	return NewMemCacheForDevice(width, height, nil)
}

// NewMemCacheForDevice creates an in-memory texture cache sharing provider
// as its GPU device handle, for callers that want DrainPendingUpdates
// results realized against a real device rather than held as plain bytes.
// provider may be nil.
func NewMemCacheForDevice(width, height int, provider gpucontext.DeviceProvider) *MemCache {
	if width <= 0 {
		width = 2048
	}
	if height <= 0 {
		height = 2048
	}
	return &MemCache{
		width:   width,
		height:  height,
		padding: 1,
		format:  gputypes.TextureFormatRGBA8Unorm,
		device:  provider,
		entries: make(map[fingerprint.ImageID]TextureEntry),
		targets: make(map[fingerprint.RenderTargetID]geom.Size),
		lru:     lru.New[fingerprint.ImageID, struct{}](0),
	}
}

// Format reports the atlas pixel format.
func (c *MemCache) Format() gputypes.TextureFormat {
	return c.format
}

func (c *MemCache) allocRegion(w, h int) (geom.Rect, error) {
	for _, s := range c.shelves {
		if s.height >= h && s.nextX+w+c.padding <= c.width {
			r := geom.Rect{X: float64(s.nextX), Y: float64(s.y), W: float64(w), H: float64(h)}
			s.nextX += w + c.padding
			return r, nil
		}
	}
	y := 0
	if len(c.shelves) > 0 {
		last := c.shelves[len(c.shelves)-1]
		y = last.y + last.height + c.padding
	}
	if y+h > c.height {
		return geom.Rect{}, fmt.Errorf("texturecache: atlas %dx%d is full, cannot fit %dx%d", c.width, c.height, w, h)
	}
	s := &shelf{y: y, height: h, nextX: w + c.padding}
	c.shelves = append(c.shelves, s)
	return geom.Rect{X: 0, Y: float64(y), W: float64(w), H: float64(h)}, nil
}

// Insert places op's bytes for id, allocating atlas space if id is new or
// its size changed; otherwise the existing region is rewritten.
func (c *MemCache) Insert(id fingerprint.ImageID, op InsertOp) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var w, h int
	var bytes []byte
	switch v := op.(type) {
	case BlitOp:
		w, h, bytes = v.Width, v.Height, v.Bytes
	case BlurOp:
		w, h, bytes = v.Width, v.Height, v.Bytes
	default:
		return fmt.Errorf("texturecache: unknown insert op %T", op)
	}

	entry, exists := c.entries[id]
	region := entry.Region
	if !exists || int(region.W) != w || int(region.H) != h {
		var err error
		region, err = c.allocRegion(w, h)
		if err != nil {
			return err
		}
	}
	c.entries[id] = TextureEntry{Texture: id, Region: region}
	c.lru.Set(id, struct{}{})
	c.pending = append(c.pending, TextureUpdate{ID: id, Region: region, Bytes: bytes})
	return nil
}

// Exists reports whether id has already been inserted.
func (c *MemCache) Exists(id fingerprint.ImageID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// Get returns id's cache entry.
func (c *MemCache) Get(id fingerprint.ImageID) (TextureEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e, ok
}

// AllocateRenderTarget reserves a new offscreen render-target id.
func (c *MemCache) AllocateRenderTarget(size geom.Size) fingerprint.RenderTargetID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextTarget++
	id := c.nextTarget
	c.targets[id] = size
	return id
}

// FreeRenderTarget releases a previously allocated render target.
func (c *MemCache) FreeRenderTarget(id fingerprint.RenderTargetID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.targets, id)
}

// DrainPendingUpdates returns and clears the accumulated texture updates.
func (c *MemCache) DrainPendingUpdates() []TextureUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}
