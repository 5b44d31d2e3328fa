package asset

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/fontctx"
	"github.com/scenelayer/compositor/geom"
	"github.com/scenelayer/compositor/internal/wpool"
	"github.com/scenelayer/compositor/texturecache"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[fingerprint.ImageID]texturecache.TextureEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[fingerprint.ImageID]texturecache.TextureEntry)}
}

func (c *fakeCache) Insert(id fingerprint.ImageID, op texturecache.InsertOp) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = texturecache.TextureEntry{Texture: id}
	return nil
}
func (c *fakeCache) Exists(id fingerprint.ImageID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}
func (c *fakeCache) Get(id fingerprint.ImageID) (texturecache.TextureEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e, ok
}
func (c *fakeCache) AllocateRenderTarget(geom.Size) fingerprint.RenderTargetID { return 1 }
func (c *fakeCache) FreeRenderTarget(fingerprint.RenderTargetID)               {}
func (c *fakeCache) DrainPendingUpdates() []texturecache.TextureUpdate         { return nil }
func (c *fakeCache) Format() gputypes.TextureFormat                           { return gputypes.TextureFormatRGBA8Unorm }

type fakeImageSource struct{ known map[fingerprint.ImageID]bool }

func (s fakeImageSource) ImageBytes(id fingerprint.ImageID) (int, int, []byte, bool) {
	if !s.known[id] {
		return 0, 0, nil, false
	}
	return 4, 4, make([]byte, 64), true
}

type fakeRasterSource struct{}

func (fakeRasterSource) Rasterize(key fingerprint.RasterKey) (int, int, []byte, bool) {
	return 8, 8, make([]byte, 64), true
}

type fakeGlyphContext struct{}

func (fakeGlyphContext) RasterizeGlyph(font fingerprint.FontID, size, blur float32, glyph fingerprint.GlyphIndex) (fontctx.GlyphRaster, error) {
	return fontctx.GlyphRaster{Width: 4, Height: 4, Bytes: make([]byte, 16)}, nil
}

func TestSchedulerRunInsertsImagesRastersAndGlyphs(t *testing.T) {
	pool := wpool.NewWorkerPool(2)
	defer pool.Close()

	cache := newFakeCache()
	s := &Scheduler{
		Cache:   cache,
		Images:  fakeImageSource{known: map[fingerprint.ImageID]bool{42: true}},
		Rasters: fakeRasterSource{},
		Pool:    pool,
	}
	if err := s.InitWorkers(func() (fontctx.Context, error) { return fakeGlyphContext{}, nil }); err != nil {
		t.Fatalf("InitWorkers: %v", err)
	}

	glyph := fingerprint.GlyphKey{Font: 1, Size: 12, Glyph: 3}
	raster := fingerprint.RasterKey{Kind: fingerprint.RasterBorderCorner, OuterRadiusX: 4, OuterRadiusY: 4}
	rl := ResourceList{
		Images:  []fingerprint.ImageID{42},
		Glyphs:  []fingerprint.GlyphKey{glyph},
		Rasters: []fingerprint.RasterKey{raster},
	}

	if err := s.Run(rl); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !cache.Exists(fingerprint.ImageID(42)) {
		t.Errorf("image 42 was not inserted")
	}
	if !cache.Exists(raster.ImageID()) {
		t.Errorf("raster was not inserted")
	}
	if !cache.Exists(glyph.ImageID()) {
		t.Errorf("glyph was not inserted")
	}
}

func TestSchedulerRunMissingImageErrors(t *testing.T) {
	pool := wpool.NewWorkerPool(1)
	defer pool.Close()

	s := &Scheduler{
		Cache:   newFakeCache(),
		Images:  fakeImageSource{known: map[fingerprint.ImageID]bool{}},
		Rasters: fakeRasterSource{},
		Pool:    pool,
	}
	err := s.Run(ResourceList{Images: []fingerprint.ImageID{7}})
	if err == nil {
		t.Fatalf("expected an error for a missing image template")
	}
}

func TestSchedulerRunSkipsAlreadyCachedResources(t *testing.T) {
	pool := wpool.NewWorkerPool(1)
	defer pool.Close()

	cache := newFakeCache()
	cache.Insert(fingerprint.ImageID(42), texturecache.BlitOp{})

	callCount := 0
	s := &Scheduler{
		Cache: cache,
		Images: countingImageSource{fakeImageSource{known: map[fingerprint.ImageID]bool{42: true}}, &callCount},
		Rasters: fakeRasterSource{},
		Pool:    pool,
	}
	if err := s.Run(ResourceList{Images: []fingerprint.ImageID{42}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if callCount != 0 {
		t.Errorf("ImageBytes was called %d times for an already-cached image, want 0", callCount)
	}
}

type countingImageSource struct {
	fakeImageSource
	calls *int
}

func (s countingImageSource) ImageBytes(id fingerprint.ImageID) (int, int, []byte, bool) {
	*s.calls++
	return s.fakeImageSource.ImageBytes(id)
}

func TestSchedulerRunGlyphsWithBlurInflatesSize(t *testing.T) {
	pool := wpool.NewWorkerPool(1)
	defer pool.Close()

	var gotBytes []byte
	insertedWidth := 0
	cache := &inspectingCache{fakeCache: newFakeCache()}

	s := &Scheduler{
		Cache:   cache,
		Images:  fakeImageSource{},
		Rasters: fakeRasterSource{},
		Pool:    pool,
	}
	if err := s.InitWorkers(func() (fontctx.Context, error) { return fakeGlyphContext{}, nil }); err != nil {
		t.Fatalf("InitWorkers: %v", err)
	}

	glyph := fingerprint.GlyphKey{Font: 1, Size: 12, Blur: 2, Glyph: 9}
	if err := s.Run(ResourceList{Glyphs: []fingerprint.GlyphKey{glyph}}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	insertedWidth = cache.lastWidth
	gotBytes = cache.lastBytes
	if insertedWidth <= 4 {
		t.Errorf("blurred glyph insert width = %d, want > 4 (inflated by BlurInflationFactor)", insertedWidth)
	}
	if len(gotBytes) != 16 {
		t.Errorf("blurred glyph bytes length = %d, want 16 (raw raster bytes, not re-sized)", len(gotBytes))
	}
}

type inspectingCache struct {
	*fakeCache
	lastWidth int
	lastBytes []byte
}

func (c *inspectingCache) Insert(id fingerprint.ImageID, op texturecache.InsertOp) error {
	switch v := op.(type) {
	case texturecache.BlurOp:
		c.lastWidth = v.Width
		c.lastBytes = v.Bytes
	case texturecache.BlitOp:
		c.lastWidth = v.Width
		c.lastBytes = v.Bytes
	default:
		return fmt.Errorf("unexpected op %T", op)
	}
	return c.fakeCache.Insert(id, op)
}
