package texturecache

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/geom"
)

func TestNewMemCacheDefaultsSizeAndFormat(t *testing.T) {
	c := NewMemCache(0, 0)
	if c.width != 2048 || c.height != 2048 {
		t.Errorf("got %dx%d, want 2048x2048 default", c.width, c.height)
	}
	if c.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", c.Format())
	}
}

func TestInsertThenGetRoundTrips(t *testing.T) {
	c := NewMemCache(256, 256)
	id := fingerprint.ImageID(1)
	if err := c.Insert(id, BlitOp{Width: 10, Height: 10, Bytes: make([]byte, 400)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !c.Exists(id) {
		t.Errorf("Exists(%v) = false after Insert", id)
	}
	entry, ok := c.Get(id)
	if !ok {
		t.Fatalf("Get(%v) returned ok=false", id)
	}
	if entry.Region.W != 10 || entry.Region.H != 10 {
		t.Errorf("entry.Region = %+v, want 10x10", entry.Region)
	}
}

func TestInsertShelvesSideBySideThenStacksNewShelf(t *testing.T) {
	c := NewMemCache(100, 100)
	a := fingerprint.ImageID(1)
	b := fingerprint.ImageID(2)
	c.Insert(a, BlitOp{Width: 40, Height: 10, Bytes: make([]byte, 1600)})
	c.Insert(b, BlitOp{Width: 40, Height: 10, Bytes: make([]byte, 1600)})

	ea, _ := c.Get(a)
	eb, _ := c.Get(b)
	if ea.Region.Y != eb.Region.Y {
		t.Errorf("same-height inserts should share a shelf row: %v vs %v", ea.Region.Y, eb.Region.Y)
	}
	if eb.Region.X <= ea.Region.X {
		t.Errorf("second insert should be placed to the right of the first: %+v then %+v", ea.Region, eb.Region)
	}

	c2 := fingerprint.ImageID(3)
	c.Insert(c2, BlitOp{Width: 10, Height: 30, Bytes: make([]byte, 1200)})
	ec, _ := c.Get(c2)
	if ec.Region.Y <= ea.Region.Y {
		t.Errorf("taller insert should start a new shelf below the first: %+v", ec.Region)
	}
}

func TestInsertReturnsErrorWhenAtlasFull(t *testing.T) {
	c := NewMemCache(20, 20)
	err := c.Insert(fingerprint.ImageID(1), BlitOp{Width: 30, Height: 30, Bytes: make([]byte, 3600)})
	if err == nil {
		t.Fatalf("expected an error inserting a region larger than the atlas")
	}
}

func TestInsertUnknownOpTypeErrors(t *testing.T) {
	c := NewMemCache(100, 100)
	err := c.Insert(fingerprint.ImageID(1), bogusOp{})
	if err == nil {
		t.Fatalf("expected an error for an unrecognized InsertOp implementation")
	}
}

type bogusOp struct{}

func (bogusOp) isInsertOp() {}

func TestDrainPendingUpdatesClears(t *testing.T) {
	c := NewMemCache(100, 100)
	c.Insert(fingerprint.ImageID(1), BlitOp{Width: 4, Height: 4, Bytes: make([]byte, 64)})
	c.Insert(fingerprint.ImageID(2), BlitOp{Width: 4, Height: 4, Bytes: make([]byte, 64)})

	updates := c.DrainPendingUpdates()
	if len(updates) != 2 {
		t.Fatalf("got %d pending updates, want 2", len(updates))
	}
	if more := c.DrainPendingUpdates(); len(more) != 0 {
		t.Errorf("second drain returned %d updates, want 0", len(more))
	}
}

func TestAllocateAndFreeRenderTarget(t *testing.T) {
	c := NewMemCache(100, 100)
	id := c.AllocateRenderTarget(geom.Size{W: 64, H: 64})
	if id == 0 {
		t.Errorf("AllocateRenderTarget returned the zero id")
	}
	c.FreeRenderTarget(id)
	if _, ok := c.targets[id]; ok {
		t.Errorf("target %v still present after FreeRenderTarget", id)
	}
}

func TestNewMemCacheForDeviceStoresProvider(t *testing.T) {
	c := NewMemCacheForDevice(100, 100, nil)
	if c.device != nil {
		t.Errorf("expected nil device to round-trip as nil")
	}
}
