package asset

import (
	"testing"

	"github.com/scenelayer/compositor/fingerprint"
)

func TestDefaultRasterSourceRoundedCorner(t *testing.T) {
	src := DefaultRasterSource{}
	w, h, bytes, ok := src.Rasterize(fingerprint.RasterKey{
		Kind: fingerprint.RasterRoundedCorner, OuterRadiusX: 8, OuterRadiusY: 8,
	})
	if !ok {
		t.Fatalf("expected ok=true for a valid rounded-corner key")
	}
	if w <= 0 || h <= 0 {
		t.Fatalf("got %dx%d, want positive dimensions", w, h)
	}
	if len(bytes) != w*h {
		t.Fatalf("got %d bytes, want %d (w*h)", len(bytes), w*h)
	}
	// Innermost corner pixel (closest to center) should be fully covered.
	if bytes[len(bytes)-1] != 0xff {
		t.Errorf("innermost pixel = %d, want 0xff (fully inside the quarter circle)", bytes[len(bytes)-1])
	}
	// Outermost corner pixel should be uncovered.
	if bytes[0] != 0 {
		t.Errorf("outermost pixel = %d, want 0 (outside the quarter circle)", bytes[0])
	}
}

func TestDefaultRasterSourceBoxShadowFeathersWithBlur(t *testing.T) {
	src := DefaultRasterSource{}
	_, _, sharp, ok := src.Rasterize(fingerprint.RasterKey{Kind: fingerprint.RasterBoxShadowCorner, OuterRadiusX: 8, OuterRadiusY: 8})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	_, _, blurred, ok := src.Rasterize(fingerprint.RasterKey{Kind: fingerprint.RasterBoxShadowCorner, OuterRadiusX: 8, OuterRadiusY: 8, BlurRadius: 4})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if len(blurred) <= len(sharp) {
		t.Errorf("blurred mask (%d bytes) should be larger than the unblurred mask (%d bytes)", len(blurred), len(sharp))
	}
}

func TestDefaultRasterSourceZeroRadiusIsInvalid(t *testing.T) {
	src := DefaultRasterSource{}
	_, _, _, ok := src.Rasterize(fingerprint.RasterKey{Kind: fingerprint.RasterBorderCorner, OuterRadiusX: 0, OuterRadiusY: 0})
	if ok {
		t.Errorf("expected ok=false for a zero-radius raster key")
	}
}

func TestDefaultRasterSourceUnknownKind(t *testing.T) {
	src := DefaultRasterSource{}
	_, _, _, ok := src.Rasterize(fingerprint.RasterKey{Kind: fingerprint.RasterKind(99), OuterRadiusX: 8, OuterRadiusY: 8})
	if ok {
		t.Errorf("expected ok=false for an unrecognized raster kind")
	}
}
