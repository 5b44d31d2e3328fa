package asset

import (
	"testing"

	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
)

func TestBuildResourceListDedupesAcrossItems(t *testing.T) {
	glyph := fingerprint.GlyphKey{Font: 1, Size: 12, Glyph: 5}
	items := []*displaylist.DisplayItem{
		{Kind: displaylist.KindImage, Image: &displaylist.ImageItem{Image: 42}},
		{Kind: displaylist.KindImage, Image: &displaylist.ImageItem{Image: 42}},
		{Kind: displaylist.KindText, Text: &displaylist.TextItem{
			Font: 1, Size: 12,
			Glyphs: []displaylist.GlyphInstance{{Index: 5}, {Index: 5}, {Index: 6}},
		}},
	}

	rl := BuildResourceList(items)

	if len(rl.Images) != 1 || rl.Images[0] != 42 {
		t.Errorf("Images = %v, want [42] deduplicated", rl.Images)
	}
	if len(rl.Glyphs) != 2 {
		t.Fatalf("Glyphs = %v, want 2 distinct glyph keys", rl.Glyphs)
	}
	if rl.Glyphs[0] != glyph {
		t.Errorf("Glyphs[0] = %+v, want %+v", rl.Glyphs[0], glyph)
	}
}

func TestBuildResourceListBoxShadowOnlyWhenRoundedOrBlurred(t *testing.T) {
	items := []*displaylist.DisplayItem{
		{Kind: displaylist.KindBoxShadow, BoxShadow: &displaylist.BoxShadowItem{CornerRadius: 0, BlurRadius: 0}},
	}
	rl := BuildResourceList(items)
	if len(rl.Rasters) != 0 {
		t.Errorf("expected no raster for a sharp, unblurred box shadow, got %v", rl.Rasters)
	}

	items = []*displaylist.DisplayItem{
		{Kind: displaylist.KindBoxShadow, BoxShadow: &displaylist.BoxShadowItem{BlurRadius: 6}},
	}
	rl = BuildResourceList(items)
	if len(rl.Rasters) != 1 || rl.Rasters[0].Kind != fingerprint.RasterBoxShadowCorner {
		t.Errorf("expected one box-shadow-corner raster, got %v", rl.Rasters)
	}
}

func TestBuildResourceListBorderDedupesSameRadius(t *testing.T) {
	items := []*displaylist.DisplayItem{
		{Kind: displaylist.KindBorder, Border: &displaylist.BorderItem{
			Radii: displaylist.CornerRadii{TopLeft: 4, TopRight: 4, BottomRight: 4, BottomLeft: 0},
		}},
	}
	rl := BuildResourceList(items)
	if len(rl.Rasters) != 1 {
		t.Fatalf("got %d rasters, want 1 (three equal radii dedupe, zero radius skipped)", len(rl.Rasters))
	}
	if rl.Rasters[0].Kind != fingerprint.RasterBorderCorner || rl.Rasters[0].OuterRadiusX != 4 {
		t.Errorf("got %+v, want a border-corner raster of radius 4", rl.Rasters[0])
	}
}
