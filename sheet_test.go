package grove

import (
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestGridRegionsRowMajor(t *testing.T) {
	regions := gridRegions(SheetGeometry{TileWidth: 32, TileHeight: 16, Columns: 3, Rows: 2})
	if len(regions) != 6 {
		t.Fatalf("expected 6 regions, got %d", len(regions))
	}
	want := []TextureRegion{
		{0, 0, 32, 16}, {32, 0, 32, 16}, {64, 0, 32, 16},
		{0, 16, 32, 16}, {32, 16, 32, 16}, {64, 16, 32, 16},
	}
	for i := range want {
		if regions[i] != want[i] {
			t.Errorf("region %d = %+v, want %+v", i, regions[i], want[i])
		}
	}
}

func TestSpriteSheetFrames(t *testing.T) {
	page := ebiten.NewImage(248, 65)
	sheet := NewSpriteSheet(page, SheetGeometry{TileWidth: 62, TileHeight: 65, Columns: 4, Rows: 1})

	if sheet.Len() != 4 {
		t.Fatalf("Len = %d, want 4", sheet.Len())
	}
	f := sheet.Frame(2)
	if got, want := f.Bounds(), image.Rect(124, 0, 186, 65); got != want {
		t.Errorf("frame 2 bounds = %v, want %v", got, want)
	}
	if sheet.Frame(2) != f {
		t.Error("frame sub-image not cached")
	}
}

func TestSpriteSheetWraps(t *testing.T) {
	sheet := NewSpriteSheet(ebiten.NewImage(64, 32), SheetGeometry{TileWidth: 32, TileHeight: 32, Columns: 2, Rows: 1})
	if got := sheet.Region(2); got != sheet.Region(0) {
		t.Errorf("Region(2) = %+v, want frame 0", got)
	}
	if got := sheet.Region(-1); got != sheet.Region(1) {
		t.Errorf("Region(-1) = %+v, want frame 1", got)
	}
}

func TestTextureRegionRect(t *testing.T) {
	r := TextureRegion{X: 10, Y: 20, Width: 30, Height: 40}
	if got, want := r.Rect(), image.Rect(10, 20, 40, 60); got != want {
		t.Errorf("Rect = %v, want %v", got, want)
	}
}
