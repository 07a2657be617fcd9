package grove

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes one tile within a sprite sheet page.
// Value type, stored directly on the sheet.
type TextureRegion struct {
	X, Y          int // top-left corner within the page
	Width, Height int
}

// Rect returns the region as an image.Rectangle.
func (r TextureRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// SpriteSheet is the composite built from a loaded image and a tile grid.
// Frames are numbered row-major starting at the top-left tile.
type SpriteSheet struct {
	// Page is the source image. Frames are sub-images of it.
	Page    *ebiten.Image
	Sheet   SheetGeometry
	regions []TextureRegion
	frames  []*ebiten.Image
}

// NewSpriteSheet partitions page into the grid described by g.
func NewSpriteSheet(page *ebiten.Image, g SheetGeometry) *SpriteSheet {
	regions := gridRegions(g)
	return &SpriteSheet{
		Page:    page,
		Sheet:   g,
		regions: regions,
		frames:  make([]*ebiten.Image, len(regions)),
	}
}

// gridRegions lays out a columns×rows grid row-major.
func gridRegions(g SheetGeometry) []TextureRegion {
	regions := make([]TextureRegion, 0, g.Frames())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			regions = append(regions, TextureRegion{
				X:      col * g.TileWidth,
				Y:      row * g.TileHeight,
				Width:  g.TileWidth,
				Height: g.TileHeight,
			})
		}
	}
	return regions
}

// Len returns the number of frames.
func (s *SpriteSheet) Len() int {
	return len(s.regions)
}

// Region returns the region of frame i. Out-of-range indices wrap.
func (s *SpriteSheet) Region(i int) TextureRegion {
	return s.regions[s.wrap(i)]
}

// Frame returns the sub-image for frame i, creating it on first use.
// Out-of-range indices wrap.
func (s *SpriteSheet) Frame(i int) *ebiten.Image {
	i = s.wrap(i)
	if s.frames[i] == nil {
		s.frames[i] = s.Page.SubImage(s.regions[i].Rect()).(*ebiten.Image)
	}
	return s.frames[i]
}

func (s *SpriteSheet) wrap(i int) int {
	n := len(s.regions)
	if n == 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
