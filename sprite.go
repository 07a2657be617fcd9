package grove

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// Sprite draws an image, or one frame of a sprite sheet, at the entity's
// Transform. Higher Z draws on top.
type Sprite struct {
	Image *ebiten.Image
	Sheet *SpriteSheet
	Frame int
	Z     float64
	Alpha float64
}

// current returns the image to draw, or nil.
func (s *Sprite) current() *ebiten.Image {
	if s.Sheet != nil {
		return s.Sheet.Frame(s.Frame)
	}
	return s.Image
}

var SpriteComponent = donburi.NewComponentType[Sprite]()

var spriteQuery = donburi.NewQuery(filter.Contains(SpriteComponent, TransformComponent))

// SpawnSprite creates an entity with Transform, Sprite and every component in
// extra. Values for extra components are left zero; set them on the returned
// entry. A zero Alpha is taken as fully opaque.
func SpawnSprite(w donburi.World, s Sprite, pos mgl64.Vec3, extra ...donburi.IComponentType) *donburi.Entry {
	if s.Alpha == 0 {
		s.Alpha = 1
	}
	comps := append([]donburi.IComponentType{TransformComponent, SpriteComponent}, extra...)
	e := w.Entry(w.Create(comps...))
	TransformComponent.SetValue(e, Transform{Position: pos})
	SpriteComponent.SetValue(e, s)
	return e
}

type drawItem struct {
	sprite    *Sprite
	transform *Transform
}

// DrawSprites draws every sprite in w to screen. World coordinates have
// their origin at the screen center with Y pointing up; rotation is
// counter-clockwise in radians. Equal Z keeps creation order.
func DrawSprites(w donburi.World, screen *ebiten.Image) {
	var items []drawItem
	spriteQuery.Each(w, func(e *donburi.Entry) {
		items = append(items, drawItem{
			sprite:    SpriteComponent.Get(e),
			transform: TransformComponent.Get(e),
		})
	})
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].sprite.Z < items[j].sprite.Z
	})

	bounds := screen.Bounds()
	cx := float64(bounds.Dx()) / 2
	cy := float64(bounds.Dy()) / 2

	var op ebiten.DrawImageOptions
	for _, it := range items {
		img := it.sprite.current()
		if img == nil || it.sprite.Alpha <= 0 {
			continue
		}
		ib := img.Bounds()
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Translate(-float64(ib.Dx())/2, -float64(ib.Dy())/2)
		op.GeoM.Rotate(-it.transform.Rotation)
		op.GeoM.Translate(cx+it.transform.Position.X(), cy-it.transform.Position.Y())
		op.ColorScale.ScaleAlpha(float32(it.sprite.Alpha))
		screen.DrawImage(img, &op)
	}
}
