package grove

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// Fade animates the Alpha of an entity's Sprite. Once finished, Done is set
// and the sprite keeps the final value.
type Fade struct {
	tween *gween.Tween
	Done  bool
}

// NewFade returns a fade from one alpha to another over seconds using fn.
// A nil fn selects linear easing.
func NewFade(from, to float64, seconds float32, fn ease.TweenFunc) Fade {
	if fn == nil {
		fn = ease.Linear
	}
	return Fade{tween: gween.New(float32(from), float32(to), seconds, fn)}
}

var FadeComponent = donburi.NewComponentType[Fade]()

var fadeQuery = donburi.NewQuery(filter.Contains(FadeComponent, SpriteComponent))

// UpdateFades advances every fade by dt seconds and writes the value into
// the sprite.
func UpdateFades(w donburi.World, dt float32) {
	fadeQuery.Each(w, func(e *donburi.Entry) {
		f := FadeComponent.Get(e)
		if f.Done || f.tween == nil {
			return
		}
		val, finished := f.tween.Update(dt)
		SpriteComponent.Get(e).Alpha = float64(val)
		f.Done = finished
	})
}
