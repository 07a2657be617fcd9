package grove

import (
	"time"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

type animationOp uint8

const (
	opNextFrame animationOp = iota
	opGoToFrame
	opSwitchTo
)

// AnimationOption is applied when a frame's duration runs out. Options of
// one frame apply in order.
type AnimationOption struct {
	op    animationOp
	frame int
	name  string
}

// NextFrame advances to the following frame, wrapping to the first.
func NextFrame() AnimationOption {
	return AnimationOption{op: opNextFrame}
}

// GoToFrame jumps to frame i of the current animation.
func GoToFrame(i int) AnimationOption {
	return AnimationOption{op: opGoToFrame, frame: i}
}

// SwitchTo starts the named animation from its first frame.
func SwitchTo(name string) AnimationOption {
	return AnimationOption{op: opSwitchTo, name: name}
}

// AnimationFrame shows sprite-sheet frame Index for Duration.
type AnimationFrame struct {
	Index    int
	Duration time.Duration
	Options  []AnimationOption
}

// NewAnimationFrame is shorthand for a frame with a duration in milliseconds.
func NewAnimationFrame(index int, ms int, opts ...AnimationOption) AnimationFrame {
	return AnimationFrame{Index: index, Duration: time.Duration(ms) * time.Millisecond, Options: opts}
}

// PerFrameAnimation is a sequence of frames, each with its own duration.
type PerFrameAnimation struct {
	Frames []AnimationFrame
}

// Animations is a named set of animations shared by every animated entity.
type Animations struct {
	byName map[string]PerFrameAnimation
}

// NewAnimations returns an empty set; add animations with With.
func NewAnimations() *Animations {
	return &Animations{byName: make(map[string]PerFrameAnimation)}
}

// With adds or replaces the animation called name.
func (a *Animations) With(name string, frames ...AnimationFrame) *Animations {
	a.byName[name] = PerFrameAnimation{Frames: frames}
	return a
}

// Get returns the animation called name.
func (a *Animations) Get(name string) (PerFrameAnimation, bool) {
	anim, ok := a.byName[name]
	return anim, ok
}

// AnimationCycle is the playback position of one entity.
type AnimationCycle struct {
	Name    string
	frame   int
	elapsed time.Duration
}

// NewAnimationCycle starts playback of the named animation.
func NewAnimationCycle(name string) AnimationCycle {
	return AnimationCycle{Name: name}
}

// Switch starts the named animation from its first frame. Switching to the
// animation already playing keeps its position.
func (c *AnimationCycle) Switch(name string) {
	if c.Name == name {
		return
	}
	c.Name = name
	c.frame = 0
	c.elapsed = 0
}

// Position returns the index into the current animation's frame list.
func (c *AnimationCycle) Position() int {
	return c.frame
}

func (c *AnimationCycle) apply(opts []AnimationOption, frames int) {
	for _, o := range opts {
		switch o.op {
		case opNextFrame:
			c.frame++
			if c.frame >= frames {
				c.frame = 0
			}
		case opGoToFrame:
			c.frame = o.frame
		case opSwitchTo:
			c.Name = o.name
			c.frame = 0
		}
	}
}

var AnimationComponent = donburi.NewComponentType[AnimationCycle]()

var animationQuery = donburi.NewQuery(filter.Contains(AnimationComponent, SpriteComponent))

// CycleAnimations advances every animated sprite by dt and sets the sprite's
// sheet frame. Entities naming an unknown animation are left alone.
func CycleAnimations(w donburi.World, anims *Animations, dt time.Duration) {
	animationQuery.Each(w, func(e *donburi.Entry) {
		c := AnimationComponent.Get(e)
		anim, ok := anims.Get(c.Name)
		if !ok || len(anim.Frames) == 0 {
			return
		}
		if c.frame < 0 || c.frame >= len(anim.Frames) {
			c.frame = 0
		}
		c.elapsed += dt
		if f := anim.Frames[c.frame]; c.elapsed >= f.Duration {
			c.elapsed = 0
			c.apply(f.Options, len(anim.Frames))
			if next, ok := anims.Get(c.Name); ok && len(next.Frames) > 0 {
				anim = next
			}
			if c.frame < 0 || c.frame >= len(anim.Frames) {
				c.frame = 0
			}
		}
		SpriteComponent.Get(e).Frame = anim.Frames[c.frame].Index
	})
}
