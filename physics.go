package grove

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// PhysicsTickTime is the fixed physics step.
const PhysicsTickTime = 33 * time.Millisecond

// --- Clock ---

// PhysicsClock turns variable frame time into fixed physics ticks. It fires
// at most one tick per Advance; time beyond whole ticks carries forward and
// is never caught up. Under a sustained stall physics slows down instead of
// running several steps in one frame.
type PhysicsClock struct {
	acc  int64 // milliseconds
	tick int64 // milliseconds
}

// NewPhysicsClock returns a clock that ticks every interval, truncated to
// whole milliseconds. A non-positive interval selects PhysicsTickTime.
func NewPhysicsClock(interval time.Duration) PhysicsClock {
	ms := interval.Milliseconds()
	if ms <= 0 {
		ms = PhysicsTickTime.Milliseconds()
	}
	return PhysicsClock{tick: ms}
}

// Advance adds elapsed to the accumulator and reports whether a tick fired.
// When it fires, the accumulator keeps only the remainder modulo the tick.
func (c *PhysicsClock) Advance(elapsed time.Duration) bool {
	if c.tick == 0 {
		c.tick = PhysicsTickTime.Milliseconds()
	}
	c.acc += elapsed.Milliseconds()
	if c.acc < c.tick {
		return false
	}
	c.acc %= c.tick
	return true
}

// --- Components ---

// Transform is an entity's world position (origin at screen center, Y up)
// and rotation in radians.
type Transform struct {
	Position mgl64.Vec3
	Rotation float64
}

// Up returns the transform's local Y axis in world space.
func (t Transform) Up() mgl64.Vec3 {
	up := mgl64.Rotate2D(t.Rotation).Mul2x1(mgl64.Vec2{0, 1})
	return mgl64.Vec3{up.X(), up.Y(), 0}
}

// Velocity is the per-tick displacement applied to Transform.Position.
type Velocity struct {
	mgl64.Vec3
}

// Gravity is a constant downward acceleration applied once per tick.
type Gravity struct {
	Accel float64
}

var (
	TransformComponent = donburi.NewComponentType[Transform]()
	VelocityComponent  = donburi.NewComponentType[Velocity]()
	GravityComponent   = donburi.NewComponentType[Gravity]()
)

// Impulse changes an entity's velocity on the next physics tick. Absolute
// impulses replace the velocity; others add to it.
type Impulse struct {
	Target   donburi.Entity
	Amount   mgl64.Vec3
	Absolute bool
}

// ImpulseEvent is the queue impulses travel through between ticks.
var ImpulseEvent = events.NewEventType[Impulse]()

// --- Integrator ---

var (
	gravityQuery  = donburi.NewQuery(filter.Contains(GravityComponent, VelocityComponent))
	movementQuery = donburi.NewQuery(filter.Contains(VelocityComponent, TransformComponent))
)

// Physics runs the fixed-timestep stages over a donburi world. The stages
// must run in order every cycle: Clock, ApplyGravity, SumImpulses,
// ApplyVelocity. Only Clock looks at real time; the others act only on
// cycles where Clock fired.
//
// Only one Physics may be attached to a world, since it subscribes to the
// world's impulse queue.
type Physics struct {
	world  donburi.World
	clock  PhysicsClock
	ticked bool
	ticks  uint64

	halted bool // an absolute impulse ended the current drain
}

// NewPhysics attaches an integrator with the given tick interval to world.
func NewPhysics(world donburi.World, interval time.Duration) *Physics {
	p := &Physics{
		world: world,
		clock: NewPhysicsClock(interval),
	}
	ImpulseEvent.Subscribe(world, p.applyImpulse)
	return p
}

// Ticked reports whether the clock fired this cycle.
func (p *Physics) Ticked() bool {
	return p.ticked
}

// Ticks returns the number of ticks fired so far.
func (p *Physics) Ticks() uint64 {
	return p.ticks
}

// Impulse queues an impulse for the next tick.
func (p *Physics) Impulse(target donburi.Entity, amount mgl64.Vec3, absolute bool) {
	ImpulseEvent.Publish(p.world, Impulse{Target: target, Amount: amount, Absolute: absolute})
}

// Clock advances the fixed-step clock by the cycle's elapsed time.
func (p *Physics) Clock(elapsed time.Duration) {
	p.ticked = p.clock.Advance(elapsed)
	if p.ticked {
		p.ticks++
	}
}

// ApplyGravity lowers the vertical velocity of every entity with Gravity.
func (p *Physics) ApplyGravity() {
	if !p.ticked {
		return
	}
	gravityQuery.Each(p.world, func(e *donburi.Entry) {
		g := GravityComponent.Get(e)
		v := VelocityComponent.Get(e)
		v.Vec3[1] -= g.Accel
	})
}

// SumImpulses drains the impulse queue into velocities. The first absolute
// impulse wins and the rest of the queue is dropped for this tick, including
// impulses aimed at other entities.
//
// TODO: the dropped-impulse behavior is kept for compatibility with the
// shipped games; product review needs to decide whether later impulses
// should still apply.
func (p *Physics) SumImpulses() {
	if !p.ticked {
		return
	}
	p.halted = false
	ImpulseEvent.ProcessEvents(p.world)
}

func (p *Physics) applyImpulse(w donburi.World, imp Impulse) {
	if p.halted || !w.Valid(imp.Target) {
		return
	}
	e := w.Entry(imp.Target)
	if !e.HasComponent(VelocityComponent) {
		return
	}
	v := VelocityComponent.Get(e)
	if imp.Absolute {
		v.Vec3 = imp.Amount
		p.halted = true
		return
	}
	v.Vec3 = v.Vec3.Add(imp.Amount)
}

// ApplyVelocity moves every entity with Velocity and Transform by one tick.
func (p *Physics) ApplyVelocity() {
	if !p.ticked {
		return
	}
	movementQuery.Each(p.world, func(e *donburi.Entry) {
		v := VelocityComponent.Get(e)
		t := TransformComponent.Get(e)
		t.Position = t.Position.Add(v.Vec3)
	})
}

// Step runs every stage in order.
func (p *Physics) Step(elapsed time.Duration) {
	p.Clock(elapsed)
	p.ApplyGravity()
	p.SumImpulses()
	p.ApplyVelocity()
}

// ClampSpeed limits the XY speed of v to max, leaving Z untouched.
func ClampSpeed(v mgl64.Vec3, max float64) mgl64.Vec3 {
	xy := v.Vec2()
	if xy.Len() <= max {
		return v
	}
	xy = xy.Normalize().Mul(max)
	return mgl64.Vec3{xy.X(), xy.Y(), v.Z()}
}
