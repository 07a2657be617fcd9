package grove

import "fmt"

// System is one unit of per-phase work. ctx carries whatever capabilities
// the host passes into a cycle; App uses *Frame[P].
type System[C any] func(ctx C) error

// hookStage names the three hook lists of a phase.
type hookStage uint8

const (
	stageEnter hookStage = iota
	stageTick
	stageExit
)

func (s hookStage) String() string {
	switch s {
	case stageEnter:
		return "enter"
	case stageTick:
		return "tick"
	default:
		return "exit"
	}
}

// phaseHooks holds the ordered system lists registered for one phase.
type phaseHooks[C any] struct {
	enter []System[C]
	tick  []System[C]
	exit  []System[C]
}

// Scheduler is a finite state machine over an application-defined phase
// type. Each phase owns three ordered system lists (enter, tick, exit).
// Transitions are requested at any time and applied at the start of the
// next Update, never in the middle of a cycle.
//
// The zero value of P is the default phase; NewScheduler lets the caller
// pick a different initial phase.
type Scheduler[P comparable, C any] struct {
	phases  map[P]*phaseHooks[C]
	order   []P // registration order, for Phases
	initial P
	current P
	started bool

	next    P
	hasNext bool

	observers []func(from, to P)
}

// NewScheduler returns a scheduler that enters initial on its first Update.
// The initial phase is registered implicitly.
func NewScheduler[P comparable, C any](initial P) *Scheduler[P, C] {
	s := &Scheduler[P, C]{
		phases:  make(map[P]*phaseHooks[C]),
		initial: initial,
		current: initial,
	}
	s.Register(initial)
	return s
}

// Register adds p to the phase set without attaching systems.
func (s *Scheduler[P, C]) Register(p P) {
	s.hooks(p)
}

func (s *Scheduler[P, C]) hooks(p P) *phaseHooks[C] {
	h, ok := s.phases[p]
	if !ok {
		h = &phaseHooks[C]{}
		s.phases[p] = h
		s.order = append(s.order, p)
	}
	return h
}

// OnEnter appends systems that run once each time p is entered.
func (s *Scheduler[P, C]) OnEnter(p P, systems ...System[C]) {
	h := s.hooks(p)
	h.enter = append(h.enter, systems...)
}

// OnTick appends systems that run every cycle while p is current.
func (s *Scheduler[P, C]) OnTick(p P, systems ...System[C]) {
	h := s.hooks(p)
	h.tick = append(h.tick, systems...)
}

// OnExit appends systems that run once each time p is left.
func (s *Scheduler[P, C]) OnExit(p P, systems ...System[C]) {
	h := s.hooks(p)
	h.exit = append(h.exit, systems...)
}

// OnTransition registers fn to be called after each applied transition,
// once the exit systems of from and the enter systems of to have run.
// The very first entry reports from == to == the initial phase.
func (s *Scheduler[P, C]) OnTransition(fn func(from, to P)) {
	s.observers = append(s.observers, fn)
}

// Registered reports whether p is part of the phase set.
func (s *Scheduler[P, C]) Registered(p P) bool {
	_, ok := s.phases[p]
	return ok
}

// Phases returns every registered phase in registration order.
func (s *Scheduler[P, C]) Phases() []P {
	out := make([]P, len(s.order))
	copy(out, s.order)
	return out
}

// Current returns the phase whose tick systems run this cycle.
func (s *Scheduler[P, C]) Current() P {
	return s.current
}

// Pending returns the transition that will be applied next cycle, if any.
func (s *Scheduler[P, C]) Pending() (P, bool) {
	return s.next, s.hasNext
}

// Request asks for a transition to p at the start of the next cycle.
// Several requests in one cycle collapse into one; the last one wins.
// Requesting the current phase applies nothing.
//
// The phase set is closed, so requesting an unregistered phase is a
// programming error and panics.
func (s *Scheduler[P, C]) Request(p P) {
	if _, ok := s.phases[p]; !ok {
		panic(fmt.Sprintf("grove: transition to unregistered phase %v", p))
	}
	s.next = p
	s.hasNext = true
}

// Update runs one cycle: the initial entry or a pending transition first,
// then the tick systems of the current phase in registration order.
//
// The initial entry counts as a transition: requests made by its enter
// systems wait for the next cycle, so the initial phase ticks at least once.
func (s *Scheduler[P, C]) Update(ctx C) error {
	first := !s.started
	if first {
		s.started = true
		if err := s.run(ctx, s.current, stageEnter); err != nil {
			return err
		}
		s.notify(s.current, s.current)
	}

	if s.hasNext && !first {
		next := s.next
		s.hasNext = false
		if next != s.current {
			if err := s.transition(ctx, next); err != nil {
				return err
			}
		}
	}

	return s.run(ctx, s.current, stageTick)
}

// transition leaves the current phase and enters next. Requests made by
// exit or enter systems stay pending for the following cycle.
func (s *Scheduler[P, C]) transition(ctx C, next P) error {
	from := s.current
	if err := s.run(ctx, from, stageExit); err != nil {
		return err
	}
	s.current = next
	if err := s.run(ctx, next, stageEnter); err != nil {
		return err
	}
	s.notify(from, next)
	return nil
}

func (s *Scheduler[P, C]) run(ctx C, p P, stage hookStage) error {
	h := s.phases[p]
	var systems []System[C]
	switch stage {
	case stageEnter:
		systems = h.enter
	case stageTick:
		systems = h.tick
	case stageExit:
		systems = h.exit
	}
	for i, sys := range systems {
		if err := sys(ctx); err != nil {
			return fmt.Errorf("grove: phase %v %s system %d: %w", p, stage, i, err)
		}
	}
	return nil
}

func (s *Scheduler[P, C]) notify(from, to P) {
	for _, fn := range s.observers {
		fn(from, to)
	}
}

// Reset returns the scheduler to its initial phase without running any
// exit systems. The next Update enters the initial phase again.
func (s *Scheduler[P, C]) Reset() {
	s.current = s.initial
	s.started = false
	s.hasNext = false
	var zero P
	s.next = zero
}
