package grove

import (
	"errors"
	"strings"
	"testing"
)

type testPhase int

const (
	phaseLoading testPhase = iota
	phaseMenu
	phasePlay
	phaseOver
)

func (p testPhase) String() string {
	return [...]string{"Loading", "Menu", "Play", "Over"}[p]
}

// recorder collects the order in which systems run.
type recorder struct {
	log []string
}

func (r *recorder) sys(name string) System[*recorder] {
	return func(ctx *recorder) error {
		ctx.log = append(ctx.log, name)
		return nil
	}
}

func (r *recorder) take() string {
	out := strings.Join(r.log, " ")
	r.log = r.log[:0]
	return out
}

func newRecordedScheduler(r *recorder) *Scheduler[testPhase, *recorder] {
	s := NewScheduler[testPhase, *recorder](phaseLoading)
	for _, p := range []testPhase{phaseLoading, phaseMenu, phasePlay} {
		name := p.String()
		s.OnEnter(p, r.sys("enter:"+name))
		s.OnTick(p, r.sys("tick:"+name))
		s.OnExit(p, r.sys("exit:"+name))
	}
	return s
}

func TestSchedulerFirstCycleEntersInitial(t *testing.T) {
	r := &recorder{}
	s := newRecordedScheduler(r)
	if err := s.Update(r); err != nil {
		t.Fatal(err)
	}
	if got := r.take(); got != "enter:Loading tick:Loading" {
		t.Errorf("first cycle = %q", got)
	}
	if err := s.Update(r); err != nil {
		t.Fatal(err)
	}
	if got := r.take(); got != "tick:Loading" {
		t.Errorf("second cycle = %q", got)
	}
}

func TestSchedulerExitBeforeEnter(t *testing.T) {
	r := &recorder{}
	s := newRecordedScheduler(r)
	s.Update(r)
	r.take()

	s.Request(phaseMenu)
	if s.Current() != phaseLoading {
		t.Fatal("transition applied before the next cycle")
	}
	if err := s.Update(r); err != nil {
		t.Fatal(err)
	}
	if got := r.take(); got != "exit:Loading enter:Menu tick:Menu" {
		t.Errorf("transition cycle = %q", got)
	}
	if s.Current() != phaseMenu {
		t.Errorf("Current = %v, want Menu", s.Current())
	}
}

func TestSchedulerLastRequestWins(t *testing.T) {
	r := &recorder{}
	s := newRecordedScheduler(r)
	s.Update(r)
	r.take()

	s.Request(phaseMenu)
	s.Request(phasePlay)
	if p, ok := s.Pending(); !ok || p != phasePlay {
		t.Fatalf("Pending = %v, %v; want Play, true", p, ok)
	}
	s.Update(r)
	if got := r.take(); got != "exit:Loading enter:Play tick:Play" {
		t.Errorf("cycle = %q", got)
	}
	if _, ok := s.Pending(); ok {
		t.Error("pending request not cleared")
	}
}

func TestSchedulerRequestCurrentIsNoop(t *testing.T) {
	r := &recorder{}
	s := newRecordedScheduler(r)
	s.Update(r)
	r.take()

	s.Request(phaseLoading)
	s.Update(r)
	if got := r.take(); got != "tick:Loading" {
		t.Errorf("cycle = %q, want only the tick", got)
	}
}

func TestSchedulerRequestFromSystemAppliesNextCycle(t *testing.T) {
	r := &recorder{}
	s := NewScheduler[testPhase, *recorder](phaseLoading)
	s.Register(phaseMenu)
	s.OnTick(phaseLoading, func(ctx *recorder) error {
		s.Request(phaseMenu)
		return nil
	})
	s.OnTick(phaseLoading, r.sys("tick:Loading"))
	s.OnEnter(phaseMenu, r.sys("enter:Menu"))

	s.Update(r)
	if s.Current() != phaseLoading {
		t.Fatal("request applied mid-cycle")
	}
	if got := r.take(); got != "tick:Loading" {
		t.Errorf("cycle 1 = %q, later tick systems must still run", got)
	}
	s.Update(r)
	if got := r.take(); got != "enter:Menu" {
		t.Errorf("cycle 2 = %q", got)
	}
}

func TestSchedulerRequestFromEnterWaitsACycle(t *testing.T) {
	r := &recorder{}
	s := newRecordedScheduler(r)
	s.OnEnter(phaseLoading, func(*recorder) error {
		s.Request(phaseMenu)
		return nil
	})
	s.OnEnter(phaseMenu, func(*recorder) error {
		s.Request(phaseLoading)
		return nil
	})

	cycles := []string{
		"enter:Loading tick:Loading",
		"exit:Loading enter:Menu tick:Menu",
		"exit:Menu enter:Loading tick:Loading",
	}
	for i, want := range cycles {
		if err := s.Update(r); err != nil {
			t.Fatal(err)
		}
		if got := r.take(); got != want {
			t.Errorf("cycle %d = %q, want %q", i+1, got, want)
		}
	}
}

func TestSchedulerRequestUnregisteredPanics(t *testing.T) {
	s := NewScheduler[testPhase, *recorder](phaseLoading)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered phase")
		}
	}()
	s.Request(phaseOver)
}

func TestSchedulerSystemError(t *testing.T) {
	boom := errors.New("boom")
	r := &recorder{}
	s := NewScheduler[testPhase, *recorder](phaseLoading)
	s.OnTick(phaseLoading, r.sys("first"), func(*recorder) error { return boom }, r.sys("never"))

	err := s.Update(r)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "Loading tick") {
		t.Errorf("error %q does not name the phase and stage", err)
	}
	if got := r.take(); got != "first" {
		t.Errorf("ran %q, want only the systems before the failure", got)
	}
}

func TestSchedulerObserver(t *testing.T) {
	r := &recorder{}
	s := newRecordedScheduler(r)
	var seen []string
	s.OnTransition(func(from, to testPhase) {
		seen = append(seen, from.String()+">"+to.String())
	})

	s.Update(r)
	s.Request(phaseMenu)
	s.Update(r)
	s.Update(r)

	want := []string{"Loading>Loading", "Loading>Menu"}
	if len(seen) != len(want) {
		t.Fatalf("observed %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestSchedulerPhasesAndReset(t *testing.T) {
	r := &recorder{}
	s := newRecordedScheduler(r)
	phases := s.Phases()
	if len(phases) != 3 || phases[0] != phaseLoading || phases[2] != phasePlay {
		t.Errorf("Phases = %v", phases)
	}
	if s.Registered(phaseOver) {
		t.Error("Over should not be registered")
	}

	s.Update(r)
	s.Request(phasePlay)
	s.Update(r)
	r.take()

	s.Reset()
	if s.Current() != phaseLoading {
		t.Errorf("Current after Reset = %v, want Loading", s.Current())
	}
	s.Update(r)
	if got := r.take(); got != "enter:Loading tick:Loading" {
		t.Errorf("cycle after Reset = %q", got)
	}
}
