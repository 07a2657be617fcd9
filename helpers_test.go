package grove

import (
	"github.com/hajimehoshi/ebiten/v2"
)

type fakeRequest struct {
	source string
	kind   AssetKind
	handle Handle
}

type fakePartition struct {
	base   Handle
	sheet  SheetGeometry
	result Handle
}

// fakeBackend reports whatever state the test sets, so load sequences are
// deterministic. Loads start pending.
type fakeBackend struct {
	next       Handle
	states     map[Handle]LoadState
	errs       map[Handle]error
	requests   []fakeRequest
	partitions []fakePartition
	polls      int

	autoLoad bool // requests start loaded
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		states: make(map[Handle]LoadState),
		errs:   make(map[Handle]error),
	}
}

func (b *fakeBackend) RequestLoad(source string, kind AssetKind) Handle {
	b.next++
	b.states[b.next] = LoadPending
	if b.autoLoad {
		b.states[b.next] = LoadLoaded
	}
	b.requests = append(b.requests, fakeRequest{source: source, kind: kind, handle: b.next})
	return b.next
}

func (b *fakeBackend) PollState(h Handle) LoadState {
	b.polls++
	s, ok := b.states[h]
	if !ok {
		return LoadFailed
	}
	return s
}

func (b *fakeBackend) LoadError(h Handle) error {
	return b.errs[h]
}

func (b *fakeBackend) Partition(base Handle, g SheetGeometry) Handle {
	b.next++
	b.states[b.next] = LoadLoaded
	b.partitions = append(b.partitions, fakePartition{base: base, sheet: g, result: b.next})
	return b.next
}

// Image reports a nil image for every loaded handle; tests never draw.
func (b *fakeBackend) Image(h Handle) (*ebiten.Image, bool) {
	return nil, b.states[h] == LoadLoaded
}

func (b *fakeBackend) Sheet(h Handle) (*SpriteSheet, bool) {
	for _, p := range b.partitions {
		if p.result == h {
			return &SpriteSheet{Sheet: p.sheet}, true
		}
	}
	return nil, false
}

// set changes the state of every request for source.
func (b *fakeBackend) set(source string, s LoadState) {
	for _, r := range b.requests {
		if r.source == source {
			b.states[r.handle] = s
		}
	}
}

// loadAll marks every request loaded.
func (b *fakeBackend) loadAll() {
	for _, r := range b.requests {
		b.states[r.handle] = LoadLoaded
	}
}
