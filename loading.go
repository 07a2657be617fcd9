package grove

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// GateState is the state of a LoadingGate.
type GateState uint8

const (
	GateWaiting GateState = iota // loads outstanding
	GateReady                    // every load resolved and composites built
)

// String returns a lower-case name for the state.
func (s GateState) String() string {
	if s == GateReady {
		return "ready"
	}
	return "waiting"
}

type pendingLoad struct {
	tag    string
	handle Handle
	failed bool // already reported
}

// GateOptions hardens the loading gate. The zero value keeps the default
// behavior: a failed load stays pending forever.
type GateOptions struct {
	// FailFast makes Poll return ErrLoadFailed on the first failed load.
	FailFast bool
	// Timeout makes Poll return ErrLoadTimeout once the gate has been waiting
	// longer than this. Zero disables it.
	Timeout time.Duration
}

// LoadingGate tracks outstanding load requests for the store, polls them
// without blocking, and once all have resolved builds the deferred sprite
// sheet composites.
type LoadingGate struct {
	store   *AssetStore
	backend AssetBackend
	parts   Partitioner
	opts    GateOptions
	log     *zap.Logger

	pending []pendingLoad
	state   GateState
	total   int
	waited  time.Duration
	built   int
}

// NewLoadingGate returns a gate in the Ready state; call Begin to start
// waiting on the store's unresolved entries.
func NewLoadingGate(store *AssetStore, backend AssetBackend, parts Partitioner) *LoadingGate {
	return &LoadingGate{
		store:   store,
		backend: backend,
		parts:   parts,
		state:   GateReady,
		log:     zap.NewNop(),
	}
}

// SetOptions replaces the gate's hardening options.
func (g *LoadingGate) SetOptions(opts GateOptions) {
	g.opts = opts
}

// SetLogger replaces the gate's logger. A nil logger disables logging.
func (g *LoadingGate) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	g.log = log
}

// Begin snapshots every unresolved store entry into the pending set and
// enters the Waiting state.
func (g *LoadingGate) Begin() {
	g.pending = g.store.unresolved()
	g.total = len(g.pending)
	g.waited = 0
	g.state = GateWaiting
}

// End discards the pending set.
func (g *LoadingGate) End() {
	g.pending = nil
}

// State returns the gate's current state.
func (g *LoadingGate) State() GateState {
	return g.state
}

// Remaining returns the number of loads not yet resolved. It never increases
// between two polls.
func (g *LoadingGate) Remaining() int {
	return len(g.pending)
}

// Total returns the size of the pending set when Begin was called.
func (g *LoadingGate) Total() int {
	return g.total
}

// Built returns how many composites the gate has materialized.
func (g *LoadingGate) Built() int {
	return g.built
}

// Poll checks every pending load once. It reports advanced == true exactly
// once, on the cycle where the last load resolved and the composites were
// built. Polling a Ready gate is a no-op.
//
// A failed load is never dropped from the pending set; unless FailFast or
// Timeout is set the gate stays Waiting.
func (g *LoadingGate) Poll(elapsed time.Duration) (advanced bool, err error) {
	if g.state == GateReady {
		return false, nil
	}

	var failErr error
	kept := g.pending[:0]
	for _, p := range g.pending {
		switch g.backend.PollState(p.handle) {
		case LoadLoaded:
			g.store.resolve(p.tag)
			continue
		case LoadFailed:
			if !p.failed {
				p.failed = true
				cause := g.loadError(p.handle)
				g.log.Warn("asset load failed",
					zap.String("tag", p.tag),
					zap.Uint32("handle", uint32(p.handle)),
					zap.Error(cause))
				if g.opts.FailFast && failErr == nil {
					failErr = fmt.Errorf("grove: load %q: %v: %w", p.tag, cause, ErrLoadFailed)
				}
			}
		}
		kept = append(kept, p)
	}
	g.pending = kept
	if failErr != nil {
		return false, failErr
	}

	if len(g.pending) > 0 {
		g.waited += elapsed
		if g.opts.Timeout > 0 && g.waited > g.opts.Timeout {
			return false, fmt.Errorf("grove: %d assets outstanding after %v: %w",
				len(g.pending), g.waited, ErrLoadTimeout)
		}
		return false, nil
	}

	if err := g.buildComposites(); err != nil {
		return false, err
	}
	g.state = GateReady
	g.log.Info("assets ready", zap.Int("loaded", g.total), zap.Int("composites", g.built))
	return true, nil
}

func (g *LoadingGate) loadError(h Handle) error {
	if le, ok := g.backend.(loadErrorer); ok {
		if err := le.LoadError(h); err != nil {
			return err
		}
	}
	return fmt.Errorf("handle %d", h)
}

// buildComposites materializes every deferred request. A base tag that is
// missing or unresolved here means the configuration referenced a tag that
// was never registered.
func (g *LoadingGate) buildComposites() error {
	for _, req := range g.store.deferred {
		base, err := g.store.Lookup(req.Base)
		if err != nil {
			return fmt.Errorf("grove: composite %q: base %q: %w", req.Result, req.Base, ErrUnresolvedBase)
		}
		h := g.parts.Partition(base, req.Sheet)
		if err := g.store.insertResolved(req.Result, h); err != nil {
			return err
		}
		g.built++
		g.log.Debug("composite built",
			zap.String("tag", req.Result),
			zap.String("base", req.Base),
			zap.Int("frames", req.Sheet.Frames()))
	}
	g.store.deferred = nil
	return nil
}
