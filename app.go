package grove

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"
)

// Backend is everything App needs from an asset backend: load requests,
// composites and typed access to loaded resources.
type Backend interface {
	AssetBackend
	Partitioner
	Image(h Handle) (*ebiten.Image, bool)
	Sheet(h Handle) (*SpriteSheet, bool)
}

type soundSource interface {
	Sound(h Handle) (*beep.Buffer, bool)
}

// MenuElement tags the backdrop entities spawned by App.Menus.
var MenuElement = donburi.NewTag()

// backdropFade is how long a menu backdrop takes to fade in, in seconds.
const backdropFade = 0.4

// Frame is the context passed to every system App runs. It is reused
// across cycles; systems must not keep it.
type Frame[P comparable] struct {
	World   donburi.World
	Assets  *AssetStore
	Input   InputSource
	Physics *Physics // nil unless App.Physics was called
	Delta   time.Duration
	Log     *zap.Logger

	app *App[P]
}

// Phase returns the current phase.
func (f *Frame[P]) Phase() P {
	return f.app.sched.Current()
}

// Next requests a transition at the start of the next cycle.
func (f *Frame[P]) Next(p P) {
	f.app.sched.Request(p)
}

// Quit ends the run once the current cycle completes.
func (f *Frame[P]) Quit() {
	f.app.quit = true
}

// Remaining returns the number of loads the loading gate still waits on.
func (f *Frame[P]) Remaining() int {
	if f.app.gate == nil {
		return 0
	}
	return f.app.gate.Remaining()
}

// Image returns the loaded image registered under tag.
func (f *Frame[P]) Image(tag string) (*ebiten.Image, error) {
	h, err := f.Assets.Lookup(tag)
	if err != nil {
		return nil, err
	}
	img, ok := f.app.backend.Image(h)
	if !ok {
		return nil, fmt.Errorf("grove: image %q: %w", tag, ErrNotFound)
	}
	return img, nil
}

// Sheet returns the sprite sheet composite registered under tag.
func (f *Frame[P]) Sheet(tag string) (*SpriteSheet, error) {
	h, err := f.Assets.Lookup(tag)
	if err != nil {
		return nil, err
	}
	sheet, ok := f.app.backend.Sheet(h)
	if !ok {
		return nil, fmt.Errorf("grove: sprite sheet %q: %w", tag, ErrNotFound)
	}
	return sheet, nil
}

// Sound returns the decoded sound registered under tag.
func (f *Frame[P]) Sound(tag string) (*beep.Buffer, error) {
	h, err := f.Assets.Lookup(tag)
	if err != nil {
		return nil, err
	}
	src, ok := f.app.backend.(soundSource)
	if !ok {
		return nil, fmt.Errorf("grove: sound %q: %w", tag, ErrNotFound)
	}
	buf, ok := src.Sound(h)
	if !ok {
		return nil, fmt.Errorf("grove: sound %q: %w", tag, ErrNotFound)
	}
	return buf, nil
}

// App hosts a game: it owns the donburi world, the phase scheduler, the
// asset pipeline and the input source, and implements ebiten.Game.
//
// The zero value of P is the phase the app starts in.
type App[P comparable] struct {
	cfg   *Config
	log   *zap.Logger
	world donburi.World
	sched *Scheduler[P, *Frame[P]]

	assets  *AssetManager
	store   *AssetStore
	backend Backend
	gate    *LoadingGate
	loading P
	hasGate bool

	input   InputSource
	physics *Physics
	anims   *Animations

	now    func() time.Time
	last   time.Time
	cycles uint64
	quit   bool

	frame      Frame[P]
	errs       []error
	registered bool // an asset was added through the app

	warnedEntities bool
}

// NewApp returns an app configured by cfg. A nil cfg selects DefaultConfig
// and a nil log disables logging. When cfg names an asset manifest it is
// registered immediately; a manifest error is reported by Run.
func NewApp[P comparable](cfg *Config, log *zap.Logger) *App[P] {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	var initial P
	a := &App[P]{
		cfg:   cfg,
		log:   log,
		world: donburi.NewWorld(),
		sched: NewScheduler[P, *Frame[P]](initial),
		store: NewAssetStore(),
		input: NewKeyboardInput(DefaultKeyBindings().Merge(cfg.Input.Bindings())),
		now:   time.Now,
	}
	root := os.DirFS(cfg.Assets.Root)
	a.assets = NewAssetManager(root)
	a.assets.SetLogger(log)
	if cfg.Assets.Manifest != "" {
		a.collect(a.assets.LoadManifestFile(root, cfg.Assets.Manifest))
	}

	a.sched.OnTransition(func(from, to P) {
		a.log.Info("phase transition",
			zap.String("from", phaseName(from)),
			zap.String("to", phaseName(to)),
			zap.Uint64("cycle", a.cycles),
		)
	})
	a.frame = Frame[P]{World: a.world, Assets: a.store, Log: log, app: a}
	return a
}

// SetAssetFS replaces the filesystem assets are checked against and loaded
// from. The configured manifest is read again from fsys and errors collected
// against the previous root are discarded. Calling it after an asset was
// registered through the app is a configuration error.
func (a *App[P]) SetAssetFS(fsys fs.FS) *App[P] {
	if a.registered {
		a.collect(fmt.Errorf("grove: set asset filesystem: %w", ErrAssetsRegistered))
		return a
	}
	a.errs = nil
	a.assets = NewAssetManager(fsys)
	a.assets.SetLogger(a.log)
	if a.cfg.Assets.Manifest != "" {
		a.collect(a.assets.LoadManifestFile(fsys, a.cfg.Assets.Manifest))
	}
	if a.backend == nil {
		a.backend = NewFileBackend(fsys, a.cfg.Assets.MaxConcurrentLoads, a.log)
	}
	return a
}

// SetBackend replaces the asset backend.
func (a *App[P]) SetBackend(b Backend) *App[P] {
	a.backend = b
	return a
}

// SetInput replaces the input source. Sources implementing Updater are
// advanced at the start of every cycle.
func (a *App[P]) SetInput(in InputSource) *App[P] {
	a.input = in
	return a
}

// SetClock replaces the wall clock used to measure cycle time.
func (a *App[P]) SetClock(now func() time.Time) *App[P] {
	a.now = now
	return a
}

// SetAnimations installs the animation set driven each cycle.
func (a *App[P]) SetAnimations(anims *Animations) *App[P] {
	a.anims = anims
	return a
}

// AddImage registers an image asset. Errors are collected and returned by
// Err, Run and RunHeadless.
func (a *App[P]) AddImage(tag, source string) *App[P] {
	a.registered = true
	a.collect(a.assets.AddImage(tag, source))
	return a
}

// AddSound registers a sound asset.
func (a *App[P]) AddSound(tag, source string) *App[P] {
	a.registered = true
	a.collect(a.assets.AddSound(tag, source))
	return a
}

// AddSpriteSheet registers a sprite sheet to be partitioned into a
// columns x rows grid of tileW x tileH frames once loaded.
func (a *App[P]) AddSpriteSheet(tag, source string, tileW, tileH, columns, rows int) *App[P] {
	a.registered = true
	a.collect(a.assets.AddSpriteSheet(tag, source, tileW, tileH, columns, rows))
	return a
}

func (a *App[P]) collect(err error) {
	if err != nil {
		a.errs = append(a.errs, err)
	}
}

// Err returns every configuration error collected so far.
func (a *App[P]) Err() error {
	return errors.Join(a.errs...)
}

// Assets returns the asset manager registrations go through.
func (a *App[P]) Assets() *AssetManager { return a.assets }

// Store returns the tag to handle store filled by activation and loading.
func (a *App[P]) Store() *AssetStore { return a.store }

// World returns the donburi world systems operate on.
func (a *App[P]) World() donburi.World { return a.world }

// Scheduler returns the phase scheduler driving the app.
func (a *App[P]) Scheduler() *Scheduler[P, *Frame[P]] { return a.sched }

// Config returns the app's configuration.
func (a *App[P]) Config() *Config { return a.cfg }

// Logger returns the app's logger.
func (a *App[P]) Logger() *zap.Logger { return a.log }

// Cycles returns the number of completed cycles.
func (a *App[P]) Cycles() uint64 { return a.cycles }

// Gate returns the loading gate, or nil before the first cycle.
func (a *App[P]) Gate() *LoadingGate {
	return a.gate
}

// PhaseBuilder attaches systems to one phase.
type PhaseBuilder[P comparable] struct {
	app   *App[P]
	phase P
}

// Phase registers p and returns a builder for its systems.
func (a *App[P]) Phase(p P) *PhaseBuilder[P] {
	a.sched.Register(p)
	return &PhaseBuilder[P]{app: a, phase: p}
}

// OnEnter appends systems run each time the phase is entered.
func (b *PhaseBuilder[P]) OnEnter(systems ...System[*Frame[P]]) *PhaseBuilder[P] {
	b.app.sched.OnEnter(b.phase, systems...)
	return b
}

// OnTick appends systems run every cycle while the phase is current.
func (b *PhaseBuilder[P]) OnTick(systems ...System[*Frame[P]]) *PhaseBuilder[P] {
	b.app.sched.OnTick(b.phase, systems...)
	return b
}

// OnExit appends systems run each time the phase is left.
func (b *PhaseBuilder[P]) OnExit(systems ...System[*Frame[P]]) *PhaseBuilder[P] {
	b.app.sched.OnExit(b.phase, systems...)
	return b
}

// Owns despawns every entity tagged with tag when the phase exits.
func (b *PhaseBuilder[P]) Owns(tag donburi.IComponentType) *PhaseBuilder[P] {
	return b.OnExit(Cleanup[P](tag))
}

// WithPhysics is App.Physics for the builder's phase.
func (b *PhaseBuilder[P]) WithPhysics() *PhaseBuilder[P] {
	b.app.Physics(b.phase)
	return b
}

// Physics appends the four fixed-step stages to the tick systems of phase,
// after any already registered. The integrator is shared by every phase
// that calls Physics.
func (a *App[P]) Physics(phase P) *Physics {
	if a.physics == nil {
		a.physics = NewPhysics(a.world, a.cfg.Physics.Tick)
		a.frame.Physics = a.physics
	}
	p := a.physics
	a.sched.OnTick(phase,
		func(f *Frame[P]) error { p.Clock(f.Delta); return nil },
		func(*Frame[P]) error { p.ApplyGravity(); return nil },
		func(*Frame[P]) error { p.SumImpulses(); return nil },
		func(*Frame[P]) error { p.ApplyVelocity(); return nil },
	)
	return p
}

// Loading makes loadingPhase activate every registered asset on entry and
// wait until all of them resolved, then move on to next.
func (a *App[P]) Loading(loadingPhase, next P) *App[P] {
	a.loading = loadingPhase
	a.hasGate = true
	a.sched.Register(next)
	a.Phase(loadingPhase).
		OnEnter(func(f *Frame[P]) error {
			a.prepare()
			if !a.assets.Activated() {
				if err := a.assets.Activate(a.store, a.backend); err != nil {
					return err
				}
			}
			a.gate.Begin()
			return nil
		}).
		OnTick(func(f *Frame[P]) error {
			advanced, err := a.gate.Poll(f.Delta)
			if err != nil {
				return err
			}
			if advanced {
				f.Next(next)
			}
			return nil
		}).
		OnExit(func(*Frame[P]) error {
			a.gate.End()
			return nil
		})
	return a
}

// Menus installs the menu controller for t: the backdrop image on entry of
// t.Menu and t.GameOver, the start/return/quit decisions while in them, and
// cleanup of the backdrop on exit.
//
// Backdrops the manifest did not register are added from their default
// sources, main_menu.png and game_over.png, so register custom backdrops
// before calling Menus.
func (a *App[P]) Menus(t MenuTable[P]) *App[P] {
	for _, tag := range []string{MainMenuTag, GameOverTag} {
		if !a.assets.Registered(tag) {
			a.AddImage(tag, tag+".png")
		}
	}
	a.sched.Register(t.Play)
	for _, p := range []P{t.Menu, t.GameOver} {
		a.Phase(p).
			OnEnter(spawnBackdrop(t)).
			OnTick(MenuSystem(t)).
			Owns(MenuElement)
	}
	return a
}

func spawnBackdrop[P comparable](t MenuTable[P]) System[*Frame[P]] {
	return func(f *Frame[P]) error {
		tag, err := t.Backdrop(f.Phase())
		if err != nil {
			return err
		}
		img, err := f.Image(tag)
		if err != nil {
			return err
		}
		e := SpawnSprite(f.World, Sprite{Image: img}, mgl64.Vec3{}, MenuElement, FadeComponent)
		FadeComponent.SetValue(e, NewFade(0, 1, backdropFade, ease.OutQuad))
		return nil
	}
}

// prepare creates the default backend and the loading gate if needed.
func (a *App[P]) prepare() {
	if a.backend == nil {
		a.backend = NewFileBackend(os.DirFS(a.cfg.Assets.Root), a.cfg.Assets.MaxConcurrentLoads, a.log)
	}
	if a.gate == nil {
		a.gate = NewLoadingGate(a.store, a.backend, a.backend)
		a.gate.SetLogger(a.log)
		a.gate.SetOptions(GateOptions{
			FailFast: a.cfg.Loading.FailFast,
			Timeout:  a.cfg.Loading.Timeout,
		})
	}
}

// Update implements ebiten.Game. The cycle's elapsed time is measured with
// the app's clock; the first cycle sees zero.
func (a *App[P]) Update() error {
	if err := a.Err(); err != nil {
		return err
	}
	now := a.now()
	var delta time.Duration
	if !a.last.IsZero() {
		delta = now.Sub(a.last)
	}
	a.last = now
	return a.Step(delta)
}

// Step runs one cycle with the given elapsed time. It returns
// ebiten.Termination once a system asked to quit.
func (a *App[P]) Step(delta time.Duration) error {
	a.prepare()
	if u, ok := a.input.(Updater); ok {
		u.Update()
	}
	a.frame.Input = a.input
	a.frame.Delta = delta

	var stats cycleStats
	start := time.Now()
	if err := a.sched.Update(&a.frame); err != nil {
		return err
	}
	stats.systemsTime = time.Since(start)

	start = time.Now()
	UpdateFades(a.world, float32(delta.Seconds()))
	stats.fadesTime = time.Since(start)

	if a.anims != nil {
		start = time.Now()
		CycleAnimations(a.world, a.anims, delta)
		stats.animationTime = time.Since(start)
	}
	a.cycles++

	if a.cfg.Window.Debug {
		stats.entities = a.world.Len()
		a.debugCheckEntities(stats.entities)
		a.debugLog(stats)
	}

	if a.quit {
		a.log.Info("quit requested", zap.Uint64("cycle", a.cycles))
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *App[P]) Draw(screen *ebiten.Image) {
	DrawSprites(a.world, screen)
	a.drawOverlay(screen)
}

// Layout implements ebiten.Game with a fixed logical screen size.
func (a *App[P]) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Window.Width, a.cfg.Window.Height
}

// Run opens the window and blocks until the game quits or a system fails.
// Configuration errors are returned before the window opens.
func (a *App[P]) Run() error {
	if err := a.Err(); err != nil {
		return err
	}
	defer a.Close()

	ebiten.SetWindowTitle(a.cfg.Window.Title)
	ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
	if a.cfg.Window.TPS > 0 {
		ebiten.SetTPS(a.cfg.Window.TPS)
	}
	a.log.Info("starting",
		zap.String("title", a.cfg.Window.Title),
		zap.Int("phases", len(a.sched.Phases())),
		zap.Int("assets", len(a.assets.Descriptors())),
	)
	return ebiten.RunGame(a)
}

// Close releases the backend.
func (a *App[P]) Close() error {
	if c, ok := a.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
