package grove

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for image assets
	_ "image/png"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// LoadState is the backend-reported state of a load request.
type LoadState uint8

const (
	LoadPending LoadState = iota // still loading
	LoadLoaded                   // resource available
	LoadFailed                   // will never load
)

// String returns a lower-case name for the state.
func (s LoadState) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadLoaded:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AssetBackend issues asynchronous loads and reports their state. The core
// never looks at resource contents, only at state transitions.
type AssetBackend interface {
	RequestLoad(source string, kind AssetKind) Handle
	PollState(h Handle) LoadState
}

// Partitioner builds a sprite sheet composite from a loaded image handle.
// It is only called once the base handle reports LoadLoaded and must not fail.
type Partitioner interface {
	Partition(base Handle, sheet SheetGeometry) Handle
}

// loadErrorer is implemented by backends that can explain a LoadFailed state.
type loadErrorer interface {
	LoadError(h Handle) error
}

// DefaultMaxConcurrentLoads bounds in-flight decodes when no limit is configured.
const DefaultMaxConcurrentLoads = 4

type backendSlot struct {
	source string
	kind   AssetKind

	done    bool // decode goroutine finished
	err     error
	decoded image.Image

	image *ebiten.Image
	sheet *SpriteSheet
	sound *beep.Buffer
}

// FileBackend loads assets from an fs.FS on background goroutines. Decoding
// happens off the cycle goroutine; images are uploaded to *ebiten.Image
// inside PollState, which runs on the cycle goroutine.
type FileBackend struct {
	fsys   fs.FS
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger

	mu     sync.Mutex
	next   Handle
	slots  map[Handle]*backendSlot
	closed bool
}

// NewFileBackend returns a backend reading from fsys with at most maxLoads
// decodes in flight. maxLoads <= 0 selects DefaultMaxConcurrentLoads.
func NewFileBackend(fsys fs.FS, maxLoads int, log *zap.Logger) *FileBackend {
	if maxLoads <= 0 {
		maxLoads = DefaultMaxConcurrentLoads
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FileBackend{
		fsys:   fsys,
		sem:    semaphore.NewWeighted(int64(maxLoads)),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
		slots:  make(map[Handle]*backendSlot),
	}
}

// RequestLoad starts loading source and returns its handle immediately.
// After Close the handle reports LoadFailed with ErrBackendClosed.
func (b *FileBackend) RequestLoad(source string, kind AssetKind) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	h := b.next
	s := &backendSlot{source: source, kind: kind}
	b.slots[h] = s
	if b.closed {
		s.done = true
		s.err = fmt.Errorf("load %s: %w", source, ErrBackendClosed)
		return h
	}

	b.wg.Add(1)
	go b.load(h, source, kind)
	return h
}

func (b *FileBackend) load(h Handle, source string, kind AssetKind) {
	defer b.wg.Done()

	if err := b.sem.Acquire(b.ctx, 1); err != nil {
		b.finish(h, nil, nil, err)
		return
	}
	defer b.sem.Release(1)

	switch kind {
	case KindImage, KindSpriteSheet:
		img, err := b.decodeImage(source)
		b.finish(h, img, nil, err)
	case KindSound:
		buf, err := b.decodeSound(source)
		b.finish(h, nil, buf, err)
	default:
		b.finish(h, nil, nil, fmt.Errorf("kind %d: %w", kind, ErrUnsupportedAsset))
	}
}

func (b *FileBackend) decodeImage(source string) (image.Image, error) {
	f, err := b.fsys.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return img, nil
}

func (b *FileBackend) decodeSound(source string) (*beep.Buffer, error) {
	if ext := strings.ToLower(path.Ext(source)); ext != ".wav" {
		return nil, fmt.Errorf("sound %s: %w", source, ErrUnsupportedAsset)
	}
	f, err := b.fsys.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	defer streamer.Close()
	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	return buf, nil
}

func (b *FileBackend) finish(h Handle, img image.Image, sound *beep.Buffer, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[h]
	s.done = true
	s.err = err
	s.decoded = img
	s.sound = sound
	if err != nil {
		b.log.Debug("load failed", zap.String("source", s.source), zap.Error(err))
	}
}

// PollState reports the state of h. Unknown handles report LoadFailed.
func (b *FileBackend) PollState(h Handle) LoadState {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[h]
	if !ok {
		return LoadFailed
	}
	if !s.done {
		return LoadPending
	}
	if s.err != nil {
		return LoadFailed
	}
	if s.decoded != nil && s.image == nil {
		s.image = ebiten.NewImageFromImage(s.decoded)
		s.decoded = nil
	}
	return LoadLoaded
}

// LoadError returns the reason h failed, or nil.
func (b *FileBackend) LoadError(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.slots[h]; ok {
		return s.err
	}
	return fmt.Errorf("handle %d: %w", h, ErrNotFound)
}

// Partition builds a SpriteSheet from the loaded image behind base.
// It panics if base is not a loaded image.
func (b *FileBackend) Partition(base Handle, g SheetGeometry) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[base]
	if !ok || s.image == nil {
		panic(fmt.Sprintf("grove: partition of handle %d which is not a loaded image", base))
	}
	b.next++
	h := b.next
	b.slots[h] = &backendSlot{
		source: s.source,
		kind:   KindSpriteSheet,
		done:   true,
		sheet:  NewSpriteSheet(s.image, g),
	}
	return h
}

// Image returns the image behind h.
func (b *FileBackend) Image(h Handle) (*ebiten.Image, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.slots[h]; ok && s.image != nil {
		return s.image, true
	}
	return nil, false
}

// Sheet returns the sprite sheet behind h.
func (b *FileBackend) Sheet(h Handle) (*SpriteSheet, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.slots[h]; ok && s.sheet != nil {
		return s.sheet, true
	}
	return nil, false
}

// Sound returns the decoded sound behind h.
func (b *FileBackend) Sound(h Handle) (*beep.Buffer, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.slots[h]; ok && s.sound != nil {
		return s.sound, true
	}
	return nil, false
}

// Close cancels loads still waiting for a decode slot and waits for running
// decodes to finish. Cancelled loads report LoadFailed.
func (b *FileBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()
	b.wg.Wait()
	return nil
}
