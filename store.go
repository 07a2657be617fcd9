package grove

import (
	"fmt"
	"sort"
)

// Handle is an opaque reference to a resource owned by an AssetBackend.
// The zero Handle never refers to a resource.
type Handle uint32

// NoHandle is the invalid zero handle.
const NoHandle Handle = 0

// AssetKind selects how a source file is loaded.
type AssetKind uint8

const (
	KindImage       AssetKind = iota // single image
	KindSound                        // decoded sound buffer
	KindSpriteSheet                  // image partitioned into a tile grid after loading
)

// String returns the manifest name of the kind.
func (k AssetKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindSound:
		return "sound"
	case KindSpriteSheet:
		return "sprite_sheet"
	default:
		return "unknown"
	}
}

// ParseAssetKind is the inverse of AssetKind.String.
func ParseAssetKind(s string) (AssetKind, error) {
	switch s {
	case "image":
		return KindImage, nil
	case "sound":
		return KindSound, nil
	case "sprite_sheet", "spritesheet":
		return KindSpriteSheet, nil
	}
	return 0, fmt.Errorf("grove: unknown asset kind %q", s)
}

// SheetGeometry describes the tile grid of a sprite sheet.
type SheetGeometry struct {
	TileWidth  int
	TileHeight int
	Columns    int
	Rows       int
}

// Frames returns the number of tiles in the grid.
func (g SheetGeometry) Frames() int {
	return g.Columns * g.Rows
}

func (g SheetGeometry) valid() bool {
	return g.TileWidth > 0 && g.TileHeight > 0 && g.Columns > 0 && g.Rows > 0
}

// AssetDescriptor is one registered asset. Sheet is only meaningful for
// KindSpriteSheet.
type AssetDescriptor struct {
	Tag    string
	Source string
	Kind   AssetKind
	Sheet  SheetGeometry
}

// CompositeRequest records a sprite sheet that can only be built once the
// image stored under Base has loaded. The result is stored under Result.
type CompositeRequest struct {
	Result string
	Base   string
	Sheet  SheetGeometry
}

// baseTagSuffix names the raw image backing a sprite sheet tag.
const baseTagSuffix = "_base"

// BaseTag returns the store tag of the raw image behind sprite sheet tag.
func BaseTag(tag string) string {
	return tag + baseTagSuffix
}

type storeEntry struct {
	handle   Handle
	resolved bool
}

// AssetStore maps tags to loaded resource handles. It is written only by the
// AssetManager (activation) and the LoadingGate (resolution and composites);
// everything else reads it.
type AssetStore struct {
	entries  map[string]storeEntry
	deferred []CompositeRequest
}

// NewAssetStore returns an empty store.
func NewAssetStore() *AssetStore {
	return &AssetStore{entries: make(map[string]storeEntry)}
}

// insert adds an unresolved tag. A tag may be inserted at most once.
func (s *AssetStore) insert(tag string, h Handle) error {
	if _, ok := s.entries[tag]; ok {
		return fmt.Errorf("grove: store %q: %w", tag, ErrDuplicateTag)
	}
	s.entries[tag] = storeEntry{handle: h}
	return nil
}

// insertResolved adds a tag whose resource is already available, such as a
// freshly built composite.
func (s *AssetStore) insertResolved(tag string, h Handle) error {
	if err := s.insert(tag, h); err != nil {
		return err
	}
	s.resolve(tag)
	return nil
}

func (s *AssetStore) resolve(tag string) {
	if e, ok := s.entries[tag]; ok {
		e.resolved = true
		s.entries[tag] = e
	}
}

func (s *AssetStore) deferComposite(req CompositeRequest) {
	s.deferred = append(s.deferred, req)
}

// Lookup returns the handle stored under tag. It fails with ErrNotFound when
// the tag was never registered or its load has not resolved yet.
func (s *AssetStore) Lookup(tag string) (Handle, error) {
	e, ok := s.entries[tag]
	if !ok {
		return NoHandle, fmt.Errorf("grove: lookup %q: %w", tag, ErrNotFound)
	}
	if !e.resolved {
		return NoHandle, fmt.Errorf("grove: lookup %q: not yet resolved: %w", tag, ErrNotFound)
	}
	return e.handle, nil
}

// MustLookup is like Lookup but panics on failure. Intended for spawn code
// running in phases entered after the loading gate reported ready.
func (s *AssetStore) MustLookup(tag string) Handle {
	h, err := s.Lookup(tag)
	if err != nil {
		panic(err)
	}
	return h
}

// Resolved reports whether tag exists and has finished loading.
func (s *AssetStore) Resolved(tag string) bool {
	e, ok := s.entries[tag]
	return ok && e.resolved
}

// Len returns the number of stored tags, resolved or not.
func (s *AssetStore) Len() int {
	return len(s.entries)
}

// Tags returns every stored tag in sorted order.
func (s *AssetStore) Tags() []string {
	tags := make([]string, 0, len(s.entries))
	for tag := range s.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Deferred returns the composite requests not yet materialized. The returned
// slice MUST NOT be mutated.
func (s *AssetStore) Deferred() []CompositeRequest {
	return s.deferred
}

// unresolved returns the tag/handle pairs still waiting on the backend, in
// tag order so polling is deterministic.
func (s *AssetStore) unresolved() []pendingLoad {
	var out []pendingLoad
	for _, tag := range s.Tags() {
		e := s.entries[tag]
		if !e.resolved {
			out = append(out, pendingLoad{tag: tag, handle: e.handle})
		}
	}
	return out
}
