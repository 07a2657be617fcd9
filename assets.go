package grove

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
)

// AssetManager collects asset registrations and issues their load requests
// when activated. Every registration is validated against the asset root
// immediately, so a missing file aborts startup instead of surfacing as a
// hung loading screen.
type AssetManager struct {
	fsys        fs.FS
	descriptors []AssetDescriptor
	tags        map[string]struct{}
	activated   bool
	log         *zap.Logger
}

// NewAssetManager returns a manager that validates sources against fsys.
func NewAssetManager(fsys fs.FS) *AssetManager {
	return &AssetManager{
		fsys: fsys,
		tags: make(map[string]struct{}),
		log:  zap.NewNop(),
	}
}

// SetLogger replaces the manager's logger. A nil logger disables logging.
func (m *AssetManager) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	m.log = log
}

// AddImage registers a single image under tag.
func (m *AssetManager) AddImage(tag, source string) error {
	return m.Register(AssetDescriptor{Tag: tag, Source: source, Kind: KindImage})
}

// AddSound registers a sound under tag.
func (m *AssetManager) AddSound(tag, source string) error {
	return m.Register(AssetDescriptor{Tag: tag, Source: source, Kind: KindSound})
}

// AddSpriteSheet registers an image that is partitioned into a columns×rows
// grid of tileW×tileH tiles once it has loaded. The raw image is stored under
// BaseTag(tag) and the sheet under tag.
func (m *AssetManager) AddSpriteSheet(tag, source string, tileW, tileH, columns, rows int) error {
	return m.Register(AssetDescriptor{
		Tag:    tag,
		Source: source,
		Kind:   KindSpriteSheet,
		Sheet: SheetGeometry{
			TileWidth:  tileW,
			TileHeight: tileH,
			Columns:    columns,
			Rows:       rows,
		},
	})
}

// Register validates and records d.
func (m *AssetManager) Register(d AssetDescriptor) error {
	if m.activated {
		return fmt.Errorf("grove: register %q: %w", d.Tag, ErrActivated)
	}
	if d.Tag == "" {
		return fmt.Errorf("grove: register %q: empty tag", d.Source)
	}
	if err := m.checkSource(d.Source); err != nil {
		return fmt.Errorf("grove: register %q: %w", d.Tag, err)
	}

	claimed := []string{d.Tag}
	switch d.Kind {
	case KindImage, KindSound:
	case KindSpriteSheet:
		if !d.Sheet.valid() {
			return fmt.Errorf("grove: register %q: %+v: %w", d.Tag, d.Sheet, ErrInvalidSheet)
		}
		claimed = append(claimed, BaseTag(d.Tag))
	default:
		return fmt.Errorf("grove: register %q: kind %d: %w", d.Tag, d.Kind, ErrUnsupportedAsset)
	}
	for _, tag := range claimed {
		if _, ok := m.tags[tag]; ok {
			return fmt.Errorf("grove: register %q: %w", tag, ErrDuplicateTag)
		}
	}
	for _, tag := range claimed {
		m.tags[tag] = struct{}{}
	}

	m.descriptors = append(m.descriptors, d)
	return nil
}

// checkSource is a presence check only; the file is not opened or parsed.
func (m *AssetManager) checkSource(source string) error {
	if source == "" || !fs.ValidPath(source) {
		return fmt.Errorf("source %q: %w", source, ErrAssetMissing)
	}
	if _, err := fs.Stat(m.fsys, source); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("source %q: %w", source, ErrAssetMissing)
		}
		return fmt.Errorf("source %q: %w", source, err)
	}
	return nil
}

// Descriptors returns the registrations awaiting activation. It is empty once
// the manager has been activated.
func (m *AssetManager) Descriptors() []AssetDescriptor {
	return m.descriptors
}

// Registered reports whether tag is claimed by a registration, including the
// base tag of a sprite sheet.
func (m *AssetManager) Registered(tag string) bool {
	_, ok := m.tags[tag]
	return ok
}

// Activated reports whether Activate has run.
func (m *AssetManager) Activated() bool {
	return m.activated
}

// Activate issues one load request per registered asset and records the
// handles in store. Sprite sheets load their image under BaseTag(tag) and
// leave a CompositeRequest for the loading gate. The descriptor list is
// discarded afterwards.
func (m *AssetManager) Activate(store *AssetStore, backend AssetBackend) error {
	if m.activated {
		return fmt.Errorf("grove: activate: %w", ErrActivated)
	}

	for _, d := range m.descriptors {
		switch d.Kind {
		case KindSpriteSheet:
			base := BaseTag(d.Tag)
			h := backend.RequestLoad(d.Source, KindImage)
			if err := store.insert(base, h); err != nil {
				return err
			}
			store.deferComposite(CompositeRequest{Result: d.Tag, Base: base, Sheet: d.Sheet})
			m.log.Debug("load requested",
				zap.String("tag", base),
				zap.String("source", d.Source),
				zap.Stringer("kind", d.Kind))
		default:
			h := backend.RequestLoad(d.Source, d.Kind)
			if err := store.insert(d.Tag, h); err != nil {
				return err
			}
			m.log.Debug("load requested",
				zap.String("tag", d.Tag),
				zap.String("source", d.Source),
				zap.Stringer("kind", d.Kind))
		}
	}

	m.descriptors = nil
	m.activated = true
	return nil
}
