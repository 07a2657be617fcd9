package grove

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// manifestEntry is one asset in an assets.yaml manifest:
//
//	- tag: ship
//	  source: ship.png
//	  kind: sprite_sheet
//	  tile_width: 32
//	  tile_height: 32
//	  columns: 4
//	  rows: 1
type manifestEntry struct {
	Tag        string `yaml:"tag"`
	Source     string `yaml:"source"`
	Kind       string `yaml:"kind"`
	TileWidth  int    `yaml:"tile_width"`
	TileHeight int    `yaml:"tile_height"`
	Columns    int    `yaml:"columns"`
	Rows       int    `yaml:"rows"`
}

// LoadManifest registers every entry of a YAML manifest in order. An entry
// without a kind is an image. Registration stops at the first invalid entry.
func (m *AssetManager) LoadManifest(data []byte) error {
	var entries []manifestEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("grove: parse asset manifest: %w", err)
	}
	for i, e := range entries {
		kind := KindImage
		if e.Kind != "" {
			k, err := ParseAssetKind(e.Kind)
			if err != nil {
				return fmt.Errorf("grove: manifest entry %d: %w", i, err)
			}
			kind = k
		}
		d := AssetDescriptor{Tag: e.Tag, Source: e.Source, Kind: kind}
		if kind == KindSpriteSheet {
			d.Sheet = SheetGeometry{
				TileWidth:  e.TileWidth,
				TileHeight: e.TileHeight,
				Columns:    e.Columns,
				Rows:       e.Rows,
			}
		}
		if err := m.Register(d); err != nil {
			return fmt.Errorf("grove: manifest entry %d: %w", i, err)
		}
	}
	return nil
}

// LoadManifestFile reads name from fsys and passes it to LoadManifest.
func (m *AssetManager) LoadManifestFile(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("grove: read asset manifest %s: %w", name, err)
	}
	return m.LoadManifest(data)
}
