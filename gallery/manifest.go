// Package gallery loads target images and their anchors from a YAML manifest and keeps
// their per color totals in a local cache.
package gallery

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/BeatGlow/overlay/tile"
)

// Manifest describes a gallery of target images.
type Manifest struct {
	// TileSize is the edge length of a canvas tile in pixels.
	TileSize int `yaml:"tile_size"`

	// Images are the gallery entries.
	Images []Entry `yaml:"images"`

	// VisibleTiles lists "x,y" keys of tiles that are on screen.
	VisibleTiles []string `yaml:"visible_tiles"`

	// Canvas holds snapshots of live canvas tiles, used to count matched pixels.
	Canvas []CanvasTile `yaml:"canvas"`

	// Palette restricts filtered overlays to these #rrggbb colors.
	Palette []string `yaml:"palette"`

	// Cache is the path of the totals cache database, empty to disable caching.
	Cache string `yaml:"cache"`

	// dir resolves relative paths.
	dir string
}

// Entry is one target image.
type Entry struct {
	// Key uniquely identifies the image.
	Key string `yaml:"key"`

	// Path of the image file.
	Path string `yaml:"path"`

	// Enabled is the draw toggle, defaults to true.
	Enabled *bool `yaml:"enabled"`

	// Position is the anchor tile; images without one are never counted.
	Position *tile.Coord `yaml:"position"`

	// Offset of the image's top-left pixel inside the anchor tile.
	Offset Point `yaml:"offset"`
}

// Point is a pixel offset.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// CanvasTile is a snapshot of one live canvas tile.
type CanvasTile struct {
	Tile string `yaml:"tile"`
	Path string `yaml:"path"`
}

// IsEnabled reports the draw toggle.
func (e Entry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Origin returns the absolute canvas pixel of the image's top-left corner.
func (e Entry) Origin(tileSize int) (image.Point, bool) {
	if e.Position == nil {
		return image.Point{}, false
	}
	return image.Pt(e.Position.X*tileSize+e.Offset.X, e.Position.Y*tileSize+e.Offset.Y), true
}

// DefaultManifest returns a manifest with default settings.
func DefaultManifest() *Manifest {
	return &Manifest{
		TileSize: 1000,
	}
}

// LoadManifest reads and parses a YAML manifest. Relative paths in the manifest are
// resolved against its directory.
func LoadManifest(path string) (*Manifest, error) {
	m := DefaultManifest()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, m.Validate()
}

// Resolve returns path relative to the manifest directory.
func (m *Manifest) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.dir == "" {
		return path
	}
	return filepath.Join(m.dir, path)
}

// Validate checks that required fields are present and values are sane.
func (m *Manifest) Validate() error {
	if m.TileSize <= 0 {
		return fmt.Errorf("tile_size must be > 0")
	}
	seen := make(map[string]bool, len(m.Images))
	for i, e := range m.Images {
		if e.Key == "" {
			return fmt.Errorf("images[%d]: key is required", i)
		}
		if seen[e.Key] {
			return fmt.Errorf("images[%d]: duplicate key %q", i, e.Key)
		}
		seen[e.Key] = true
		if e.Path == "" {
			return fmt.Errorf("images[%d]: path is required", i)
		}
	}
	for i, k := range m.VisibleTiles {
		if _, err := tile.ParseKey(k); err != nil {
			return fmt.Errorf("visible_tiles[%d]: %w", i, err)
		}
	}
	for i, c := range m.Canvas {
		if _, err := tile.ParseKey(c.Tile); err != nil {
			return fmt.Errorf("canvas[%d]: %w", i, err)
		}
		if c.Path == "" {
			return fmt.Errorf("canvas[%d]: path is required", i)
		}
	}
	return nil
}
