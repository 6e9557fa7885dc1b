// Package levels loads arena layouts. Tile rows are stored top-down in the
// file; the accessors convert to y-up world coordinates.
package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

const defaultTileSize = 16.0

type Level struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  float64     `json:"tile_size,omitempty"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Physics bool `json:"physics"`
}

// Entity is a placed spawn in tile coordinates.
type Entity struct {
	Type  string         `json:"type"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Props map[string]any `json:"props,omitempty"`
}

// Rect is an axis-aligned box in world units, y-up, positioned by its
// center.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Names lists the embedded levels without extension.
func Names() ([]string, error) {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads an embedded level; the .json suffix is optional.
func Load(name string) (*Level, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if lvl.Width <= 0 || lvl.Height <= 0 {
		return nil, fmt.Errorf("level: invalid size %dx%d", lvl.Width, lvl.Height)
	}
	for i, layer := range lvl.Layers {
		if len(layer) != lvl.Width*lvl.Height {
			return nil, fmt.Errorf("level: layer %d has %d tiles, want %d", i, len(layer), lvl.Width*lvl.Height)
		}
	}
	if lvl.TileSize <= 0 {
		lvl.TileSize = defaultTileSize
	}
	return &lvl, nil
}

// WorldPosition returns the center of tile (x, y) in world units.
func (l *Level) WorldPosition(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * l.TileSize, (float64(l.Height-y) - 0.5) * l.TileSize
}

// Bounds is the level size in world units.
func (l *Level) Bounds() (width, height float64) {
	return float64(l.Width) * l.TileSize, float64(l.Height) * l.TileSize
}

func (l *Level) physics(layer int) bool {
	if layer < len(l.LayerMeta) {
		return l.LayerMeta[layer].Physics
	}
	return layer == 0
}

// Solids merges horizontal runs of solid tiles into boxes.
func (l *Level) Solids() []Rect {
	solid := make([]bool, l.Width*l.Height)
	for i, layer := range l.Layers {
		if !l.physics(i) {
			continue
		}
		for idx, id := range layer {
			if id > 0 {
				solid[idx] = true
			}
		}
	}

	var out []Rect
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; {
			if !solid[y*l.Width+x] {
				x++
				continue
			}
			start := x
			for x < l.Width && solid[y*l.Width+x] {
				x++
			}
			cx, cy := l.WorldPosition(start, y)
			run := float64(x - start)
			out = append(out, Rect{
				X:      cx - l.TileSize/2 + run*l.TileSize/2,
				Y:      cy,
				Width:  run * l.TileSize,
				Height: l.TileSize,
			})
		}
	}
	return out
}
