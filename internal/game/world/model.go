// Package world provides map layouts: the four tile layers, spawn point,
// static objects and the collision test NPC movement uses.
package world

import (
	"math"

	"github.com/cory-johannsen/warband/internal/game/geom"
)

// Layer indexes one of the four tile layers.
type Layer int

const (
	LayerGround Layer = iota
	LayerCollision
	LayerObject
	LayerNPC
	layerCount
)

// LayerNames lists the YAML and wire names of the layers in index order.
var LayerNames = [layerCount]string{"ground", "collision", "object", "npc"}

// Grid is a row-major tile grid; Grid[y][x].
type Grid [][]int

// Point is a tile coordinate.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Object is a static map object taken from the object layer.
type Object struct {
	ID   int     `json:"id"`
	Kind int     `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Spawn is an NPC spawn cell: the nonzero cell value and the tile.
type Spawn struct {
	Value int
	Tile  Point
}

// Map is an immutable map layout shared by every instance of its type.
type Map struct {
	Type            string
	Name            string
	TileSize        float64
	Width           int
	Height          int
	SpawnTile       Point
	EnemyFaction    string
	PopulationLimit int
	Layers          [layerCount]Grid
}

// Layout is the wire form sent on map-join.
type Layout struct {
	TileSize float64         `json:"tileSize"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Layers   map[string]Grid `json:"layers"`
}

// Layout returns the wire form of m.
func (m *Map) Layout() Layout {
	l := Layout{
		TileSize: m.TileSize,
		Width:    m.Width,
		Height:   m.Height,
		Layers:   make(map[string]Grid, layerCount),
	}
	for i, name := range LayerNames {
		l.Layers[name] = m.Layers[i]
	}
	return l
}

// Cell returns the value of layer at tile (x, y); out-of-bounds reads 0.
func (m *Map) Cell(layer Layer, x, y int) int {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Layers[layer][y][x]
}

// TileRect returns the world rectangle of tile (x, y).
func (m *Map) TileRect(x, y int) geom.Rect {
	return geom.Rect{X: float64(x) * m.TileSize, Y: float64(y) * m.TileSize, W: m.TileSize, H: m.TileSize}
}

// SpawnPoint returns the world position of the player spawn tile.
func (m *Map) SpawnPoint() (x, y float64) {
	r := m.TileRect(m.SpawnTile.X, m.SpawnTile.Y)
	return r.X, r.Y
}

// Spawns returns every nonzero NPC-layer cell in row-major order.
func (m *Map) Spawns() []Spawn {
	var out []Spawn
	for y, row := range m.Layers[LayerNPC] {
		for x, v := range row {
			if v != 0 {
				out = append(out, Spawn{Value: v, Tile: Point{X: x, Y: y}})
			}
		}
	}
	return out
}

// Objects returns every nonzero object-layer cell in row-major order.
func (m *Map) Objects() []Object {
	var out []Object
	for y, row := range m.Layers[LayerObject] {
		for x, v := range row {
			if v != 0 {
				r := m.TileRect(x, y)
				out = append(out, Object{ID: len(out) + 1, Kind: v, X: r.X, Y: r.Y})
			}
		}
	}
	return out
}

// Collides reports whether r overlaps a blocking tile. Only the 3x3 tile
// neighbourhood around r's center is consulted; tiles outside the map
// block.
func (m *Map) Collides(r geom.Rect) bool {
	cx := int(math.Floor(r.CenterX() / m.TileSize))
	cy := int(math.Floor(r.CenterY() / m.TileSize))
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			tx, ty := cx+dx, cy+dy
			tile := m.TileRect(tx, ty)
			if !tile.Overlaps(r) {
				continue
			}
			if tx < 0 || ty < 0 || tx >= m.Width || ty >= m.Height {
				return true
			}
			if m.Layers[LayerCollision][ty][tx] != 0 {
				return true
			}
		}
	}
	return false
}
