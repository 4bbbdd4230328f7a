package world

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/content"
)

// yamlMap is the on-disk form of a map. Each layer is a list of rows of
// space-separated integers.
type yamlMap struct {
	Type            string              `yaml:"type"`
	Name            string              `yaml:"name"`
	TileSize        float64             `yaml:"tile_size"`
	Spawn           Point               `yaml:"spawn"`
	EnemyFaction    string              `yaml:"enemy_faction"`
	PopulationLimit int                 `yaml:"population_limit"`
	Layers          map[string][]string `yaml:"layers"`
}

// LoadMapFromBytes parses and validates a single map.
//
// Postcondition: Every layer has the same dimensions and the spawn tile is
// inside the map and not blocked.
func LoadMapFromBytes(data []byte) (*Map, error) {
	var raw yamlMap
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing map YAML: %w", err)
	}
	if raw.Type == "" {
		return nil, errors.New("map: type must not be empty")
	}
	m := &Map{
		Type:            raw.Type,
		Name:            raw.Name,
		TileSize:        raw.TileSize,
		SpawnTile:       raw.Spawn,
		EnemyFaction:    raw.EnemyFaction,
		PopulationLimit: raw.PopulationLimit,
	}
	if m.Name == "" {
		m.Name = m.Type
	}
	if m.TileSize <= 0 {
		m.TileSize = 16
	}
	for i, name := range LayerNames {
		rows, ok := raw.Layers[name]
		if !ok {
			return nil, fmt.Errorf("map %q: missing layer %q", raw.Type, name)
		}
		grid, err := parseGrid(rows)
		if err != nil {
			return nil, fmt.Errorf("map %q: layer %q: %w", raw.Type, name, err)
		}
		if i == 0 {
			m.Height = len(grid)
			m.Width = len(grid[0])
		}
		if len(grid) != m.Height || len(grid[0]) != m.Width {
			return nil, fmt.Errorf("map %q: layer %q is %dx%d, want %dx%d", raw.Type, name, len(grid[0]), len(grid), m.Width, m.Height)
		}
		m.Layers[i] = grid
	}
	sp := m.SpawnTile
	if sp.X < 0 || sp.Y < 0 || sp.X >= m.Width || sp.Y >= m.Height {
		return nil, fmt.Errorf("map %q: spawn %v outside the map", m.Type, sp)
	}
	if m.Cell(LayerCollision, sp.X, sp.Y) != 0 {
		return nil, fmt.Errorf("map %q: spawn %v is blocked", m.Type, sp)
	}
	return m, nil
}

func parseGrid(rows []string) (Grid, error) {
	if len(rows) == 0 {
		return nil, errors.New("no rows")
	}
	grid := make(Grid, len(rows))
	for y, row := range rows {
		fields := strings.Fields(row)
		if y > 0 && len(fields) != len(grid[0]) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", y, len(fields), len(grid[0]))
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("row %d is empty", y)
		}
		grid[y] = make([]int, len(fields))
		for x, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", y, x, err)
			}
			grid[y][x] = v
		}
	}
	return grid, nil
}

// LoadMaps reads every YAML file under dir of fsys.
//
// Precondition: dir must be a readable directory of fsys.
// Postcondition: Returns all maps or the first error.
func LoadMaps(fsys fs.FS, dir string) ([]*Map, error) {
	files, err := content.YAMLFiles(fsys, dir)
	if err != nil {
		return nil, err
	}
	maps := make([]*Map, 0, len(files))
	for _, path := range files {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		m, err := LoadMapFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		maps = append(maps, m)
	}
	return maps, nil
}

// Atlas indexes map layouts by type.
type Atlas struct {
	maps map[string]*Map
}

// NewAtlas indexes maps by type.
//
// Postcondition: Returns an error on duplicate types.
func NewAtlas(maps []*Map) (*Atlas, error) {
	a := &Atlas{maps: make(map[string]*Map, len(maps))}
	for _, m := range maps {
		if _, dup := a.maps[m.Type]; dup {
			return nil, fmt.Errorf("duplicate map type %q", m.Type)
		}
		a.maps[m.Type] = m
	}
	return a, nil
}

// Map returns the layout for typ.
func (a *Atlas) Map(typ string) (*Map, bool) {
	m, ok := a.maps[typ]
	return m, ok
}
