// Package ruleset loads the playable archetypes.
package ruleset

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/content"
	"github.com/cory-johannsen/warband/internal/game/combat"
)

// Pool is a health or mana base capacity at level 1 and its per-level gain.
type Pool struct {
	Base     float64 `yaml:"base"`
	PerLevel float64 `yaml:"per_level"`
}

// Archetype defines a playable class.
//
// Precondition: ID, Name, Faction and Health.Base must be non-zero after
// loading.
type Archetype struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Faction     string   `yaml:"faction"`
	Health      Pool     `yaml:"health"`
	Mana        Pool     `yaml:"mana"`
	Resistance  float64  `yaml:"resistance"`
	Defense     float64  `yaml:"defense"`
	Abilities   []string `yaml:"abilities"`
}

// Growth returns the level scaling used by player units.
func (a *Archetype) Growth() combat.Growth {
	return combat.Growth{
		Health:     combat.StatGrowth{Base: a.Health.Base, PerLevel: a.Health.PerLevel},
		Mana:       combat.StatGrowth{Base: a.Mana.Base, PerLevel: a.Mana.PerLevel},
		Resistance: a.Resistance,
		Defense:    a.Defense,
	}
}

// Validate reports every missing or out-of-range field.
func (a *Archetype) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if a.Faction == "" {
		errs = append(errs, errors.New("faction must not be empty"))
	}
	if a.Health.Base <= 0 {
		errs = append(errs, errors.New("health.base must be > 0"))
	}
	if a.Resistance < 0 || a.Resistance >= 1 || a.Defense < 0 || a.Defense >= 1 {
		errs = append(errs, errors.New("resistance and defense must be in [0, 1)"))
	}
	return errors.Join(errs...)
}

// LoadArchetypes reads every YAML file under dir of fsys as an Archetype.
//
// Precondition: dir must be a readable directory of fsys.
// Postcondition: Returns all valid archetypes or a non-nil error.
func LoadArchetypes(fsys fs.FS, dir string) ([]*Archetype, error) {
	files, err := content.YAMLFiles(fsys, dir)
	if err != nil {
		return nil, err
	}
	archetypes := make([]*Archetype, 0, len(files))
	for _, path := range files {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var a Archetype
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("parsing archetype file %s: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("archetype file %s: %w", path, err)
		}
		archetypes = append(archetypes, &a)
	}
	return archetypes, nil
}

// Registry provides lookup of archetypes by id.
type Registry struct {
	archetypes map[string]*Archetype
}

// NewRegistry returns a Registry holding archetypes.
//
// Precondition: every archetype must be non-nil with a non-empty ID.
// Postcondition: on duplicate IDs the last one wins.
func NewRegistry(archetypes []*Archetype) *Registry {
	r := &Registry{archetypes: make(map[string]*Archetype, len(archetypes))}
	for _, a := range archetypes {
		if a == nil || a.ID == "" {
			panic("ruleset.NewRegistry: precondition violated: archetype must be non-nil with an ID")
		}
		r.archetypes[a.ID] = a
	}
	return r
}

// Archetype returns the archetype for id.
func (r *Registry) Archetype(id string) (*Archetype, bool) {
	a, ok := r.archetypes[id]
	return a, ok
}

// HasArchetype reports whether id is playable.
func (r *Registry) HasArchetype(id string) bool {
	_, ok := r.archetypes[id]
	return ok
}

// IDs returns every archetype id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.archetypes))
	for id := range r.archetypes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
