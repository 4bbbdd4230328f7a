// Package npc provides NPC template definitions, faction variant lists,
// difficulty level ranges and the spawner that turns templates into units.
package npc

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/content"
	"github.com/cory-johannsen/warband/internal/game/combat"
)

// Pool is a health or mana base capacity at level 1 and its per-level gain.
type Pool struct {
	Base     float64 `yaml:"base"`
	PerLevel float64 `yaml:"per_level"`
}

// At returns the capacity at level.
func (p Pool) At(level int) float64 {
	return p.Base + p.PerLevel*float64(level-1)
}

// Template defines a reusable NPC loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Faction     string `yaml:"faction"`
	// Variant orders templates within a faction; map spawn cells select
	// variants by position in that order.
	Variant    int      `yaml:"variant"`
	Rank       string   `yaml:"rank"`
	PrefRange  string   `yaml:"pref_range"`
	Sight      float64  `yaml:"sight"`
	Speed      float64  `yaml:"speed"`
	Health     Pool     `yaml:"health"`
	Mana       Pool     `yaml:"mana"`
	Resistance float64  `yaml:"resistance"`
	Defense    float64  `yaml:"defense"`
	Abilities  []string `yaml:"abilities"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID, Name and Faction are non-empty, rank and
// pref_range are known, health.base >= 1 and at least one ability is
// listed; returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Faction == "" {
		return fmt.Errorf("npc template %q: faction must not be empty", t.ID)
	}
	if t.Rank != "" && !combat.ValidRank(combat.Rank(t.Rank)) {
		return fmt.Errorf("npc template %q: unknown rank %q", t.ID, t.Rank)
	}
	if t.PrefRange != "" {
		if _, err := combat.ParseRange(t.PrefRange); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	if t.Health.Base < 1 {
		return fmt.Errorf("npc template %q: health.base must be >= 1", t.ID)
	}
	if t.Resistance < 0 || t.Resistance >= 1 || t.Defense < 0 || t.Defense >= 1 {
		return fmt.Errorf("npc template %q: resistance and defense must be in [0, 1)", t.ID)
	}
	if len(t.Abilities) == 0 {
		return fmt.Errorf("npc template %q: abilities must not be empty", t.ID)
	}
	return nil
}

// State returns the NPC payload for a unit of this template at level.
func (t *Template) State(level int) combat.NPCState {
	pref := combat.RangeNear
	if t.PrefRange != "" {
		pref, _ = combat.ParseRange(t.PrefRange)
	}
	rank := combat.Rank(t.Rank)
	if rank == "" {
		rank = combat.RankMinion
	}
	return combat.NPCState{
		Level:     level,
		Rank:      rank,
		PrefRange: pref,
		Sight:     t.Sight,
		Speed:     t.Speed,
	}
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads every YAML file under dir of fsys.
//
// Precondition: dir must be a readable directory of fsys.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(fsys fs.FS, dir string) ([]*Template, error) {
	files, err := content.YAMLFiles(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}
	templates := make([]*Template, 0, len(files))
	for _, path := range files {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
