package npc

import (
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/geom"
	"github.com/cory-johannsen/warband/internal/sched"
)

// Trainer teaches abilities to units by internal name.
type Trainer interface {
	Teach(u *combat.Unit, names []string) error
}

// Spawner creates NPC units from templates.
type Spawner struct {
	abilities Trainer
	sched     sched.Scheduler
	roller    *dice.Roller
}

// NewSpawner returns a Spawner.
//
// Precondition: every argument must be non-nil.
func NewSpawner(abilities Trainer, s sched.Scheduler, roller *dice.Roller) *Spawner {
	return &Spawner{abilities: abilities, sched: s, roller: roller}
}

// Roller returns the spawner's randomness source.
func (s *Spawner) Roller() *dice.Roller { return s.roller }

// Spawn creates an NPC of tmpl at level owned by ownerID with its top-left
// corner at (x, y).
//
// Postcondition: The unit is asleep, full and knows every template ability.
func (s *Spawner) Spawn(tmpl *Template, level int, ownerID string, x, y float64) (*combat.Unit, error) {
	u := combat.NewNPC(combat.Config{
		OwnerID:    ownerID,
		Name:       tmpl.Name,
		Type:       tmpl.ID,
		Faction:    tmpl.Faction,
		Rect:       geom.Rect{X: x, Y: y, W: combat.DefaultSize, H: combat.DefaultSize},
		Health:     tmpl.Health.At(level),
		Mana:       tmpl.Mana.At(level),
		Resistance: tmpl.Resistance,
		Defense:    tmpl.Defense,
	}, tmpl.State(level), s.sched, s.roller)
	if err := s.abilities.Teach(u, tmpl.Abilities); err != nil {
		return nil, fmt.Errorf("npc template %q: %w", tmpl.ID, err)
	}
	return u, nil
}

// Level draws a level uniformly from d's range.
func (s *Spawner) Level(d Difficulty) int {
	lo, hi := d.LevelRange()
	return s.roller.Range(lo, hi)
}
