// Package ai drives hostile NPCs: one repeating tick per map instance that
// acquires targets, closes distance and casts abilities.
package ai

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/geom"
	"github.com/cory-johannsen/warband/internal/sched"
)

// DefaultTickInterval is the tick period used when none is configured.
const DefaultTickInterval = 60 * time.Millisecond

// World is the map instance as seen by the AI.
type World interface {
	// Units returns every unit in insertion order.
	Units() []*combat.Unit
	// Collides reports whether r overlaps blocked terrain.
	Collides(r geom.Rect) bool
}

// Brain runs the per-tick NPC decision procedure.
//
// Invariant: roller and logger are non-nil.
type Brain struct {
	roller *dice.Roller
	logger *zap.Logger
}

// NewBrain constructs a Brain.
//
// Precondition: roller and logger must not be nil.
func NewBrain(roller *dice.Roller, logger *zap.Logger) *Brain {
	if roller == nil {
		panic("ai.NewBrain: roller must not be nil")
	}
	if logger == nil {
		panic("ai.NewBrain: logger must not be nil")
	}
	return &Brain{roller: roller, logger: logger}
}

// Start ticks w every interval on s until the returned timer is stopped.
//
// Postcondition: interval <= 0 uses DefaultTickInterval.
func (b *Brain) Start(s sched.Scheduler, interval time.Duration, w World) sched.Timer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return s.Every(interval, func() { b.Tick(w) })
}

// Tick runs one decision step for every living NPC in insertion order.
func (b *Brain) Tick(w World) {
	units := w.Units()
	for _, u := range units {
		if u.NPC == nil || u.IsDead() {
			continue
		}
		b.think(w, u, units)
	}
}

func (b *Brain) think(w World, self *combat.Unit, units []*combat.Unit) {
	target := b.target(self, units)
	if target == nil {
		self.SetAnim(combat.AnimIdle)
		return
	}
	if !combat.InRange(self, target, self.NPC.PrefRange) {
		b.approach(w, self, target)
		return
	}
	abilities := self.Abilities.List()
	if len(abilities) == 0 {
		return
	}
	a := abilities[b.roller.Intn(len(abilities))]
	if err := a.Cast(self, target, units); err != nil {
		b.logger.Debug("npc cast rejected",
			zap.String("npc", self.ID),
			zap.String("ability", a.Definition().InternalName),
			zap.Error(err),
		)
	}
}

// target keeps the current target while it is alive and visible, otherwise
// adopts the first visible living enemy. NPCs wake on acquiring a target and
// sleep when none is found.
func (b *Brain) target(self *combat.Unit, units []*combat.Unit) *combat.Unit {
	state := self.NPC
	if state.TargetID != "" {
		for _, u := range units {
			if u.ID == state.TargetID {
				if !u.IsDead() && visible(self, u) {
					return u
				}
				break
			}
		}
	}
	for _, u := range units {
		if u == self || u.Faction == self.Faction || u.IsDead() || !visible(self, u) {
			continue
		}
		state.TargetID = u.ID
		state.Sleeping = false
		return u
	}
	state.TargetID = ""
	state.Sleeping = true
	return nil
}

func visible(self, other *combat.Unit) bool {
	return self.Body.Rect.Distance(other.Body.Rect) <= self.NPC.Sight
}

// approach steps toward target on each axis, rolling back an axis whose step
// would collide.
func (b *Brain) approach(w World, self, target *combat.Unit) {
	from := self.Body.Rect
	dx, dy := from.StepToward(target.Body.Rect, self.NPC.Speed)
	to := from
	if dx != 0 {
		if next := to.Translate(dx, 0); !w.Collides(next) {
			to = next
		}
	}
	if dy != 0 {
		if next := to.Translate(0, dy); !w.Collides(next) {
			to = next
		}
	}
	if to == from {
		self.SetAnim(combat.AnimIdle)
		return
	}
	facing := from.FacingToward(target.Body.Rect)
	anim := combat.AnimRun
	self.Update(combat.Update{X: &to.X, Y: &to.Y, Facing: &facing, Anim: &anim})
}
