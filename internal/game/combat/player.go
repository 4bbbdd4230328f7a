package combat

import (
	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/sched"
)

// StatGrowth is a stat's base capacity at level 1 plus its per-level gain.
type StatGrowth struct {
	Base     float64
	PerLevel float64
}

// At returns the base capacity at level.
func (g StatGrowth) At(level int) float64 {
	return g.Base + g.PerLevel*float64(level-1)
}

// Growth describes how an archetype's stats scale with level.
type Growth struct {
	Health     StatGrowth
	Mana       StatGrowth
	Resistance float64
	Defense    float64
}

// PlayerState is the player payload of a Unit.
type PlayerState struct {
	AccountID int64
	Archetype string
	Level     int
	XP        int
	Merits    int
	Growth    Growth
}

// Progress returns the persistence patch for the current progression.
func (p *PlayerState) Progress() character.Patch {
	return character.Progress(p.Level, p.XP, p.Merits)
}

// NewPlayer creates a player unit from a save record.
//
// Precondition: rec.Level >= 1.
// Postcondition: Stats are full and sized for rec.Level.
func NewPlayer(cfg Config, rec *character.Player, growth Growth, s sched.Scheduler, roller *dice.Roller) *Unit {
	if cfg.Name == "" {
		cfg.Name = rec.Name
	}
	if cfg.Type == "" {
		cfg.Type = rec.Archetype
	}
	cfg.Health = growth.Health.At(rec.Level)
	cfg.Mana = growth.Mana.At(rec.Level)
	cfg.Resistance = growth.Resistance
	cfg.Defense = growth.Defense
	u := newUnit(KindPlayer, cfg, s, roller)
	u.Player = &PlayerState{
		AccountID: rec.AccountID,
		Archetype: rec.Archetype,
		Level:     rec.Level,
		XP:        rec.XP,
		Merits:    rec.Merits,
		Growth:    growth,
	}
	return u
}

func xpRequired(level int) int {
	if level >= character.MaxLevel {
		return 0
	}
	return character.XPRequired(level)
}

// GrantXP adds experience, levelling up as often as the amount allows.
// Each level-up grows health and mana by the archetype's per-level gain and
// refills both.
//
// Postcondition: Returns the number of levels gained. Non-players gain none.
func (u *Unit) GrantXP(amount int) int {
	p := u.Player
	if p == nil || amount <= 0 {
		return 0
	}
	level, xp, gained := character.Advance(p.Level, p.XP, amount)
	changed := level != p.Level || xp != p.XP
	p.Level, p.XP = level, xp
	if gained > 0 {
		u.Stats.Health.SetBase(p.Growth.Health.At(level))
		u.Stats.Mana.SetBase(p.Growth.Mana.At(level))
		u.Stats.Health.Refill()
		u.Stats.Mana.Refill()
	}
	if changed {
		u.publish(Event{Kind: EventProgress})
	}
	return gained
}

// GrantMerits adds merits up to the cap.
func (u *Unit) GrantMerits(amount int) {
	p := u.Player
	if p == nil || amount == 0 {
		return
	}
	m := character.AddMerits(p.Merits, amount)
	if m == p.Merits {
		return
	}
	p.Merits = m
	u.publish(Event{Kind: EventProgress})
}
