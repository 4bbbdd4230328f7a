package combat

import (
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/sched"
)

// Rank scales an NPC's rewards.
type Rank string

const (
	RankMinion    Rank = "minion"
	RankElite     Rank = "elite"
	RankBoss      Rank = "boss"
	RankEliteBoss Rank = "elite-boss"
)

// ValidRank reports whether r is a known rank.
func ValidRank(r Rank) bool {
	switch r {
	case RankMinion, RankElite, RankBoss, RankEliteBoss:
		return true
	}
	return false
}

// XPMultiplier returns the experience multiplier for r.
func (r Rank) XPMultiplier() int {
	switch r {
	case RankElite:
		return 2
	case RankBoss:
		return 5
	case RankEliteBoss:
		return 8
	default:
		return 1
	}
}

// Merits returns the merits awarded for defeating an NPC of rank r.
func (r Rank) Merits() int {
	switch r {
	case RankBoss:
		return 1
	case RankEliteBoss:
		return 3
	default:
		return 0
	}
}

const (
	// DefaultSight is how far an NPC can see.
	DefaultSight = 128
	// DefaultSpeed is the per-axis step an NPC takes each tick.
	DefaultSpeed = 2
)

// NPCState is the NPC payload of a Unit.
type NPCState struct {
	Level     int
	Rank      Rank
	PrefRange Range
	Sleeping  bool
	Sight     float64
	Speed     float64
	// TargetID refers to another unit in the same map; it is resolved
	// against the map on every use.
	TargetID string
}

// XPReward returns the experience granted for defeating this NPC.
func (n *NPCState) XPReward() int {
	return 10 * n.Level * n.Rank.XPMultiplier()
}

// NewNPC creates an NPC unit. Zero Sight and Speed take the defaults.
func NewNPC(cfg Config, state NPCState, s sched.Scheduler, roller *dice.Roller) *Unit {
	if state.Sight <= 0 {
		state.Sight = DefaultSight
	}
	if state.Speed <= 0 {
		state.Speed = DefaultSpeed
	}
	if state.Level < 1 {
		state.Level = 1
	}
	if state.Rank == "" {
		state.Rank = RankMinion
	}
	if state.PrefRange == 0 {
		state.PrefRange = RangeNear
	}
	state.Sleeping = true
	u := newUnit(KindNPC, cfg, s, roller)
	u.NPC = &state
	return u
}
