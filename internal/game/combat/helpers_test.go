package combat_test

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/geom"
	"github.com/cory-johannsen/warband/internal/sched"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// recorder collects every event published on its bus.
type recorder struct {
	bus    *combat.Bus
	events []combat.Event
}

func newRecorder() *recorder {
	r := &recorder{bus: combat.NewBus()}
	r.bus.Subscribe(func(e combat.Event) { r.events = append(r.events, e) })
	return r
}

func (r *recorder) Publish(e combat.Event) { r.bus.Publish(e) }

func (r *recorder) count(kind combat.EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// fixedSource always returns the same float, so every chance with p > v
// succeeds.
type fixedSource struct{ v float64 }

func (f fixedSource) Intn(n int) int { return 0 }
func (f fixedSource) Float64() float64 { return f.v }

// never makes every chance roll fail.
var never = fixedSource{v: 0.999}

type world struct {
	clock *sched.Manual
	rec   *recorder
}

func newWorld() *world {
	return &world{clock: sched.NewManual(epoch), rec: newRecorder()}
}

func (w *world) roller(src dice.Source) *dice.Roller {
	return dice.NewLoggedRoller(src, zap.NewNop())
}

func (w *world) npc(faction string, x, y float64, src dice.Source) *combat.Unit {
	u := combat.NewNPC(combat.Config{
		Name:    "npc",
		Type:    "grunt",
		Faction: faction,
		Rect:    geom.Rect{X: x, Y: y, W: 16, H: 16},
		Health:  100,
		Mana:    50,
	}, combat.NPCState{Level: 2, Rank: combat.RankMinion}, w.clock, w.roller(src))
	u.Attach(w.rec)
	return u
}

var knightGrowth = combat.Growth{
	Health: combat.StatGrowth{Base: 120, PerLevel: 12},
	Mana:   combat.StatGrowth{Base: 30, PerLevel: 3},
}

func (w *world) player(faction string, x, y float64, src dice.Source) *combat.Unit {
	rec := &character.Player{Name: "Ayla", Archetype: "knight", Level: 1}
	u := combat.NewPlayer(combat.Config{
		OwnerID: "session-1",
		Faction: faction,
		Rect:    geom.Rect{X: x, Y: y, W: 16, H: 16},
	}, rec, knightGrowth, w.clock, w.roller(src))
	u.Attach(w.rec)
	return u
}

// strike is a single-target enemy ability whose effect records every target.
func strike(hits *[]*combat.Unit, land bool) *combat.Definition {
	return &combat.Definition{
		InternalName: "strike",
		Name:         "Strike",
		ManaCost:     5,
		Targets:      combat.EnemiesOnly,
		Affects:      combat.EnemiesOnly,
		Range:        combat.RangeNear,
		MaxTargets:   1,
		Recharge:     5 * time.Second,
		Affect: func(caster, target *combat.Unit, rel combat.Relationship) bool {
			*hits = append(*hits, target)
			return land
		},
	}
}
