// Package combat implements real-time units, their combat rules, learned
// abilities and the cast state machine.
package combat

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/geom"
	"github.com/cory-johannsen/warband/internal/game/stat"
	"github.com/cory-johannsen/warband/internal/sched"
)

// Kind selects a unit's role payload.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// String returns the protocol label for k.
func (k Kind) String() string {
	if k == KindNPC {
		return "npc"
	}
	return "player"
}

// Animation names shared with the client.
const (
	AnimIdle   = "idle"
	AnimRun    = "run"
	AnimAttack = "attack"
)

const (
	// PoolHardCapacity bounds health and mana.
	PoolHardCapacity = 1_000_000
	// FractionHardCapacity bounds resistance and defense so neither can
	// reach certainty.
	FractionHardCapacity = 0.9
	// DefaultSize is the edge length of a unit's body.
	DefaultSize = 16
)

// Body is a unit's spatial component.
type Body struct {
	Rect   geom.Rect
	Facing geom.Facing
	Anim   string
}

// Stats is a unit's stat component.
type Stats struct {
	Health     *stat.Stat
	Mana       *stat.Stat
	Resistance *stat.Stat
	Defense    *stat.Stat
}

// All returns the four stats in a fixed order.
func (s Stats) All() []*stat.Stat {
	return []*stat.Stat{s.Health, s.Mana, s.Resistance, s.Defense}
}

// Config carries the identity and starting stats of a new unit.
type Config struct {
	// ID is generated when empty.
	ID      string
	OwnerID string
	Name    string
	Type    string
	Faction string
	Rect    geom.Rect

	Health     float64
	Mana       float64
	Resistance float64
	Defense    float64
}

// Unit is any combatant in a map: a body, four stats, learned abilities and
// exactly one of the Player or NPC payloads selected by Kind.
//
// A Unit is owned by the simulation goroutine and is not safe for
// concurrent use.
type Unit struct {
	ID      string
	OwnerID string
	Name    string
	Type    string
	Faction string
	Kind    Kind

	Body      Body
	Stats     Stats
	Abilities *AbilitySet

	Player *PlayerState
	NPC    *NPCState

	// MapID is the map instance holding the unit, empty when detached.
	MapID string

	sched      sched.Scheduler
	roller     *dice.Roller
	pub        Publisher
	generation uint64
}

func newUnit(kind Kind, cfg Config, s sched.Scheduler, roller *dice.Roller) *Unit {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	rect := cfg.Rect
	if rect.W == 0 && rect.H == 0 {
		rect.W, rect.H = DefaultSize, DefaultSize
	}
	u := &Unit{
		ID:        id,
		OwnerID:   cfg.OwnerID,
		Name:      cfg.Name,
		Type:      cfg.Type,
		Faction:   cfg.Faction,
		Kind:      kind,
		Body:      Body{Rect: rect, Facing: geom.FacingDown, Anim: AnimIdle},
		Abilities: NewAbilitySet(),
		sched:     s,
		roller:    roller,
	}
	u.Stats = Stats{
		Health:     stat.New(stat.Health, cfg.Health, PoolHardCapacity, s),
		Mana:       stat.New(stat.Mana, cfg.Mana, PoolHardCapacity, s),
		Resistance: stat.New(stat.Resistance, cfg.Resistance, FractionHardCapacity, s),
		Defense:    stat.New(stat.Defense, cfg.Defense, FractionHardCapacity, s),
	}
	for _, st := range u.Stats.All() {
		st.OnChange(u.onStatChange)
	}
	return u
}

// Scheduler returns the scheduler driving the unit's timed effects.
func (u *Unit) Scheduler() sched.Scheduler { return u.sched }

// Roller returns the unit's randomness source.
func (u *Unit) Roller() *dice.Roller { return u.roller }

// Level returns the player or NPC level.
func (u *Unit) Level() int {
	switch {
	case u.Player != nil:
		return u.Player.Level
	case u.NPC != nil:
		return u.NPC.Level
	}
	return 1
}

// IsPlayer reports whether the unit carries the player payload.
func (u *Unit) IsPlayer() bool { return u.Kind == KindPlayer }

// Attach routes the unit's events to p and starts a new liveness generation.
//
// Precondition: p must be non-nil.
func (u *Unit) Attach(p Publisher) {
	u.generation++
	u.pub = p
}

// Detach stops event delivery. Every token issued before the call becomes
// stale, so deferred callbacks captured earlier turn into no-ops.
func (u *Unit) Detach() {
	u.generation++
	u.pub = nil
	u.MapID = ""
}

// Token returns the current liveness token.
func (u *Unit) Token() uint64 { return u.generation }

// Live reports whether token is still current and the unit is attached.
func (u *Unit) Live(token uint64) bool {
	return u.pub != nil && token == u.generation
}

func (u *Unit) publish(e Event) {
	if u.pub == nil {
		return
	}
	e.Unit = u
	u.pub.Publish(e)
}

func (u *Unit) onStatChange(c stat.Change) {
	u.publish(Event{Kind: EventStats, Stat: c})
	if c.Name == stat.Health && c.Current != nil && *c.Current <= 0 && c.Previous > 0 {
		u.publish(Event{Kind: EventDeath})
	}
}

// Emit publishes a visual effect originating from u.
func (u *Unit) Emit(fx FX) {
	if fx.Source == "" {
		fx.Source = u.ID
	}
	u.publish(Event{Kind: EventFX, FX: fx})
}

// Apply writes the set fields of up without publishing.
//
// Postcondition: Returns the subset of up that actually changed.
func (u *Unit) Apply(up Update) Update {
	var changed Update
	if up.X != nil && *up.X != u.Body.Rect.X {
		u.Body.Rect.X = *up.X
		changed.X = ptr(u.Body.Rect.X)
	}
	if up.Y != nil && *up.Y != u.Body.Rect.Y {
		u.Body.Rect.Y = *up.Y
		changed.Y = ptr(u.Body.Rect.Y)
	}
	if up.Anim != nil && *up.Anim != u.Body.Anim {
		u.Body.Anim = *up.Anim
		changed.Anim = ptr(u.Body.Anim)
	}
	if up.Facing != nil && *up.Facing != u.Body.Facing && geom.ValidFacing(*up.Facing) {
		u.Body.Facing = *up.Facing
		changed.Facing = ptr(u.Body.Facing)
	}
	return changed
}

// Update applies up and publishes EventUpdate when anything changed.
func (u *Unit) Update(up Update) {
	changed := u.Apply(up)
	if changed.Empty() {
		return
	}
	u.publish(Event{Kind: EventUpdate, Update: changed})
}

// SetAnim is Update with only the animation set.
func (u *Unit) SetAnim(anim string) {
	u.Update(Update{Anim: &anim})
}

// MoveTo places the unit with its top-left corner at (x, y).
func (u *Unit) MoveTo(x, y float64) {
	u.Update(Update{X: &x, Y: &y})
}

func ptr[T any](v T) *T { return &v }
