package combat

import (
	"github.com/cory-johannsen/warband/internal/game/geom"
	"github.com/cory-johannsen/warband/internal/game/stat"
)

// EventKind classifies an Event.
type EventKind int

const (
	// EventUpdate carries a position, facing or animation change.
	EventUpdate EventKind = iota
	// EventStats carries one stat Change.
	EventStats
	// EventDeath fires once per health-zero crossing.
	EventDeath
	// EventRecharge fires when an ability becomes ready again.
	EventRecharge
	// EventFX carries a visual combat effect.
	EventFX
	// EventProgress fires when a player's level, xp or merits change.
	EventProgress
)

// Update is a partial change to a unit's body. Nil fields are unchanged.
type Update struct {
	X      *float64     `json:"x,omitempty"`
	Y      *float64     `json:"y,omitempty"`
	Anim   *string      `json:"anim,omitempty"`
	Facing *geom.Facing `json:"facing,omitempty"`
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.X == nil && u.Y == nil && u.Anim == nil && u.Facing == nil
}

// FXKind names a client-side combat effect.
type FXKind string

const (
	FXDamage FXKind = "damage"
	FXHeal   FXKind = "heal"
	FXMana   FXKind = "mana"
	FXDodge  FXKind = "dodge"
	FXBuff   FXKind = "buff"
)

// FX describes one visual combat effect.
type FX struct {
	Kind    FXKind  `json:"kind"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Ability string  `json:"ability,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	Crit    bool    `json:"crit,omitempty"`
}

// Event is a unit state change published to the unit's Publisher.
type Event struct {
	Kind    EventKind
	Unit    *Unit
	Update  Update
	Stat    stat.Change
	Ability string
	FX      FX
}

// Publisher receives unit events.
type Publisher interface {
	Publish(Event)
}

// Handler consumes events from a Bus.
type Handler func(Event)

type subscription struct {
	id uint64
	h  Handler
}

// Bus is a synchronous publish/subscribe channel. Handlers run in
// subscription order on the publishing goroutine.
//
// A Bus is owned by the simulation goroutine and is not safe for concurrent
// use.
type Bus struct {
	subs   []subscription
	nextID uint64
	closed bool
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function removing it. The returned
// function is idempotent.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	if b.closed {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, h: h})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every handler subscribed at the time of the call.
func (b *Bus) Publish(e Event) {
	if b.closed {
		return
	}
	subs := append([]subscription(nil), b.subs...)
	for _, s := range subs {
		s.h(e)
	}
}

// Close removes every handler. Later Publish and Subscribe calls are no-ops.
func (b *Bus) Close() {
	b.subs = nil
	b.closed = true
}

// Subscribers returns the number of registered handlers.
func (b *Bus) Subscribers() int { return len(b.subs) }
