package combat

import (
	"time"

	"github.com/cory-johannsen/warband/internal/gameerr"
)

// CastDuration is how long the attack animation holds after a cast.
const CastDuration = 2 * time.Second

// Cast validation errors, in the order they are checked.
var (
	ErrRecharging    = gameerr.New(gameerr.KindRule, "Ability still recharging.")
	ErrNoMana        = gameerr.New(gameerr.KindRule, "Not enough mana.")
	ErrInvalidTarget = gameerr.ErrUnknownTarget
	ErrOutOfRange    = gameerr.New(gameerr.KindRule, "Target out of range.")
	ErrUnknown       = gameerr.New(gameerr.KindRule, "Unknown ability.")
)

// Affect applies an ability's effect to one target and reports whether it
// landed.
type Affect func(caster, target *Unit, rel Relationship) bool

// Definition is the immutable configuration of an ability shared by every
// unit that learns it.
type Definition struct {
	InternalName string
	Name         string
	Description  string
	ManaCost     float64
	// Targets restricts the primary target.
	Targets Policy
	// Affects restricts secondary targets.
	Affects    Policy
	Range      Range
	MaxTargets int
	Recharge   time.Duration
	Affect     Affect
}

// State is an ability's position in the cast cycle.
type State int

const (
	Ready State = iota
	Casting
	Recharging
)

// String returns a label for s.
func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Casting:
		return "casting"
	default:
		return "recharging"
	}
}

// Ability is one unit's copy of a Definition with its own cast state.
type Ability struct {
	def   *Definition
	state State
}

// NewAbility wraps def in a ready Ability.
//
// Precondition: def must be non-nil.
func NewAbility(def *Definition) *Ability {
	return &Ability{def: def}
}

// Definition returns the shared configuration.
func (a *Ability) Definition() *Definition { return a.def }

// State returns the current cast state.
func (a *Ability) State() State { return a.state }

// Ready reports whether the ability can be cast.
func (a *Ability) Ready() bool { return a.state == Ready }

// Validate checks whether caster may cast a at main without changing any
// state.
func (a *Ability) Validate(caster, main *Unit) error {
	if a.state != Ready {
		return ErrRecharging
	}
	if caster.Stats.Mana.Current() < a.def.ManaCost {
		return ErrNoMana
	}
	if main == nil || main.IsDead() || !a.def.Targets.Allows(Relate(caster, main)) {
		return ErrInvalidTarget
	}
	if a.def.Targets != SelfOnly && !InRange(caster, main, a.def.Range) {
		return ErrOutOfRange
	}
	return nil
}

// Cast runs the full cast: validation, mana debit, primary and secondary
// resolution, then the cast-duration and recharge timers. all is the
// candidate list for secondary targets, in the order they are considered.
//
// Postcondition: On error no state has changed. On success the ability is
// Casting and becomes Ready after the definition's Recharge.
func (a *Ability) Cast(caster, main *Unit, all []*Unit) error {
	if err := a.Validate(caster, main); err != nil {
		return err
	}

	a.state = Casting
	up := Update{Anim: ptr(AnimAttack)}
	if main != caster {
		up.Facing = ptr(caster.Body.Rect.FacingToward(main.Body.Rect))
	}
	caster.Update(up)
	if a.def.ManaCost > 0 {
		caster.Stats.Mana.Modify(-a.def.ManaCost, 0)
	}

	a.resolve(caster, main, all)
	a.scheduleTimers(caster)
	return nil
}

func (a *Ability) resolve(caster, main *Unit, all []*Unit) {
	maxTargets := a.def.MaxTargets
	if maxTargets < 1 {
		maxTargets = 1
	}
	processed := 1
	hit := a.affect(caster, main)
	if !hit && maxTargets == 1 {
		return
	}
	for _, u := range all {
		if processed >= maxTargets {
			return
		}
		if u == main || u == caster || u.IsDead() {
			continue
		}
		if !a.def.Affects.Allows(Relate(caster, u)) {
			continue
		}
		processed++
		a.affect(caster, u)
	}
}

func (a *Ability) affect(caster, target *Unit) bool {
	if a.def.Affect == nil {
		return true
	}
	return a.def.Affect(caster, target, Relate(caster, target))
}

func (a *Ability) scheduleTimers(caster *Unit) {
	s := caster.Scheduler()
	if s == nil {
		a.state = Ready
		return
	}
	token := caster.Token()
	s.After(CastDuration, func() {
		if a.state == Casting {
			a.state = Recharging
		}
		if caster.Live(token) && caster.Body.Anim == AnimAttack {
			caster.SetAnim(AnimIdle)
		}
	})
	s.After(a.def.Recharge, func() {
		a.state = Ready
		if caster.Live(token) {
			caster.publish(Event{Kind: EventRecharge, Ability: a.def.InternalName})
		}
	})
}

// AbilitySet holds a unit's learned abilities in learn order.
type AbilitySet struct {
	order  []*Ability
	byName map[string]*Ability
}

// NewAbilitySet returns an empty set.
func NewAbilitySet() *AbilitySet {
	return &AbilitySet{byName: make(map[string]*Ability)}
}

// Learn adds def unless an ability with the same internal name is known.
//
// Postcondition: Returns the unit's Ability for def.InternalName and whether
// it was newly learned.
func (s *AbilitySet) Learn(def *Definition) (*Ability, bool) {
	if a, ok := s.byName[def.InternalName]; ok {
		return a, false
	}
	a := NewAbility(def)
	s.order = append(s.order, a)
	s.byName[def.InternalName] = a
	return a, true
}

// Get returns the ability with internal name.
func (s *AbilitySet) Get(name string) (*Ability, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// List returns abilities in learn order.
func (s *AbilitySet) List() []*Ability {
	return append([]*Ability(nil), s.order...)
}

// Len returns the number of learned abilities.
func (s *AbilitySet) Len() int { return len(s.order) }

// ReadyMap returns each ability's readiness keyed by internal name.
func (s *AbilitySet) ReadyMap() map[string]bool {
	m := make(map[string]bool, len(s.order))
	for _, a := range s.order {
		m[a.def.InternalName] = a.Ready()
	}
	return m
}

// Cast looks up name on caster and casts it.
func (u *Unit) Cast(name string, main *Unit, all []*Unit) error {
	a, ok := u.Abilities.Get(name)
	if !ok {
		return ErrUnknown
	}
	return a.Cast(u, main, all)
}
