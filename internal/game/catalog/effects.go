package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/stat"
)

// Effect kinds.
const (
	KindDamage = "damage"
	KindDot    = "dot"
	KindHeal   = "heal"
	KindMana   = "mana"
	KindBuff   = "buff"
	KindScript = "script"
)

// Buff modes.
const (
	ModeCurrent   = "current"
	ModeCapacity  = "capacity"
	ModeKeepRatio = "keep_ratio"
	ModePercent   = "percent"
)

// Effect is one step of an ability's effect list. Which fields apply depends
// on Kind.
type Effect struct {
	Kind string `yaml:"kind"`
	// AppliesTo limits the effect to these relationships; empty means all.
	AppliesTo []string `yaml:"applies_to"`

	// damage, heal, mana
	Base     float64 `yaml:"base"`
	PerLevel float64 `yaml:"per_level"`
	Crit     bool    `yaml:"crit"`

	// dot
	Initial         float64 `yaml:"initial"`
	InitialPerLevel float64 `yaml:"initial_per_level"`
	Total           float64 `yaml:"total"`
	TotalPerLevel   float64 `yaml:"total_per_level"`
	Ticks           int     `yaml:"ticks"`

	// buff
	Stat     string        `yaml:"stat"`
	Amount   float64       `yaml:"amount"`
	Mode     string        `yaml:"mode"`
	Duration time.Duration `yaml:"duration"`

	// script
	Hook string `yaml:"hook"`
}

func (e *Effect) offensive() bool {
	return e.Kind == KindDamage || e.Kind == KindDot
}

func (e *Effect) appliesTo(rel combat.Relationship) bool {
	if len(e.AppliesTo) == 0 {
		return true
	}
	for _, r := range e.AppliesTo {
		if r == rel.String() {
			return true
		}
	}
	return false
}

func (c *Catalog) validateEffect(e *Effect) error {
	for _, r := range e.AppliesTo {
		if r != "self" && r != "allies" && r != "enemies" {
			return fmt.Errorf("applies_to: unknown relationship %q", r)
		}
	}
	switch e.Kind {
	case KindDamage, KindHeal, KindMana:
		if e.Base < 0 || e.PerLevel < 0 {
			return errors.New("base and per_level must be >= 0")
		}
	case KindDot:
		if e.Ticks < 1 {
			return errors.New("ticks must be >= 1")
		}
	case KindBuff:
		switch stat.Name(e.Stat) {
		case stat.Health, stat.Mana, stat.Resistance, stat.Defense:
		default:
			return fmt.Errorf("unknown stat %q", e.Stat)
		}
		switch e.Mode {
		case "":
			e.Mode = ModeKeepRatio
		case ModeCurrent, ModeCapacity, ModeKeepRatio, ModePercent:
		default:
			return fmt.Errorf("unknown buff mode %q", e.Mode)
		}
	case KindScript:
		if e.Hook == "" {
			return errors.New("hook must not be empty")
		}
		if c.scripts == nil {
			return errors.New("script effects require a scripting manager")
		}
		if !c.scripts.HasHook(e.Hook) {
			return fmt.Errorf("script hook %q is not defined", e.Hook)
		}
	default:
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
	return nil
}

// affect compiles effects into a single Affect. Enemies roll dodge once
// before any offensive effect lands; a dodge emits a dodge FX and misses.
func (c *Catalog) affect(ability string, effects []Effect) combat.Affect {
	offensive := false
	for i := range effects {
		if effects[i].offensive() {
			offensive = true
		}
	}
	return func(caster, target *combat.Unit, rel combat.Relationship) bool {
		if offensive && rel == combat.RelEnemies && target.RollDodge() {
			caster.Emit(combat.FX{Kind: combat.FXDodge, Target: target.ID, Ability: ability})
			return false
		}
		landed := true
		for i := range effects {
			e := &effects[i]
			if !e.appliesTo(rel) {
				continue
			}
			if !c.apply(ability, e, caster, target, rel) {
				landed = false
			}
		}
		return landed
	}
}

func scaled(base, perLevel float64, level int) float64 {
	return base + perLevel*float64(level)
}

func (c *Catalog) apply(ability string, e *Effect, caster, target *combat.Unit, rel combat.Relationship) bool {
	level := caster.Level()
	switch e.Kind {
	case KindDamage:
		amount := scaled(e.Base, e.PerLevel, level)
		crit := e.Crit && caster.RollCritical()
		if crit {
			amount *= combat.CritMultiplier
		}
		dealt := target.TakeDamage(amount)
		caster.Emit(combat.FX{Kind: combat.FXDamage, Target: target.ID, Ability: ability, Amount: dealt, Crit: crit})
	case KindDot:
		initial := scaled(e.Initial, e.InitialPerLevel, level)
		total := scaled(e.Total, e.TotalPerLevel, level)
		target.TakeDamageOverTime(initial, total, e.Ticks)
		caster.Emit(combat.FX{Kind: combat.FXDamage, Target: target.ID, Ability: ability, Amount: initial})
	case KindHeal:
		amount := scaled(e.Base, e.PerLevel, level)
		crit := e.Crit && caster.RollCritical()
		if crit {
			amount *= combat.CritMultiplier
		}
		healed := target.Heal(amount)
		caster.Emit(combat.FX{Kind: combat.FXHeal, Target: target.ID, Ability: ability, Amount: healed, Crit: crit})
	case KindMana:
		restored := target.RestoreMana(scaled(e.Base, e.PerLevel, level))
		caster.Emit(combat.FX{Kind: combat.FXMana, Target: target.ID, Ability: ability, Amount: restored})
	case KindBuff:
		applyBuff(target, e)
		caster.Emit(combat.FX{Kind: combat.FXBuff, Target: target.ID, Ability: ability, Amount: e.Amount})
	case KindScript:
		b := binding{units: map[string]*combat.Unit{caster.ID: caster, target.ID: target}, ability: ability, source: caster}
		return c.scripts.CallEffect(e.Hook, b, caster.ID, target.ID, rel.String())
	}
	return true
}

func statByName(u *combat.Unit, name string) *stat.Stat {
	switch stat.Name(name) {
	case stat.Health:
		return u.Stats.Health
	case stat.Mana:
		return u.Stats.Mana
	case stat.Resistance:
		return u.Stats.Resistance
	case stat.Defense:
		return u.Stats.Defense
	}
	return nil
}

func applyBuff(u *combat.Unit, e *Effect) {
	st := statByName(u, e.Stat)
	if st == nil {
		return
	}
	switch e.Mode {
	case ModeCurrent:
		st.Modify(e.Amount, e.Duration)
	case ModeCapacity:
		st.ModifyCapacity(e.Amount, e.Duration)
	case ModePercent:
		st.ModifyCapacityKeepRatioPercent(e.Amount, e.Duration)
	default:
		st.ModifyCapacityKeepRatio(e.Amount, e.Duration)
	}
}

// binding exposes the caster and target of one scripted effect to Lua.
type binding struct {
	units   map[string]*combat.Unit
	ability string
	source  *combat.Unit
}

func (b binding) Damage(uid string, amount float64) float64 {
	u, ok := b.units[uid]
	if !ok {
		return 0
	}
	dealt := u.TakeDamage(amount)
	b.source.Emit(combat.FX{Kind: combat.FXDamage, Target: uid, Ability: b.ability, Amount: dealt})
	return dealt
}

func (b binding) Heal(uid string, amount float64) float64 {
	u, ok := b.units[uid]
	if !ok {
		return 0
	}
	healed := u.Heal(amount)
	b.source.Emit(combat.FX{Kind: combat.FXHeal, Target: uid, Ability: b.ability, Amount: healed})
	return healed
}

func (b binding) Mana(uid string, amount float64) float64 {
	u, ok := b.units[uid]
	if !ok {
		return 0
	}
	return u.RestoreMana(amount)
}

func (b binding) Stat(uid, name string) (float64, float64, bool) {
	u, ok := b.units[uid]
	if !ok {
		return 0, 0, false
	}
	st := statByName(u, name)
	if st == nil {
		return 0, 0, false
	}
	return st.Current(), st.Capacity(), true
}

func (b binding) Level(uid string) int {
	if u, ok := b.units[uid]; ok {
		return u.Level()
	}
	return 0
}

func (b binding) Dodge(uid string) bool {
	u, ok := b.units[uid]
	return ok && u.RollDodge()
}

func (b binding) Critical(uid string) bool {
	u, ok := b.units[uid]
	return ok && u.RollCritical()
}
