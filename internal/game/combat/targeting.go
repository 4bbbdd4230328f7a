package combat

import "fmt"

// Relationship classifies a target relative to the caster.
type Relationship int

const (
	RelSelf Relationship = iota
	RelAllies
	RelEnemies
)

// String returns the content label for r.
func (r Relationship) String() string {
	switch r {
	case RelSelf:
		return "self"
	case RelAllies:
		return "allies"
	default:
		return "enemies"
	}
}

// Relate returns the relationship of target to caster: the same unit is
// self, the same faction is allies, anything else is enemies.
func Relate(caster, target *Unit) Relationship {
	switch {
	case caster == target:
		return RelSelf
	case caster.Faction == target.Faction:
		return RelAllies
	default:
		return RelEnemies
	}
}

// Policy restricts which relationships an ability may target.
type Policy int

const (
	SelfOnly Policy = iota
	AlliesOnly
	AlliesAndSelf
	EnemiesOnly
	AlliesOrEnemies
	All
)

var policyNames = map[string]Policy{
	"self":              SelfOnly,
	"allies":            AlliesOnly,
	"allies-and-self":   AlliesAndSelf,
	"enemies":           EnemiesOnly,
	"allies-or-enemies": AlliesOrEnemies,
	"all":               All,
}

// ParsePolicy maps a content label to a Policy.
func ParsePolicy(s string) (Policy, error) {
	p, ok := policyNames[s]
	if !ok {
		return 0, fmt.Errorf("combat: unknown targeting policy %q", s)
	}
	return p, nil
}

// Allows reports whether rel satisfies p.
func (p Policy) Allows(rel Relationship) bool {
	switch p {
	case SelfOnly:
		return rel == RelSelf
	case AlliesOnly:
		return rel == RelAllies
	case AlliesAndSelf:
		return rel == RelAllies || rel == RelSelf
	case EnemiesOnly:
		return rel == RelEnemies
	case AlliesOrEnemies:
		return rel != RelSelf
	case All:
		return true
	}
	return false
}

// Range is a distance tier.
type Range int

const (
	RangeSelf Range = iota
	RangeNear
	RangeFar
	RangeVeryFar
)

var rangeNames = map[string]Range{
	"self":     RangeSelf,
	"near":     RangeNear,
	"far":      RangeFar,
	"very-far": RangeVeryFar,
	"melee":    RangeNear,
	"ranged":   RangeFar,
}

// ParseRange maps a content label to a Range. "melee" and "ranged" are
// accepted as NPC preferred-range aliases.
func ParseRange(s string) (Range, error) {
	r, ok := rangeNames[s]
	if !ok {
		return 0, fmt.Errorf("combat: unknown range %q", s)
	}
	return r, nil
}

// Distance returns the tier's threshold in world units.
func (r Range) Distance() float64 {
	switch r {
	case RangeNear:
		return 16
	case RangeFar:
		return 32
	case RangeVeryFar:
		return 64
	default:
		return 0
	}
}

// InRange reports whether target lies within r of caster using the
// expanded-box overlap test.
func InRange(caster, target *Unit, r Range) bool {
	return caster.Body.Rect.Within(target.Body.Rect, r.Distance())
}
