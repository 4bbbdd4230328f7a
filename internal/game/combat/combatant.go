package combat

import "time"

const (
	// CritMultiplier scales critical damage and healing.
	CritMultiplier = 2
	// CritChance is the probability of a critical hit.
	CritChance = 0.05
	// DotInterval separates damage-over-time ticks.
	DotInterval = time.Second
)

// IsDead reports whether health is exhausted.
func (u *Unit) IsDead() bool {
	return u.Stats.Health.Current() <= 0
}

// TakeDamage reduces health by amount scaled by the unit's resistance.
//
// Postcondition: Returns the health actually removed.
func (u *Unit) TakeDamage(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	before := u.Stats.Health.Current()
	u.Stats.Health.Modify(-amount*(1-u.Stats.Resistance.Current()), 0)
	return before - u.Stats.Health.Current()
}

// TakeDamageOverTime deals initial damage now, then total/ticks damage every
// DotInterval for ticks-1 further ticks. Pending ticks stop once the unit
// dies or is detached.
//
// Precondition: ticks >= 1.
func (u *Unit) TakeDamageOverTime(initial, total float64, ticks int) {
	u.TakeDamage(initial)
	if ticks <= 1 || u.sched == nil {
		return
	}
	per := total / float64(ticks)
	token := u.Token()
	remaining := ticks - 1
	var tick func()
	tick = func() {
		if !u.Live(token) || u.IsDead() {
			return
		}
		u.TakeDamage(per)
		remaining--
		if remaining > 0 {
			u.sched.After(DotInterval, tick)
		}
	}
	u.sched.After(DotInterval, tick)
}

// Heal restores up to amount health.
//
// Postcondition: Returns the health actually restored.
func (u *Unit) Heal(amount float64) float64 {
	before := u.Stats.Health.Current()
	u.Stats.Health.Modify(amount, 0)
	return u.Stats.Health.Current() - before
}

// RestoreMana restores up to amount mana.
func (u *Unit) RestoreMana(amount float64) float64 {
	before := u.Stats.Mana.Current()
	u.Stats.Mana.Modify(amount, 0)
	return u.Stats.Mana.Current() - before
}

// RollCritical returns true with probability CritChance.
func (u *Unit) RollCritical() bool {
	return u.roller.Chance("critical", CritChance)
}

// RollDodge returns true with probability equal to current defense.
func (u *Unit) RollDodge() bool {
	return u.roller.Chance("dodge", u.Stats.Defense.Current())
}

// Kill removes all current health.
func (u *Unit) Kill() {
	u.Stats.Health.Modify(-u.Stats.Health.Current(), 0)
}

// ResetToBase drops every temporary modifier and refills all stats.
func (u *Unit) ResetToBase() {
	for _, st := range u.Stats.All() {
		st.ResetToBase()
	}
}
