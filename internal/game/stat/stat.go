// Package stat implements bounded numeric unit attributes with permanent and
// timed modifications.
package stat

import (
	"time"

	"github.com/cory-johannsen/warband/internal/sched"
)

// Name identifies one of a combatant's stats.
type Name string

const (
	Health     Name = "health"
	Mana       Name = "mana"
	Resistance Name = "resistance"
	Defense    Name = "defense"
)

// Change describes a mutation. Only the fields that actually changed are
// set; Previous always carries the current value before the mutation.
type Change struct {
	Name     Name     `json:"-"`
	Current  *float64 `json:"current,omitempty"`
	Capacity *float64 `json:"capacity,omitempty"`
	Previous float64  `json:"-"`
}

// Stat is a bounded quantity.
//
// Invariant: 0 <= Current() <= Capacity() <= HardCapacity() after every
// operation.
type Stat struct {
	name     Name
	base     float64
	current  float64
	capacity float64
	hard     float64
	timed    *sched.Table
	onChange func(Change)
}

// New creates a full stat whose capacity starts at base.
//
// Precondition: base >= 0; hard >= 0. A nil scheduler makes every timed
// modification permanent.
// Postcondition: Current() == Capacity() == min(base, hard).
func New(name Name, base, hard float64, s sched.Scheduler) *Stat {
	st := &Stat{name: name, base: base, hard: hard}
	if s != nil {
		st.timed = sched.NewTable(s)
	}
	st.capacity = base
	st.clamp()
	st.current = st.capacity
	return st
}

// OnChange sets the listener that receives every Change. A nil fn detaches.
func (s *Stat) OnChange(fn func(Change)) { s.onChange = fn }

// Name returns the stat's identifier.
func (s *Stat) Name() Name { return s.name }

// Base returns the base capacity restored by ClearTempModifiers.
func (s *Stat) Base() float64 { return s.base }

// Current returns the current value.
func (s *Stat) Current() float64 { return s.current }

// Capacity returns the current maximum.
func (s *Stat) Capacity() float64 { return s.capacity }

// HardCapacity returns the absolute ceiling.
func (s *Stat) HardCapacity() float64 { return s.hard }

// Ratio returns Current/Capacity, or 0 when capacity is 0.
func (s *Stat) Ratio() float64 {
	if s.capacity <= 0 {
		return 0
	}
	return s.current / s.capacity
}

// Generation returns the timed-modifier generation. It advances on every
// ClearTempModifiers.
func (s *Stat) Generation() uint64 {
	if s.timed == nil {
		return 0
	}
	return s.timed.Generation()
}

// PendingReversals returns the number of timed modifications still waiting
// to be reverted.
func (s *Stat) PendingReversals() int {
	if s.timed == nil {
		return 0
	}
	return s.timed.Pending()
}

// Modify adds amount to the current value. A positive d reverts the
// modification after d.
func (s *Stat) Modify(amount float64, d time.Duration) {
	s.apply(func() { s.current += amount })
	s.revertAfter(d, func() { s.Modify(-amount, 0) })
}

// ModifyPercent modifies the current value by pct percent of capacity.
func (s *Stat) ModifyPercent(pct float64, d time.Duration) {
	s.Modify(s.capacity*pct/100, d)
}

// ModifyCapacity adds amount to the capacity; the current value is clamped
// but not scaled.
func (s *Stat) ModifyCapacity(amount float64, d time.Duration) {
	s.apply(func() { s.capacity += amount })
	s.revertAfter(d, func() { s.ModifyCapacity(-amount, 0) })
}

// ModifyCapacityPercent modifies the capacity by pct percent of itself.
func (s *Stat) ModifyCapacityPercent(pct float64, d time.Duration) {
	s.ModifyCapacity(s.capacity*pct/100, d)
}

// ModifyCapacityKeepRatio adds amount to the capacity and scales the current
// value so that Current/Capacity is unchanged.
func (s *Stat) ModifyCapacityKeepRatio(amount float64, d time.Duration) {
	s.apply(func() {
		r := s.Ratio()
		s.capacity += amount
		s.clamp()
		s.current = r * s.capacity
	})
	s.revertAfter(d, func() { s.ModifyCapacityKeepRatio(-amount, 0) })
}

// ModifyCapacityKeepRatioPercent is ModifyCapacityKeepRatio by pct percent of
// capacity.
func (s *Stat) ModifyCapacityKeepRatioPercent(pct float64, d time.Duration) {
	s.ModifyCapacityKeepRatio(s.capacity*pct/100, d)
}

// Refill sets the current value to capacity.
func (s *Stat) Refill() {
	s.apply(func() { s.current = s.capacity })
}

// ClearTempModifiers drops every pending reversal and collapses capacity to
// base, scaling the current value proportionally.
func (s *Stat) ClearTempModifiers() {
	s.invalidate()
	s.apply(func() {
		r := s.Ratio()
		s.capacity = s.base
		s.clamp()
		s.current = r * s.capacity
	})
}

// ResetToBase clears temporary modifiers and refills.
func (s *Stat) ResetToBase() {
	s.invalidate()
	s.apply(func() {
		s.capacity = s.base
		s.clamp()
		s.current = s.capacity
	})
}

// SetBase changes the base capacity and grows or shrinks the capacity by the
// same delta, keeping the current ratio.
func (s *Stat) SetBase(base float64) {
	delta := base - s.base
	s.base = base
	s.ModifyCapacityKeepRatio(delta, 0)
}

func (s *Stat) invalidate() {
	if s.timed != nil {
		s.timed.Invalidate()
	}
}

func (s *Stat) revertAfter(d time.Duration, fn func()) {
	if d <= 0 || s.timed == nil {
		return
	}
	s.timed.Schedule(d, fn)
}

func (s *Stat) clamp() {
	if s.capacity > s.hard {
		s.capacity = s.hard
	}
	if s.capacity < 0 {
		s.capacity = 0
	}
	if s.current > s.capacity {
		s.current = s.capacity
	}
	if s.current < 0 {
		s.current = 0
	}
}

func (s *Stat) apply(mutate func()) {
	prevCurrent, prevCapacity := s.current, s.capacity
	mutate()
	s.clamp()

	change := Change{Name: s.name, Previous: prevCurrent}
	changed := false
	if s.current != prevCurrent {
		cur := s.current
		change.Current = &cur
		changed = true
	}
	if s.capacity != prevCapacity {
		capacity := s.capacity
		change.Capacity = &capacity
		changed = true
	}
	if changed && s.onChange != nil {
		s.onChange(change)
	}
}
