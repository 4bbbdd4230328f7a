package sched

import "time"

// Key identifies one scheduled effect by the owner generation it was
// scheduled under and a per-table effect id.
type Key struct {
	Generation uint64
	Effect     uint64
}

// Table tracks timed effects belonging to one owner. Invalidate starts a new
// generation; any effect scheduled under an older generation is stale and
// never runs, even if its timer already fired and is waiting on the queue.
//
// A Table is owned by the simulation goroutine and is not safe for
// concurrent use.
type Table struct {
	sched      Scheduler
	generation uint64
	next       uint64
	pending    map[Key]Timer
}

// NewTable creates an empty Table on the given scheduler.
//
// Precondition: s must be non-nil.
func NewTable(s Scheduler) *Table {
	return &Table{
		sched:   s,
		pending: make(map[Key]Timer),
	}
}

// Schedule runs fn after d unless the table is invalidated or the key is
// cancelled first.
//
// Postcondition: Returns the key under which fn is pending.
func (t *Table) Schedule(d time.Duration, fn func()) Key {
	t.next++
	key := Key{Generation: t.generation, Effect: t.next}
	t.pending[key] = t.sched.After(d, func() { t.fire(key, fn) })
	return key
}

func (t *Table) fire(key Key, fn func()) {
	if t.Stale(key) {
		return
	}
	delete(t.pending, key)
	fn()
}

// Stale reports whether key can no longer fire.
func (t *Table) Stale(key Key) bool {
	if key.Generation != t.generation {
		return true
	}
	_, ok := t.pending[key]
	return !ok
}

// Cancel drops a single pending effect.
//
// Postcondition: Returns true if key was pending.
func (t *Table) Cancel(key Key) bool {
	timer, ok := t.pending[key]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.pending, key)
	return true
}

// Invalidate drops every pending effect and starts a new generation.
func (t *Table) Invalidate() {
	for key, timer := range t.pending {
		timer.Stop()
		delete(t.pending, key)
	}
	t.generation++
}

// Generation returns the current generation.
func (t *Table) Generation() uint64 { return t.generation }

// Pending returns the number of effects waiting to fire.
func (t *Table) Pending() int { return len(t.pending) }
