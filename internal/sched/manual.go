package sched

import (
	"context"
	"time"
)

// Manual is a deterministic Runner driven by Advance. Posted work runs
// inline, which makes it suitable for tests and offline simulation.
type Manual struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	when    time.Time
	period  time.Duration
	seq     uint64
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time { return m.now }

// After schedules fn at now+d. Negative d is treated as zero.
func (m *Manual) After(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

// Every schedules fn at every multiple of d from now.
func (m *Manual) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		panic("sched.Manual.Every: interval must be > 0")
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) *manualTimer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{when: m.now.Add(d), period: period, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Post runs fn immediately.
func (m *Manual) Post(fn func()) bool {
	fn()
	return true
}

// Call runs fn immediately.
func (m *Manual) Call(_ context.Context, fn func()) error {
	fn()
	return nil
}

// Advance moves virtual time forward by d, firing every due timer in
// time order. Timers scheduled by callbacks fire within the same Advance
// when they fall due before the target time.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.when
		if t.period > 0 {
			t.when = t.when.Add(t.period)
			m.seq++
			t.seq = m.seq
		} else {
			t.stopped = true
		}
		t.fn()
	}
	m.now = target
	m.compact()
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	m.compact()
	return len(m.timers)
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.stopped || t.when.After(target) {
			continue
		}
		if best == nil || t.when.Before(best.when) || (t.when.Equal(best.when) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) compact() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.timers); i++ {
		m.timers[i] = nil
	}
	m.timers = live
}
