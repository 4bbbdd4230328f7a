package sched_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/sched"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManual_AfterFiresAtDeadline(t *testing.T) {
	m := sched.NewManual(epoch)
	fired := 0
	m.After(2*time.Second, func() { fired++ })

	m.Advance(1999 * time.Millisecond)
	assert.Equal(t, 0, fired)
	m.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	m.Advance(10 * time.Second)
	assert.Equal(t, 1, fired, "fire-once timer must not repeat")
}

func TestManual_FiresInTimeOrder(t *testing.T) {
	m := sched.NewManual(epoch)
	var order []string
	m.After(3*time.Second, func() { order = append(order, "c") })
	m.After(1*time.Second, func() { order = append(order, "a") })
	m.After(2*time.Second, func() { order = append(order, "b") })
	m.After(1*time.Second, func() { order = append(order, "a2") })

	m.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "a2", "b", "c"}, order)
}

func TestManual_NowDuringCallback(t *testing.T) {
	m := sched.NewManual(epoch)
	var at time.Time
	m.After(1500*time.Millisecond, func() { at = m.Now() })
	m.Advance(3 * time.Second)
	assert.Equal(t, epoch.Add(1500*time.Millisecond), at)
	assert.Equal(t, epoch.Add(3*time.Second), m.Now())
}

func TestManual_EveryRepeatsUntilStopped(t *testing.T) {
	m := sched.NewManual(epoch)
	ticks := 0
	timer := m.Every(60*time.Millisecond, func() { ticks++ })

	m.Advance(600 * time.Millisecond)
	assert.Equal(t, 10, ticks)

	timer.Stop()
	m.Advance(time.Second)
	assert.Equal(t, 10, ticks)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_ChainedTimersWithinOneAdvance(t *testing.T) {
	m := sched.NewManual(epoch)
	count := 0
	var step func()
	step = func() {
		count++
		if count < 3 {
			m.After(time.Second, step)
		}
	}
	m.After(time.Second, step)
	m.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
}

func TestManual_StoppedTimerNeverFires(t *testing.T) {
	m := sched.NewManual(epoch)
	fired := false
	timer := m.After(time.Second, func() { fired = true })
	timer.Stop()
	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManual_PostAndCallRunInline(t *testing.T) {
	m := sched.NewManual(epoch)
	ran := 0
	require.True(t, m.Post(func() { ran++ }))
	require.NoError(t, m.Call(t.Context(), func() { ran++ }))
	assert.Equal(t, 2, ran)
}

// Property: timers fire exactly once each, in non-decreasing time order.
func TestManual_Property_Ordering(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := sched.NewManual(epoch)
		delays := rapid.SliceOfN(rapid.IntRange(0, 5000), 1, 30).Draw(rt, "delays")
		var fired []time.Time
		for _, d := range delays {
			m.After(time.Duration(d)*time.Millisecond, func() { fired = append(fired, m.Now()) })
		}
		m.Advance(6 * time.Second)
		if len(fired) != len(delays) {
			rt.Fatalf("fired %d timers, want %d", len(fired), len(delays))
		}
		for i := 1; i < len(fired); i++ {
			if fired[i].Before(fired[i-1]) {
				rt.Fatalf("timer %d fired before timer %d", i, i-1)
			}
		}
	})
}
