// Package sched runs the simulation's deferred work. Every mutation of game
// state happens on one goroutine; timers never call back concurrently with
// each other or with posted work.
package sched

import (
	"context"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents any further invocation of the callback. Safe to call
	// multiple times.
	Stop()
}

// Scheduler schedules fire-once and repeating callbacks on the simulation
// goroutine.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// After calls fn once, d from now.
	After(d time.Duration, fn func()) Timer
	// Every calls fn every d until the returned Timer is stopped.
	//
	// Precondition: d > 0.
	Every(d time.Duration, fn func()) Timer
}

// Runner is a Scheduler that also accepts work submitted from other
// goroutines.
type Runner interface {
	Scheduler
	// Post enqueues fn to run on the simulation goroutine. Returns false when
	// the runner has stopped.
	Post(fn func()) bool
	// Call runs fn on the simulation goroutine and waits for it to return.
	//
	// Precondition: must not be called from the simulation goroutine.
	Call(ctx context.Context, fn func()) error
}
