package sched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Call when the loop is no longer running.
var ErrStopped = errors.New("sched: loop stopped")

// Loop is the production Runner: a single goroutine draining a bounded task
// queue. Timers fire on their own goroutines and post back onto the queue.
type Loop struct {
	queue    chan func()
	done     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// NewLoop creates a Loop with a task queue of the given size.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Loop ready for Run; size <= 0 uses 1024.
func NewLoop(size int, logger *zap.Logger) *Loop {
	if size <= 0 {
		size = 1024
	}
	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run drains the task queue until ctx is cancelled or Stop is called.
//
// Postcondition: Returns nil on Stop, ctx.Err() on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.queue:
			l.run(fn)
		}
	}
}

// Stop terminates Run. Pending tasks are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("simulation task panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	fn()
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post enqueues fn, blocking while the queue is full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// tryPost enqueues fn only if the queue has room.
func (l *Loop) tryPost(fn func()) bool {
	select {
	case l.queue <- fn:
		return true
	default:
		return false
	}
}

// Call runs fn on the loop and waits for completion.
//
// Postcondition: Returns nil once fn has returned, ctx.Err() if ctx ends
// first, or ErrStopped if the loop is stopped.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// loopTimer is stopped from the loop goroutine but read from timer
// goroutines, so the flag is atomic.
type loopTimer struct {
	stopped atomic.Bool
	timer   *time.Timer
	quit    chan struct{}
}

func (t *loopTimer) Stop() {
	if !t.stopped.CompareAndSwap(false, true) {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.quit != nil {
		close(t.quit)
	}
}

// After schedules fn to run on the loop after d.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if !lt.stopped.Load() {
				fn()
			}
		})
	})
	return lt
}

// Every schedules fn to run on the loop every d. A tick is dropped when the
// queue is full rather than stalling the ticker.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		panic("sched.Loop.Every: interval must be > 0")
	}
	lt := &loopTimer{quit: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-lt.quit:
				return
			case <-l.done:
				return
			case <-ticker.C:
				if !l.tryPost(func() {
					if !lt.stopped.Load() {
						fn()
					}
				}) {
					l.logger.Debug("dropped repeating tick, loop saturated",
						zap.Duration("interval", d),
					)
				}
			}
		}
	}()
	return lt
}
