package gameserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/character"
)

// DefaultSaveBuffer is the saver queue length used when none is configured.
const DefaultSaveBuffer = 1024

// saveTimeout bounds a single UpdateByName call.
const saveTimeout = 5 * time.Second

type saveJob struct {
	name  string
	patch character.Patch
}

// Saver persists player progress off the simulation goroutine. Writes for
// the same name are applied in the order they were queued.
type Saver struct {
	store  PlayerStore
	queue  chan saveJob
	logger *zap.Logger
}

// NewSaver returns a Saver with a queue of size jobs.
//
// Precondition: store and logger must be non-nil.
// Postcondition: size <= 0 uses DefaultSaveBuffer.
func NewSaver(store PlayerStore, size int, logger *zap.Logger) *Saver {
	if size <= 0 {
		size = DefaultSaveBuffer
	}
	return &Saver{
		store:  store,
		queue:  make(chan saveJob, size),
		logger: logger,
	}
}

// SaveProgress queues patch for the player called name without blocking.
// When the queue is full the patch is dropped and logged.
func (s *Saver) SaveProgress(name string, patch character.Patch) {
	if patch.Empty() {
		return
	}
	select {
	case s.queue <- saveJob{name: name, patch: patch}:
	default:
		s.logger.Warn("save queue full, dropping progress",
			zap.String("player", name),
		)
	}
}

// Pending returns the number of queued saves.
func (s *Saver) Pending() int { return len(s.queue) }

// Run writes queued saves until ctx is cancelled, then flushes what is
// still queued.
//
// Postcondition: Returns ctx.Err().
func (s *Saver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return ctx.Err()
		case job := <-s.queue:
			s.write(context.Background(), job)
		}
	}
}

func (s *Saver) flush() {
	for {
		select {
		case job := <-s.queue:
			s.write(context.Background(), job)
		default:
			return
		}
	}
}

func (s *Saver) write(ctx context.Context, job saveJob) {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	if err := s.store.UpdateByName(ctx, job.name, job.patch); err != nil {
		s.logger.Error("saving player progress",
			zap.String("player", job.name),
			zap.Error(err),
		)
	}
}
