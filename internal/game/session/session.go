// Package session tracks connected clients: their outbound message queues,
// the account they logged in with and the player they are playing.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/protocol"
)

// DefaultBufferSize is the outbound queue length used when none is
// configured.
const DefaultBufferSize = 256

// Session is one connected client.
//
// The queue methods are safe for concurrent use. The state fields are only
// written on the simulation goroutine.
type Session struct {
	id     string
	queue  chan protocol.Envelope
	mu     sync.Mutex
	closed bool

	AccountID int64
	Username  string
	Role      string
	// Record is the persisted form of the selected player.
	Record *character.Player
	// Player is the live unit of the selected player.
	Player *combat.Unit
	// MapID is the instance the session has joined, or empty.
	MapID string
}

// New returns an open session with a fresh id.
//
// Postcondition: bufferSize <= 0 uses DefaultBufferSize.
func New(bufferSize int) *Session {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Session{
		id:    uuid.NewString(),
		queue: make(chan protocol.Envelope, bufferSize),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// LoggedIn reports whether an account is attached.
func (s *Session) LoggedIn() bool { return s.AccountID != 0 }

// Send enqueues env for the writer.
//
// Postcondition: Returns an error if the session is closed or its queue is
// full; env is dropped in both cases.
func (s *Session) Send(env protocol.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session %s is closed", s.id)
	}
	select {
	case s.queue <- env:
		return nil
	default:
		return fmt.Errorf("session %s outbound buffer full", s.id)
	}
}

// Outbound returns the queue the writer reads from. It is closed by Close.
func (s *Session) Outbound() <-chan protocol.Envelope {
	return s.queue
}

// Drain returns first followed by every envelope queued without blocking.
func (s *Session) Drain(first protocol.Envelope) []protocol.Envelope {
	batch := []protocol.Envelope{first}
	for {
		select {
		case env, ok := <-s.queue:
			if !ok {
				return batch
			}
			batch = append(batch, env)
		default:
			return batch
		}
	}
}

// Close closes the outbound queue. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.queue)
	}
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ClearPlayer forgets the selected player.
func (s *Session) ClearPlayer() {
	s.Record = nil
	s.Player = nil
	s.MapID = ""
}
