package session

import (
	"fmt"
	"sort"
	"sync"
)

// Manager tracks all connected sessions and which account each has claimed.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session // id → session
	accounts map[int64]string    // accountID → session id
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		accounts: make(map[int64]string),
	}
}

// Add registers s.
//
// Postcondition: Returns an error if a session with the same id exists.
func (m *Manager) Add(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID()]; exists {
		return fmt.Errorf("session %q already registered", s.ID())
	}
	m.sessions[s.ID()] = s
	return nil
}

// Remove unregisters the session and releases its account claim.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return
	}
	if owner, claimed := m.accounts[s.AccountID]; claimed && owner == id {
		delete(m.accounts, s.AccountID)
	}
	delete(m.sessions, id)
}

// Claim binds accountID to session id.
//
// Postcondition: Returns false, leaving the claim unchanged, if another
// session already holds accountID.
func (m *Manager) Claim(accountID int64, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, claimed := m.accounts[accountID]; claimed && owner != id {
		return false
	}
	m.accounts[accountID] = id
	return true
}

// Release drops the claim on accountID if session id holds it.
func (m *Manager) Release(accountID int64, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, claimed := m.accounts[accountID]; claimed && owner == id {
		delete(m.accounts, accountID)
	}
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// All returns every session ordered by id.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// ByPlayerName returns the session playing name.
//
// Precondition: must run on the simulation goroutine.
func (m *Manager) ByPlayerName(name string) (*Session, bool) {
	for _, s := range m.All() {
		if s.Record != nil && s.Record.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Count returns the number of connected sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
