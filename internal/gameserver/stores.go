// Package gameserver turns session protocol envelopes into account, player
// and simulation operations. Store I/O runs on the caller's goroutine; every
// session state change and simulation mutation runs on the sched.Runner.
package gameserver

//go:generate go tool mockgen -destination=./mocks/stores_mock.go -package=mocks . AccountStore,PlayerStore

import (
	"context"
	"errors"

	"github.com/cory-johannsen/warband/internal/game/character"
)

// Store errors the controllers translate into player-facing messages.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPlayerNotFound is returned when no player matches.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrNameTaken is returned when inserting a player whose name is in use.
	ErrNameTaken = errors.New("player name taken")
)

// Account is an authenticated account.
type Account struct {
	ID       int64
	Username string
	Role     string
}

// AccountStore authenticates accounts.
type AccountStore interface {
	// Authenticate returns the account for username if password matches.
	//
	// Postcondition: Returns ErrInvalidCredentials on an unknown username or
	// a wrong password.
	Authenticate(ctx context.Context, username, password string) (Account, error)
}

// PlayerStore persists players.
type PlayerStore interface {
	ListByAccount(ctx context.Context, accountID int64) ([]*character.Player, error)
	// Find returns ErrPlayerNotFound when accountID has no player called name.
	Find(ctx context.Context, accountID int64, name string) (*character.Player, error)
	// Insert returns ErrNameTaken when name is in use by any account.
	Insert(ctx context.Context, p *character.Player) (*character.Player, error)
	// Delete returns ErrPlayerNotFound when accountID has no player called name.
	Delete(ctx context.Context, accountID int64, name string) error
	// UpdateByName returns ErrPlayerNotFound when no player is called name.
	UpdateByName(ctx context.Context, name string, patch character.Patch) error
}
