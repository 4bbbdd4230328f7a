package gameserver

import (
	"context"
	"errors"

	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/storage/postgres"
)

// AccountRepoAdapter wraps a postgres.AccountRepository to satisfy AccountStore.
type AccountRepoAdapter struct {
	repo *postgres.AccountRepository
}

// NewAccountRepoAdapter creates an adapter around the given repository.
func NewAccountRepoAdapter(repo *postgres.AccountRepository) *AccountRepoAdapter {
	return &AccountRepoAdapter{repo: repo}
}

// Authenticate verifies credentials against the repository.
func (a *AccountRepoAdapter) Authenticate(ctx context.Context, username, password string) (Account, error) {
	acct, err := a.repo.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, postgres.ErrAccountNotFound) || errors.Is(err, postgres.ErrInvalidCredentials) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	return Account{ID: acct.ID, Username: acct.Username, Role: acct.Role}, nil
}

// PlayerRepoAdapter wraps a postgres.PlayerRepository to satisfy PlayerStore.
type PlayerRepoAdapter struct {
	repo *postgres.PlayerRepository
}

// NewPlayerRepoAdapter creates an adapter around the given repository.
func NewPlayerRepoAdapter(repo *postgres.PlayerRepository) *PlayerRepoAdapter {
	return &PlayerRepoAdapter{repo: repo}
}

func translatePlayerErr(err error) error {
	switch {
	case errors.Is(err, postgres.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, postgres.ErrPlayerNameTaken):
		return ErrNameTaken
	default:
		return err
	}
}

func (a *PlayerRepoAdapter) ListByAccount(ctx context.Context, accountID int64) ([]*character.Player, error) {
	return a.repo.ListByAccount(ctx, accountID)
}

func (a *PlayerRepoAdapter) Find(ctx context.Context, accountID int64, name string) (*character.Player, error) {
	p, err := a.repo.Find(ctx, accountID, name)
	return p, translatePlayerErr(err)
}

func (a *PlayerRepoAdapter) Insert(ctx context.Context, p *character.Player) (*character.Player, error) {
	out, err := a.repo.Insert(ctx, p)
	return out, translatePlayerErr(err)
}

func (a *PlayerRepoAdapter) Delete(ctx context.Context, accountID int64, name string) error {
	return translatePlayerErr(a.repo.Delete(ctx, accountID, name))
}

func (a *PlayerRepoAdapter) UpdateByName(ctx context.Context, name string, patch character.Patch) error {
	return translatePlayerErr(a.repo.UpdateByName(ctx, name, patch))
}
