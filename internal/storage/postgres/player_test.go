package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/storage/postgres"
	"github.com/cory-johannsen/warband/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func setupPlayerRepos(t *testing.T) (*postgres.PlayerRepository, *postgres.AccountRepository) {
	t.Helper()
	pool := testutil.NewPool(t)
	return postgres.NewPlayerRepository(pool), postgres.NewAccountRepository(pool)
}

func newAccount(t require.TestingT, repo *postgres.AccountRepository) int64 {
	acct, err := repo.Create(context.Background(), uniqueName("user"), "password123", postgres.RolePlayer)
	require.NoError(t, err)
	return acct.ID
}

func newPlayer(accountID int64, name string) *character.Player {
	return &character.Player{
		AccountID: accountID,
		Name:      name,
		Archetype: "knight",
		Level:     1,
	}
}

func TestPlayerRepository(t *testing.T) {
	players, accounts := setupPlayerRepos(t)
	ctx := context.Background()

	t.Run("insert sets id and timestamps", func(t *testing.T) {
		accountID := newAccount(t, accounts)
		created, err := players.Insert(ctx, newPlayer(accountID, "Aldric"))
		require.NoError(t, err)
		assert.Greater(t, created.ID, int64(0))
		assert.Equal(t, accountID, created.AccountID)
		assert.Equal(t, "knight", created.Archetype)
		assert.Equal(t, 1, created.Level)
		assert.Zero(t, created.XP)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("names are unique across accounts", func(t *testing.T) {
		first := newAccount(t, accounts)
		second := newAccount(t, accounts)
		_, err := players.Insert(ctx, newPlayer(first, "Brannoc"))
		require.NoError(t, err)

		_, err = players.Insert(ctx, newPlayer(second, "Brannoc"))
		assert.ErrorIs(t, err, postgres.ErrPlayerNameTaken)
	})

	t.Run("list is scoped to the account in creation order", func(t *testing.T) {
		accountID := newAccount(t, accounts)
		other := newAccount(t, accounts)
		for _, name := range []string{"Cael", "Dorn"} {
			_, err := players.Insert(ctx, newPlayer(accountID, name))
			require.NoError(t, err)
		}
		_, err := players.Insert(ctx, newPlayer(other, "Eskel"))
		require.NoError(t, err)

		list, err := players.ListByAccount(ctx, accountID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Cael", list[0].Name)
		assert.Equal(t, "Dorn", list[1].Name)
	})

	t.Run("list of a fresh account is empty, not nil", func(t *testing.T) {
		list, err := players.ListByAccount(ctx, newAccount(t, accounts))
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("find does not cross accounts", func(t *testing.T) {
		owner := newAccount(t, accounts)
		stranger := newAccount(t, accounts)
		_, err := players.Insert(ctx, newPlayer(owner, "Fenwick"))
		require.NoError(t, err)

		found, err := players.Find(ctx, owner, "Fenwick")
		require.NoError(t, err)
		assert.Equal(t, "Fenwick", found.Name)

		_, err = players.Find(ctx, stranger, "Fenwick")
		assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		accountID := newAccount(t, accounts)
		_, err := players.Insert(ctx, newPlayer(accountID, "Garrow"))
		require.NoError(t, err)

		require.NoError(t, players.Delete(ctx, accountID, "Garrow"))
		assert.ErrorIs(t, players.Delete(ctx, accountID, "Garrow"), postgres.ErrPlayerNotFound)
	})

	t.Run("update by name writes only set fields", func(t *testing.T) {
		accountID := newAccount(t, accounts)
		_, err := players.Insert(ctx, newPlayer(accountID, "Halvard"))
		require.NoError(t, err)

		xp := 17
		require.NoError(t, players.UpdateByName(ctx, "Halvard", character.Patch{XP: &xp}))
		require.NoError(t, players.UpdateByName(ctx, "Halvard", character.Progress(4, 2, 9)))
		merits := 12
		require.NoError(t, players.UpdateByName(ctx, "Halvard", character.Patch{Merits: &merits}))

		found, err := players.Find(ctx, accountID, "Halvard")
		require.NoError(t, err)
		assert.Equal(t, 4, found.Level)
		assert.Equal(t, 2, found.XP)
		assert.Equal(t, 12, found.Merits)
	})

	t.Run("update of a missing name", func(t *testing.T) {
		level := 2
		err := players.UpdateByName(ctx, "Nobody", character.Patch{Level: &level})
		assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
		assert.NoError(t, players.UpdateByName(ctx, "Nobody", character.Patch{}))
	})
}

// Property: UpdateByName followed by Find reflects the patch exactly.
func TestPlayerRepository_Property_UpdatePersists(t *testing.T) {
	players, accounts := setupPlayerRepos(t)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		accountID := newAccount(rt, accounts)
		name := fmt.Sprintf("P%d", time.Now().UnixNano()%1_000_000_000_000)
		_, err := players.Insert(ctx, newPlayer(accountID, name))
		require.NoError(rt, err)

		level := rapid.IntRange(1, character.MaxLevel).Draw(rt, "level")
		xp := rapid.IntRange(0, 5000).Draw(rt, "xp")
		merits := rapid.IntRange(0, character.MaxMerits).Draw(rt, "merits")
		require.NoError(rt, players.UpdateByName(ctx, name, character.Progress(level, xp, merits)))

		found, err := players.Find(ctx, accountID, name)
		require.NoError(rt, err)
		assert.Equal(rt, level, found.Level)
		assert.Equal(rt, xp, found.XP)
		assert.Equal(rt, merits, found.Merits)
	})
}

func TestAccountRepository(t *testing.T) {
	_, accounts := setupPlayerRepos(t)
	ctx := context.Background()

	username := uniqueName("acct")
	created, err := accounts.Create(ctx, username, "hunter22", postgres.RolePlayer)
	require.NoError(t, err)
	assert.Equal(t, postgres.RolePlayer, created.Role)

	_, err = accounts.Create(ctx, username, "other", postgres.RolePlayer)
	assert.ErrorIs(t, err, postgres.ErrAccountExists)

	editor, err := accounts.Create(ctx, uniqueName("acct"), "hunter22", postgres.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, postgres.RoleEditor, editor.Role)

	got, err := accounts.Authenticate(ctx, username, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = accounts.Authenticate(ctx, username, "wrong")
	assert.ErrorIs(t, err, postgres.ErrInvalidCredentials)
	_, err = accounts.Authenticate(ctx, uniqueName("ghost"), "hunter22")
	assert.ErrorIs(t, err, postgres.ErrAccountNotFound)

	require.NoError(t, accounts.SetRole(ctx, created.ID, postgres.RoleAdmin))
	got, err = accounts.GetByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, postgres.RoleAdmin, got.Role)
	assert.ErrorIs(t, accounts.SetRole(ctx, created.ID, "root"), postgres.ErrInvalidRole)
}
