package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/warband/internal/game/character"
)

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// ErrPlayerNameTaken is returned when creating a player with a name already in use.
var ErrPlayerNameTaken = errors.New("player name already taken")

const playerColumns = `id, account_id, name, archetype, level, xp, merits, created_at, updated_at`

// PlayerRepository provides player persistence operations. Player names are
// unique across all accounts.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func scanPlayer(row pgx.Row) (*character.Player, error) {
	var p character.Player
	err := row.Scan(
		&p.ID, &p.AccountID, &p.Name, &p.Archetype,
		&p.Level, &p.XP, &p.Merits, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert creates a new player and returns it with ID and timestamps set.
//
// Precondition: p.AccountID must reference an existing account; p.Name must be non-empty.
// Postcondition: Returns the created player, or ErrPlayerNameTaken on duplicate.
func (r *PlayerRepository) Insert(ctx context.Context, p *character.Player) (*character.Player, error) {
	out, err := scanPlayer(r.db.QueryRow(ctx, `
		INSERT INTO players (account_id, name, archetype, level, xp, merits)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+playerColumns,
		p.AccountID, p.Name, p.Archetype, p.Level, p.XP, p.Merits,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrPlayerNameTaken
		}
		return nil, fmt.Errorf("inserting player: %w", err)
	}
	return out, nil
}

// ListByAccount returns all players of the given account, oldest first.
//
// Precondition: accountID must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *PlayerRepository) ListByAccount(ctx context.Context, accountID int64) ([]*character.Player, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players WHERE account_id = $1 ORDER BY created_at ASC, id ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	players := make([]*character.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Find retrieves the player called name owned by accountID.
//
// Postcondition: Returns the player or ErrPlayerNotFound, including when the
// name exists under another account.
func (r *PlayerRepository) Find(ctx context.Context, accountID int64, name string) (*character.Player, error) {
	p, err := scanPlayer(r.db.QueryRow(ctx, `
		SELECT `+playerColumns+`
		FROM players WHERE account_id = $1 AND name = $2`,
		accountID, name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return p, nil
}

// Delete removes the player called name owned by accountID.
//
// Postcondition: Returns nil on success, ErrPlayerNotFound if no row matched.
func (r *PlayerRepository) Delete(ctx context.Context, accountID int64, name string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM players WHERE account_id = $1 AND name = $2`,
		accountID, name,
	)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// UpdateByName writes the set fields of patch onto the player called name.
//
// Postcondition: Returns nil on success (an empty patch is a no-op),
// ErrPlayerNotFound if no row matched.
func (r *PlayerRepository) UpdateByName(ctx context.Context, name string, patch character.Patch) error {
	if patch.Empty() {
		return nil
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE players SET
			level      = COALESCE($2, level),
			xp         = COALESCE($3, xp),
			merits     = COALESCE($4, merits),
			updated_at = NOW()
		WHERE name = $1`,
		name, patch.Level, patch.XP, patch.Merits,
	)
	if err != nil {
		return fmt.Errorf("updating player %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}
