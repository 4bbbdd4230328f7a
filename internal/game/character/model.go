// Package character defines the persisted player record and the progression
// rules shared by the simulation and the player store.
package character

import "time"

const (
	// MaxLevel is the level cap.
	MaxLevel = 30
	// MaxMerits caps the merit counter.
	MaxMerits = 9999
)

// Player is a player's persistent state.
//
// AccountID and ID are set by the persistence layer; zero values indicate an
// unsaved player.
type Player struct {
	ID        int64
	AccountID int64

	Name      string
	Archetype string
	Level     int
	XP        int
	Merits    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the player-list entry.
type Summary struct {
	Name      string `json:"name"`
	Level     int    `json:"level"`
	Archetype string `json:"archetype"`
}

// Summary returns the player-list view of p.
func (p *Player) Summary() Summary {
	return Summary{Name: p.Name, Level: p.Level, Archetype: p.Archetype}
}

// Patch is a partial update applied by name. Nil fields are left unchanged.
type Patch struct {
	Level  *int
	XP     *int
	Merits *int
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Level == nil && p.XP == nil && p.Merits == nil
}

// Apply writes the set fields of patch onto p.
func (p *Player) Apply(patch Patch) {
	if patch.Level != nil {
		p.Level = *patch.Level
	}
	if patch.XP != nil {
		p.XP = *patch.XP
	}
	if patch.Merits != nil {
		p.Merits = *patch.Merits
	}
}

// Progress returns a Patch carrying all three progression fields.
func Progress(level, xp, merits int) Patch {
	return Patch{Level: &level, XP: &xp, Merits: &merits}
}
