package character

import (
	"errors"
	"fmt"
	"regexp"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{2,15}$`)

// ErrInvalidName is returned when a player name fails validation.
var ErrInvalidName = errors.New("character: invalid name")

// ErrInvalidArchetype is returned when the archetype is unknown.
var ErrInvalidArchetype = errors.New("character: invalid archetype")

// ValidName reports whether name is 3 to 16 alphanumerics starting with a
// letter.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// ArchetypeSet reports whether an archetype id is playable.
type ArchetypeSet interface {
	HasArchetype(id string) bool
}

// Build constructs a new level 1 Player for accountID.
//
// Precondition: archetypes must be non-nil.
// Postcondition: Returns a Player ready for persistence, or an error wrapping
// ErrInvalidName or ErrInvalidArchetype.
func Build(accountID int64, name, archetype string, archetypes ArchetypeSet) (*Player, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !archetypes.HasArchetype(archetype) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidArchetype, archetype)
	}
	return &Player{
		AccountID: accountID,
		Name:      name,
		Archetype: archetype,
		Level:     1,
	}, nil
}
