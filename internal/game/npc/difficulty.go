package npc

import "fmt"

// Difficulty selects the level range of a map's NPCs.
type Difficulty string

const (
	Training Difficulty = "Training"
	Standard Difficulty = "Standard"
	Veteran  Difficulty = "Veteran"
	Elite    Difficulty = "Elite"
	Suicidal Difficulty = "Suicidal"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{Training, Standard, Veteran, Elite, Suicidal}

// ParseDifficulty validates s.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("npc: unknown difficulty %q", s)
}

// LevelRange returns the inclusive NPC level range for d.
func (d Difficulty) LevelRange() (lo, hi int) {
	switch d {
	case Standard:
		return 3, 6
	case Veteran:
		return 5, 8
	case Elite:
		return 7, 10
	case Suicidal:
		return 9, 10
	default:
		return 1, 4
	}
}
