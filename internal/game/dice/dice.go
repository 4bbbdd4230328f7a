// Package dice provides the randomness abstraction used by combat rolls,
// dodge and critical checks, NPC placement and the /roll chat command.
package dice

import (
	"fmt"
	"strings"
)

// Source is the randomness provider for every random decision in the game.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// RollResult holds the individual dice and modifier of one evaluated
// expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll for chat, e.g. "2d6+3: 4 + 5 (+3) = 12".
func (r RollResult) String() string {
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprint(d)
	}
	s := fmt.Sprintf("%s: %s", r.Expression, strings.Join(parts, " + "))
	if r.Modifier != 0 {
		s += fmt.Sprintf(" (%+d)", r.Modifier)
	}
	return fmt.Sprintf("%s = %d", s, r.Total())
}
