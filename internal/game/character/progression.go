package character

// XPRequired returns the experience needed to advance from level to level+1.
//
// Precondition: level >= 1.
func XPRequired(level int) int {
	return (level-1+2)*(level-1+3) + 20
}

// Advance adds amount experience to (level, xp), levelling up as many times
// as the total allows. Remainders carry into the next level; experience
// earned at MaxLevel is discarded.
//
// Postcondition: 1 <= newLevel <= MaxLevel; newXP < XPRequired(newLevel)
// unless newLevel == MaxLevel, in which case newXP == 0.
func Advance(level, xp, amount int) (newLevel, newXP, gained int) {
	newLevel, newXP = level, xp
	if amount > 0 {
		newXP += amount
	}
	for newLevel < MaxLevel && newXP >= XPRequired(newLevel) {
		newXP -= XPRequired(newLevel)
		newLevel++
		gained++
	}
	if newLevel >= MaxLevel {
		newLevel = MaxLevel
		newXP = 0
	}
	return newLevel, newXP, gained
}

// AddMerits returns merits+amount capped to [0, MaxMerits].
func AddMerits(merits, amount int) int {
	m := merits + amount
	if m > MaxMerits {
		return MaxMerits
	}
	if m < 0 {
		return 0
	}
	return m
}
