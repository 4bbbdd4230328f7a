package dice

import "go.uber.org/zap"

// Roller wraps a Source with debug logging of every roll and chance check.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller drawing from src and logging to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Chance returns true with probability p. p <= 0 never succeeds; p >= 1
// always succeeds.
func (r *Roller) Chance(label string, p float64) bool {
	if p <= 0 {
		return false
	}
	v := r.src.Float64()
	ok := v < p
	r.logger.Debug("chance",
		zap.String("label", label),
		zap.Float64("p", p),
		zap.Float64("roll", v),
		zap.Bool("success", ok),
	)
	return ok
}

// Intn returns a value in [0, n).
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Range returns a value in [lo, hi]. When hi < lo, lo is returned.
func (r *Roller) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.src.Intn(hi-lo+1)
}

// RollExpr parses and rolls expr, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	result := Roll(e, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}
