package dice

import "go.uber.org/zap"

// Roller wraps a Source and a logger. Every roll it performs is logged at
// debug level with expression, dice values, modifier and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expr),
		zap.Ints("faces", result.Faces),
		zap.Int("bonus", result.Bonus),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// D20 rolls a d20 under mode and logs the kept face.
func (r *Roller) D20(mode Mode) int {
	v := D20(r.src, mode)
	r.logger.Debug("d20 roll", zap.Stringer("mode", mode), zap.Int("result", v))
	return v
}

// Chance performs a percent draw.
func (r *Roller) Chance(percent int) bool {
	return Chance(r.src, percent)
}

// Intn exposes the underlying source so a Roller satisfies Source.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }
