// Package dice holds the randomness abstraction behind every draw the engine
// and AI make, plus the dice-expression parser and roll audit records.
package dice

import (
	"fmt"
	"strings"
)

// RollResult records one evaluation of an expression.
type RollResult struct {
	Expr  string
	Faces []int // one entry per die, in roll order
	Bonus int
}

// Total is the sum of Faces plus Bonus.
func (r RollResult) Total() int {
	sum := r.Bonus
	for _, f := range r.Faces {
		sum += f
	}
	return sum
}

// String renders the roll for logs, e.g. "2d6+3: 4+5 +3 = 12".
func (r RollResult) String() string {
	faces := make([]string, len(r.Faces))
	for i, f := range r.Faces {
		faces[i] = fmt.Sprint(f)
	}
	expr := r.Expr
	if expr == "" {
		expr = "?"
	}
	return fmt.Sprintf("%s: %s %+d = %d", expr, strings.Join(faces, "+"), r.Bonus, r.Total())
}

// Source supplies uniform integers. Tests substitute fixed sequences;
// production uses NewCryptoSource or NewSeededSource.
type Source interface {
	// Intn returns a value in [0, n). Precondition: n > 0.
	Intn(n int) int
}
