package dice

// Mode selects how a d20 check is rolled.
type Mode int

const (
	Normal       Mode = iota
	Advantage         // roll twice, keep the higher
	Disadvantage      // roll twice, keep the lower
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case Advantage:
		return "advantage"
	case Disadvantage:
		return "disadvantage"
	default:
		return "normal"
	}
}

// Combine folds every mode source into one: any advantage together with any
// disadvantage is Normal regardless of how many of each or their order.
func Combine(modes ...Mode) Mode {
	var adv, dis int
	for _, m := range modes {
		switch m {
		case Advantage:
			adv++
		case Disadvantage:
			dis++
		}
	}
	switch {
	case adv > 0 && dis == 0:
		return Advantage
	case dis > 0 && adv == 0:
		return Disadvantage
	default:
		return Normal
	}
}

// Roll evaluates expr using src.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Faces) == expr.Count.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expr: expr.Raw, Faces: rolled, Bonus: expr.Modifier}
}

// RollExpr parses expr and rolls it in one call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// D20 rolls a twenty-sided die under mode and returns the kept face.
//
// Postcondition: 1 <= result <= 20.
func D20(src Source, mode Mode) int {
	first := src.Intn(20) + 1
	if mode == Normal {
		return first
	}
	second := src.Intn(20) + 1
	if mode == Advantage {
		return max(first, second)
	}
	return min(first, second)
}

// Chance reports whether a percent-probability draw succeeds.
//
// Postcondition: always false for percent <= 0 and always true for percent >= 100.
func Chance(src Source, percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Intn(100) < percent
}
