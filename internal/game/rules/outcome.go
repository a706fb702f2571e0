package rules

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// Tier is the damage severity of an outcome.
type Tier int

const (
	TierNone Tier = iota // no damage, no effect
	TierMiss
	TierGraze
	TierHit
	TierCritical
)

var tierNames = map[Tier]string{
	TierNone:     "none",
	TierMiss:     "miss",
	TierGraze:    "graze",
	TierHit:      "hit",
	TierCritical: "critical",
}

// String returns the tier name used in rule files.
func (t Tier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return "unknown"
}

// UnmarshalText parses a tier name.
func (t *Tier) UnmarshalText(text []byte) error {
	n := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range tierNames {
		if v == n {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", string(text))
}

// Scale applies the tier multiplier to rolled damage.
//
// Postcondition: critical doubles, hit is unchanged, graze halves with a
// floor of 1, everything else yields 0.
func (t Tier) Scale(damage int) int {
	if damage < 0 {
		damage = 0
	}
	switch t {
	case TierCritical:
		return damage * 2
	case TierHit:
		return damage
	case TierGraze:
		return max(damage/2, 1)
	default:
		return 0
	}
}

// Side names which roll participant an outcome consequence lands on.
type Side string

const (
	SideDefender Side = "defender"
	SideAttacker Side = "attacker"
)

// Outcome is the classification of one attack margin.
type Outcome struct {
	Label     string
	Tier      Tier
	Status    string // optional condition ID applied on this outcome
	Duration  int    // turns the status lasts; -1 indefinite
	AppliesTo Side
	// Tie is set only for the reserved zero margin.
	Tie bool
	// Fallback is set when the margin matched no entry.
	Fallback bool

	bonus cel.Program
}

// Tie is the distinguished outcome of a zero margin. It opens a clash.
var Tie = Outcome{Label: "Tie", Tier: TierNone, Tie: true}

// NoEffect is returned for margins the table does not cover.
var NoEffect = Outcome{Label: "No Effect", Tier: TierNone, Fallback: true}

// HasDamageBonus reports whether the outcome carries a damage expression.
func (o Outcome) HasDamageBonus() bool { return o.bonus != nil }

// DamageBonus evaluates the outcome's damage expression. attacker and
// defender map attribute names to modifiers.
//
// Postcondition: returns 0 and nil when no expression is configured.
func (o Outcome) DamageBonus(attacker, defender map[string]int, margin int) (int, error) {
	if o.bonus == nil {
		return 0, nil
	}
	out, _, err := o.bonus.Eval(map[string]any{
		"attacker": toCEL(attacker),
		"defender": toCEL(defender),
		"margin":   int64(margin),
	})
	if err != nil {
		return 0, fmt.Errorf("evaluating damage bonus for %q: %w", o.Label, err)
	}
	v, ok := out.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("damage bonus for %q produced %T, want int", o.Label, out.Value())
	}
	return int(v), nil
}

func toCEL(m map[string]int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = int64(v)
	}
	return out
}

func newBonusEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("attacker", cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable("defender", cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable("margin", cel.IntType),
	)
}

func compileBonus(env *cel.Env, expr string) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.IntType) {
		return nil, fmt.Errorf("expression %q must evaluate to int, got %s", expr, ast.OutputType())
	}
	return env.Program(ast)
}
