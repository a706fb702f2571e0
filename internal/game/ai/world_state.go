package ai

import (
	"math"
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// CombatantState captures a combatant's state at decision time.
type CombatantState struct {
	Name     string
	Kind     combat.Kind
	HP       int
	MaxHP    int
	Position combat.Position
	Dead     bool

	ref *combat.Combatant
}

// HPFraction returns HP / MaxHP; 0 if MaxHP == 0.
func (c *CombatantState) HPFraction() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}

// Combatant returns the engine combatant the snapshot was taken from.
func (c *CombatantState) Combatant() *combat.Combatant { return c.ref }

// WorldState is the snapshot a Controller decides from for one combatant.
//
// Invariant: Self must not be nil.
type WorldState struct {
	Self       *CombatantState
	Combatants []*CombatantState // roster order
}

// BuildWorldState snapshots roster from self's point of view.
//
// Precondition: self must be in roster.
// Postcondition: ws.Self describes self; every roster entry is represented.
func BuildWorldState(roster []*combat.Combatant, self *combat.Combatant) *WorldState {
	ws := &WorldState{}
	for _, c := range roster {
		s := &CombatantState{
			Name:     c.Name,
			Kind:     c.Kind,
			HP:       c.HP,
			MaxHP:    c.MaxHP,
			Position: c.Position,
			Dead:     !c.IsAlive(),
			ref:      c,
		}
		ws.Combatants = append(ws.Combatants, s)
		if c == self {
			ws.Self = s
		}
	}
	return ws
}

// Enemies returns living combatants of the other kind.
//
// Postcondition: returned slice contains no dead and no same-kind combatants.
func (ws *WorldState) Enemies() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead && c.Kind != ws.Self.Kind {
			out = append(out, c)
		}
	}
	return out
}

// Allies returns living combatants of Self's kind, Self included.
func (ws *WorldState) Allies() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead && c.Kind == ws.Self.Kind {
			out = append(out, c)
		}
	}
	return out
}

// NearestEnemy returns the living enemy closest to Self by Euclidean
// distance, ties broken by roster order, or nil.
func (ws *WorldState) NearestEnemy() *CombatantState {
	var best *CombatantState
	bestDist := math.Inf(1)
	for _, e := range ws.Enemies() {
		if d := combat.Euclidean(ws.Self.Position, e.Position); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// AlliesInDanger returns living allies, Self included, whose HP fraction is
// at or below frac, lowest first; ties keep roster order.
func (ws *WorldState) AlliesInDanger(frac float64) []*CombatantState {
	var out []*CombatantState
	for _, a := range ws.Allies() {
		if a.HPFraction() <= frac {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].HPFraction() < out[j].HPFraction() })
	return out
}
