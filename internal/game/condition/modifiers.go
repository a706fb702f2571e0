package condition

import "github.com/cory-johannsen/skirmish/internal/game/dice"

func toDice(m RollMode) dice.Mode {
	switch m {
	case RollAdvantage:
		return dice.Advantage
	case RollDisadvantage:
		return dice.Disadvantage
	default:
		return dice.Normal
	}
}

// AttackMode returns the roll mode for an attack by the owner of attacker
// against the owner of defender. Every biasing condition on either side
// counts as one source for dice.Combine.
func AttackMode(attacker, defender *ActiveSet) dice.Mode {
	var modes []dice.Mode
	for _, ac := range attacker.All() {
		modes = append(modes, toDice(ac.Def.AttackMode))
	}
	for _, ac := range defender.All() {
		modes = append(modes, toDice(ac.Def.DefenseMode))
	}
	return dice.Combine(modes...)
}

// SpeedPenalty returns the total speed reduction from active conditions.
//
// Postcondition: Returns >= 0.
func SpeedPenalty(s *ActiveSet) int {
	total := 0
	for _, ac := range s.conditions {
		total += ac.Def.SpeedPenalty
	}
	return total
}

// Incapacitating returns the ID of the first condition that blocks actions,
// or "" when the owner may act.
func Incapacitating(s *ActiveSet) string {
	for _, ac := range s.All() {
		if ac.Def.BlocksActions {
			return ac.Def.ID
		}
	}
	return ""
}

// IsDisarmed reports whether any active condition disarms the owner.
func IsDisarmed(s *ActiveSet) bool {
	for _, ac := range s.conditions {
		if ac.Def.Disarms {
			return true
		}
	}
	return false
}

// ConsumeOnAttack removes conditions spent by the owner's attack and returns
// their IDs.
func ConsumeOnAttack(s *ActiveSet) []string {
	var spent []string
	for _, ac := range s.All() {
		if ac.Def.ConsumedOnAttack {
			spent = append(spent, ac.Def.ID)
			s.Remove(ac.Def.ID)
		}
	}
	return spent
}
