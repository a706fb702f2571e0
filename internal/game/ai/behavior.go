// Package ai drives non-player combatants through the combat engine's public
// operations. A Controller picks a Behavior per turn and runs a bounded
// routine of move, ability and attack calls.
package ai

import (
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// Behavior is one of the fixed turn routines.
type Behavior int

const (
	Aggressive Behavior = iota
	Ranged
	Camper
	Fleeing
	Caster
	Spellblade
)

var behaviorNames = [...]string{
	Aggressive: "aggressive",
	Ranged:     "ranged",
	Camper:     "camper",
	Fleeing:    "fleeing",
	Caster:     "caster",
	Spellblade: "spellblade",
}

// String returns the behavior name.
func (b Behavior) String() string {
	if b < 0 || int(b) >= len(behaviorNames) {
		return "unknown"
	}
	return behaviorNames[b]
}

const (
	// FleeThreshold is the HP fraction at or below which a combatant flees.
	FleeThreshold = 0.2
	// RangedThreshold is the optimal range in cells above which a combatant
	// without abilities fights at range.
	RangedThreshold = 2.0
)

// templates maps generator template names to behaviors.
var templates = map[string]Behavior{
	"aggressive": Aggressive,
	"brute":      Aggressive,
	"berserker":  Aggressive,
	"melee":      Aggressive,
	"ranged":     Ranged,
	"archer":     Ranged,
	"sniper":     Ranged,
	"skirmisher": Ranged,
	"camper":     Camper,
	"guard":      Camper,
	"sentry":     Camper,
	"defender":   Camper,
	"fleeing":    Fleeing,
	"coward":     Fleeing,
	"civilian":   Fleeing,
	"caster":     Caster,
	"mage":       Caster,
	"wizard":     Caster,
	"healer":     Caster,
	"priest":     Caster,
	"spellblade": Spellblade,
	"paladin":    Spellblade,
	"battlemage": Spellblade,
}

// BehaviorForTemplate maps an AI template name to a Behavior. Unrecognised
// names yield Aggressive.
func BehaviorForTemplate(name string) Behavior {
	if b, ok := templates[strings.ToLower(strings.TrimSpace(name))]; ok {
		return b
	}
	return Aggressive
}

// OptimalRange returns the engagement distance for c in cells.
func OptimalRange(c *combat.Combatant) float64 {
	if c.OptimalRange > 0 {
		return c.OptimalRange
	}
	return max(c.Weapon().Range, inventory.MeleeRange)
}

// SelectBehavior chooses a behavior from c's current state:
// low HP flees; abilities with reach cast; abilities at melee range make a
// spellblade; long weapons fight at range; everything else is aggressive.
func SelectBehavior(c *combat.Combatant) Behavior {
	optimal := OptimalRange(c)
	switch {
	case c.HPFraction() <= FleeThreshold:
		return Fleeing
	case len(c.Powers) > 0 && optimal > inventory.MeleeRange:
		return Caster
	case len(c.Powers) > 0:
		return Spellblade
	case optimal > RangedThreshold:
		return Ranged
	default:
		return Aggressive
	}
}

// clashChoice is how a behavior resolves a clash it started.
func clashChoice(b Behavior) combat.Choice {
	switch b {
	case Fleeing, Camper:
		return combat.Defend
	default:
		return combat.Press
	}
}
