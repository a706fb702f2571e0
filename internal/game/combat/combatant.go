// Package combat implements the turn-based grid combat engine: the combatant
// model, turn order, movement budgeting, attack and clash resolution and
// ability activation.
package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// Kind distinguishes player combatants from NPC combatants. Combatants of
// different kinds are hostile to each other.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNPC:
		return "npc"
	default:
		return "unknown"
	}
}

// ParseKind maps "player" or "npc" to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "player":
		return KindPlayer, true
	case "npc":
		return KindNPC, true
	}
	return 0, false
}

// Combatant represents one participant in an encounter.
//
// Fields are populated by setup code before Register; afterwards the Engine
// is the only writer.
type Combatant struct {
	ID   string
	Name string
	Kind Kind

	Attributes map[rules.Attribute]int
	Skills     map[string]int
	Powers     []string
	Inventory  []string

	HP           int
	MaxHP        int
	Composure    int
	MaxComposure int
	Stamina      int
	Focus        int
	// Speed is the per-turn movement allowance in distance units.
	Speed int

	Loadout      inventory.Loadout
	OptimalRange float64
	// AITemplate is the behavior template named by an external generator.
	AITemplate string

	Position Position
	// Movement is the remaining movement budget this turn in distance units.
	Movement   int
	Initiative int
	Conditions *condition.ActiveSet
}

// IsAlive reports whether the combatant has HP remaining.
func (c *Combatant) IsAlive() bool { return c.HP > 0 }

// IsHostile reports whether other is on the opposing side.
func (c *Combatant) IsHostile(other *Combatant) bool { return c.Kind != other.Kind }

// Score returns the raw attribute score, defaulting to 10.
func (c *Combatant) Score(a rules.Attribute) int {
	if s, ok := c.Attributes[a]; ok {
		return s
	}
	return 10
}

// Modifier returns the attribute modifier for a.
func (c *Combatant) Modifier(a rules.Attribute) int {
	return rules.Modifier(c.Score(a))
}

// Modifiers returns every attribute modifier keyed by lower-case name.
func (c *Combatant) Modifiers() map[string]int {
	out := make(map[string]int, len(rules.Attributes()))
	for _, a := range rules.Attributes() {
		out[a.String()] = c.Modifier(a)
	}
	return out
}

// SkillRank returns the proficiency rank in skill; unknown or empty skills
// have rank 0.
func (c *Combatant) SkillRank(skill string) int {
	if skill == "" {
		return 0
	}
	return c.Skills[skill]
}

// HasPower reports whether id is among the combatant's known abilities.
func (c *Combatant) HasPower(id string) bool {
	for _, p := range c.Powers {
		if p == id {
			return true
		}
	}
	return false
}

// HPFraction returns HP / MaxHP, or 0 when MaxHP is not positive.
func (c *Combatant) HPFraction() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}

// Has reports whether the status flag is raised.
func (c *Combatant) Has(flag string) bool {
	return c.Conditions != nil && c.Conditions.Has(flag)
}

// Flags returns the raised status flags.
func (c *Combatant) Flags() []string {
	if c.Conditions == nil {
		return nil
	}
	return c.Conditions.Flags()
}

// Weapon returns the active weapon profile, or the unarmed profile while
// disarmed.
func (c *Combatant) Weapon() inventory.WeaponProfile {
	if c.Conditions != nil && condition.IsDisarmed(c.Conditions) {
		return inventory.Unarmed()
	}
	if c.Loadout.Weapon.ID == "" {
		return inventory.Unarmed()
	}
	return c.Loadout.Weapon
}

// Armor returns the active armor profile.
func (c *Combatant) Armor() inventory.ArmorProfile {
	if c.Loadout.Armor.ID == "" {
		return inventory.Unarmored()
	}
	return c.Loadout.Armor
}

// EffectiveSpeed returns Speed less condition penalties, floored at zero.
func (c *Combatant) EffectiveSpeed() int {
	s := c.Speed
	if c.Conditions != nil {
		s -= condition.SpeedPenalty(c.Conditions)
	}
	return max(s, 0)
}

// incapacitation returns the ID of a condition that prevents acting, or "".
func (c *Combatant) incapacitation() string {
	if c.Conditions == nil {
		return ""
	}
	return condition.Incapacitating(c.Conditions)
}

func (c *Combatant) applyDamage(n int) {
	c.HP = max(c.HP-n, 0)
}

func (c *Combatant) heal(n int) int {
	before := c.HP
	c.HP = min(c.HP+n, c.MaxHP)
	return c.HP - before
}
