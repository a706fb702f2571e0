package inventory

import (
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// UnarmedID identifies the fallback weapon profile.
const UnarmedID = "unarmed"

// WeaponProfile is the engine-facing view of a resolved weapon.
type WeaponProfile struct {
	ID        string
	Name      string
	Damage    dice.Expression
	Attribute rules.Attribute
	Skill     string
	Range     float64 // cells
}

// ArmorProfile is the engine-facing view of resolved armor.
type ArmorProfile struct {
	ID        string
	Name      string
	Attribute rules.Attribute
	Skill     string
}

// Loadout is the resolution of a combatant's carried items.
type Loadout struct {
	Weapon WeaponProfile
	Armor  ArmorProfile
	// Defaulted lists the slots that fell back to defaults ("weapon", "armor").
	Defaulted []string
}

// Unarmed returns the fallback weapon profile.
func Unarmed() WeaponProfile {
	return WeaponProfile{
		ID:        UnarmedID,
		Name:      "Unarmed",
		Damage:    dice.MustParse("1d4"),
		Attribute: DefaultWeaponAttribute,
		Range:     MeleeRange,
	}
}

// Unarmored returns the fallback armor profile.
func Unarmored() ArmorProfile {
	return ArmorProfile{ID: "none", Name: "Unarmored", Attribute: DefaultArmorAttribute}
}

// DefaultLoadout returns the loadout used when no item resolves.
func DefaultLoadout() Loadout {
	return Loadout{Weapon: Unarmed(), Armor: Unarmored(), Defaulted: []string{"weapon", "armor"}}
}

func profileOf(w *WeaponDef) WeaponProfile {
	expr, err := dice.Parse(w.DamageDice)
	if err != nil {
		expr = Unarmed().Damage
	}
	return WeaponProfile{
		ID:        w.ID,
		Name:      w.Name,
		Damage:    expr,
		Attribute: w.GoverningAttribute(),
		Skill:     w.Skill,
		Range:     w.Range(),
	}
}
