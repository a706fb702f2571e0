package roster

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// Build creates combatants from records, resolving each record's inventory
// against inv. Records without an id receive a fresh UUID.
//
// Precondition: inv must not be nil.
// Postcondition: on success len(result) == len(records), in record order,
// with Position taken from the record; nothing is registered with an engine.
func Build(records []Record, inv *inventory.Registry) ([]*combat.Combatant, error) {
	out := make([]*combat.Combatant, 0, len(records))
	for i := range records {
		c, err := NewCombatant(&records[i], inv)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// NewCombatant builds one combatant from r.
func NewCombatant(r *Record, inv *inventory.Registry) (*combat.Combatant, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	kind, _ := combat.ParseKind(r.Kind)
	attrs := make(map[rules.Attribute]int, len(r.Attributes))
	for name, score := range r.Attributes {
		a, _ := rules.ParseAttribute(name)
		attrs[a] = score
	}
	skills := make(map[string]int, len(r.Skills))
	for k, v := range r.Skills {
		skills[k] = v
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	loadout := inv.Resolve(r.Inventory)
	return &combat.Combatant{
		ID:           id,
		Name:         r.Name,
		Kind:         kind,
		Attributes:   attrs,
		Skills:       skills,
		Powers:       append([]string(nil), r.Powers...),
		Inventory:    append([]string(nil), r.Inventory...),
		HP:           r.HP,
		MaxHP:        r.MaxHP,
		Composure:    r.Composure,
		MaxComposure: r.MaxComposure,
		Stamina:      r.Stamina,
		Focus:        r.Focus,
		Speed:        r.Speed,
		Loadout:      loadout,
		OptimalRange: inv.OptimalRange(r.Inventory),
		AITemplate:   r.AITemplate,
		Position:     combat.Position{X: r.X, Y: r.Y},
		Conditions:   condition.NewActiveSet(),
	}, nil
}
