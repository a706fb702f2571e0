package combat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// fighter returns a combatant with neutral attributes and an unarmed loadout.
func fighter(name string, kind combat.Kind) *combat.Combatant {
	return &combat.Combatant{
		ID:           name,
		Name:         name,
		Kind:         kind,
		Attributes:   map[rules.Attribute]int{},
		Skills:       map[string]int{},
		HP:           20,
		MaxHP:        20,
		Composure:    6,
		MaxComposure: 6,
		Focus:        10,
		Stamina:      10,
		Speed:        30,
		Loadout:      inventory.DefaultLoadout(),
	}
}

func testAbilities(t *testing.T) *ability.Registry {
	t.Helper()
	reg := ability.NewRegistry()
	for _, d := range []*ability.Def{
		{ID: "fire_bolt", Name: "Fire Bolt", Effect: ability.EffectDamage, Dice: "1d6", Range: 6, Cost: ability.Cost{Focus: 2}},
		{ID: "cure", Name: "Cure", Effect: ability.EffectHeal, Dice: "1d8", Range: 6, Cost: ability.Cost{Focus: 3}},
		{ID: "scare", Name: "Scare", Effect: ability.EffectStatus, Condition: "frightened", Duration: 2, Range: 3},
		{ID: "second_wind", Name: "Second Wind", Effect: ability.EffectHeal, Dice: "1d4", Target: ability.TargetSelf, Cost: ability.Cost{Stamina: 5}},
	} {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

// newEngine returns a 10x10 engine whose rolls come from seq.
func newEngine(t *testing.T, seq ...int) *combat.Engine {
	t.Helper()
	return combat.NewEngine(combat.NewGrid(10, 10), nil, nil, testAbilities(t),
		combat.WithSource(dice.NewSequence(seq...)),
		combat.WithLogger(zap.NewNop()),
	)
}

func place(t *testing.T, e *combat.Engine, c *combat.Combatant, x, y int) *combat.Combatant {
	t.Helper()
	require.NoError(t, e.Register(c, x, y))
	return c
}

func contains(log combat.Log, sub string) bool {
	for _, l := range log {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

type snapshot struct {
	HP, Composure, Focus, Stamina, Movement int
	Position                                combat.Position
	Flags                                   []string
}

func snap(c *combat.Combatant) snapshot {
	return snapshot{
		HP: c.HP, Composure: c.Composure, Focus: c.Focus, Stamina: c.Stamina,
		Movement: c.Movement, Position: c.Position, Flags: c.Flags(),
	}
}
