package ai_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

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

func shortbow() inventory.WeaponProfile {
	return inventory.WeaponProfile{
		ID:        "shortbow",
		Name:      "Shortbow",
		Damage:    dice.MustParse("1d6"),
		Attribute: rules.Finesse,
		Range:     12,
	}
}

func abilities(t *testing.T) *ability.Registry {
	t.Helper()
	reg := ability.NewRegistry()
	for _, d := range []*ability.Def{
		{ID: "fire_bolt", Name: "Fire Bolt", Effect: ability.EffectDamage, Dice: "1d6", Range: 6, Cost: ability.Cost{Focus: 2}},
		{ID: "cure", Name: "Cure", Effect: ability.EffectHeal, Dice: "1d8", Range: 6, Cost: ability.Cost{Focus: 3}},
	} {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

// spy records the engine calls a Controller makes.
type spy struct {
	*combat.Engine
	calls []string
}

func (s *spy) Attack(a, d *combat.Combatant) (combat.Log, error) {
	s.calls = append(s.calls, "attack "+d.Name)
	return s.Engine.Attack(a, d)
}

func (s *spy) ActivateAbility(c *combat.Combatant, id string, target *combat.Combatant) (combat.Log, error) {
	s.calls = append(s.calls, "ability "+id+" "+target.Name)
	return s.Engine.ActivateAbility(c, id, target)
}

func (s *spy) attacks() int {
	n := 0
	for _, c := range s.calls {
		if len(c) > 6 && c[:6] == "attack" {
			n++
		}
	}
	return n
}

// setup returns a spied 10x10 engine rolling engineSeq and a controller
// drawing from aiSeq.
func setup(reg *ability.Registry, engineSeq, aiSeq []int) (*spy, *ai.Controller) {
	eng := combat.NewEngine(combat.NewGrid(10, 10), nil, nil, reg,
		combat.WithSource(dice.NewSequence(engineSeq...)),
		combat.WithLogger(zap.NewNop()),
	)
	s := &spy{Engine: eng}
	return s, ai.NewController(s, dice.NewSequence(aiSeq...), zap.NewNop())
}

func place(t require.TestingT, s *spy, c *combat.Combatant, x, y int) *combat.Combatant {
	require.NoError(t, s.Register(c, x, y))
	return c
}

func startTurn(t require.TestingT, s *spy, c *combat.Combatant) {
	ok, reason := s.StartTurn(c)
	require.True(t, ok, reason)
}
