package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
)

func TestRegister_RejectsBoundsAndOccupancy(t *testing.T) {
	e := newEngine(t)
	a := place(t, e, fighter("A", combat.KindPlayer), 0, 0)

	err := e.Register(fighter("B", combat.KindNPC), 10, 0)
	assert.ErrorIs(t, err, combat.ErrOutOfBounds)
	err = e.Register(fighter("C", combat.KindNPC), -1, 3)
	assert.ErrorIs(t, err, combat.ErrOutOfBounds)
	err = e.Register(fighter("D", combat.KindNPC), 0, 0)
	assert.ErrorIs(t, err, combat.ErrOccupied)
	assert.Error(t, e.Register(a, 5, 5))
	assert.Len(t, e.Roster(), 1)

	place(t, e, fighter("E", combat.KindNPC), 9, 9)
	assert.Len(t, e.Roster(), 2)
}

func TestRegister_DeadOccupantDoesNotBlock(t *testing.T) {
	e := newEngine(t)
	corpse := place(t, e, fighter("Corpse", combat.KindNPC), 2, 2)
	corpse.HP = 0
	assert.NoError(t, e.Register(fighter("Live", combat.KindPlayer), 2, 2))
}

func TestBeginEncounter_InitiativeOrder(t *testing.T) {
	e := newEngine(t, 9, 14, 19)
	a := place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	b := place(t, e, fighter("B", combat.KindNPC), 1, 0)
	c := place(t, e, fighter("C", combat.KindNPC), 2, 0)
	c.Speed = 10

	log := e.BeginEncounter()
	assert.Equal(t, 16, a.Initiative)
	assert.Equal(t, 21, b.Initiative)
	assert.Equal(t, 22, c.Initiative)
	assert.Equal(t, []*combat.Combatant{c, b, a}, e.TurnOrder())
	assert.Same(t, c, e.ActiveCombatant())
	assert.Equal(t, 1, e.Round())
	assert.True(t, contains(log, "C acts first"))
}

func TestBeginEncounter_TiesKeepRegistrationOrder(t *testing.T) {
	e := newEngine(t, 9)
	a := place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	b := place(t, e, fighter("B", combat.KindNPC), 1, 0)
	c := place(t, e, fighter("C", combat.KindNPC), 2, 0)
	e.BeginEncounter()
	assert.Equal(t, []*combat.Combatant{a, b, c}, e.TurnOrder())
}

func TestBeginEncounter_SkipsDead(t *testing.T) {
	e := newEngine(t, 9)
	place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	dead := place(t, e, fighter("B", combat.KindNPC), 1, 0)
	dead.HP = 0
	e.BeginEncounter()
	assert.Len(t, e.TurnOrder(), 1)
}

func TestActiveCombatant_NilBeforeBegin(t *testing.T) {
	e := newEngine(t)
	assert.Nil(t, e.ActiveCombatant())
	place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	assert.Nil(t, e.ActiveCombatant())
}

func TestEndTurn_AdvancesAndWraps(t *testing.T) {
	e := newEngine(t, 9)
	a := place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	b := place(t, e, fighter("B", combat.KindNPC), 1, 0)
	c := place(t, e, fighter("C", combat.KindNPC), 2, 0)
	e.BeginEncounter()

	e.EndTurn()
	assert.Same(t, b, e.ActiveCombatant())
	b.HP = 0
	log := e.EndTurn()
	assert.Same(t, c, e.ActiveCombatant())
	assert.True(t, contains(log, "C's turn"))

	log = e.EndTurn()
	assert.Same(t, a, e.ActiveCombatant(), "dead B is skipped on wrap")
	assert.Equal(t, 2, e.Round())
	assert.True(t, contains(log, "Round 2 begins"))
}

func TestEndTurn_TicksOnlyEndingCombatant(t *testing.T) {
	e := newEngine(t, 9)
	a := place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	b := place(t, e, fighter("B", combat.KindNPC), 1, 0)
	e.BeginEncounter()
	reg := condition.Builtin()
	prone, _ := reg.Get(condition.Prone)
	blinded, _ := reg.Get(condition.Blinded)
	require.NoError(t, a.Conditions.Apply(prone, 1))
	require.NoError(t, b.Conditions.Apply(blinded, 1))
	require.NoError(t, a.Conditions.Apply(blinded, -1))

	log := e.EndTurn()
	assert.False(t, a.Has(condition.Prone))
	assert.True(t, contains(log, "A is no longer prone"))
	assert.True(t, a.Has(condition.Blinded), "indefinite effects never tick")
	assert.True(t, b.Has(condition.Blinded), "B's effects tick on B's turn end")

	e.EndTurn()
	assert.False(t, b.Has(condition.Blinded))
}

func TestEndTurn_ReportsEncounterOver(t *testing.T) {
	e := newEngine(t, 9)
	place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	b := place(t, e, fighter("B", combat.KindNPC), 1, 0)
	e.BeginEncounter()
	b.HP = 0
	log := e.EndTurn()
	assert.True(t, e.EncounterOver())
	k, ok := e.Winner()
	assert.True(t, ok)
	assert.Equal(t, combat.KindPlayer, k)
	assert.True(t, contains(log, "encounter is over"))
}

func TestStartTurn(t *testing.T) {
	e := newEngine(t)
	c := place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	ok, reason := e.StartTurn(c)
	assert.True(t, ok)
	assert.Empty(t, reason)
	assert.Equal(t, 30, c.Movement)

	slowed, _ := condition.Builtin().Get(condition.Slowed)
	require.NoError(t, c.Conditions.Apply(slowed, 1))
	e.StartTurn(c)
	assert.Equal(t, 20, c.Movement)

	stunned, _ := condition.Builtin().Get(condition.Stunned)
	require.NoError(t, c.Conditions.Apply(stunned, 1))
	ok, reason = e.StartTurn(c)
	assert.False(t, ok)
	assert.Contains(t, reason, "stunned")

	c.HP = 0
	ok, _ = e.StartTurn(c)
	assert.False(t, ok)
}

func TestQueries(t *testing.T) {
	e := newEngine(t)
	a := place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	b := place(t, e, fighter("B", combat.KindNPC), 3, 4)
	c := place(t, e, fighter("C", combat.KindNPC), 5, 5)

	assert.InDelta(t, 5.0, e.Distance(a, b), 1e-9)
	assert.Same(t, b, e.OccupantAt(3, 4))
	assert.Nil(t, e.OccupantAt(4, 4))
	assert.Equal(t, 2, e.AliveCount(combat.KindNPC))
	assert.Same(t, c, e.Find("C"))

	c.HP = 0
	assert.Nil(t, e.OccupantAt(5, 5))
	assert.Equal(t, []*combat.Combatant{a, b}, e.Living())
	assert.Len(t, e.Roster(), 3, "dead stay on the roster")
}
