package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// Both sides roll 10 (sequence value 9); attacker +6 vs defender +5.
func TestAttack_MarginOneIsGraze(t *testing.T) {
	e := newEngine(t, 9, 9, 3)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	att.Attributes[rules.Might] = 22
	def.Attributes[rules.Reflexes] = 20

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.False(t, e.ClashActive())
	assert.False(t, contains(log, "CLASH START"))
	assert.True(t, contains(log, "margin +1"))
	assert.True(t, contains(log, "Graze!"))
	assert.Equal(t, 18, def.HP, "1d4 rolled 4, halved by graze")
}

// Equal totals open a clash instead of resolving.
func TestAttack_ZeroMarginOpensClash(t *testing.T) {
	e := newEngine(t, 9, 9)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	att.Attributes[rules.Might] = 20
	def.Attributes[rules.Reflexes] = 20

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.True(t, contains(log, "CLASH START"))
	for _, l := range log {
		assert.NotContains(t, l, "Hit!")
		assert.NotContains(t, l, "Miss!")
	}
	assert.True(t, e.ClashActive())
	assert.Same(t, att, e.Clash().Attacker)
	assert.Same(t, def, e.Clash().Defender)
	assert.Equal(t, 20, def.HP)
}

func TestAttack_SkillRanksCount(t *testing.T) {
	e := newEngine(t, 9, 9)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	att.Loadout.Weapon.Skill = "brawling"
	att.Skills["brawling"] = 2
	def.Loadout.Armor.Skill = "dodge"
	def.Skills["dodge"] = 2

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.True(t, contains(log, "CLASH START"))
}

func TestAttack_CriticalDoublesDamage(t *testing.T) {
	e := newEngine(t, 9, 0, 3)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 1)
	att.Attributes[rules.Might] = 30

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.True(t, contains(log, "Critical Hit!"))
	assert.Equal(t, 12, def.HP)
}

func TestAttack_CriticalMissKnocksAttackerProne(t *testing.T) {
	e := newEngine(t, 0, 19)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	def.Attributes[rules.Reflexes] = 30

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.True(t, contains(log, "Critical Miss!"))
	assert.Equal(t, 20, def.HP)
	assert.True(t, att.Has(condition.Prone))
}

func TestAttack_DamageClampsAtZero(t *testing.T) {
	e := newEngine(t, 19, 0, 3)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	def.HP = 3

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.Equal(t, 0, def.HP)
	assert.True(t, contains(log, "Defender falls!"))

	_, err = e.Attack(att, def)
	assert.ErrorIs(t, err, combat.ErrInvalidTarget)
}

func TestAttack_ProneDefenderGrantsAdvantage(t *testing.T) {
	e := newEngine(t, 0, 14, 9, 0)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	prone, _ := condition.Builtin().Get(condition.Prone)
	require.NoError(t, def.Conditions.Apply(prone, 1))

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.True(t, contains(log, "15 vs 10"))
	assert.True(t, contains(log, "advantage"))
	assert.True(t, contains(log, "Hit!"))
}

func TestAttack_BlindedAttackerHasDisadvantage(t *testing.T) {
	e := newEngine(t, 19, 0, 9)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	blinded, _ := condition.Builtin().Get(condition.Blinded)
	require.NoError(t, att.Conditions.Apply(blinded, 1))

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.True(t, contains(log, "1 vs 10"))
	assert.True(t, contains(log, "disadvantage"))
}

func TestAttack_AdvantageAndDisadvantageCancel(t *testing.T) {
	e := newEngine(t, 9, 9)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	reg := condition.Builtin()
	frightened, _ := reg.Get(condition.Frightened)
	restrained, _ := reg.Get(condition.Restrained)
	require.NoError(t, att.Conditions.Apply(frightened, 1))
	require.NoError(t, def.Conditions.Apply(restrained, 1))

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.True(t, contains(log, "CLASH START"), "single d20 each side")
}

func TestAttack_EmboldenedIsConsumed(t *testing.T) {
	e := newEngine(t, 9)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Defender", combat.KindNPC), 1, 0)
	emb, _ := condition.Builtin().Get(condition.Emboldened)
	require.NoError(t, att.Conditions.Apply(emb, 2))

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.True(t, contains(log, "advantage"))
	assert.False(t, att.Conditions.Active(condition.Emboldened))
}

func TestAttack_DisarmedFallsBackToUnarmed(t *testing.T) {
	e := newEngine(t)
	att := place(t, e, fighter("Archer", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("Target", combat.KindNPC), 5, 0)
	att.Loadout.Weapon = inventory.WeaponProfile{ID: "longbow", Name: "Longbow", Damage: dice.MustParse("1d8"), Attribute: rules.Reflexes, Range: 30}
	assert.True(t, e.InRange(att, def))

	disarmed, _ := condition.Builtin().Get(condition.Disarmed)
	require.NoError(t, att.Conditions.Apply(disarmed, 1))
	assert.Equal(t, inventory.UnarmedID, att.Weapon().ID)
	_, err := e.Attack(att, def)
	assert.ErrorIs(t, err, combat.ErrOutOfRange)
}

func TestAttack_Rejections(t *testing.T) {
	e := newEngine(t, 9)
	att := place(t, e, fighter("Attacker", combat.KindPlayer), 0, 0)
	near := place(t, e, fighter("Near", combat.KindNPC), 1, 1)
	far := place(t, e, fighter("Far", combat.KindNPC), 2, 1)
	outsider := fighter("Outsider", combat.KindNPC)

	before := []snapshot{snap(att), snap(near), snap(far)}

	log, err := e.Attack(att, far)
	assert.ErrorIs(t, err, combat.ErrOutOfRange)
	require.Len(t, log, 1)
	assert.Contains(t, log[0], "out of range")

	_, err = e.Attack(att, att)
	assert.ErrorIs(t, err, combat.ErrInvalidTarget)
	_, err = e.Attack(att, outsider)
	assert.ErrorIs(t, err, combat.ErrInvalidTarget)
	_, err = e.Attack(outsider, near)
	assert.ErrorIs(t, err, combat.ErrNotRegistered)

	stunned, _ := condition.Builtin().Get(condition.Paralyzed)
	require.NoError(t, att.Conditions.Apply(stunned, 1))
	before[0] = snap(att)
	_, err = e.Attack(att, near)
	assert.ErrorIs(t, err, combat.ErrIncapacitated)

	assert.Equal(t, before, []snapshot{snap(att), snap(near), snap(far)})
}

func TestAttack_CELDamageBonus(t *testing.T) {
	table, err := rules.Parse([]byte(`
outcomes:
  - {max: -1, outcome: Miss, tier: miss}
  - {min: 1, outcome: Hit, tier: hit, damage_bonus: "attacker.might"}
`))
	require.NoError(t, err)
	e := combat.NewEngine(combat.NewGrid(5, 5), table, nil, nil,
		combat.WithSource(dice.NewSequence(9, 0, 0)), combat.WithLogger(zap.NewNop()))
	att := place(t, e, fighter("A", combat.KindPlayer), 0, 0)
	def := place(t, e, fighter("B", combat.KindNPC), 1, 0)
	att.Attributes[rules.Might] = 16

	log, err := e.Attack(att, def)
	require.NoError(t, err)
	assert.Equal(t, 16, def.HP, "1d4 rolled 1 plus might modifier 3")
	assert.Contains(t, log, "Hit adds +3 damage.")
}

// A zero margin always and only opens a clash.
func TestProperty_ZeroMarginIffClash(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		aDie := rapid.IntRange(1, 20).Draw(rt, "aDie")
		dDie := rapid.IntRange(1, 20).Draw(rt, "dDie")
		aScore := rapid.IntRange(1, 30).Draw(rt, "aScore")
		dScore := rapid.IntRange(1, 30).Draw(rt, "dScore")

		e := combat.NewEngine(combat.NewGrid(4, 4), nil, nil, nil,
			combat.WithSource(dice.NewSequence(aDie-1, dDie-1, 0)), combat.WithLogger(zap.NewNop()))
		att := fighter("A", combat.KindPlayer)
		def := fighter("B", combat.KindNPC)
		att.Attributes[rules.Might] = aScore
		def.Attributes[rules.Reflexes] = dScore
		if err := e.Register(att, 0, 0); err != nil {
			rt.Fatal(err)
		}
		if err := e.Register(def, 1, 0); err != nil {
			rt.Fatal(err)
		}

		margin := (aDie + rules.Modifier(aScore)) - (dDie + rules.Modifier(dScore))
		log, err := e.Attack(att, def)
		if err != nil {
			rt.Fatal(err)
		}
		if (margin == 0) != e.ClashActive() {
			rt.Fatalf("margin %d: clash active = %v", margin, e.ClashActive())
		}
		if margin == 0 && def.HP != 20 {
			rt.Fatalf("clash dealt damage")
		}
		if margin != 0 && contains(log, "CLASH START") {
			rt.Fatalf("margin %d logged a clash", margin)
		}
	})
}
