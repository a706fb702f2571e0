package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// rangeEpsilon absorbs float error when comparing distances to ranges.
const rangeEpsilon = 1e-9

// AttackRoll records both sides of one opposed attack roll.
type AttackRoll struct {
	Mode         dice.Mode
	AttackDie    int
	AttackTotal  int
	DefenseDie   int
	DefenseTotal int
}

// Margin returns attacker total minus defender total.
func (r AttackRoll) Margin() int { return r.AttackTotal - r.DefenseTotal }

// InRange reports whether defender is within attacker's weapon range.
func (e *Engine) InRange(attacker, defender *Combatant) bool {
	return e.Distance(attacker, defender) <= attacker.Weapon().Range+rangeEpsilon
}

// Attack resolves a weapon attack from attacker against defender.
//
// A zero margin opens a clash instead of producing an outcome. Any other
// margin is classified by the rule table and damage is rolled from the
// weapon's dice, adjusted by the outcome's damage bonus and scaled by tier.
// Postcondition: on error, no combatant state changes.
func (e *Engine) Attack(attacker, defender *Combatant) (Log, error) {
	if err := e.actorCheck(attacker); err != nil {
		return e.rejectActor(attacker, err)
	}
	if defender == nil || !e.registered(defender) || !defender.IsAlive() || defender == attacker {
		return reject(ErrInvalidTarget, "%s has no valid target.", attacker.Name)
	}
	weapon := attacker.Weapon()
	if !e.InRange(attacker, defender) {
		return reject(ErrOutOfRange, "%s is too far from %s (%.1f > %.1f): out of range.",
			attacker.Name, defender.Name, e.Distance(attacker, defender), weapon.Range)
	}

	var log Log
	roll := e.rollAttack(attacker, defender)
	for _, id := range condition.ConsumeOnAttack(attacker.Conditions) {
		log.add("%s spends %s.", attacker.Name, id)
	}
	margin := roll.Margin()
	log.add("%s attacks %s with %s: %d vs %d (margin %+d%s).",
		attacker.Name, defender.Name, weapon.Name, roll.AttackTotal, roll.DefenseTotal, margin, modeSuffix(roll.Mode))

	outcome := e.table.Classify(margin)
	if outcome.Tie {
		e.clash = &Clash{Attacker: attacker, Defender: defender}
		log.add("CLASH START: %s and %s lock weapons.", attacker.Name, defender.Name)
		e.logger.Debug("clash opened", zap.String("attacker", attacker.Name), zap.String("defender", defender.Name))
		return log, nil
	}
	if outcome.Fallback {
		e.logger.Warn("margin not covered by rule table", zap.Int("margin", margin))
	}
	log.add("%s!", outcome.Label)

	if outcome.Tier > rules.TierMiss {
		rolled := e.roller.Roll(weapon.Damage).Total()
		if outcome.HasDamageBonus() {
			bonus, err := outcome.DamageBonus(attacker.Modifiers(), defender.Modifiers(), margin)
			if err != nil {
				e.logger.Warn("damage bonus", zap.Error(err))
			} else if bonus != 0 {
				log.add("%s adds %+d damage.", outcome.Label, bonus)
				rolled += bonus
			}
		}
		dmg := outcome.Tier.Scale(rolled)
		e.damage(&log, defender, dmg, weapon.Name)
	}

	if outcome.Status != "" {
		target := defender
		if outcome.AppliesTo == rules.SideAttacker {
			target = attacker
		}
		if target.IsAlive() {
			e.applyCondition(&log, target, outcome.Status, outcome.Duration)
		}
	}
	return log, nil
}

// rollAttack rolls d20 + weapon attribute modifier + weapon skill rank for
// the attacker against d20 + armor attribute modifier + armor skill rank for
// the defender. The attacker's roll mode combines its own conditions with
// those of the defender.
func (e *Engine) rollAttack(attacker, defender *Combatant) AttackRoll {
	weapon := attacker.Weapon()
	armor := defender.Armor()
	mode := condition.AttackMode(attacker.Conditions, defender.Conditions)

	atk := e.roller.D20(mode)
	def := e.roller.D20(dice.Normal)
	return AttackRoll{
		Mode:         mode,
		AttackDie:    atk,
		AttackTotal:  atk + attacker.Modifier(weapon.Attribute) + attacker.SkillRank(weapon.Skill),
		DefenseDie:   def,
		DefenseTotal: def + defender.Modifier(armor.Attribute) + defender.SkillRank(armor.Skill),
	}
}

func modeSuffix(m dice.Mode) string {
	if m == dice.Normal {
		return ""
	}
	return ", " + m.String()
}
