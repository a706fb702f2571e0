package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// CanAfford reports whether c can pay def's cost.
func CanAfford(c *Combatant, def *ability.Def) bool {
	return c.Focus >= def.Cost.Focus && c.Stamina >= def.Cost.Stamina
}

// ValidAbilityTarget reports whether target suits def's declared target kind
// when cast by c.
func ValidAbilityTarget(c, target *Combatant, def *ability.Def) bool {
	switch def.TargetKind() {
	case ability.TargetSelf:
		return target == c
	case ability.TargetAlly:
		return !c.IsHostile(target)
	default:
		return c.IsHostile(target)
	}
}

// ActivateAbility uses ability id from c on target. A nil target means c
// itself. The cost is paid only when every check passes.
//
// Postcondition: on error, no combatant state changes.
func (e *Engine) ActivateAbility(c *Combatant, id string, target *Combatant) (Log, error) {
	if err := e.actorCheck(c); err != nil {
		return e.rejectActor(c, err)
	}
	if !c.HasPower(id) {
		return reject(ErrUnknownAbility, "%s does not know %s.", c.Name, id)
	}
	def, ok := e.abilities.Get(id)
	if !ok {
		return reject(ErrUnknownAbility, "%s is not a recognised ability.", id)
	}
	if target == nil {
		target = c
	}
	if !e.registered(target) || !target.IsAlive() || !ValidAbilityTarget(c, target, def) {
		return reject(ErrInvalidTarget, "%s cannot use %s on %s.", c.Name, def.Name, target.Name)
	}
	if d := e.Distance(c, target); d > def.Reach()+rangeEpsilon {
		return reject(ErrOutOfRange, "%s is too far from %s for %s (%.1f > %.1f): out of range.", target.Name, c.Name, def.Name, d, def.Reach())
	}

	var expr dice.Expression
	switch def.Effect {
	case ability.EffectDamage, ability.EffectHeal:
		var err error
		if expr, err = dice.Parse(def.Dice); err != nil {
			return reject(ErrUnknownAbility, "%s has unusable dice %q.", def.Name, def.Dice)
		}
	case ability.EffectStatus:
		if _, ok := e.conditions.Get(def.Condition); !ok {
			return reject(ErrUnknownAbility, "%s applies unknown condition %q.", def.Name, def.Condition)
		}
	default:
		return reject(ErrUnknownAbility, "%s has unknown effect %q.", def.Name, def.Effect)
	}
	if !CanAfford(c, def) {
		return reject(ErrCannotAfford, "%s cannot afford %s (needs %d FP / %d SP).", c.Name, def.Name, def.Cost.Focus, def.Cost.Stamina)
	}

	c.Focus -= def.Cost.Focus
	c.Stamina -= def.Cost.Stamina

	var log Log
	log.add("%s uses %s on %s.", c.Name, def.Name, target.Name)
	switch def.Effect {
	case ability.EffectDamage:
		e.damage(&log, target, e.roller.Roll(expr).Total(), def.Name)
	case ability.EffectHeal:
		healed := target.heal(e.roller.Roll(expr).Total())
		log.add("%s recovers %d HP (HP %d/%d).", target.Name, healed, target.HP, target.MaxHP)
	case ability.EffectStatus:
		e.applyCondition(&log, target, def.Condition, def.Turns())
	}

	if def.Script != "" && e.scripts != nil {
		if _, err := e.scripts.CallAbility(def.Script, info(c), info(target)); err != nil {
			e.logger.Warn("ability script", zap.String("ability", def.ID), zap.Error(err))
		}
		log = append(log, e.scriptLog...)
		e.scriptLog = nil
	}
	return log, nil
}

func info(c *Combatant) *scripting.CombatantInfo {
	if c == nil {
		return nil
	}
	return &scripting.CombatantInfo{
		Name:       c.Name,
		Kind:       c.Kind.String(),
		HP:         c.HP,
		MaxHP:      c.MaxHP,
		Composure:  c.Composure,
		X:          c.Position.X,
		Y:          c.Position.Y,
		Conditions: c.Flags(),
	}
}

// bindScripts points the Lua manager's callbacks at this engine.
func (e *Engine) bindScripts() {
	living := func(name string) (*Combatant, error) {
		c := e.Find(name)
		if c == nil || !c.IsAlive() {
			return nil, fmt.Errorf("%q: %w", name, ErrInvalidTarget)
		}
		return c, nil
	}
	e.scripts.GetCombatant = func(name string) *scripting.CombatantInfo {
		if c := e.Find(name); c != nil {
			return info(c)
		}
		return nil
	}
	e.scripts.ApplyDamage = func(name string, n int) error {
		c, err := living(name)
		if err != nil {
			return err
		}
		e.damage(&e.scriptLog, c, n, "a script")
		return nil
	}
	e.scripts.Heal = func(name string, n int) error {
		c, err := living(name)
		if err != nil {
			return err
		}
		healed := c.heal(n)
		e.scriptLog.add("%s recovers %d HP (HP %d/%d).", c.Name, healed, c.HP, c.MaxHP)
		return nil
	}
	e.scripts.ApplyCondition = func(name, id string, turns int) error {
		c, err := living(name)
		if err != nil {
			return err
		}
		if !e.applyCondition(&e.scriptLog, c, id, turns) {
			return fmt.Errorf("condition %q not applied", id)
		}
		return nil
	}
	e.scripts.Log = func(msg string) {
		e.scriptLog = append(e.scriptLog, msg)
	}
}
