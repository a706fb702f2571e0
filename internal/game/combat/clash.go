package combat

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// Clash is the open sub-resolution started by a tied attack.
type Clash struct {
	Attacker *Combatant
	Defender *Combatant
}

// Choice is how the clash is resolved.
type Choice string

const (
	// Press resolves on the attacker's weapon attribute; the attacker wins ties.
	Press Choice = "PRESS"
	// Defend resolves on the defender's armor attribute; the defender wins ties.
	Defend Choice = "DEFEND"
)

// ParseChoice accepts PRESS or DEFEND in any case.
func ParseChoice(s string) (Choice, bool) {
	switch Choice(strings.ToUpper(strings.TrimSpace(s))) {
	case Press:
		return Press, true
	case Defend:
		return Defend, true
	}
	return "", false
}

// ClashActive reports whether a clash is open.
func (e *Engine) ClashActive() bool { return e.clash != nil }

// Clash returns a copy of the open clash, or nil.
func (e *Engine) Clash() *Clash {
	if e.clash == nil {
		return nil
	}
	c := *e.clash
	return &c
}

// ResolveClash settles the open clash. Both participants roll d20 plus their
// modifier in the resolution stat. The winner's governing stat (see
// governingStat) keys the clash effect applied to the loser (or, for
// advantage, to the winner).
//
// Postcondition: on success ClashActive() is false.
func (e *Engine) ResolveClash(choice Choice) (Log, error) {
	if e.clash == nil {
		return reject(ErrNoClash, "There is no clash to resolve.")
	}
	if choice != Press && choice != Defend {
		return reject(ErrInvalidChoice, "Clash choice %q must be PRESS or DEFEND.", choice)
	}
	att, def := e.clash.Attacker, e.clash.Defender

	stat := att.Weapon().Attribute
	if choice == Defend {
		stat = def.Armor().Attribute
	}
	aDie := e.roller.D20(dice.Normal)
	dDie := e.roller.D20(dice.Normal)
	aTotal := aDie + att.Modifier(stat)
	dTotal := dDie + def.Modifier(stat)

	var log Log
	log.add("%s chooses %s on %s: %s %d vs %s %d.", chooser(choice, att, def).Name, choice, stat, att.Name, aTotal, def.Name, dTotal)

	winner, loser := att, def
	switch choice {
	case Press:
		if aTotal < dTotal {
			winner, loser = def, att
		}
	case Defend:
		if dTotal >= aTotal {
			winner, loser = def, att
		}
	}
	won := governingStat(choice, winner, def)
	effect := e.table.ClashEffect(won)
	log.add("%s wins the clash on %s: %s.", winner.Name, won, effect)
	e.clash = nil
	e.applyClashEffect(&log, winner, loser, effect)
	log.add("CLASH END")
	e.logger.Debug("clash resolved",
		zap.String("choice", string(choice)),
		zap.Stringer("stat", stat),
		zap.String("winner", winner.Name),
		zap.Stringer("winner_stat", won),
		zap.String("effect", string(effect.Kind)),
	)
	return log, nil
}

// governingStat is the attribute the winner fought the clash with: the
// defender's armor attribute when it wins a DEFEND, otherwise the winner's
// weapon attribute.
func governingStat(choice Choice, winner, def *Combatant) rules.Attribute {
	if choice == Defend && winner == def {
		return def.Armor().Attribute
	}
	return winner.Weapon().Attribute
}

func chooser(choice Choice, att, def *Combatant) *Combatant {
	if choice == Defend {
		return def
	}
	return att
}

// awayFrom returns the unit step that moves b directly away from a.
func awayFrom(a, b Position) (int, int) {
	dx, dy := sign(b.X-a.X), sign(b.Y-a.Y)
	if dx == 0 && dy == 0 {
		return 1, 0
	}
	return dx, dy
}

func (e *Engine) applyClashEffect(log *Log, winner, loser *Combatant, eff rules.EffectDescriptor) {
	switch eff.Kind {
	case rules.EffectPushAdvance:
		dx, dy := awayFrom(winner.Position, loser.Position)
		moved, _ := e.displace(loser, dx, dy, eff.Cells())
		log.add("%s is driven back %d cell(s) to %s.", loser.Name, moved, loser.Position)
		if moved > 0 {
			e.approach(winner, loser, moved)
			log.add("%s presses forward to %s.", winner.Name, winner.Position)
		}

	case rules.EffectShove:
		dx, dy := awayFrom(winner.Position, loser.Position)
		moved, _ := e.displace(loser, dx, dy, eff.Cells())
		log.add("%s is shoved %d cell(s) to %s.", loser.Name, moved, loser.Position)

	case rules.EffectPull:
		e.approach(loser, winner, eff.Cells())
		log.add("%s is pulled to %s.", loser.Name, loser.Position)

	case rules.EffectSwap:
		winner.Position, loser.Position = loser.Position, winner.Position
		log.add("%s and %s trade places.", winner.Name, loser.Name)

	case rules.EffectFlank:
		dx, dy := awayFrom(winner.Position, loser.Position)
		target := Position{X: loser.Position.X + dx, Y: loser.Position.Y + dy}
		if !e.free(target, winner) {
			target = e.freeNeighbour(loser.Position, winner)
		}
		if target == loser.Position {
			log.add("%s finds no flanking position.", winner.Name)
			return
		}
		winner.Position = target
		log.add("%s slips around to flank %s at %s.", winner.Name, loser.Name, target)

	case rules.EffectDisarm, rules.EffectSlow, rules.EffectStumble:
		e.applyCondition(log, loser, eff.Condition, eff.Turns())

	case rules.EffectAdvantage:
		e.applyCondition(log, winner, eff.Condition, eff.Turns())

	case rules.EffectComposureDamage:
		n := e.rollEffect(eff)
		loser.Composure = max(loser.Composure-n, 0)
		log.add("%s loses %d composure (CMP %d/%d).", loser.Name, n, loser.Composure, loser.MaxComposure)
		if loser.Composure == 0 {
			e.applyCondition(log, loser, condition.Frightened, eff.Turns())
		}

	case rules.EffectHPDamage:
		e.damage(log, loser, e.rollEffect(eff), "the clash")

	case rules.EffectHazardPush:
		dx, dy := awayFrom(winner.Position, loser.Position)
		moved, blocked := e.displace(loser, dx, dy, eff.Cells())
		log.add("%s is thrown %d cell(s) to %s.", loser.Name, moved, loser.Position)
		switch {
		case e.grid.IsHazard(loser.Position):
			e.damage(log, loser, e.rollEffect(eff), "a hazard")
		case blocked:
			e.damage(log, loser, e.rollEffect(eff), "the impact")
		}

	default:
		e.logger.Warn("unhandled clash effect", zap.String("effect", string(eff.Kind)))
	}
}

// approach steps mover up to cells times toward target, stopping when
// adjacent or blocked.
func (e *Engine) approach(mover, target *Combatant, cells int) {
	for i := 0; i < cells; i++ {
		if Chebyshev(mover.Position, target.Position) <= 1 {
			return
		}
		next := Position{
			X: mover.Position.X + sign(target.Position.X-mover.Position.X),
			Y: mover.Position.Y + sign(target.Position.Y-mover.Position.Y),
		}
		if !e.free(next, mover) {
			return
		}
		mover.Position = next
	}
}

// freeNeighbour returns the first free cell around p scanning clockwise from
// north, or p itself when every neighbour is taken.
func (e *Engine) freeNeighbour(p Position, self *Combatant) Position {
	for _, d := range [...]Position{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}} {
		n := Position{X: p.X + d.X, Y: p.Y + d.Y}
		if n != self.Position && e.free(n, self) {
			return n
		}
	}
	return p
}

func (e *Engine) rollEffect(eff rules.EffectDescriptor) int {
	res, err := e.roller.RollExpr(eff.Dice)
	if err != nil {
		e.logger.Warn("clash effect dice", zap.String("dice", eff.Dice), zap.Error(err))
		return 1
	}
	return max(res.Total(), 0)
}
