package ai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

const (
	// ForcedAbilityChance is the ability draw probability for casters,
	// spellblades and campers.
	ForcedAbilityChance = 70
	// AbilityChance is the ability draw probability for everyone else.
	AbilityChance = 30

	// SpellRange is the notional casting distance a Caster keeps, in cells.
	SpellRange = 6.0
	// SpellMinRange is the distance a Caster retreats from, in cells.
	SpellMinRange = 4.0
	// CamperCutoff is the distance beyond which a Camper does not cast.
	CamperCutoff = 10.0
	// LongRange is the optimal range above which a Ranged combatant backs off.
	LongRange = 5.0
	// RetreatDistance is the distance a long-range combatant backs off to.
	RetreatDistance = 3.0
)

// Engine is the part of the combat engine a Controller drives. It is the
// same contract a human driver uses.
type Engine interface {
	Roster() []*combat.Combatant
	Grid() combat.Grid
	Abilities() *ability.Registry
	Distance(a, b *combat.Combatant) float64
	InRange(attacker, defender *combat.Combatant) bool
	Move(c *combat.Combatant, x, y int) (combat.Log, error)
	Attack(attacker, defender *combat.Combatant) (combat.Log, error)
	ActivateAbility(c *combat.Combatant, id string, target *combat.Combatant) (combat.Log, error)
	ClashActive() bool
	ResolveClash(choice combat.Choice) (combat.Log, error)
}

// Controller plays non-player combatants.
type Controller struct {
	eng    Engine
	roller *dice.Roller
	logger *zap.Logger
}

// NewController creates a Controller driving eng with draws from src.
//
// Precondition: eng, src and logger must be non-nil.
func NewController(eng Engine, src dice.Source, logger *zap.Logger) *Controller {
	return &Controller{
		eng:    eng,
		roller: dice.NewLoggedRoller(src, logger),
		logger: logger,
	}
}

// turn carries one combatant's turn in progress.
type turn struct {
	c        *combat.Combatant
	behavior Behavior
	ws       *WorldState
	target   *combat.Combatant
	log      combat.Log
	acted    bool
}

func (t *turn) append(l combat.Log) { t.log = append(t.log, l...) }

func (t *turn) note(format string, args ...any) {
	t.log = append(t.log, fmt.Sprintf(format, args...))
}

// TakeTurn runs behavior for c and returns everything logged along the way.
// The caller is expected to have started c's turn on the engine.
//
// Postcondition: at most one ability and one attack are attempted, and any
// clash the turn opens is resolved before returning.
func (ctl *Controller) TakeTurn(c *combat.Combatant, behavior Behavior) combat.Log {
	t := &turn{
		c:        c,
		behavior: behavior,
		ws:       BuildWorldState(ctl.eng.Roster(), c),
	}
	if nearest := t.ws.NearestEnemy(); nearest != nil {
		t.target = nearest.Combatant()
	}
	ctl.logger.Debug("ai turn",
		zap.String("combatant", c.Name),
		zap.Stringer("behavior", behavior),
		zap.Int("movement", c.Movement),
	)

	if t.target == nil && behavior != Fleeing {
		t.note("%s has no hostile to act against.", c.Name)
		return t.log
	}

	switch behavior {
	case Ranged:
		ctl.ranged(t)
	case Camper:
		ctl.camper(t)
	case Fleeing:
		ctl.flee(t)
	case Caster:
		ctl.caster(t)
	case Spellblade:
		ctl.spellblade(t)
	default:
		ctl.aggressive(t)
	}
	ctl.logger.Debug("ai turn complete",
		zap.String("combatant", c.Name),
		zap.Bool("acted", t.acted),
		zap.Int("movement_left", c.Movement),
	)

	if ctl.eng.ClashActive() {
		l, err := ctl.eng.ResolveClash(clashChoice(behavior))
		t.append(l)
		if err != nil {
			ctl.logger.Warn("clash resolution rejected", zap.String("combatant", c.Name), zap.Error(err))
		}
	}
	return t.log
}

func (ctl *Controller) aggressive(t *turn) {
	ctl.moveTowards(t, t.target, inventory.MeleeRange)
	ctl.act(t, false)
}

func (ctl *Controller) ranged(t *turn) {
	optimal := OptimalRange(t.c)
	d := ctl.eng.Distance(t.c, t.target)
	switch {
	case d > optimal:
		ctl.moveTowards(t, t.target, optimal)
	case optimal > LongRange && d < RetreatDistance:
		ctl.moveAway(t, t.target, RetreatDistance)
	}
	ctl.act(t, false)
}

func (ctl *Controller) camper(t *turn) {
	if ctl.eng.Distance(t.c, t.target) <= CamperCutoff {
		ctl.act(t, true)
		return
	}
	ctl.attackOrWait(t)
}

func (ctl *Controller) flee(t *turn) {
	if t.target == nil {
		t.note("%s cowers with nothing to flee from.", t.c.Name)
		return
	}
	ctl.moveAway(t, t.target, unbounded)
}

func (ctl *Controller) caster(t *turn) {
	if ctl.support(t) {
		return
	}
	d := ctl.eng.Distance(t.c, t.target)
	switch {
	case d > SpellRange:
		ctl.moveTowards(t, t.target, SpellRange)
	case d < SpellMinRange:
		ctl.moveAway(t, t.target, SpellMinRange)
	}
	ctl.act(t, true)
}

func (ctl *Controller) spellblade(t *turn) {
	if ctl.support(t) {
		return
	}
	ctl.moveTowards(t, t.target, inventory.MeleeRange)
	ctl.act(t, true)
}

// act tries a drawn ability, then falls back to a weapon attack.
func (ctl *Controller) act(t *turn, forced bool) {
	if def := ctl.DecideAbility(t.c, forced); def != nil && ctl.useAbility(t, def) {
		return
	}
	ctl.attackOrWait(t)
}

func (ctl *Controller) attackOrWait(t *turn) {
	if !ctl.eng.InRange(t.c, t.target) {
		t.note("%s cannot reach %s and waits.", t.c.Name, t.target.Name)
		return
	}
	l, err := ctl.eng.Attack(t.c, t.target)
	t.append(l)
	if err != nil {
		ctl.logger.Debug("attack rejected", zap.String("combatant", t.c.Name), zap.Error(err))
		return
	}
	t.acted = true
}

// DecideAbility draws whether c uses an ability this turn and which one.
// It returns nil when no ability is drawn.
//
// Postcondition: the probability of a non-nil result is 70% when forced and
// 30% otherwise, spread uniformly over c's known abilities.
func (ctl *Controller) DecideAbility(c *combat.Combatant, forced bool) *ability.Def {
	if len(c.Powers) == 0 {
		return nil
	}
	chance := AbilityChance
	if forced {
		chance = ForcedAbilityChance
	}
	if !ctl.roller.Chance(chance) {
		return nil
	}
	id := c.Powers[ctl.roller.Intn(len(c.Powers))]
	def, ok := ctl.eng.Abilities().Get(id)
	if !ok {
		ctl.logger.Warn("combatant knows unregistered ability", zap.String("combatant", c.Name), zap.String("ability", id))
		return nil
	}
	return def
}

// useAbility points def at a sensible target and activates it. It reports
// whether the ability went off.
func (ctl *Controller) useAbility(t *turn, def *ability.Def) bool {
	target := t.target
	switch def.TargetKind() {
	case ability.TargetSelf:
		target = t.c
	case ability.TargetAlly:
		target = t.c
		if def.IsHeal() && t.c.HP >= t.c.MaxHP {
			t.note("%s has no need for %s.", t.c.Name, def.Name)
			return false
		}
	}
	l, err := ctl.eng.ActivateAbility(t.c, def.ID, target)
	t.append(l)
	if err != nil {
		ctl.logger.Debug("ability rejected",
			zap.String("combatant", t.c.Name),
			zap.String("ability", def.ID),
			zap.Error(err),
		)
		return false
	}
	t.acted = true
	return true
}

// support heals the most endangered ally in reach, self included. It
// reports whether a heal was cast.
func (ctl *Controller) support(t *turn) bool {
	heals := ctl.healingAbilities(t.c)
	if len(heals) == 0 {
		return false
	}
	for _, ally := range t.ws.AlliesInDanger(FleeThreshold) {
		for _, def := range heals {
			if ctl.eng.Distance(t.c, ally.Combatant()) > def.Reach() {
				continue
			}
			l, err := ctl.eng.ActivateAbility(t.c, def.ID, ally.Combatant())
			t.append(l)
			if err == nil {
				t.acted = true
				return true
			}
		}
	}
	return false
}

func (ctl *Controller) healingAbilities(c *combat.Combatant) []*ability.Def {
	var out []*ability.Def
	for _, id := range c.Powers {
		def, ok := ctl.eng.Abilities().Get(id)
		if ok && def.IsHeal() && combat.CanAfford(c, def) {
			out = append(out, def)
		}
	}
	return out
}
