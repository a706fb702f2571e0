package combat

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Engine is the authoritative state machine for one encounter.
//
// Engine is not safe for concurrent use; exactly one caller drives it.
type Engine struct {
	grid       Grid
	table      *rules.Table
	conditions *condition.Registry
	abilities  *ability.Registry
	src        dice.Source
	roller     *dice.Roller
	logger     *zap.Logger
	scripts    *scripting.Manager

	roster  []*Combatant
	order   []*Combatant
	turn    int
	round   int
	started bool
	clash   *Clash

	// scriptLog collects lines emitted by Lua hooks during one operation.
	scriptLog Log
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource injects the randomness source used for every roll.
func WithSource(src dice.Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithScripts attaches a Lua manager for ability hooks.
func WithScripts(m *scripting.Manager) Option {
	return func(e *Engine) { e.scripts = m }
}

// NewEngine creates an Engine over grid. Nil registries fall back to the
// built-in rule table, the built-in conditions and an empty ability set.
//
// Postcondition: Returns a non-nil Engine with an empty roster.
func NewEngine(grid Grid, table *rules.Table, conds *condition.Registry, abilities *ability.Registry, opts ...Option) *Engine {
	e := &Engine{
		grid:       grid,
		table:      table,
		conditions: conds,
		abilities:  abilities,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == nil {
		e.table = rules.Default()
	}
	if e.conditions == nil {
		e.conditions = condition.Builtin()
	}
	if e.abilities == nil {
		e.abilities = ability.NewRegistry()
	}
	if e.src == nil {
		e.src = dice.NewCryptoSource()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.roller = dice.NewLoggedRoller(e.src, e.logger)
	if e.scripts != nil {
		e.bindScripts()
	}
	return e
}

// Register adds c to the roster at (x, y).
//
// Precondition: c must not be nil.
// Postcondition: on success c is in the roster at (x, y) with an initialised
// condition set; on failure nothing changes.
func (e *Engine) Register(c *Combatant, x, y int) error {
	p := Position{X: x, Y: y}
	if !e.grid.InBounds(p) {
		return fmt.Errorf("registering %s at %s: %w", c.Name, p, ErrOutOfBounds)
	}
	if occ := e.OccupantAt(x, y); occ != nil {
		return fmt.Errorf("registering %s at %s held by %s: %w", c.Name, p, occ.Name, ErrOccupied)
	}
	for _, r := range e.roster {
		if r == c {
			return fmt.Errorf("registering %s: already registered", c.Name)
		}
	}
	if c.Conditions == nil {
		c.Conditions = condition.NewActiveSet()
	}
	c.Position = p
	e.roster = append(e.roster, c)
	if e.started {
		e.order = append(e.order, c)
	}
	e.logger.Debug("combatant registered",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
		zap.Stringer("kind", c.Kind),
		zap.Int("x", x),
		zap.Int("y", y),
	)
	return nil
}

// BeginEncounter rolls initiative (Speed/5 + d20) for every living combatant
// and fixes the turn order, highest first. Ties keep registration order.
//
// Postcondition: Round() == 1; ActiveCombatant() is the initiative leader.
func (e *Engine) BeginEncounter() Log {
	var log Log
	living := e.Living()
	for _, c := range living {
		roll := e.roller.D20(dice.Normal)
		c.Initiative = c.Speed/5 + roll
		log.add("%s rolls initiative: %d (d20 %d + %d)", c.Name, c.Initiative, roll, c.Speed/5)
	}
	sort.SliceStable(living, func(i, j int) bool {
		return living[i].Initiative > living[j].Initiative
	})
	e.order = living
	e.turn = 0
	e.round = 1
	e.started = true
	e.clash = nil
	if len(living) == 0 {
		log.add("No combatants are able to fight.")
		return log
	}
	log.add("Round 1 begins. %s acts first.", living[0].Name)
	e.logger.Info("encounter started", zap.Int("combatants", len(living)))
	return log
}

// ActiveCombatant returns the current turn-holder, or nil when the encounter
// has not begun or nobody is alive.
func (e *Engine) ActiveCombatant() *Combatant {
	n := len(e.order)
	for k := 0; k < n; k++ {
		c := e.order[(e.turn+k)%n]
		if c.IsAlive() {
			return c
		}
	}
	return nil
}

// StartTurn resets c's movement budget to its effective speed and reports
// whether c may act. Stunned or paralyzed combatants lose the turn.
//
// Postcondition: c.Movement == c.EffectiveSpeed() when c is alive.
func (e *Engine) StartTurn(c *Combatant) (bool, string) {
	if !c.IsAlive() {
		return false, fmt.Sprintf("%s is down.", c.Name)
	}
	c.Movement = c.EffectiveSpeed()
	if id := c.incapacitation(); id != "" {
		c.Movement = 0
		return false, fmt.Sprintf("%s is %s and loses the turn.", c.Name, id)
	}
	return true, ""
}

// EndTurn ticks the ending combatant's timed effects and passes the turn to
// the next living combatant, wrapping to a new round. It refuses to advance
// while a clash is open.
func (e *Engine) EndTurn() Log {
	var log Log
	if e.clash != nil {
		log.add("The clash between %s and %s must be resolved first.", e.clash.Attacker.Name, e.clash.Defender.Name)
		return log
	}
	n := len(e.order)
	if n == 0 {
		log.add("No encounter in progress.")
		return log
	}
	ending := e.order[e.turn%n]
	for _, id := range ending.Conditions.Tick() {
		log.add("%s is no longer %s.", ending.Name, id)
	}

	for k := 1; k <= n; k++ {
		idx := (e.turn + k) % n
		if !e.order[idx].IsAlive() {
			continue
		}
		if idx <= e.turn {
			e.round++
			log.add("Round %d begins.", e.round)
		}
		e.turn = idx
		log.add("It is %s's turn.", e.order[idx].Name)
		break
	}
	if e.EncounterOver() {
		if k, ok := e.Winner(); ok {
			log.add("The encounter is over: the %s side stands.", k)
		} else {
			log.add("The encounter is over: nobody stands.")
		}
	}
	return log
}

// Round returns the current round number; 0 before BeginEncounter.
func (e *Engine) Round() int { return e.round }

// Grid returns the battlefield.
func (e *Engine) Grid() Grid { return e.grid }

// Table returns the rule table.
func (e *Engine) Table() *rules.Table { return e.table }

// Abilities returns the ability registry.
func (e *Engine) Abilities() *ability.Registry { return e.abilities }

// Roster returns every registered combatant in registration order,
// including the dead.
func (e *Engine) Roster() []*Combatant {
	out := make([]*Combatant, len(e.roster))
	copy(out, e.roster)
	return out
}

// TurnOrder returns the initiative order fixed by BeginEncounter.
func (e *Engine) TurnOrder() []*Combatant {
	out := make([]*Combatant, len(e.order))
	copy(out, e.order)
	return out
}

// Living returns registered combatants with HP > 0 in registration order.
func (e *Engine) Living() []*Combatant {
	var out []*Combatant
	for _, c := range e.roster {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// AliveCount returns the number of living combatants of kind k.
func (e *Engine) AliveCount(k Kind) int {
	n := 0
	for _, c := range e.roster {
		if c.Kind == k && c.IsAlive() {
			n++
		}
	}
	return n
}

// EncounterOver reports whether either side has no living combatants.
func (e *Engine) EncounterOver() bool {
	return e.AliveCount(KindPlayer) == 0 || e.AliveCount(KindNPC) == 0
}

// Winner returns the surviving side once the encounter is over.
func (e *Engine) Winner() (Kind, bool) {
	p, n := e.AliveCount(KindPlayer), e.AliveCount(KindNPC)
	switch {
	case p > 0 && n == 0:
		return KindPlayer, true
	case n > 0 && p == 0:
		return KindNPC, true
	}
	return 0, false
}

// OccupantAt returns the living combatant at (x, y), or nil.
func (e *Engine) OccupantAt(x, y int) *Combatant {
	for _, c := range e.roster {
		if c.IsAlive() && c.Position.X == x && c.Position.Y == y {
			return c
		}
	}
	return nil
}

// Distance returns the Euclidean distance between a and b in cells.
func (e *Engine) Distance(a, b *Combatant) float64 {
	return Euclidean(a.Position, b.Position)
}

// Find returns the registered combatant named name.
func (e *Engine) Find(name string) *Combatant {
	for _, c := range e.roster {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (e *Engine) registered(c *Combatant) bool {
	for _, r := range e.roster {
		if r == c {
			return true
		}
	}
	return false
}

func (e *Engine) isActive(c *Combatant) bool {
	return e.started && e.ActiveCombatant() == c
}

// applyCondition applies condition id to c. A timed condition applied to the
// combatant whose turn it is gains one turn so it survives the current
// turn's end.
func (e *Engine) applyCondition(log *Log, c *Combatant, id string, duration int) bool {
	def, ok := e.conditions.Get(id)
	if !ok {
		e.logger.Warn("unknown condition", zap.String("condition", id))
		log.add("(unknown condition %q ignored)", id)
		return false
	}
	if duration > 0 && e.isActive(c) {
		duration++
	}
	if err := c.Conditions.Apply(def, duration); err != nil {
		e.logger.Warn("applying condition", zap.String("condition", id), zap.Error(err))
		return false
	}
	log.add("%s is now %s.", c.Name, def.ID)
	return true
}

func (e *Engine) damage(log *Log, c *Combatant, n int, source string) {
	c.applyDamage(n)
	log.add("%s takes %d damage from %s (HP %d/%d).", c.Name, n, source, c.HP, c.MaxHP)
	if !c.IsAlive() {
		log.add("%s falls!", c.Name)
		e.logger.Info("combatant down", zap.String("name", c.Name), zap.Stringer("kind", c.Kind))
	}
}
