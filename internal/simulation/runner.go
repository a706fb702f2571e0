// Package simulation runs AI-versus-AI encounters to completion.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

// DefaultMaxRounds bounds an encounter when no limit is configured.
const DefaultMaxRounds = 50

// Outcome labels how an encounter ended.
type Outcome string

const (
	OutcomeVictory   Outcome = "victory"   // one side stands
	OutcomeWipe      Outcome = "wipe"      // nobody stands
	OutcomeTimeout   Outcome = "timeout"   // round limit reached
	OutcomeCancelled Outcome = "cancelled" // context cancelled
)

// Summary is the record of one finished encounter.
type Summary struct {
	ID         uuid.UUID
	Name       string
	Outcome    Outcome
	Winner     string // combat.Kind name, empty unless Outcome is victory
	Rounds     int
	Survivors  []string
	Log        []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder persists encounter summaries.
type Recorder interface {
	Record(ctx context.Context, s *Summary) error
}

// Runner drives an engine whose combatants are all AI controlled.
type Runner struct {
	eng       *combat.Engine
	ctl       *ai.Controller
	name      string
	maxRounds int
	recorder  Recorder
	base      *zap.Logger
	logger    *zap.Logger // base tagged with the current encounter
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxRounds caps the number of rounds; values < 1 keep the default.
func WithMaxRounds(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxRounds = n
		}
	}
}

// WithName labels the encounter in its summary.
func WithName(name string) Option {
	return func(r *Runner) { r.name = name }
}

// WithRecorder persists every summary Run produces.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.base = l }
}

// NewRunner creates a Runner over a populated engine.
//
// Precondition: eng has every combatant registered and BeginEncounter has not
// been called; ctl drives eng.
func NewRunner(eng *combat.Engine, ctl *ai.Controller, opts ...Option) *Runner {
	r := &Runner{
		eng:       eng,
		ctl:       ctl,
		maxRounds: DefaultMaxRounds,
		base:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.base
	return r
}

// Behavior returns the behavior c plays this turn: its AI template when it
// names one, otherwise the state-based selection.
func Behavior(c *combat.Combatant) ai.Behavior {
	if c.AITemplate != "" {
		return ai.BehaviorForTemplate(c.AITemplate)
	}
	return ai.SelectBehavior(c)
}

// Run plays the encounter until one side is wiped out, the round limit is
// reached, or ctx is cancelled. The summary is returned in every case; the
// error is ctx.Err() on cancellation or the recorder's error.
//
// Postcondition: no clash is left open.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	s := &Summary{ID: uuid.New(), Name: r.name, StartedAt: time.Now().UTC()}
	r.logger = observability.ForEncounter(r.base, s.ID, r.name)
	s.Log = append(s.Log, r.eng.BeginEncounter()...)
	r.logger.Info("simulation started",
		zap.Int("combatants", len(r.eng.Roster())),
		zap.Int("max_rounds", r.maxRounds),
	)

	var runErr error
	for !r.eng.EncounterOver() {
		if err := ctx.Err(); err != nil {
			s.Outcome = OutcomeCancelled
			runErr = err
			break
		}
		if r.eng.Round() > r.maxRounds {
			s.Outcome = OutcomeTimeout
			s.Log = append(s.Log, fmt.Sprintf("The encounter is called after %d rounds.", r.maxRounds))
			break
		}
		c := r.eng.ActiveCombatant()
		if c == nil {
			break
		}
		s.Log = append(s.Log, r.turn(c)...)
	}

	r.finish(s)
	if runErr != nil {
		return s, runErr
	}
	if r.recorder != nil {
		if err := r.recorder.Record(ctx, s); err != nil {
			return s, fmt.Errorf("recording encounter %s: %w", s.ID, err)
		}
	}
	return s, nil
}

func (r *Runner) turn(c *combat.Combatant) combat.Log {
	var log combat.Log
	if ok, reason := r.eng.StartTurn(c); !ok {
		log = append(log, reason)
	} else {
		b := Behavior(c)
		r.logger.Debug("turn",
			zap.Int("round", r.eng.Round()),
			zap.String("combatant", c.Name),
			zap.Stringer("behavior", b),
		)
		log = append(log, r.ctl.TakeTurn(c, b)...)
	}
	if r.eng.ClashActive() {
		l, _ := r.eng.ResolveClash(combat.Press)
		log = append(log, l...)
	}
	return append(log, r.eng.EndTurn()...)
}

func (r *Runner) finish(s *Summary) {
	s.Rounds = min(r.eng.Round(), r.maxRounds)
	s.FinishedAt = time.Now().UTC()
	for _, c := range r.eng.Living() {
		s.Survivors = append(s.Survivors, c.Name)
	}
	if s.Outcome == "" {
		if k, ok := r.eng.Winner(); ok {
			s.Outcome = OutcomeVictory
			s.Winner = k.String()
		} else {
			s.Outcome = OutcomeWipe
		}
	}
	r.logger.Info("simulation finished",
		zap.String("outcome", string(s.Outcome)),
		zap.String("winner", s.Winner),
		zap.Int("rounds", s.Rounds),
		zap.Strings("survivors", s.Survivors),
	)
}
