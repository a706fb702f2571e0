// Package setup loads content from configuration and assembles encounters.
package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/roster"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Content is every rule and catalogue an encounter draws on.
type Content struct {
	Table      *rules.Table
	Conditions *condition.Registry
	Abilities  *ability.Registry
	Inventory  *inventory.Registry
	// ScriptDir is the Lua hook directory; empty when none is configured.
	ScriptDir string
}

// LoadContent reads the rule table and catalogues named in cfg. A configured
// path that does not exist falls back to the built-in or empty default with
// a warning; a path that exists but fails to load is an error.
//
// Postcondition: every field of the result is non-nil except ScriptDir.
func LoadContent(cfg config.Config, logger *zap.Logger) (*Content, error) {
	c := &Content{
		Table:      rules.Default(),
		Conditions: condition.Builtin(),
		Abilities:  ability.NewRegistry(),
		Inventory:  inventory.NewRegistry(),
	}
	var err error

	if p := present(cfg.Rules.Table, "rules.table", logger); p != "" {
		if c.Table, err = rules.LoadFile(p); err != nil {
			return nil, fmt.Errorf("loading rule table: %w", err)
		}
	}
	if p := present(cfg.Content.Conditions, "content.conditions", logger); p != "" {
		if c.Conditions, err = condition.LoadFile(p); err != nil {
			return nil, fmt.Errorf("loading conditions: %w", err)
		}
	}
	if p := present(cfg.Content.Abilities, "content.abilities", logger); p != "" {
		if c.Abilities, err = ability.LoadDir(p); err != nil {
			return nil, fmt.Errorf("loading abilities: %w", err)
		}
	}
	weapons := present(cfg.Content.Weapons, "content.weapons", logger)
	armor := present(cfg.Content.Armor, "content.armor", logger)
	if c.Inventory, err = inventory.LoadRegistry(weapons, armor); err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}
	c.ScriptDir = present(cfg.Content.Scripts, "content.scripts", logger)

	logger.Info("content loaded",
		zap.Int("outcomes", len(c.Table.Entries())),
		zap.Int("conditions", len(c.Conditions.All())),
		zap.Int("abilities", len(c.Abilities.All())),
		zap.Int("weapons", len(c.Inventory.AllWeapons())),
	)
	return c, nil
}

// present returns path when it exists and "" otherwise.
func present(path, key string, logger *zap.Logger) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("configured content path missing, using defaults", zap.String("key", key), zap.String("path", path))
		return ""
	}
	return path
}

// Source returns a seeded source for a non-zero seed and crypto/rand
// otherwise.
func Source(seed uint64) dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(seed)
}

// Encounter is an engine populated from an encounter file together with the
// controller that plays it.
type Encounter struct {
	Name       string
	Engine     *combat.Engine
	Controller *ai.Controller
	Scripts    *scripting.Manager // nil without a script directory
}

// Close releases the Lua VM if one was created.
func (e *Encounter) Close() {
	if e.Scripts != nil {
		e.Scripts.Close()
	}
}

// Build registers enc's combatants on a new engine. The grid comes from the
// encounter file when it has one and from cfg otherwise.
//
// Postcondition: on success the caller must Close the result.
func Build(content *Content, enc *roster.Encounter, cfg config.Config, src dice.Source, logger *zap.Logger) (*Encounter, error) {
	grid := gridFromConfig(cfg.Grid)
	if enc.Grid != nil {
		grid = enc.Grid.Grid()
	}

	opts := []combat.Option{combat.WithSource(src), combat.WithLogger(logger)}
	var scripts *scripting.Manager
	if content.ScriptDir != "" {
		scripts = scripting.NewManager(dice.NewLoggedRoller(src, logger), logger)
		scripts.SetInstructionLimit(cfg.Scripting.InstructionLimit)
		if err := scripts.LoadDir(content.ScriptDir); err != nil {
			scripts.Close()
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
		for _, def := range content.Abilities.All() {
			if def.Script != "" && !scripts.HasHook(def.Script) {
				logger.Warn("ability names undefined script hook", zap.String("ability", def.ID), zap.String("hook", def.Script))
			}
		}
		opts = append(opts, combat.WithScripts(scripts))
	}

	eng := combat.NewEngine(grid, content.Table, content.Conditions, content.Abilities, opts...)
	fail := func(err error) (*Encounter, error) {
		if scripts != nil {
			scripts.Close()
		}
		return nil, err
	}

	combatants, err := roster.Build(enc.Combatants, content.Inventory)
	if err != nil {
		return fail(fmt.Errorf("building roster: %w", err))
	}
	for _, c := range combatants {
		for _, id := range c.Powers {
			if _, ok := content.Abilities.Get(id); !ok {
				logger.Warn("combatant knows unregistered ability", zap.String("combatant", c.Name), zap.String("ability", id))
			}
		}
		if len(c.Loadout.Defaulted) > 0 {
			logger.Debug("loadout defaulted", zap.String("combatant", c.Name), zap.Strings("slots", c.Loadout.Defaulted))
		}
		if err := eng.Register(c, c.Position.X, c.Position.Y); err != nil {
			return fail(fmt.Errorf("placing %s: %w", c.Name, err))
		}
	}
	return &Encounter{
		Name:       enc.Name,
		Engine:     eng,
		Controller: ai.NewController(eng, src, logger),
		Scripts:    scripts,
	}, nil
}

func gridFromConfig(g config.GridConfig) combat.Grid {
	hazards := make([]combat.Position, len(g.Hazards))
	for i, h := range g.Hazards {
		hazards[i] = combat.Position{X: h.X, Y: h.Y}
	}
	return combat.NewGrid(g.Width, g.Height, hazards...)
}
