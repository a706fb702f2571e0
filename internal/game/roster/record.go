// Package roster loads encounter definitions and builds combatants from them.
package roster

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// DefaultSpeed is the movement allowance given to records that omit speed.
const DefaultSpeed = 30

// Record is the flat setup description of one combatant.
type Record struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Kind         string         `yaml:"kind"`
	Attributes   map[string]int `yaml:"attributes"`
	HP           int            `yaml:"hp"`
	MaxHP        int            `yaml:"max_hp"`
	Composure    int            `yaml:"composure"`
	MaxComposure int            `yaml:"max_composure"`
	Stamina      int            `yaml:"stamina"`
	Focus        int            `yaml:"focus"`
	Speed        int            `yaml:"speed"`
	Inventory    []string       `yaml:"inventory"`
	Powers       []string       `yaml:"powers"`
	Skills       map[string]int `yaml:"skills"`
	AITemplate   string         `yaml:"ai_template"`
	X            int            `yaml:"x"`
	Y            int            `yaml:"y"`
}

// Validate checks r.
//
// Precondition: r must not be nil.
// Postcondition: Returns nil iff Name is non-empty, Kind parses, MaxHP >= 1,
// 0 <= HP <= MaxHP, every attribute name is known and X, Y >= 0.
func (r *Record) Validate() error {
	if r.Name == "" {
		return errors.New("roster record: name must not be empty")
	}
	if _, ok := combat.ParseKind(r.Kind); !ok {
		return fmt.Errorf("roster record %q: unknown kind %q", r.Name, r.Kind)
	}
	if r.MaxHP < 1 {
		return fmt.Errorf("roster record %q: max_hp must be >= 1", r.Name)
	}
	if r.HP < 0 || r.HP > r.MaxHP {
		return fmt.Errorf("roster record %q: hp %d outside 0..%d", r.Name, r.HP, r.MaxHP)
	}
	for name := range r.Attributes {
		if _, ok := rules.ParseAttribute(name); !ok {
			return fmt.Errorf("roster record %q: unknown attribute %q", r.Name, name)
		}
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("roster record %q: position (%d,%d) must not be negative", r.Name, r.X, r.Y)
	}
	return nil
}

// Cell is a grid coordinate in an encounter file.
type Cell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// GridSpec overrides the configured battlefield.
type GridSpec struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Hazards []Cell `yaml:"hazards"`
}

// Grid builds the engine grid described by g.
func (g *GridSpec) Grid() combat.Grid {
	hazards := make([]combat.Position, len(g.Hazards))
	for i, h := range g.Hazards {
		hazards[i] = combat.Position{X: h.X, Y: h.Y}
	}
	return combat.NewGrid(g.Width, g.Height, hazards...)
}

// Encounter is one encounter file.
type Encounter struct {
	Name       string    `yaml:"name"`
	Grid       *GridSpec `yaml:"grid"`
	Combatants []Record  `yaml:"combatants"`
}

// Validate checks every record and that names are unique. It does not check
// positions against a grid.
func (e *Encounter) Validate() error {
	if len(e.Combatants) == 0 {
		return errors.New("encounter: no combatants")
	}
	if e.Grid != nil && (e.Grid.Width < 1 || e.Grid.Height < 1) {
		return fmt.Errorf("encounter: grid %dx%d must be at least 1x1", e.Grid.Width, e.Grid.Height)
	}
	seen := make(map[string]bool, len(e.Combatants))
	for i := range e.Combatants {
		r := &e.Combatants[i]
		if err := r.Validate(); err != nil {
			return fmt.Errorf("encounter combatant %d: %w", i, err)
		}
		if seen[r.Name] {
			return fmt.Errorf("encounter: duplicate combatant name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Parse decodes and validates an encounter from raw YAML.
//
// Postcondition: Returns a validated *Encounter with defaults applied, or an
// error.
func Parse(data []byte) (*Encounter, error) {
	var enc Encounter
	if err := yaml.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("parsing encounter YAML: %w", err)
	}
	for i := range enc.Combatants {
		applyDefaults(&enc.Combatants[i])
	}
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	return &enc, nil
}

// LoadFile reads an encounter file.
func LoadFile(path string) (*Encounter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading encounter %q: %w", path, err)
	}
	enc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading encounter %q: %w", path, err)
	}
	return enc, nil
}

// applyDefaults fills omitted pools: hp and composure start full and speed
// falls back to DefaultSpeed.
func applyDefaults(r *Record) {
	if r.HP == 0 {
		r.HP = r.MaxHP
	}
	if r.MaxComposure == 0 {
		r.MaxComposure = r.Composure
	}
	if r.Composure == 0 {
		r.Composure = r.MaxComposure
	}
	if r.Speed == 0 {
		r.Speed = DefaultSpeed
	}
}
