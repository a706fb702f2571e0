// Package ability defines the powers a combatant may activate in combat.
package ability

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Effect is the category of an ability's built-in consequence.
type Effect string

const (
	EffectDamage Effect = "damage"
	EffectHeal   Effect = "heal"
	EffectStatus Effect = "status"
)

// Target is who an ability may be aimed at.
type Target string

const (
	TargetEnemy Target = "enemy"
	TargetAlly  Target = "ally"
	TargetSelf  Target = "self"
)

// DefaultRange is the reach in cells of an ability with no declared range.
const DefaultRange = 1.5

// Cost is the resource price of one activation.
type Cost struct {
	Focus   int `yaml:"focus"`
	Stamina int `yaml:"stamina"`
}

// Def is the static definition of an ability loaded from YAML.
type Def struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Effect      Effect  `yaml:"effect"`
	Dice        string  `yaml:"dice"`
	Condition   string  `yaml:"condition"`
	Duration    int     `yaml:"duration"`
	Range       float64 `yaml:"range"`
	Target      Target  `yaml:"target"`
	Cost        Cost    `yaml:"cost"`
	// Script names a Lua function called as fn(actor, target) after the
	// built-in effect resolves.
	Script string `yaml:"script"`
}

// Reach returns the ability's range in cells.
func (d *Def) Reach() float64 {
	if d.Range <= 0 {
		return DefaultRange
	}
	return d.Range
}

// Turns returns the duration applied by status abilities.
func (d *Def) Turns() int {
	if d.Duration == 0 {
		return 1
	}
	return d.Duration
}

// TargetKind returns the declared target, defaulting to enemy for damage and
// status effects and ally for heals.
func (d *Def) TargetKind() Target {
	if d.Target != "" {
		return d.Target
	}
	if d.Effect == EffectHeal {
		return TargetAlly
	}
	return TargetEnemy
}

// IsHeal reports whether the ability restores hit points.
func (d *Def) IsHeal() bool { return d.Effect == EffectHeal }

// Validate checks that the Def satisfies its invariants.
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch d.Effect {
	case EffectDamage, EffectHeal:
		if _, err := dice.Parse(d.Dice); err != nil {
			errs = append(errs, fmt.Errorf("dice: %w", err))
		}
	case EffectStatus:
		if d.Condition == "" {
			errs = append(errs, errors.New("status ability requires condition"))
		}
		if d.Duration < -1 {
			errs = append(errs, errors.New("duration must be -1 or positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("effect %q must be damage, heal or status", d.Effect))
	}
	switch d.Target {
	case "", TargetEnemy, TargetAlly, TargetSelf:
	default:
		errs = append(errs, fmt.Errorf("target %q must be enemy, ally or self", d.Target))
	}
	if d.Cost.Focus < 0 || d.Cost.Stamina < 0 {
		errs = append(errs, errors.New("cost must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Registry holds ability definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Get(d.ID) returns d; returns error if d.ID already registered.
func (r *Registry) Register(d *Def) error {
	if _, exists := r.defs[d.ID]; exists {
		return fmt.Errorf("ability: Registry.Register: ID %q already registered", d.ID)
	}
	r.defs[d.ID] = d
	return nil
}

// Get returns the Def for id.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every Def ordered by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDir reads all *.yaml files from dir. Each file holds either a single
// ability or a list of abilities.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry or the first error encountered.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ability: reading %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		defs, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("ability: %q: %w", path, err)
			}
			if err := reg.Register(d); err != nil {
				return nil, fmt.Errorf("ability: %q: %w", path, err)
			}
		}
	}
	return reg, nil
}

func loadFile(path string) ([]*Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ability: reading %q: %w", path, err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("ability: parsing %q: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var defs []*Def
		if err := dec.Decode(&defs); err != nil {
			return nil, fmt.Errorf("ability: parsing %q: %w", path, err)
		}
		return defs, nil
	}
	var d Def
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("ability: parsing %q: %w", path, err)
	}
	return []*Def{&d}, nil
}
