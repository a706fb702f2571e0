// Package condition models status flags and timed effects on combatants.
//
// A ConditionDef is static data; an ActiveSet holds the conditions currently
// applied to one combatant as a single map from condition ID to remaining
// duration. Status flags are derived from that map and never stored apart
// from it.
package condition

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// The closed set of status flags.
const (
	Stunned    = "stunned"
	Paralyzed  = "paralyzed"
	Prone      = "prone"
	Restrained = "restrained"
	Blinded    = "blinded"
	Frightened = "frightened"
	Charmed    = "charmed"
	Poisoned   = "poisoned"
	Confused   = "confused"
	Berserk    = "berserk"
	Sanctuary  = "sanctuary"
	Grappled   = "grappled"
)

// Timed effects produced by clashes that carry no status flag.
const (
	Slowed     = "slowed"
	Emboldened = "emboldened"
	Disarmed   = "disarmed"
)

// Flags lists every status flag.
func Flags() []string {
	return []string{
		Stunned, Paralyzed, Prone, Restrained, Blinded, Frightened,
		Charmed, Poisoned, Confused, Berserk, Sanctuary, Grappled,
	}
}

// IsFlag reports whether name is one of the twelve status flags.
func IsFlag(name string) bool {
	for _, f := range Flags() {
		if f == name {
			return true
		}
	}
	return false
}

// RollMode is how a condition biases a d20 roll.
type RollMode string

const (
	RollNormal       RollMode = ""
	RollAdvantage    RollMode = "advantage"
	RollDisadvantage RollMode = "disadvantage"
)

// ConditionDef is the static definition of a condition.
type ConditionDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Flag is the status flag this condition raises; empty means none.
	Flag string `yaml:"flag"`
	// BlocksActions consumes the owner's turn without granting actions.
	BlocksActions bool `yaml:"blocks_actions"`
	// AttackMode biases the owner's own attack rolls.
	AttackMode RollMode `yaml:"attack_mode"`
	// DefenseMode biases attack rolls made against the owner.
	DefenseMode RollMode `yaml:"defense_mode"`
	// SpeedPenalty is subtracted from the owner's Speed at turn start.
	SpeedPenalty int `yaml:"speed_penalty"`
	// ConsumedOnAttack removes the condition after the owner's next attack.
	ConsumedOnAttack bool `yaml:"consumed_on_attack"`
	// Disarms makes the owner fight with the unarmed profile.
	Disarms bool `yaml:"disarms"`
}

// Validate checks the definition's invariants.
func (d *ConditionDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("condition: id must not be empty")
	}
	if d.Flag != "" && !IsFlag(d.Flag) {
		return fmt.Errorf("condition %q: flag %q is not a status flag", d.ID, d.Flag)
	}
	for _, m := range []RollMode{d.AttackMode, d.DefenseMode} {
		if m != RollNormal && m != RollAdvantage && m != RollDisadvantage {
			return fmt.Errorf("condition %q: roll mode %q must be advantage or disadvantage", d.ID, m)
		}
	}
	if d.SpeedPenalty < 0 {
		return fmt.Errorf("condition %q: speed_penalty must be >= 0", d.ID)
	}
	return nil
}

// Registry holds ConditionDefs keyed by ID.
type Registry struct {
	defs map[string]*ConditionDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ConditionDef)}
}

// Register adds def, overwriting any entry with the same ID.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *ConditionDef) {
	r.defs[def.ID] = def
}

// Get returns the ConditionDef for id.
func (r *Registry) Get(id string) (*ConditionDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns the registered definitions ordered by ID.
func (r *Registry) All() []*ConditionDef {
	out := make([]*ConditionDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Builtin returns a Registry with the twelve status flags and the clash
// effects the default rule table references.
func Builtin() *Registry {
	r := NewRegistry()
	for _, d := range []*ConditionDef{
		{ID: Stunned, Name: "Stunned", Flag: Stunned, BlocksActions: true},
		{ID: Paralyzed, Name: "Paralyzed", Flag: Paralyzed, BlocksActions: true, DefenseMode: RollAdvantage},
		{ID: Prone, Name: "Prone", Flag: Prone, DefenseMode: RollAdvantage},
		{ID: Restrained, Name: "Restrained", Flag: Restrained, DefenseMode: RollAdvantage, SpeedPenalty: 999},
		{ID: Blinded, Name: "Blinded", Flag: Blinded, AttackMode: RollDisadvantage},
		{ID: Frightened, Name: "Frightened", Flag: Frightened, AttackMode: RollDisadvantage},
		{ID: Charmed, Name: "Charmed", Flag: Charmed},
		{ID: Poisoned, Name: "Poisoned", Flag: Poisoned},
		{ID: Confused, Name: "Confused", Flag: Confused},
		{ID: Berserk, Name: "Berserk", Flag: Berserk},
		{ID: Sanctuary, Name: "Sanctuary", Flag: Sanctuary},
		{ID: Grappled, Name: "Grappled", Flag: Grappled, SpeedPenalty: 999},
		{ID: Slowed, Name: "Slowed", SpeedPenalty: 10},
		{ID: Emboldened, Name: "Emboldened", AttackMode: RollAdvantage, ConsumedOnAttack: true},
		{ID: Disarmed, Name: "Disarmed", Disarms: true},
	} {
		r.Register(d)
	}
	return r
}

// LoadFile reads a YAML list of ConditionDefs and registers them over the
// built-in set.
//
// Postcondition: returns a Registry containing Builtin() plus the file's
// definitions, or an error if any definition fails to parse or validate.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading conditions %q: %w", path, err)
	}
	var defs []*ConditionDef
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("parsing conditions %q: %w", path, err)
	}
	reg := Builtin()
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("conditions %q: %w", path, err)
		}
		reg.Register(d)
	}
	return reg, nil
}
