// Package inventory provides definitions and loaders for weapons and armor,
// and resolves a combatant's carried item IDs into the modifiers the combat
// engine consumes.
package inventory

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

const (
	// FeetPerCell is the number of distance units covered by one grid cell.
	FeetPerCell = 5
	// MeleeRange is the range in cells of a weapon with no range property.
	MeleeRange = 1.5
	// ReachRange is the range in cells of a weapon with the reach property.
	ReachRange = 2.0
)

// DefaultWeaponAttribute governs attacks with weapons whose attribute is
// missing or unrecognised.
const DefaultWeaponAttribute = rules.Might

// WeaponDef defines the static properties of a weapon loaded from YAML.
type WeaponDef struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	DamageDice string   `yaml:"damage_dice"`
	Attribute  string   `yaml:"attribute"`
	Skill      string   `yaml:"skill"`
	Properties []string `yaml:"properties"` // e.g. "reach", "range 80/320", "finesse"
}

// Range returns the weapon's maximum effective range in cells.
//
// A "range N" or "range N/M" property yields N/5 cells, "reach" yields 2 and
// anything else is melee range.
// Postcondition: Returns a value >= MeleeRange.
func (w *WeaponDef) Range() float64 {
	best := 0.0
	for _, p := range w.Properties {
		if r, ok := parseRange(p); ok && r > best {
			best = r
		}
	}
	if best > 0 {
		return best
	}
	for _, p := range w.Properties {
		if strings.EqualFold(strings.TrimSpace(p), "reach") {
			return ReachRange
		}
	}
	return MeleeRange
}

// GoverningAttribute returns the attribute used for attack rolls, falling
// back to DefaultWeaponAttribute.
func (w *WeaponDef) GoverningAttribute() rules.Attribute {
	if a, ok := rules.ParseAttribute(w.Attribute); ok {
		return a
	}
	return DefaultWeaponAttribute
}

func parseRange(prop string) (float64, bool) {
	fields := strings.Fields(strings.ToLower(prop))
	if len(fields) != 2 || fields[0] != "range" {
		return 0, false
	}
	normal, _, _ := strings.Cut(fields[1], "/")
	n, err := strconv.Atoi(normal)
	if err != nil || n <= 0 {
		return 0, false
	}
	return float64(n) / FeetPerCell, true
}

// Validate checks that the WeaponDef satisfies its invariants.
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, err := dice.Parse(w.DamageDice); err != nil {
		errs = append(errs, fmt.Errorf("damage_dice: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadWeapons reads all *.yaml files from dir, parses each as a WeaponDef,
// validates it, and returns the collected slice.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	var weapons []*WeaponDef
	err := walkYAML(dir, func(path string, data []byte) error {
		var w WeaponDef
		if err := decodeStrict(data, &w); err != nil {
			return fmt.Errorf("LoadWeapons: cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("LoadWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return weapons, nil
}

func walkYAML(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read file %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}
