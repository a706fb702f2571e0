package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// DefaultArmorAttribute governs defense rolls when no armor resolves or the
// armor group is unknown.
const DefaultArmorAttribute = rules.Reflexes

// armorGroups maps armor group to the attribute that governs defense.
var armorGroups = map[string]rules.Attribute{
	"light":  rules.Reflexes,
	"medium": rules.Endurance,
	"heavy":  rules.Fortitude,
	"shield": rules.Might,
}

// GroupAttribute returns the defending attribute for an armor group.
//
// Postcondition: unknown groups return DefaultArmorAttribute and ok=false.
func GroupAttribute(group string) (rules.Attribute, bool) {
	a, ok := armorGroups[strings.ToLower(strings.TrimSpace(group))]
	if !ok {
		return DefaultArmorAttribute, false
	}
	return a, true
}

// ArmorDef defines the static properties of an armor piece loaded from YAML.
type ArmorDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Group       string `yaml:"group"`
	Skill       string `yaml:"skill"`
}

// DefendingAttribute returns the attribute governing defense rolls.
func (a *ArmorDef) DefendingAttribute() rules.Attribute {
	attr, _ := GroupAttribute(a.Group)
	return attr
}

// Validate reports an error if the ArmorDef is missing required fields.
// Precondition: def is non-nil.
// Postcondition: Returns nil iff the def is well-formed.
func (a *ArmorDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadArmors reads all *.yaml files from dir and returns the parsed ArmorDefs.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all valid ArmorDefs or the first error encountered.
func LoadArmors(dir string) ([]*ArmorDef, error) {
	var armors []*ArmorDef
	err := walkYAML(dir, func(path string, data []byte) error {
		var a ArmorDef
		if err := decodeStrict(data, &a); err != nil {
			return fmt.Errorf("LoadArmors: cannot parse file %q: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("LoadArmors: invalid armor in %q: %w", path, err)
		}
		armors = append(armors, &a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return armors, nil
}
