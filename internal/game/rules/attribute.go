// Package rules holds the static rule vocabulary of the combat engine: the
// closed attribute set, the margin-to-outcome table and the per-attribute
// clash effect table. A Table is immutable once loaded.
package rules

import (
	"fmt"
	"strings"
)

// Attribute is one of the twelve fixed combatant attributes.
type Attribute int

const (
	Might Attribute = iota
	Reflexes
	Vitality
	Knowledge
	Willpower
	Finesse
	Endurance
	Fortitude
	Awareness
	Intuition
	Charm
	Logic
)

var attributeNames = [...]string{
	Might:     "might",
	Reflexes:  "reflexes",
	Vitality:  "vitality",
	Knowledge: "knowledge",
	Willpower: "willpower",
	Finesse:   "finesse",
	Endurance: "endurance",
	Fortitude: "fortitude",
	Awareness: "awareness",
	Intuition: "intuition",
	Charm:     "charm",
	Logic:     "logic",
}

// Attributes returns every attribute in declaration order.
func Attributes() []Attribute {
	out := make([]Attribute, len(attributeNames))
	for i := range attributeNames {
		out[i] = Attribute(i)
	}
	return out
}

// String returns the lower-case attribute name.
func (a Attribute) String() string {
	if a < 0 || int(a) >= len(attributeNames) {
		return fmt.Sprintf("attribute(%d)", int(a))
	}
	return attributeNames[a]
}

// Valid reports whether a is one of the twelve attributes.
func (a Attribute) Valid() bool {
	return a >= 0 && int(a) < len(attributeNames)
}

// ParseAttribute maps a case-insensitive name to an Attribute.
//
// Postcondition: ok is false for any name outside the closed set.
func ParseAttribute(name string) (Attribute, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range attributeNames {
		if s == n {
			return Attribute(i), true
		}
	}
	return 0, false
}

// UnmarshalText lets attributes appear as YAML scalars and map keys.
func (a *Attribute) UnmarshalText(text []byte) error {
	v, ok := ParseAttribute(string(text))
	if !ok {
		return fmt.Errorf("unknown attribute %q", string(text))
	}
	*a = v
	return nil
}

// MarshalText renders the attribute name.
func (a Attribute) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Modifier converts an attribute score to its roll modifier: floor((score-10)/2).
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}
