package rules

import (
	"fmt"
	"strings"
)

// EffectKind is the categorical consequence of winning a clash.
type EffectKind string

const (
	EffectPushAdvance     EffectKind = "push_advance"
	EffectDisarm          EffectKind = "disarm"
	EffectSwap            EffectKind = "swap"
	EffectComposureDamage EffectKind = "composure_damage"
	EffectPull            EffectKind = "pull"
	EffectFlank           EffectKind = "flank"
	EffectHPDamage        EffectKind = "hp_damage"
	EffectSlow            EffectKind = "slow"
	EffectHazardPush      EffectKind = "hazard_push"
	EffectStumble         EffectKind = "stumble"
	EffectAdvantage       EffectKind = "advantage"
	EffectShove           EffectKind = "shove"
)

var effectKinds = map[EffectKind]struct{}{
	EffectPushAdvance: {}, EffectDisarm: {}, EffectSwap: {}, EffectComposureDamage: {},
	EffectPull: {}, EffectFlank: {}, EffectHPDamage: {}, EffectSlow: {},
	EffectHazardPush: {}, EffectStumble: {}, EffectAdvantage: {}, EffectShove: {},
}

// EffectDescriptor describes a clash consequence and its parameters.
type EffectDescriptor struct {
	Kind      EffectKind `yaml:"effect"`
	Dice      string     `yaml:"dice"`      // damage dice for damage kinds
	Condition string     `yaml:"condition"` // condition applied by status kinds
	Duration  int        `yaml:"duration"`  // turns; 0 defaults to 1
	Distance  int        `yaml:"distance"`  // cells moved; 0 defaults to 1
}

// Shove is the generic effect for attributes without a configured entry.
var Shove = EffectDescriptor{Kind: EffectShove, Distance: 1}

// Validate checks the descriptor's kind and parameters.
func (d EffectDescriptor) Validate() error {
	if _, ok := effectKinds[d.Kind]; !ok {
		return fmt.Errorf("unknown clash effect %q", d.Kind)
	}
	switch d.Kind {
	case EffectComposureDamage, EffectHPDamage, EffectHazardPush:
		if d.Dice == "" {
			return fmt.Errorf("clash effect %q requires dice", d.Kind)
		}
	case EffectSlow, EffectStumble, EffectAdvantage, EffectDisarm:
		if d.Condition == "" {
			return fmt.Errorf("clash effect %q requires a condition", d.Kind)
		}
	}
	if d.Distance < 0 || d.Duration < -1 {
		return fmt.Errorf("clash effect %q has negative distance or duration", d.Kind)
	}
	return nil
}

// Turns returns the effect duration, defaulting to one turn.
func (d EffectDescriptor) Turns() int {
	if d.Duration == 0 {
		return 1
	}
	return d.Duration
}

// Cells returns the displacement distance, defaulting to one cell.
func (d EffectDescriptor) Cells() int {
	if d.Distance == 0 {
		return 1
	}
	return d.Distance
}

// String renders the descriptor for logs.
func (d EffectDescriptor) String() string {
	parts := []string{string(d.Kind)}
	if d.Dice != "" {
		parts = append(parts, d.Dice)
	}
	if d.Condition != "" {
		parts = append(parts, d.Condition)
	}
	return strings.Join(parts, " ")
}

// DefaultClashEffects returns the built-in per-attribute clash table.
// Endurance is intentionally absent and resolves to Shove.
func DefaultClashEffects() map[Attribute]EffectDescriptor {
	return map[Attribute]EffectDescriptor{
		Might:     {Kind: EffectPushAdvance, Distance: 1},
		Finesse:   {Kind: EffectDisarm, Condition: "disarmed", Duration: 1},
		Reflexes:  {Kind: EffectSwap},
		Vitality:  {Kind: EffectComposureDamage, Dice: "1d6"},
		Fortitude: {Kind: EffectPull, Distance: 1},
		Knowledge: {Kind: EffectFlank},
		Logic:     {Kind: EffectHPDamage, Dice: "1d4"},
		Awareness: {Kind: EffectSlow, Condition: "slowed", Duration: 1},
		Intuition: {Kind: EffectHazardPush, Dice: "1d6", Distance: 1},
		Charm:     {Kind: EffectStumble, Condition: "prone", Duration: 1},
		Willpower: {Kind: EffectAdvantage, Condition: "emboldened", Duration: 1},
	}
}
