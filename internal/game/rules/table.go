package rules

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Entry is one margin range of the outcome table. A nil Min or Max is an
// open bound.
type Entry struct {
	Min         *int   `yaml:"min"`
	Max         *int   `yaml:"max"`
	Outcome     string `yaml:"outcome"`
	Tier        Tier   `yaml:"tier"`
	Status      string `yaml:"status"`
	Duration    int    `yaml:"duration"`
	AppliesTo   Side   `yaml:"applies_to"`
	DamageBonus string `yaml:"damage_bonus"`
}

func (e Entry) lo() int {
	if e.Min == nil {
		return math.MinInt
	}
	return *e.Min
}

func (e Entry) hi() int {
	if e.Max == nil {
		return math.MaxInt
	}
	return *e.Max
}

// Contains reports whether margin falls inside the entry's range.
func (e Entry) Contains(margin int) bool {
	return margin >= e.lo() && margin <= e.hi()
}

// Table classifies attack margins and looks up clash effects.
//
// Invariant: no entry covers margin 0; the table is never mutated after New.
type Table struct {
	entries  []Entry
	outcomes []Outcome
	clash    map[Attribute]EffectDescriptor
}

// File is the on-disk shape of a rule table.
type File struct {
	Outcomes []Entry                        `yaml:"outcomes"`
	Clash    map[Attribute]EffectDescriptor `yaml:"clash"`
}

// New builds a Table from entries and clash effects. Structural errors
// (inverted ranges, an entry covering 0, bad tiers or expressions, invalid
// clash effects) are returned; coverage gaps are not, see Validate.
//
// Postcondition: entries are ordered by lower bound.
func New(entries []Entry, clash map[Attribute]EffectDescriptor) (*Table, error) {
	env, err := newBonusEnv()
	if err != nil {
		return nil, fmt.Errorf("building damage bonus environment: %w", err)
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].lo() < sorted[j].lo() })

	t := &Table{
		entries:  sorted,
		outcomes: make([]Outcome, len(sorted)),
		clash:    make(map[Attribute]EffectDescriptor, len(clash)),
	}
	for i, e := range sorted {
		if e.Outcome == "" {
			return nil, fmt.Errorf("entry %d: outcome label must not be empty", i)
		}
		if e.lo() > e.hi() {
			return nil, fmt.Errorf("entry %q: min %d exceeds max %d", e.Outcome, e.lo(), e.hi())
		}
		if e.Contains(0) {
			return nil, fmt.Errorf("entry %q covers margin 0, which is reserved for clashes", e.Outcome)
		}
		side := e.AppliesTo
		if side == "" {
			side = SideDefender
		}
		if side != SideDefender && side != SideAttacker {
			return nil, fmt.Errorf("entry %q: applies_to %q must be attacker or defender", e.Outcome, side)
		}
		duration := e.Duration
		if duration == 0 {
			duration = 1
		}
		o := Outcome{Label: e.Outcome, Tier: e.Tier, Status: e.Status, Duration: duration, AppliesTo: side}
		if e.DamageBonus != "" {
			prg, err := compileBonus(env, e.DamageBonus)
			if err != nil {
				return nil, fmt.Errorf("entry %q damage_bonus: %w", e.Outcome, err)
			}
			o.bonus = prg
		}
		t.outcomes[i] = o
	}
	for attr, d := range clash {
		if !attr.Valid() {
			return nil, fmt.Errorf("clash table: invalid attribute %d", int(attr))
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("clash table %s: %w", attr, err)
		}
		t.clash[attr] = d
	}
	return t, nil
}

// Default returns the built-in rule table.
func Default() *Table {
	t, err := New(DefaultEntries(), DefaultClashEffects())
	if err != nil {
		panic("rules: default table invalid: " + err.Error())
	}
	return t
}

func intp(v int) *int { return &v }

// DefaultEntries returns the built-in margin table.
func DefaultEntries() []Entry {
	return []Entry{
		{Max: intp(-10), Outcome: "Critical Miss", Tier: TierMiss, Status: "prone", Duration: 1, AppliesTo: SideAttacker},
		{Min: intp(-9), Max: intp(-1), Outcome: "Miss", Tier: TierMiss},
		{Min: intp(1), Max: intp(4), Outcome: "Graze", Tier: TierGraze},
		{Min: intp(5), Max: intp(9), Outcome: "Hit", Tier: TierHit},
		{Min: intp(10), Outcome: "Critical Hit", Tier: TierCritical},
	}
}

// Classify maps an attack margin to its outcome. Margin 0 always yields Tie.
// A margin outside every entry yields NoEffect.
func (t *Table) Classify(margin int) Outcome {
	if margin == 0 {
		return Tie
	}
	for i, e := range t.entries {
		if e.Contains(margin) {
			return t.outcomes[i]
		}
	}
	return NoEffect
}

// ClashEffect returns the effect a clash winner applies for attr.
//
// Postcondition: never fails; unconfigured attributes yield Shove.
func (t *Table) ClashEffect(attr Attribute) EffectDescriptor {
	if d, ok := t.clash[attr]; ok {
		return d
	}
	return Shove
}

// Entries returns a copy of the ordered entries.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Validate reports coverage problems: gaps in (-inf,-1] or [1,inf) and
// overlapping entries. A table that fails Validate is still usable; unmatched
// margins classify as NoEffect.
func (t *Table) Validate() error {
	if len(t.entries) == 0 {
		return errors.New("rule table has no entries")
	}
	var errs []error
	if first := t.entries[0]; first.Min != nil {
		errs = append(errs, gapError(math.MinInt, first.lo()-1)...)
	}
	for i := 1; i < len(t.entries); i++ {
		prev, cur := t.entries[i-1], t.entries[i]
		if prev.Max == nil || cur.lo() <= prev.hi() {
			errs = append(errs, fmt.Errorf("entries %q and %q overlap", prev.Outcome, cur.Outcome))
			continue
		}
		errs = append(errs, gapError(prev.hi()+1, cur.lo()-1)...)
	}
	if last := t.entries[len(t.entries)-1]; last.Max != nil {
		errs = append(errs, gapError(last.hi()+1, math.MaxInt)...)
	}
	return errors.Join(errs...)
}

// gapError reports the uncovered margins in [lo, hi], ignoring the reserved 0.
func gapError(lo, hi int) []error {
	var errs []error
	describe := func(a, b int) error {
		switch {
		case a == math.MinInt:
			return fmt.Errorf("margins up to %d are not covered", b)
		case b == math.MaxInt:
			return fmt.Errorf("margins from %d are not covered", a)
		case a == b:
			return fmt.Errorf("margin %d is not covered", a)
		default:
			return fmt.Errorf("margins %d..%d are not covered", a, b)
		}
	}
	if lo <= -1 {
		if top := min(hi, -1); lo <= top {
			errs = append(errs, describe(lo, top))
		}
	}
	if hi >= 1 {
		if bottom := max(lo, 1); bottom <= hi {
			errs = append(errs, describe(bottom, hi))
		}
	}
	return errs
}

// LoadFile reads a YAML rule table. Clash entries missing from the file are
// filled from DefaultClashEffects.
//
// Postcondition: returns a Table whose entries partition the non-zero
// margins, or an error.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule table %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML rule table from data.
func Parse(data []byte) (*Table, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing rule table: %w", err)
	}
	if len(f.Outcomes) == 0 {
		f.Outcomes = DefaultEntries()
	}
	clash := DefaultClashEffects()
	for attr, d := range f.Clash {
		clash[attr] = d
	}
	t, err := New(f.Outcomes, clash)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("rule table coverage: %w", err)
	}
	return t, nil
}
