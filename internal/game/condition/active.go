package condition

import (
	"fmt"
	"sort"
)

// ActiveCondition tracks one applied condition.
type ActiveCondition struct {
	Def               *ConditionDef
	DurationRemaining int // -1 = indefinite
}

// ActiveSet tracks all conditions currently applied to one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	conditions map[string]*ActiveCondition
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*ActiveCondition)}
}

// Apply adds def or refreshes it. On re-apply the longer duration wins and
// an indefinite duration is never shortened.
//
// Precondition: def must not be nil; duration is -1 or >= 1.
// Postcondition: Active(def.ID) is true.
func (s *ActiveSet) Apply(def *ConditionDef, duration int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if duration == 0 || duration < -1 {
		return fmt.Errorf("Apply %q: duration must be -1 or positive, got %d", def.ID, duration)
	}
	if existing, ok := s.conditions[def.ID]; ok {
		switch {
		case existing.DurationRemaining == -1:
		case duration == -1 || duration > existing.DurationRemaining:
			existing.DurationRemaining = duration
		}
		return nil
	}
	s.conditions[def.ID] = &ActiveCondition{Def: def, DurationRemaining: duration}
	return nil
}

// Remove deletes the condition with the given ID. Missing IDs are a no-op.
func (s *ActiveSet) Remove(id string) {
	delete(s.conditions, id)
}

// Tick decrements every timed condition by one and removes those that reach
// zero. Indefinite conditions are untouched.
//
// Postcondition: returned IDs are sorted and no longer Active.
func (s *ActiveSet) Tick() []string {
	var expired []string
	for id, ac := range s.conditions {
		if ac.DurationRemaining < 0 {
			continue
		}
		ac.DurationRemaining--
		if ac.DurationRemaining <= 0 {
			expired = append(expired, id)
			delete(s.conditions, id)
		}
	}
	sort.Strings(expired)
	return expired
}

// Active reports whether the condition with id is applied.
func (s *ActiveSet) Active(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Has reports whether any applied condition raises the status flag.
func (s *ActiveSet) Has(flag string) bool {
	for _, ac := range s.conditions {
		if ac.Def.Flag == flag {
			return true
		}
	}
	return false
}

// Remaining returns the remaining duration for id and whether it is applied.
func (s *ActiveSet) Remaining(id string) (int, bool) {
	ac, ok := s.conditions[id]
	if !ok {
		return 0, false
	}
	return ac.DurationRemaining, true
}

// Flags returns the raised status flags, sorted.
func (s *ActiveSet) Flags() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ac := range s.conditions {
		if ac.Def.Flag == "" {
			continue
		}
		if _, dup := seen[ac.Def.Flag]; dup {
			continue
		}
		seen[ac.Def.Flag] = struct{}{}
		out = append(out, ac.Def.Flag)
	}
	sort.Strings(out)
	return out
}

// All returns the applied conditions ordered by ID. The pointed-to values are
// shared; callers must not modify them.
func (s *ActiveSet) All() []*ActiveCondition {
	out := make([]*ActiveCondition, 0, len(s.conditions))
	for _, ac := range s.conditions {
		out = append(out, ac)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def.ID < out[j].Def.ID })
	return out
}

// Len returns the number of applied conditions.
func (s *ActiveSet) Len() int { return len(s.conditions) }
