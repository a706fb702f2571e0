package ai

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

var unbounded = math.Inf(1)

// moveTowards steps c toward target until within threshold.
func (ctl *Controller) moveTowards(t *turn, target *combat.Combatant, threshold float64) {
	ctl.step(t, target, func(d float64) bool { return d <= threshold }, 1)
}

// moveAway steps c away from target until at least threshold away.
func (ctl *Controller) moveAway(t *turn, target *combat.Combatant, threshold float64) {
	start := ctl.eng.Distance(t.c, target)
	ctl.step(t, target, func(d float64) bool { return d >= threshold }, -1)
	if ctl.eng.Distance(t.c, target) <= start {
		t.note("%s finds no way to back away from %s.", t.c.Name, target.Name)
	}
}

// step moves one cell at a time along the axis with the larger gap, toward
// target when dir is 1 and away when dir is -1. A blocked step is retried
// once along the other axis.
//
// Postcondition: terminates once done reports true, the movement budget
// drops below one step, or both axes are blocked.
func (ctl *Controller) step(t *turn, target *combat.Combatant, done func(float64) bool, dir int) {
	for t.c.Movement >= combat.StepCost && !done(ctl.eng.Distance(t.c, target)) {
		dx := target.Position.X - t.c.Position.X
		dy := target.Position.Y - t.c.Position.Y
		primary, secondary := axisStep(dx, dir, true), axisStep(dy, dir, false)
		if abs(dy) > abs(dx) {
			primary, secondary = axisStep(dy, dir, false), axisStep(dx, dir, true)
		}
		if !ctl.tryStep(t, primary) && !ctl.tryStep(t, secondary) {
			return
		}
	}
}

type offset struct{ dx, dy int }

func (o offset) zero() bool { return o.dx == 0 && o.dy == 0 }

// axisStep returns a one-cell step along one axis given the gap delta on it.
// Moving away across a zero gap picks the positive direction.
func axisStep(delta, dir int, horizontal bool) offset {
	s := sign(delta) * dir
	if s == 0 && dir < 0 {
		s = 1
	}
	if horizontal {
		return offset{dx: s}
	}
	return offset{dy: s}
}

func (ctl *Controller) tryStep(t *turn, o offset) bool {
	if o.zero() {
		return false
	}
	to := combat.Position{X: t.c.Position.X + o.dx, Y: t.c.Position.Y + o.dy}
	if !ctl.eng.Grid().InBounds(to) {
		return false
	}
	l, err := ctl.eng.Move(t.c, to.X, to.Y)
	if err != nil {
		return false
	}
	t.append(l)
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
