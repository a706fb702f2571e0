package combat

import (
	"fmt"

	"go.uber.org/zap"
)

// StepCost is the movement cost of one single-cell step in distance units.
const StepCost = 5

// MoveCost returns the budget needed to move from a to b.
func MoveCost(a, b Position) int {
	return StepCost * Chebyshev(a, b)
}

// Move relocates c to (x, y), spending 5 units of movement per Chebyshev
// step. Range checks elsewhere use Euclidean distance; movement does not.
//
// Postcondition: on error, c's position and budget are unchanged; on success
// the budget has dropped by a positive multiple of StepCost.
func (e *Engine) Move(c *Combatant, x, y int) (Log, error) {
	if err := e.actorCheck(c); err != nil {
		return e.rejectActor(c, err)
	}
	dest := Position{X: x, Y: y}
	if dest == c.Position {
		return reject(ErrNoMove, "%s is already at %s.", c.Name, dest)
	}
	if !e.grid.InBounds(dest) {
		return reject(ErrOutOfBounds, "Out of Bounds: %s cannot move to %s.", c.Name, dest)
	}
	if occ := e.OccupantAt(x, y); occ != nil && occ != c {
		return reject(ErrBlocked, "Blocked: %s occupies %s.", occ.Name, dest)
	}
	cost := MoveCost(c.Position, dest)
	if cost > c.Movement {
		return reject(ErrInsufficientMovement, "Not enough movement: %s needs %d but has %d.", c.Name, cost, c.Movement)
	}
	from := c.Position
	c.Position = dest
	c.Movement -= cost
	e.logger.Debug("move",
		zap.String("name", c.Name),
		zap.Stringer("from", from),
		zap.Stringer("to", dest),
		zap.Int("remaining", c.Movement),
	)
	return Log{fmt.Sprintf("%s moves from %s to %s (%d movement, %d left).", c.Name, from, dest, cost, c.Movement)}, nil
}

// free reports whether p is inside the grid and not held by a living
// combatant other than self.
func (e *Engine) free(p Position, self *Combatant) bool {
	if !e.grid.InBounds(p) {
		return false
	}
	occ := e.OccupantAt(p.X, p.Y)
	return occ == nil || occ == self
}

// displace moves c up to cells steps along (dx, dy) without spending budget.
// It returns the number of steps taken and whether a step was refused.
func (e *Engine) displace(c *Combatant, dx, dy, cells int) (int, bool) {
	for i := 0; i < cells; i++ {
		next := Position{X: c.Position.X + dx, Y: c.Position.Y + dy}
		if !e.free(next, c) {
			return i, true
		}
		c.Position = next
	}
	return cells, false
}

// actorCheck gates every action: no clash open, c registered and able to act.
func (e *Engine) actorCheck(c *Combatant) error {
	switch {
	case e.clash != nil:
		return ErrClashActive
	case c == nil || !e.registered(c):
		return ErrNotRegistered
	case !c.IsAlive() || c.incapacitation() != "":
		return ErrIncapacitated
	}
	return nil
}

func (e *Engine) rejectActor(c *Combatant, err error) (Log, error) {
	switch err {
	case ErrClashActive:
		return reject(err, "A clash between %s and %s must be resolved first.", e.clash.Attacker.Name, e.clash.Defender.Name)
	case ErrNotRegistered:
		return reject(err, "That combatant is not part of this encounter.")
	case ErrIncapacitated:
		if !c.IsAlive() {
			return reject(err, "%s is down and cannot act.", c.Name)
		}
		return reject(err, "%s is %s and cannot act.", c.Name, c.incapacitation())
	}
	return reject(err, "%s cannot act: %v.", c.Name, err)
}
