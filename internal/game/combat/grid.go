package combat

import (
	"fmt"
	"math"
)

// Position is a grid cell.
type Position struct {
	X, Y int
}

// String renders the position as (x,y).
func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Chebyshev returns the number of single-cell steps between a and b when
// diagonal steps cost the same as orthogonal ones.
func Chebyshev(a, b Position) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// Euclidean returns the straight-line distance between a and b in cells.
func Euclidean(a, b Position) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
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

// Grid is the battlefield rectangle: cells (0,0) through (Width-1,Height-1)
// inclusive. Hazard cells damage combatants pushed into them.
type Grid struct {
	Width   int
	Height  int
	Hazards map[Position]bool
}

// NewGrid returns a Grid of the given size with optional hazard cells.
func NewGrid(width, height int, hazards ...Position) Grid {
	g := Grid{Width: width, Height: height, Hazards: make(map[Position]bool, len(hazards))}
	for _, h := range hazards {
		g.Hazards[h] = true
	}
	return g
}

// InBounds reports whether p lies inside the grid.
func (g Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}

// IsHazard reports whether p is a hazard cell.
func (g Grid) IsHazard(p Position) bool { return g.Hazards[p] }
