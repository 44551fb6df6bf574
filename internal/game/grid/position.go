package grid

import (
	"fmt"
	"math"
)

// Position is a board coordinate. It is a comparable value and is used as a
// map key for occupancy.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Offset returns the position shifted by dx, dy. The result is not bounds checked.
func (p Position) Offset(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Manhattan returns the grid distance between two positions.
func (p Position) Manhattan(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

// Euclidean returns the straight line distance between two positions.
func (p Position) Euclidean(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// IsAdjacent reports whether other is one orthogonal step away.
func (p Position) IsAdjacent(other Position) bool {
	return p.Manhattan(other) == 1
}

// Neighbours returns the four orthogonal neighbours in N, E, S, W order.
func (p Position) Neighbours() []Position {
	return []Position{
		{X: p.X, Y: p.Y - 1},
		{X: p.X + 1, Y: p.Y},
		{X: p.X, Y: p.Y + 1},
		{X: p.X - 1, Y: p.Y},
	}
}

// Direction returns the unit step from p towards other along each axis.
func (p Position) Direction(other Position) (int, int) {
	return sign(other.X - p.X), sign(other.Y - p.Y)
}

// Line returns the cells strictly between p and other, sampled by linear
// interpolation. Used for line of sight.
func (p Position) Line(other Position) []Position {
	steps := max(abs(other.X-p.X), abs(other.Y-p.Y))
	if steps <= 1 {
		return nil
	}
	seen := make(map[Position]struct{}, steps)
	line := make([]Position, 0, steps-1)
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		step := Position{
			X: int(math.Round(float64(p.X) + t*float64(other.X-p.X))),
			Y: int(math.Round(float64(p.Y) + t*float64(other.Y-p.Y))),
		}
		if step == p || step == other {
			continue
		}
		if _, dup := seen[step]; dup {
			continue
		}
		seen[step] = struct{}{}
		line = append(line, step)
	}
	return line
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
	default:
		return 0
	}
}
