package grid

import (
	"errors"
	"fmt"
)

// DefaultSize is the edge length of a standard board.
const DefaultSize = 10

// ErrOutOfBounds is returned when a coordinate falls outside the board.
var ErrOutOfBounds = errors.New("position out of bounds")

// Rand is the subset of a random source the battlefield needs.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Battlefield is the square board. It owns every cell; rows and regions
// returned from queries are views over the same cells.
type Battlefield struct {
	size  int
	cells [][]*Cell // [y][x]
}

// NewBattlefield creates a size x size board filled with fill.
func NewBattlefield(size int, fill Terrain) *Battlefield {
	if size <= 0 {
		panic(fmt.Sprintf("grid: invalid battlefield size %d", size))
	}
	b := &Battlefield{size: size, cells: make([][]*Cell, size)}
	for y := 0; y < size; y++ {
		b.cells[y] = make([]*Cell, size)
		for x := 0; x < size; x++ {
			b.cells[y][x] = &Cell{pos: Position{X: x, Y: y}, terrain: fill}
		}
	}
	return b
}

// Size returns the board edge length.
func (b *Battlefield) Size() int { return b.size }

// Contains reports whether pos lies on the board.
func (b *Battlefield) Contains(pos Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < b.size && pos.Y < b.size
}

// Position validates a coordinate.
func (b *Battlefield) Position(x, y int) (Position, error) {
	pos := Position{X: x, Y: y}
	if !b.Contains(pos) {
		return Position{}, fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, pos, b.size, b.size)
	}
	return pos, nil
}

// Cell returns the cell at pos.
func (b *Battlefield) Cell(pos Position) (*Cell, bool) {
	if !b.Contains(pos) {
		return nil, false
	}
	return b.cells[pos.Y][pos.X], true
}

// MustCell returns the cell at pos and panics when pos is off the board.
func (b *Battlefield) MustCell(pos Position) *Cell {
	c, ok := b.Cell(pos)
	if !ok {
		panic(fmt.Sprintf("grid: %s outside %dx%d battlefield", pos, b.size, b.size))
	}
	return c
}

// TerrainAt returns the terrain at pos. Off-board access panics.
func (b *Battlefield) TerrainAt(pos Position) Terrain {
	return b.MustCell(pos).terrain
}

// SetTerrain replaces the terrain at pos and returns the previous value.
func (b *Battlefield) SetTerrain(pos Position, t Terrain) Terrain {
	return b.MustCell(pos).SetTerrain(t)
}

// Cells implements Component over the whole board in row-major order.
func (b *Battlefield) Cells() []*Cell {
	out := make([]*Cell, 0, b.size*b.size)
	for _, row := range b.cells {
		out = append(out, row...)
	}
	return out
}

// Apply implements Component.
func (b *Battlefield) Apply(effect CellEffect) {
	for _, row := range b.cells {
		for _, c := range row {
			effect(c)
		}
	}
}

// Row returns row y as a region.
func (b *Battlefield) Row(y int) Region {
	if y < 0 || y >= b.size {
		panic(fmt.Sprintf("grid: row %d outside %dx%d battlefield", y, b.size, b.size))
	}
	return NewRegion(fmt.Sprintf("row %d", y), b.cells[y])
}

// Rect returns the w x h rectangle anchored at (x, y), clipped to the board.
func (b *Battlefield) Rect(x, y, w, h int) Region {
	var cells []*Cell
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			if c, ok := b.Cell(Position{X: xx, Y: yy}); ok {
				cells = append(cells, c)
			}
		}
	}
	return NewRegion(fmt.Sprintf("rect %s %dx%d", Position{X: x, Y: y}, w, h), cells)
}

// RandomRegion picks a uniformly placed w x h rectangle fully inside the board.
func (b *Battlefield) RandomRegion(rng Rand, w, h int) Region {
	w = min(max(w, 1), b.size)
	h = min(max(h, 1), b.size)
	x := rng.Intn(b.size - w + 1)
	y := rng.Intn(b.size - h + 1)
	return b.Rect(x, y, w, h)
}

// Neighbours returns the on-board orthogonal neighbours of pos.
func (b *Battlefield) Neighbours(pos Position) []Position {
	out := make([]Position, 0, 4)
	for _, n := range pos.Neighbours() {
		if b.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// Count returns how many cells currently carry terrain t.
func (b *Battlefield) Count(t Terrain) int {
	return len(PositionsOn(b, t))
}
