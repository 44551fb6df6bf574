package grid

// Cell is a single board square. Cells are owned by the Battlefield and
// mutated in place.
type Cell struct {
	pos     Position
	terrain Terrain
}

// Position returns the cell's coordinate.
func (c *Cell) Position() Position { return c.pos }

// Terrain returns the cell's current terrain.
func (c *Cell) Terrain() Terrain { return c.terrain }

// SetTerrain replaces the terrain and returns the previous one.
func (c *Cell) SetTerrain(t Terrain) Terrain {
	prev := c.terrain
	c.terrain = t
	return prev
}

// Cells implements Component.
func (c *Cell) Cells() []*Cell { return []*Cell{c} }

// Apply implements Component.
func (c *Cell) Apply(effect CellEffect) { effect(c) }

// CellEffect mutates or inspects one cell.
type CellEffect func(*Cell)

// Component is the contract shared by a single cell, a row, an arbitrary
// region and the whole battlefield. Area effects are written against it once.
type Component interface {
	Cells() []*Cell
	Apply(effect CellEffect)
}

// Region is a view over cells owned by a Battlefield.
type Region struct {
	name  string
	cells []*Cell
}

// NewRegion groups cells into a region view.
func NewRegion(name string, cells []*Cell) Region {
	return Region{name: name, cells: append([]*Cell(nil), cells...)}
}

// Name describes the region, e.g. "row 3" or "rect (2,2) 3x3".
func (r Region) Name() string { return r.name }

// Cells implements Component.
func (r Region) Cells() []*Cell { return append([]*Cell(nil), r.cells...) }

// Apply implements Component.
func (r Region) Apply(effect CellEffect) {
	for _, c := range r.cells {
		effect(c)
	}
}

// Len returns the number of cells in the region.
func (r Region) Len() int { return len(r.cells) }

// Contains reports whether pos lies inside the region.
func (r Region) Contains(pos Position) bool {
	for _, c := range r.cells {
		if c.pos == pos {
			return true
		}
	}
	return false
}

// Change records a terrain mutation on one cell.
type Change struct {
	Position Position `json:"position"`
	From     Terrain  `json:"from"`
	To       Terrain  `json:"to"`
}

// Convert turns every cell of kind from into kind to and reports what changed.
func Convert(area Component, from, to Terrain) []Change {
	var changes []Change
	area.Apply(func(c *Cell) {
		if c.terrain != from || from == to {
			return
		}
		c.terrain = to
		changes = append(changes, Change{Position: c.pos, From: from, To: to})
	})
	return changes
}

// PositionsOn lists the positions in area whose terrain is t.
func PositionsOn(area Component, t Terrain) []Position {
	var out []Position
	area.Apply(func(c *Cell) {
		if c.terrain == t {
			out = append(out, c.pos)
		}
	})
	return out
}
