// Package grid holds the entity table: one entity per cell, each alive or dead.
package grid

// None marks the absence of an entity (empty frontier, out of range lookup)
const None = -1

// Coords maps an entity id to its fixed cell
func Coords(id, cols int) (row, col int) {
	return id / cols, id % cols
}

// ID maps a cell to the entity id that owns it
func ID(row, col, cols int) int {
	return row*cols + col
}

// Grid is the alive table of a rows×cols block of entities, row-major
// Not safe for concurrent use; the coordinator is the only writer
type Grid struct {
	rows, cols int
	alive      []bool
	count      int
}

// New creates a grid with every entity alive
func New(rows, cols int) *Grid {
	g := &Grid{
		rows:  rows,
		cols:  cols,
		alive: make([]bool, rows*cols),
		count: rows * cols,
	}
	for i := range g.alive {
		g.alive[i] = true
	}
	return g
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Size is the total entity count, alive or not
func (g *Grid) Size() int { return len(g.alive) }

// AliveCount is the number of alive entities
func (g *Grid) AliveCount() int { return g.count }

// InBounds reports whether the cell exists
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Alive reports the state of a cell; out of range cells are dead
func (g *Grid) Alive(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return g.alive[ID(row, col, g.cols)]
}

// AliveID reports the state of an entity by id
func (g *Grid) AliveID(id int) bool {
	if id < 0 || id >= len(g.alive) {
		return false
	}
	return g.alive[id]
}

// Kill marks a cell dead, returns false if it was already dead or out of range
func (g *Grid) Kill(row, col int) bool {
	if !g.Alive(row, col) {
		return false
	}
	g.alive[ID(row, col, g.cols)] = false
	g.count--
	return true
}

// Revive marks a dead cell alive, returns false if it was alive or out of range
func (g *Grid) Revive(row, col int) bool {
	if !g.InBounds(row, col) || g.Alive(row, col) {
		return false
	}
	g.alive[ID(row, col, g.cols)] = true
	g.count++
	return true
}

// FrontierRow returns the largest alive row in col, or None
func (g *Grid) FrontierRow(col int) int {
	if col < 0 || col >= g.cols {
		return None
	}
	for r := g.rows - 1; r >= 0; r-- {
		if g.alive[ID(r, col, g.cols)] {
			return r
		}
	}
	return None
}

// FrontierID returns the id of the frontier entity in col, or None
func (g *Grid) FrontierID(col int) int {
	r := g.FrontierRow(col)
	if r == None {
		return None
	}
	return ID(r, col, g.cols)
}

// Frontier derives the per-column frontier ids; never cached, the grid changes every round
func (g *Grid) Frontier() []int {
	out := make([]int, g.cols)
	for c := range out {
		out[c] = g.FrontierID(c)
	}
	return out
}

// Cells returns a copy of the alive table, row-major
func (g *Grid) Cells() []bool {
	out := make([]bool, len(g.alive))
	copy(out, g.alive)
	return out
}
