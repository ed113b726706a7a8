package engine

import (
	"github.com/lixenwraith/invaders/grid"
	"github.com/lixenwraith/invaders/projectile"
)

// World is the authoritative simulation state
// Only the engine holds it, and only the ADVANCE and RESOLVE phases mutate it
type World struct {
	Tick    int
	Version uint64

	DefenderCol int
	DefenderRow int // one row below the grid
	DefenderHit bool

	Grid   *grid.Grid
	Ledger *projectile.Ledger
}

// NewWorld builds the pre-round state: every entity alive, defender in column 0
// The first ADVANCE steps it to column 1 (mod cols)
func NewWorld(p Params) *World {
	return &World{
		DefenderRow: p.Rows,
		Grid:        grid.New(p.Rows, p.Cols),
		Ledger:      projectile.NewLedger(p.LedgerCapacity, p.CompactThreshold),
	}
}
