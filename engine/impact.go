package engine

import (
	"log"

	"github.com/lixenwraith/invaders/grid"
	"github.com/lixenwraith/invaders/projectile"
)

// impact resolves a projectile whose travel time ran out
// The ledger has already deactivated it
func (e *Engine) impact(p projectile.Projectile) {
	switch p.Origin {
	case projectile.OriginDefender:
		e.strikeGrid(p)
	case projectile.OriginEntity:
		e.strikeDefender(p)
	}
}

// strikeDefender hits only if the defender stands in the projectile's column
func (e *Engine) strikeDefender(p projectile.Projectile) {
	w := e.world
	if p.Column != w.DefenderCol {
		e.emit(Event{Kind: EventMiss, Entity: grid.None, Row: w.DefenderRow, Col: p.Column, Projectile: p.ID})
		return
	}
	w.DefenderHit = true
	e.stat.DefenderHit.Store(true)
	log.Printf("[engine] tick %d: defender hit in column %d", w.Tick, p.Column)
	e.emit(Event{Kind: EventDefenderHit, Entity: grid.None, Row: w.DefenderRow, Col: p.Column, Projectile: p.ID})
}

// strikeGrid applies the configured resolution policy to a defender projectile
func (e *Engine) strikeGrid(p projectile.Projectile) {
	if e.params.Resolution == ResolveStochastic {
		d := e.params.Deflection
		u := e.rand.Float64()
		switch {
		case u < d.Hit:
		case u < d.Hit+d.Left:
			e.deflect(p, p.Column-1)
			return
		case u < d.Hit+d.Left+d.Right:
			e.deflect(p, p.Column+1)
			return
		default:
			e.stat.Blocked.Add(1)
			e.emit(Event{Kind: EventBlocked, Entity: grid.None, Row: p.TargetRow, Col: p.Column, Projectile: p.ID})
			return
		}
	}
	e.hitTarget(p)
}

// hitTarget kills the targeted cell, or the column frontier if the target is gone
func (e *Engine) hitTarget(p projectile.Projectile) {
	g := e.world.Grid
	row := p.TargetRow
	if !g.Alive(row, p.Column) {
		row = g.FrontierRow(p.Column)
	}
	if row == grid.None {
		e.emit(Event{Kind: EventMiss, Entity: grid.None, Row: p.TargetRow, Col: p.Column, Projectile: p.ID})
		return
	}
	e.kill(p, row, p.Column)
}

// deflect lands on a neighbouring cell of the target row; dead or missing cells absorb it
func (e *Engine) deflect(p projectile.Projectile, col int) {
	e.stat.Deflections.Add(1)
	e.emit(Event{Kind: EventDeflect, Entity: grid.None, Row: p.TargetRow, Col: col, Projectile: p.ID})
	if e.world.Grid.Alive(p.TargetRow, col) {
		e.kill(p, p.TargetRow, col)
	}
}

func (e *Engine) kill(p projectile.Projectile, row, col int) {
	w := e.world
	if !w.Grid.Kill(row, col) {
		return
	}
	id := grid.ID(row, col, w.Grid.Cols())
	e.stat.Kills.Add(1)
	log.Printf("[engine] tick %d: defender killed entity %d at (%d,%d)", w.Tick, id, row, col)
	e.emit(Event{Kind: EventKill, Entity: id, Row: row, Col: col, Projectile: p.ID})
}

func (e *Engine) respawnDue() bool {
	r := e.params.Respawn
	return r.Enabled && r.Every > 0 && e.world.Tick > 0 && e.world.Tick%r.Every == 0
}

// respawn revives dead entities flanked by two alive neighbours
// Flanking is judged on the grid as it was before the pass so revivals do not chain
func (e *Engine) respawn() {
	w := e.world
	g := w.Grid
	cols := g.Cols()
	before := g.Cells()

	for id, alive := range before {
		if alive {
			continue
		}
		row, col := grid.Coords(id, cols)
		if col == 0 || col == cols-1 {
			continue
		}
		if !before[grid.ID(row, col-1, cols)] || !before[grid.ID(row, col+1, cols)] {
			continue
		}
		if e.rand.Float64() >= e.params.Respawn.Probability {
			continue
		}
		if g.Revive(row, col) {
			e.stat.Respawns.Add(1)
			log.Printf("[engine] tick %d: entity %d respawned at (%d,%d)", w.Tick, id, row, col)
			e.emit(Event{Kind: EventRespawn, Entity: id, Row: row, Col: col})
		}
	}
}
