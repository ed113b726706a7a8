package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lixenwraith/invaders/grid"
	"github.com/lixenwraith/invaders/parameter"
	"github.com/lixenwraith/invaders/projectile"
	"github.com/lixenwraith/invaders/protocol"
	"github.com/lixenwraith/invaders/round"
)

// advance opens a round: tick moves forward, the defender steps one column,
// projectiles travel and land
// The column set here is the one broadcast, fired on in RESOLVE and checked by
// entity impacts this round
func (e *Engine) advance() {
	w := e.world
	if e.rounds > 0 {
		w.Tick++
	}
	e.events = e.events[:0]

	if !w.DefenderHit {
		w.DefenderCol = (w.DefenderCol + 1) % w.Grid.Cols()
	}

	w.Ledger.Advance(e.impact)
	if n := w.Ledger.MaybeCompact(); n > 0 {
		e.stat.Compactions.Add(1)
		e.stat.Compacted.Add(int64(n))
	}
	w.Version++
}

// broadcast derives the frontier and fans the round message out
func (e *Engine) broadcast() {
	w := e.world
	e.frontier = w.Grid.Frontier()
	msg := protocol.RoundMessage{
		Tick:          w.Tick,
		DefenderCol:   w.DefenderCol,
		DefenderFires: !w.DefenderHit && e.frontier[w.DefenderCol] != grid.None,
		Frontier:      e.frontier,
	}
	if err := e.link.Broadcast(e.ctx, msg); err != nil {
		e.fail(fmt.Errorf("broadcast tick %d: %w", w.Tick, err))
	}
}

// collect is the barrier: every worker answers exactly once or the run fails
func (e *Engine) collect() {
	events, err := e.link.Collect(e.ctx, e.world.Tick)
	if err != nil {
		e.fail(fmt.Errorf("collect tick %d: %w", e.world.Tick, err))
		return
	}
	if len(events) != e.params.Workers {
		e.fail(round.Violation(-1, e.world.Tick,
			fmt.Errorf("%w: %d responses for %d workers", round.ErrMalformedResponse, len(events), e.params.Workers)))
		return
	}
	e.responses = events
}

// resolve turns responses into projectiles, then fires the defender at the
// frontier it was broadcast with
func (e *Engine) resolve() {
	w := e.world
	cols := w.Grid.Cols()

	// Reject the whole round before touching the world
	for id, ev := range e.responses {
		col, ok := ev.Fire()
		if !ok {
			continue
		}
		_, own := grid.Coords(id, cols)
		if col != own || e.frontier[own] != id {
			e.fail(round.Violation(id, w.Tick,
				fmt.Errorf("%w: column %d, frontier of column %d is %d", round.ErrIneligibleFire, col, own, e.frontier[own])))
			return
		}
	}

	// Ascending sender id keeps the ledger order independent of arrival order
	for id, ev := range e.responses {
		if _, ok := ev.Fire(); !ok {
			continue
		}
		row, col := grid.Coords(id, cols)
		e.fire(projectile.OriginEntity, id, col, row, w.DefenderRow, e.params.BaseDelay+(w.DefenderRow-row))
	}

	// Same condition as the broadcast defender_fires flag
	if !w.DefenderHit {
		if target := e.frontier[w.DefenderCol]; target != grid.None {
			row, _ := grid.Coords(target, cols)
			e.fire(projectile.OriginDefender, grid.None, w.DefenderCol, w.DefenderRow, row,
				e.params.BaseDelay+(w.Grid.Rows()-1-row))
		}
	}

	if e.respawnDue() {
		e.respawn()
	}
	w.Version++
}

// checkTerminal closes the round and publishes it
func (e *Engine) checkTerminal() {
	w := e.world
	switch {
	case w.DefenderHit:
		e.outcome = OutcomeLoss
	case w.Grid.AliveCount() == 0:
		e.outcome = OutcomeWin
	}
	e.rounds++
	e.stat.Rounds.Add(1)
	e.publish()

	if e.outcome.Terminal() {
		log.Printf("[engine] tick %d: %s", w.Tick, e.outcome)
		return
	}
	e.pace()
}

// pace sleeps between rounds when a round delay is configured
func (e *Engine) pace() {
	if e.params.RoundDelay <= 0 {
		return
	}
	t := time.NewTimer(e.params.RoundDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-e.ctx.Done():
		e.fail(e.ctx.Err())
	}
}

// terminate runs once on entering TERMINATED and releases the workers
func (e *Engine) terminate() {
	w := e.world
	if e.err != nil {
		e.outcome = OutcomeAborted
		log.Printf("[engine] tick %d: aborting: %v", w.Tick, e.err)
		e.publish()
	}

	// The run context may already be cancelled; workers still need the sentinel
	ctx, cancel := context.WithTimeout(context.WithoutCancel(e.ctx), parameter.SentinelTimeout)
	defer cancel()
	if err := e.link.Broadcast(ctx, protocol.Sentinel(w.Grid.Cols())); err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("sentinel broadcast: %w", err)
			return
		}
		log.Printf("[engine] sentinel broadcast after failure: %v", err)
	}
}

// fire records a new projectile, counting it as dropped if the ledger is full
func (e *Engine) fire(origin projectile.Origin, entity, col, fromRow, targetRow, remaining int) {
	w := e.world
	p, err := w.Ledger.Fire(origin, col, fromRow, targetRow, remaining)
	if err != nil {
		e.stat.Dropped.Add(1)
		log.Printf("[engine] tick %d: %s projectile in column %d dropped: %v", w.Tick, origin, col, err)
		e.emit(Event{Kind: EventDropped, Entity: entity, Row: fromRow, Col: col, Remaining: remaining})
		return
	}

	kind := EventDefenderFire
	if origin == projectile.OriginEntity {
		kind = EventEntityFire
		e.stat.EntityFires.Add(1)
		log.Printf("[engine] tick %d: entity %d fires from (%d,%d), lands in %d", w.Tick, entity, fromRow, col, p.Remaining)
	} else {
		e.stat.DefenderFires.Add(1)
	}
	e.emit(Event{Kind: kind, Entity: entity, Row: fromRow, Col: col, Projectile: p.ID, Remaining: p.Remaining})
}
