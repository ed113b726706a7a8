// Package worker is the per-entity decision unit and its round loop.
package worker

import (
	"log"

	"github.com/lixenwraith/invaders/grid"
	"github.com/lixenwraith/invaders/protocol"
	"github.com/lixenwraith/invaders/rng"
)

// Policy holds the firing knobs shared by every worker of a run
type Policy struct {
	FireProbability float64
	FireCadence     int // 0 disables entity fire
}

// Decider is one entity's private decision state
// alive is advisory: the coordinator's grid is authoritative, and the local
// flag only ever suppresses fire
type Decider struct {
	id, row, col int
	policy       Policy
	alive        bool
	rand         rng.Source
}

// NewDecider creates the decision unit for entity id on a grid cols wide
func NewDecider(id, cols int, policy Policy, rand rng.Source) *Decider {
	row, col := grid.Coords(id, cols)
	return &Decider{
		id:     id,
		row:    row,
		col:    col,
		policy: policy,
		alive:  true,
		rand:   rand,
	}
}

func (d *Decider) ID() int     { return d.id }
func (d *Decider) Alive() bool { return d.alive }
func (d *Decider) Column() int { return d.col }

// Eligible reports whether this round permits a fire draw
func (d *Decider) Eligible(msg protocol.RoundMessage) bool {
	if !d.alive || d.policy.FireCadence <= 0 {
		return false
	}
	if msg.Tick <= 0 || msg.Tick%d.policy.FireCadence != 0 {
		return false
	}
	return msg.FrontierOf(d.col) == d.id
}

// Decide maps a round message to this entity's response event
// At most one draw is taken per round, and only when eligible
func (d *Decider) Decide(msg protocol.RoundMessage) protocol.Event {
	event := protocol.NoEvent
	if d.Eligible(msg) && d.rand.Float64() < d.policy.FireProbability {
		event = protocol.FireFrom(d.col)
		log.Printf("[worker %d] fires at tick %d (column %d)", d.id, msg.Tick, d.col)
	}

	if d.alive && msg.DefenderFires && msg.DefenderCol == d.col && msg.FrontierOf(d.col) == d.id {
		d.alive = false
		log.Printf("[worker %d] targeted by defender at tick %d", d.id, msg.Tick)
	}
	return event
}
