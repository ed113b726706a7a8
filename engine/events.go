package engine

import (
	"fmt"

	"github.com/lixenwraith/invaders/projectile"
)

// Outcome is the run result as seen after CHECK_TERMINAL
type Outcome uint8

const (
	OutcomeRunning Outcome = iota
	OutcomeWin             // every entity destroyed
	OutcomeLoss            // defender hit
	OutcomeAborted         // fatal protocol or transport error
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeWin:
		return "defender wins"
	case OutcomeLoss:
		return "defender hit"
	case OutcomeAborted:
		return "aborted"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Terminal reports whether no further round follows
func (o Outcome) Terminal() bool {
	return o != OutcomeRunning
}

// EventKind classifies what happened during a round
type EventKind uint8

const (
	EventEntityFire EventKind = iota
	EventDefenderFire
	EventKill
	EventMiss
	EventDeflect
	EventBlocked
	EventDefenderHit
	EventDropped
	EventRespawn
)

var eventNames = [...]string{
	EventEntityFire:   "entity-fire",
	EventDefenderFire: "defender-fire",
	EventKill:         "kill",
	EventMiss:         "miss",
	EventDeflect:      "deflect",
	EventBlocked:      "blocked",
	EventDefenderHit:  "defender-hit",
	EventDropped:      "dropped",
	EventRespawn:      "respawn",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Event is one state change recorded during a round
// Entity is grid.None when no single entity is involved
type Event struct {
	Kind       EventKind
	Tick       int
	Entity     int
	Row        int
	Col        int
	Projectile uint64
	Remaining  int
}

func (e Event) String() string {
	switch e.Kind {
	case EventEntityFire, EventDefenderFire:
		return fmt.Sprintf("tick %d %s #%d from (%d,%d), %d rounds", e.Tick, e.Kind, e.Projectile, e.Row, e.Col, e.Remaining)
	case EventKill, EventRespawn:
		return fmt.Sprintf("tick %d %s entity %d at (%d,%d)", e.Tick, e.Kind, e.Entity, e.Row, e.Col)
	default:
		return fmt.Sprintf("tick %d %s #%d at (%d,%d)", e.Tick, e.Kind, e.Projectile, e.Row, e.Col)
	}
}

// Snapshot is a read-only copy of the world at the end of a round
type Snapshot struct {
	Tick    int
	Version uint64
	Rows    int
	Cols    int

	DefenderCol int
	DefenderRow int
	DefenderHit bool

	AliveCount  int
	Cells       []bool // row-major alive table
	Projectiles []projectile.Projectile
	Events      []Event
	Outcome     Outcome
}

// Alive reports a cell of the snapshot; out of range cells are dead
func (s Snapshot) Alive(row, col int) bool {
	if row < 0 || row >= s.Rows || col < 0 || col >= s.Cols {
		return false
	}
	return s.Cells[row*s.Cols+col]
}

// Observer receives a snapshot after every round and once more on abort
// Errors are logged and counted, never fatal to the run
type Observer interface {
	Observe(Snapshot) error
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Snapshot) error

func (f ObserverFunc) Observe(s Snapshot) error { return f(s) }
