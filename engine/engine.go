// Package engine is the coordinator: it owns the world and drives the round
// loop ADVANCE → BROADCAST → COLLECT → RESOLVE → CHECK_TERMINAL until the
// defender wins, is hit, or the protocol fails.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lixenwraith/invaders/engine/fsm"
	"github.com/lixenwraith/invaders/protocol"
	"github.com/lixenwraith/invaders/rng"
	"github.com/lixenwraith/invaders/round"
	"github.com/lixenwraith/invaders/status"
)

// ErrAlreadyRun is returned when Run is called twice on one engine
var ErrAlreadyRun = errors.New("engine already run")

// Round phases; the five working phases are children of stateRunning so a
// single failure transition on the parent covers all of them
const (
	stateRunning fsm.StateID = iota + 1
	stateAdvance
	stateBroadcast
	stateCollect
	stateResolve
	stateCheckTerminal
	stateTerminated
)

// Engine runs one simulation over a coordinator link
type Engine struct {
	params Params
	world  *World
	link   round.Coordinator
	rand   rng.Source

	machine   *fsm.Machine[*Engine]
	observers []Observer
	stat      status.RunCounters

	// Round-scoped scratch, rebuilt every round
	ctx       context.Context
	frontier  []int
	responses []protocol.Event
	events    []Event
	rounds    int

	outcome Outcome
	err     error
	last    Snapshot
	started bool
}

// Option customises an Engine
type Option func(*Engine)

// WithObserver adds a per-round snapshot consumer
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithMetrics publishes run counters into reg instead of a private registry
func WithMetrics(reg *status.Registry) Option {
	return func(e *Engine) { e.stat = reg.RunCounters() }
}

// WithRand replaces the coordinator's random stream; nil keeps the seeded default
func WithRand(src rng.Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.rand = src
		}
	}
}

// New validates p and builds an engine ready to Run
// Nothing is sent over link before Run
func New(p Params, link round.Coordinator, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("%w: nil coordinator link", ErrInvalidParams)
	}

	e := &Engine{
		params: p,
		world:  NewWorld(p),
		link:   link,
		rand:   rng.Stream(p.Seed, rng.CoordinatorStream),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.stat.Rounds == nil {
		e.stat = status.NewRegistry().RunCounters()
	}

	m, err := buildMachine()
	if err != nil {
		return nil, err
	}
	e.machine = m
	return e, nil
}

func buildMachine() (*fsm.Machine[*Engine], error) {
	m := fsm.NewMachine[*Engine]()

	m.AddState(stateRunning, "RUNNING", fsm.StateNone)
	m.AddState(stateAdvance, "ADVANCE", stateRunning)
	m.AddState(stateBroadcast, "BROADCAST", stateRunning)
	m.AddState(stateCollect, "COLLECT", stateRunning)
	m.AddState(stateResolve, "RESOLVE", stateRunning)
	m.AddState(stateCheckTerminal, "CHECK_TERMINAL", stateRunning)
	m.AddState(stateTerminated, "TERMINATED", fsm.StateNone)

	m.OnUpdate(stateAdvance, (*Engine).advance)
	m.OnUpdate(stateBroadcast, (*Engine).broadcast)
	m.OnUpdate(stateCollect, (*Engine).collect)
	m.OnUpdate(stateResolve, (*Engine).resolve)
	m.OnUpdate(stateCheckTerminal, (*Engine).checkTerminal)
	m.OnEnter(stateTerminated, (*Engine).terminate)

	m.AddTransition(stateAdvance, stateBroadcast, (*Engine).healthy)
	m.AddTransition(stateBroadcast, stateCollect, (*Engine).healthy)
	m.AddTransition(stateCollect, stateResolve, (*Engine).healthy)
	m.AddTransition(stateResolve, stateCheckTerminal, (*Engine).healthy)
	m.AddTransition(stateCheckTerminal, stateTerminated, (*Engine).finished)
	m.AddTransition(stateCheckTerminal, stateAdvance, (*Engine).healthy)
	m.AddTransition(stateRunning, stateTerminated, (*Engine).failed)

	if err := m.CompilePaths(); err != nil {
		return nil, fmt.Errorf("round machine: %w", err)
	}
	return m, nil
}

func (e *Engine) healthy() bool { return e.err == nil }
func (e *Engine) failed() bool  { return e.err != nil }

func (e *Engine) finished() bool {
	return e.err == nil && e.outcome.Terminal()
}

// Run drives rounds until a terminal outcome or a fatal error
// The returned snapshot is the last one published, including on error
func (e *Engine) Run(ctx context.Context) (Snapshot, error) {
	if e.started {
		return e.last, ErrAlreadyRun
	}
	e.started = true
	e.ctx = ctx

	if err := e.machine.Init(e, stateAdvance); err != nil {
		return e.last, err
	}
	for !e.machine.In(stateTerminated) {
		if !e.machine.Update(e) {
			return e.last, fmt.Errorf("round machine stalled in %s", e.machine.CurrentName())
		}
	}
	return e.last, e.err
}

// Phase reports the active round phase name
func (e *Engine) Phase() string {
	return e.machine.CurrentName()
}

// Snapshot copies the current world; only safe while Run is not executing
func (e *Engine) Snapshot() Snapshot {
	return e.snapshot()
}

func (e *Engine) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Engine) emit(ev Event) {
	ev.Tick = e.world.Tick
	e.events = append(e.events, ev)
}

func (e *Engine) snapshot() Snapshot {
	w := e.world
	events := make([]Event, len(e.events))
	copy(events, e.events)
	return Snapshot{
		Tick:        w.Tick,
		Version:     w.Version,
		Rows:        w.Grid.Rows(),
		Cols:        w.Grid.Cols(),
		DefenderCol: w.DefenderCol,
		DefenderRow: w.DefenderRow,
		DefenderHit: w.DefenderHit,
		AliveCount:  w.Grid.AliveCount(),
		Cells:       w.Grid.Cells(),
		Projectiles: w.Ledger.Active(),
		Events:      events,
		Outcome:     e.outcome,
	}
}

// publish hands the round snapshot to every observer
func (e *Engine) publish() {
	snap := e.snapshot()
	e.last = snap
	for _, o := range e.observers {
		if err := o.Observe(snap); err != nil {
			e.stat.ObserverFailures.Add(1)
			log.Printf("[engine] tick %d: observer %T: %v", snap.Tick, o, err)
		}
	}
}
