// Package fsm is a small hierarchical state machine.
// States form a tree; transitions are guarded and evaluated from the active
// leaf up through its ancestors, so a parent can carry a transition that
// applies to every child.
package fsm

// StateID is a unique identifier for a node
type StateID int

// StateNone is the parent of top-level states and the id of an uninitialised machine
const StateNone StateID = 0

// Machine is the generic Hierarchical Finite State Machine runtime
// T is the context type passed to actions and guards
type Machine[T any] struct {
	// Graph data, immutable after CompilePaths
	nodes map[StateID]*Node[T]

	// Runtime state
	activeStateID StateID   // the current leaf node
	activePath    []StateID // Root -> ... -> Leaf
	transitions   int
}

// Node represents a state in the hierarchy
type Node[T any] struct {
	ID       StateID
	Name     string
	ParentID StateID

	// Pre-calculated path from the top-level ancestor to this node
	// Used for allocation-free LCA lookup
	Path []StateID

	OnEnter  []ActionFunc[T]
	OnUpdate []ActionFunc[T]
	OnExit   []ActionFunc[T]

	// Transitions in evaluation priority order
	Transitions []Transition[T]
}

// Transition defines a guarded link between states
type Transition[T any] struct {
	TargetID StateID
	Guard    GuardFunc[T] // nil = always true
}

// GuardFunc returns true if the transition should occur
type GuardFunc[T any] func(ctx T) bool

// ActionFunc executes a side effect
type ActionFunc[T any] func(ctx T)
