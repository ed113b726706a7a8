package fsm

import "fmt"

// NewMachine creates a new FSM instance
func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{
		nodes: make(map[StateID]*Node[T]),
	}
}

// Init enters initialID, running OnEnter for the whole chain from the top down
func (m *Machine[T]) Init(ctx T, initialID StateID) error {
	node, ok := m.nodes[initialID]
	if !ok {
		return fmt.Errorf("initial state ID %d not found", initialID)
	}
	if len(node.Path) == 0 {
		return fmt.Errorf("state %d has no compiled path, call CompilePaths first", initialID)
	}

	m.activeStateID = initialID
	m.activePath = append(m.activePath[:0], node.Path...)
	m.transitions = 0

	for _, id := range m.activePath {
		for _, action := range m.nodes[id].OnEnter {
			action(ctx)
		}
	}
	return nil
}

// Update runs the active leaf's OnUpdate actions, then takes the first
// transition whose guard passes, checking the leaf before its ancestors
// Returns true if a transition occurred
func (m *Machine[T]) Update(ctx T) bool {
	if m.activeStateID == StateNone {
		return false
	}

	leaf := m.nodes[m.activeStateID]
	for _, action := range leaf.OnUpdate {
		action(ctx)
	}

	// Bubble up: Leaf -> Parent -> Top
	currID := m.activeStateID
	for currID != StateNone {
		node := m.nodes[currID]
		for _, trans := range node.Transitions {
			if trans.Guard == nil || trans.Guard(ctx) {
				m.transition(ctx, trans.TargetID)
				return true
			}
		}
		currID = node.ParentID
	}
	return false
}

// transition performs the state change, exiting up to and entering down from the LCA
func (m *Machine[T]) transition(ctx T, targetID StateID) {
	targetNode, ok := m.nodes[targetID]
	if !ok {
		panic(fmt.Sprintf("FSM: attempted transition to unknown state ID %d", targetID))
	}

	// Self-transition re-enters the leaf
	lcaIndex := -1
	currentPath := m.activePath
	targetPath := targetNode.Path

	if targetID != m.activeStateID {
		minLen := len(currentPath)
		if len(targetPath) < minLen {
			minLen = len(targetPath)
		}
		for i := 0; i < minLen; i++ {
			if currentPath[i] != targetPath[i] {
				break
			}
			lcaIndex = i
		}
	} else {
		lcaIndex = len(currentPath) - 2
	}

	// Exit phase: walk UP from current leaf to LCA (exclusive)
	for i := len(currentPath) - 1; i > lcaIndex; i-- {
		for _, action := range m.nodes[currentPath[i]].OnExit {
			action(ctx)
		}
	}

	// Enter phase: walk DOWN from LCA (exclusive) to target leaf
	for i := lcaIndex + 1; i < len(targetPath); i++ {
		for _, action := range m.nodes[targetPath[i]].OnEnter {
			action(ctx)
		}
	}

	m.activeStateID = targetID
	m.activePath = append(m.activePath[:0], targetPath...)
	m.transitions++
}

// Current returns the active leaf
func (m *Machine[T]) Current() StateID {
	return m.activeStateID
}

// CurrentName returns the active leaf's name, empty before Init
func (m *Machine[T]) CurrentName() string {
	if node, ok := m.nodes[m.activeStateID]; ok {
		return node.Name
	}
	return ""
}

// In reports whether id is the active leaf or one of its ancestors
func (m *Machine[T]) In(id StateID) bool {
	for _, active := range m.activePath {
		if active == id {
			return true
		}
	}
	return false
}

// Transitions counts state changes since Init
func (m *Machine[T]) Transitions() int {
	return m.transitions
}
