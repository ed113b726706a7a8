package fsm

import "fmt"

// AddState adds a node to the machine
func (m *Machine[T]) AddState(id StateID, name string, parentID StateID) *Node[T] {
	node := &Node[T]{
		ID:       id,
		Name:     name,
		ParentID: parentID,
	}
	m.nodes[id] = node
	return node
}

// AddTransition appends a transition to a node; later additions have lower priority
func (m *Machine[T]) AddTransition(sourceID, targetID StateID, guard GuardFunc[T]) {
	if node, ok := m.nodes[sourceID]; ok {
		node.Transitions = append(node.Transitions, Transition[T]{TargetID: targetID, Guard: guard})
	}
}

// OnEnter registers an action run when the state becomes part of the active path
func (m *Machine[T]) OnEnter(id StateID, fn ActionFunc[T]) {
	if node, ok := m.nodes[id]; ok {
		node.OnEnter = append(node.OnEnter, fn)
	}
}

// OnUpdate registers an action run on every Update while the state is the active leaf
func (m *Machine[T]) OnUpdate(id StateID, fn ActionFunc[T]) {
	if node, ok := m.nodes[id]; ok {
		node.OnUpdate = append(node.OnUpdate, fn)
	}
}

// OnExit registers an action run when the state leaves the active path
func (m *Machine[T]) OnExit(id StateID, fn ActionFunc[T]) {
	if node, ok := m.nodes[id]; ok {
		node.OnExit = append(node.OnExit, fn)
	}
}

// CompilePaths calculates the Path slice for every node in the graph
// Must be called after all nodes are added and before Init
func (m *Machine[T]) CompilePaths() error {
	for id, node := range m.nodes {
		path := make([]StateID, 0, 4)
		curr := node

		// Walk up to the top-level ancestor
		for depth := 0; ; depth++ {
			if depth > len(m.nodes) {
				return fmt.Errorf("state %d: parent cycle", id)
			}
			path = append(path, curr.ID)
			if curr.ParentID == StateNone {
				break
			}
			parent, ok := m.nodes[curr.ParentID]
			if !ok {
				return fmt.Errorf("node %d references missing parent %d", id, curr.ParentID)
			}
			curr = parent
		}

		// Reverse to get [Top, ..., Leaf]
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}

		node.Path = path
	}
	return nil
}
