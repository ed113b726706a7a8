// Package render turns engine snapshots into human output: a plain text
// trace, a live terminal view, and a YAML run summary.
package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lixenwraith/invaders/engine"
)

// Sink is a snapshot consumer with a lifecycle
type Sink interface {
	// Name returns the unique identifier for this sink
	Name() string

	// Start acquires resources; called once before the first snapshot
	Start() error

	// Observe consumes one round
	Observe(engine.Snapshot) error

	// Stop flushes and releases resources
	Stop() error
}

// Hub fans snapshots out to registered sinks and manages their lifecycle
// It is itself an engine.Observer
type Hub struct {
	mu      sync.Mutex
	sinks   []Sink
	names   map[string]struct{}
	started []Sink // Sinks that completed Start(), for rollback
}

// NewHub creates an empty sink hub
func NewHub() *Hub {
	return &Hub{names: make(map[string]struct{})}
}

// Register adds a sink; names must be unique
func (h *Hub) Register(s Sink) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := s.Name()
	if _, exists := h.names[name]; exists {
		return fmt.Errorf("sink already registered: %s", name)
	}
	h.names[name] = struct{}{}
	h.sinks = append(h.sinks, s)
	return nil
}

// StartAll starts sinks in registration order
// On failure, stops already-started sinks in reverse order
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.started = h.started[:0]
	for _, s := range h.sinks {
		if err := s.Start(); err != nil {
			for i := len(h.started) - 1; i >= 0; i-- {
				h.started[i].Stop()
			}
			h.started = h.started[:0]
			return fmt.Errorf("sink %s start failed: %w", s.Name(), err)
		}
		h.started = append(h.started, s)
	}
	return nil
}

// Observe hands the snapshot to every started sink
// A failing sink does not stop the others; errors are joined
func (h *Hub) Observe(snap engine.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, s := range h.started {
		if err := s.Observe(snap); err != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// StopAll stops started sinks in reverse order, attempting every one
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for i := len(h.started) - 1; i >= 0; i-- {
		s := h.started[i]
		if err := s.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("sink %s stop: %w", s.Name(), err))
		}
	}
	h.started = h.started[:0]
	return errors.Join(errs...)
}

// Names returns registered sink names in registration order
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, len(h.sinks))
	for i, s := range h.sinks {
		names[i] = s.Name()
	}
	return names
}
