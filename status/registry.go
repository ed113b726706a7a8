// Package status holds the run counters shared by the coordinator and the CLI.
package status

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
)

// Metric keys written by the round engine
const (
	Rounds          = "rounds"
	Kills           = "kills"
	EntityFires     = "fires.entity"
	DefenderFires   = "fires.defender"
	Dropped         = "projectiles.dropped"
	Compactions     = "ledger.compactions"
	Compacted       = "ledger.compacted"
	Respawns        = "respawns"
	Deflections     = "resolve.deflected"
	Blocked         = "resolve.blocked"
	DefenderHit     = "defender.hit"
	ObserverFailure = "observer.failures"
)

// Registry owns named counters and flags
// Entries are created on first use and never removed, so callers may keep
// the returned pointers and update them without the registry lock
type Registry struct {
	mu       sync.Mutex
	counters map[string]*atomic.Int64
	flags    map[string]*atomic.Bool
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*atomic.Int64),
		flags:    make(map[string]*atomic.Bool),
	}
}

// Counter returns the counter for key, creating it at zero
func (r *Registry) Counter(key string) *atomic.Int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[key]
	if !ok {
		c = new(atomic.Int64)
		r.counters[key] = c
	}
	return c
}

// Flag returns the flag for key, creating it unset
func (r *Registry) Flag(key string) *atomic.Bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flags[key]
	if !ok {
		f = new(atomic.Bool)
		r.flags[key] = f
	}
	return f
}

// Len returns the number of registered counters and flags
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counters) + len(r.flags)
}

// Counts returns a point-in-time copy of every counter
func (r *Registry) Counts() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64, len(r.counters))
	for k, c := range r.counters {
		out[k] = c.Load()
	}
	return out
}

// WriteTo prints counters then flags as "key value" lines, each group in key order
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	lines := make([]string, 0, len(r.counters)+len(r.flags))
	for _, k := range sortedKeys(r.counters) {
		lines = append(lines, fmt.Sprintf("%-22s %d\n", k, r.counters[k].Load()))
	}
	for _, k := range sortedKeys(r.flags) {
		lines = append(lines, fmt.Sprintf("%-22s %t\n", k, r.flags[k].Load()))
	}
	r.mu.Unlock()

	var total int64
	for _, line := range lines {
		n, err := io.WriteString(w, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RunCounters is the engine's view of a registry: one pointer per metric,
// resolved once so the round loop never touches the registry lock
type RunCounters struct {
	Rounds, Kills, EntityFires, DefenderFires *atomic.Int64
	Dropped, Compactions, Compacted           *atomic.Int64
	Respawns, Deflections, Blocked            *atomic.Int64
	ObserverFailures                          *atomic.Int64
	DefenderHit                               *atomic.Bool
}

// RunCounters registers every engine metric and returns the bound set
func (r *Registry) RunCounters() RunCounters {
	return RunCounters{
		Rounds:           r.Counter(Rounds),
		Kills:            r.Counter(Kills),
		EntityFires:      r.Counter(EntityFires),
		DefenderFires:    r.Counter(DefenderFires),
		Dropped:          r.Counter(Dropped),
		Compactions:      r.Counter(Compactions),
		Compacted:        r.Counter(Compacted),
		Respawns:         r.Counter(Respawns),
		Deflections:      r.Counter(Deflections),
		Blocked:          r.Counter(Blocked),
		ObserverFailures: r.Counter(ObserverFailure),
		DefenderHit:      r.Flag(DefenderHit),
	}
}
