package projectile

import "errors"

// ErrLedgerFull is returned when no slot is free even after compaction
// The rejected projectile is the newest one; existing slots are untouched
var ErrLedgerFull = errors.New("projectile ledger full")

// Ledger is a bounded, ordered set of projectile slots
// Resolved projectiles stay in place as inactive slots until the inactive
// fraction crosses the compaction threshold, then they are removed while
// preserving the firing order of the survivors
type Ledger struct {
	slots     []Projectile
	capacity  int
	threshold float64
	inactive  int
	nextID    uint64
}

// NewLedger creates a ledger holding at most capacity slots
func NewLedger(capacity int, threshold float64) *Ledger {
	if capacity < 1 {
		capacity = 1
	}
	return &Ledger{
		slots:     make([]Projectile, 0, capacity),
		capacity:  capacity,
		threshold: threshold,
		nextID:    1,
	}
}

// Fire appends a new active projectile travelling from fromRow to targetRow
// Remaining below 1 is raised to 1 so every projectile lives at least one advance
func (l *Ledger) Fire(origin Origin, column, fromRow, targetRow, remaining int) (Projectile, error) {
	if len(l.slots) >= l.capacity {
		if l.inactive > 0 {
			l.compact()
		}
		if len(l.slots) >= l.capacity {
			return Projectile{}, ErrLedgerFull
		}
	}
	if remaining < 1 {
		remaining = 1
	}

	p := Projectile{
		ID:        l.nextID,
		Origin:    origin,
		Column:    column,
		Row:       fromRow,
		TargetRow: targetRow,
		Remaining: remaining,
		Active:    true,
	}
	l.nextID++
	l.slots = append(l.slots, p)
	return p, nil
}

// Advance steps every active projectile by one round and hands arrivals to impact
// The slot is deactivated before impact runs, so a projectile can never be
// resolved a second time; impact receives a copy
// Returns the number of projectiles resolved
func (l *Ledger) Advance(impact func(Projectile)) int {
	resolved := 0
	for i := range l.slots {
		p := &l.slots[i]
		if !p.Active {
			continue
		}
		if !p.step() {
			continue
		}
		p.Active = false
		l.inactive++
		resolved++
		if impact != nil {
			impact(*p)
		}
	}
	return resolved
}

// MaybeCompact removes inactive slots when their fraction exceeds the threshold
// Returns the number of slots removed
func (l *Ledger) MaybeCompact() int {
	if len(l.slots) == 0 || l.inactive == 0 {
		return 0
	}
	if float64(l.inactive)/float64(len(l.slots)) <= l.threshold {
		return 0
	}
	return l.compact()
}

// compact is a stable in-place filter
func (l *Ledger) compact() int {
	kept := l.slots[:0]
	for _, p := range l.slots {
		if p.Active {
			kept = append(kept, p)
		}
	}
	removed := len(l.slots) - len(kept)
	// Clear the tail so stale values never read back through a regrown slice
	for i := len(kept); i < len(l.slots); i++ {
		l.slots[i] = Projectile{}
	}
	l.slots = kept
	l.inactive = 0
	return removed
}

// Len is the slot count, including inactive slots awaiting compaction
func (l *Ledger) Len() int { return len(l.slots) }

// Inactive is the number of resolved slots awaiting compaction
func (l *Ledger) Inactive() int { return l.inactive }

// ActiveCount is the number of projectiles in flight
func (l *Ledger) ActiveCount() int { return len(l.slots) - l.inactive }

// Capacity is the slot bound
func (l *Ledger) Capacity() int { return l.capacity }

// Active returns a copy of the in-flight projectiles in firing order
func (l *Ledger) Active() []Projectile {
	out := make([]Projectile, 0, l.ActiveCount())
	for _, p := range l.slots {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}
