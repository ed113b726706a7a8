package worker

import (
	"testing"

	"github.com/lixenwraith/invaders/protocol"
	"github.com/lixenwraith/invaders/rng"
)

var defaultPolicy = Policy{FireProbability: 0.1, FireCadence: 4}

func roundMsg(tick, defCol int, fires bool, frontier ...int) protocol.RoundMessage {
	return protocol.RoundMessage{Tick: tick, DefenderCol: defCol, DefenderFires: fires, Frontier: frontier}
}

func TestEligibility(t *testing.T) {
	// 2x2 grid, entity 3 is (1,1)
	tests := []struct {
		name string
		msg  protocol.RoundMessage
		want bool
	}{
		{"cadence tick as frontier", roundMsg(4, 0, false, 2, 3), true},
		{"tick zero", roundMsg(0, 0, false, 2, 3), false},
		{"off cadence", roundMsg(5, 0, false, 2, 3), false},
		{"not frontier", roundMsg(8, 0, false, 2, 1), false},
		{"empty column", roundMsg(8, 0, false, 2, -1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecider(3, 2, defaultPolicy, rng.NewFixed(0))
			if got := d.Eligible(tt.msg); got != tt.want {
				t.Fatalf("Eligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecideFiresBelowThreshold(t *testing.T) {
	d := NewDecider(3, 2, defaultPolicy, rng.NewFixed(0.05))
	ev := d.Decide(roundMsg(4, 0, false, 2, 3))
	col, ok := ev.Fire()
	if !ok || col != 1 {
		t.Fatalf("event = %d, want fire from column 1", ev)
	}
}

func TestDecideHoldsAboveThreshold(t *testing.T) {
	d := NewDecider(3, 2, defaultPolicy, rng.NewFixed(0.5))
	if ev := d.Decide(roundMsg(4, 0, false, 2, 3)); ev != protocol.NoEvent {
		t.Fatalf("event = %d, want no event", ev)
	}
}

func TestIneligibleRoundsTakeNoDraw(t *testing.T) {
	src := rng.NewFixed(0)
	d := NewDecider(0, 2, defaultPolicy, src)
	for tick := 0; tick < 4; tick++ {
		d.Decide(roundMsg(tick, 1, false, 0, 1))
	}
	if src.Draws() != 0 {
		t.Fatalf("draws = %d before the first cadence tick", src.Draws())
	}
	d.Decide(roundMsg(4, 1, false, 0, 1))
	if src.Draws() != 1 {
		t.Fatalf("draws = %d, want exactly one per eligible round", src.Draws())
	}
}

func TestZeroCadenceDisablesFire(t *testing.T) {
	d := NewDecider(0, 1, Policy{FireProbability: 1, FireCadence: 0}, rng.NewFixed(0))
	for tick := 0; tick < 20; tick++ {
		if ev := d.Decide(roundMsg(tick, 0, false, 0)); ev != protocol.NoEvent {
			t.Fatalf("tick %d: fired with cadence disabled", tick)
		}
	}
}

func TestLocalEliminationSuppressesFire(t *testing.T) {
	d := NewDecider(1, 1, Policy{FireProbability: 1, FireCadence: 1}, rng.NewFixed(0))

	// targeted while frontier of the defender's column
	d.Decide(roundMsg(1, 0, true, 1))
	if d.Alive() {
		t.Fatal("expected local elimination when targeted as frontier")
	}
	if ev := d.Decide(roundMsg(2, 0, false, 1)); ev != protocol.NoEvent {
		t.Fatalf("eliminated worker responded %d", ev)
	}
}

func TestNotEliminatedWhenShielded(t *testing.T) {
	d := NewDecider(0, 1, defaultPolicy, rng.NewFixed(1))
	// entity 0 is row 0, entity 1 below it is the frontier
	d.Decide(roundMsg(1, 0, true, 1))
	if !d.Alive() {
		t.Fatal("non-frontier entity marked eliminated")
	}
}
