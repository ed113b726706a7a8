package status

import (
	"strings"
	"sync"
	"testing"
)

func TestCounterReturnsSamePointer(t *testing.T) {
	r := NewRegistry()
	a := r.Counter(Kills)
	b := r.Counter(Kills)
	if a != b {
		t.Fatal("expected the same pointer for repeated Counter")
	}
	a.Add(3)
	if got := r.Counts()[Kills]; got != 3 {
		t.Fatalf("kills = %d, want 3", got)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r.Counter(Rounds)
			for j := 0; j < 1000; j++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := r.Counter(Rounds).Load(); got != 8000 {
		t.Fatalf("rounds = %d, want 8000", got)
	}
}

func TestRunCountersShareRegistryEntries(t *testing.T) {
	r := NewRegistry()
	run := r.RunCounters()
	run.Kills.Add(2)
	run.DefenderHit.Store(true)

	if got := r.Counts()[Kills]; got != 2 {
		t.Fatalf("kills = %d, want 2", got)
	}
	if !r.Flag(DefenderHit).Load() {
		t.Fatal("defender hit flag not visible through the registry")
	}
	if r.Len() != 12 {
		t.Fatalf("len = %d, want 12 engine metrics", r.Len())
	}
}

func TestWriteToSorted(t *testing.T) {
	r := NewRegistry()
	r.Counter(Rounds).Store(4)
	r.Counter(Kills).Store(2)
	r.Flag(DefenderHit).Store(true)

	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), sb.String())
	}
	if !strings.HasPrefix(lines[0], Kills) || !strings.HasPrefix(lines[1], Rounds) || !strings.HasPrefix(lines[2], DefenderHit) {
		t.Fatalf("unexpected order:\n%s", sb.String())
	}
	if !strings.HasSuffix(lines[2], "true") {
		t.Fatalf("flag line = %q", lines[2])
	}
}
