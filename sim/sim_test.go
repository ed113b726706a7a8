package sim

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/round"
	"github.com/lixenwraith/invaders/worker"
)

var policy = worker.Policy{FireProbability: 0.5, FireCadence: 4}

func TestSingleEntityWithRealWorker(t *testing.T) {
	snap, err := Local(context.Background(), engine.DefaultParams(1, 1), policy, time.Second)
	if err != nil {
		t.Fatalf("Local: %v", err)
	}
	if snap.Outcome != engine.OutcomeWin || snap.Tick != 2 {
		t.Fatalf("outcome %s at tick %d, want win at tick 2", snap.Outcome, snap.Tick)
	}
}

func TestLocalRunsAreReproducible(t *testing.T) {
	p := engine.DefaultParams(3, 4)
	p.Seed = 42
	p.Resolution = engine.ResolveStochastic

	first, err := Local(context.Background(), p, policy, time.Second)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Local(context.Background(), p, policy, time.Second)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs diverged:\n%+v\n%+v", first, second)
	}
	if !first.Outcome.Terminal() {
		t.Fatalf("outcome %s is not terminal", first.Outcome)
	}
}

func TestLocalRejectsBadParams(t *testing.T) {
	p := engine.DefaultParams(2, 2)
	p.Workers = 3
	if _, err := Local(context.Background(), p, policy, 0); !errors.Is(err, engine.ErrInvalidParams) {
		t.Fatalf("err = %v, want ErrInvalidParams", err)
	}
}

func TestWorkersReportDialFailures(t *testing.T) {
	boom := errors.New("refused")
	err := Workers(context.Background(), []int{0, 1}, 1, 1, policy, func(context.Context, int) (round.Endpoint, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want dial error", err)
	}
}
