// Package sim wires workers and the engine into complete runs.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/parameter"
	"github.com/lixenwraith/invaders/rng"
	"github.com/lixenwraith/invaders/round"
	"github.com/lixenwraith/invaders/worker"
)

// Dialer yields the endpoint worker id talks through
type Dialer func(ctx context.Context, id int) (round.Endpoint, error)

// Workers runs one decider per id until each sees the sentinel
// Every decider draws from its own stream derived from seed and id
// Endpoints implementing io.Closer are closed when their worker exits
func Workers(ctx context.Context, ids []int, cols int, seed int64, policy worker.Policy, dial Dialer) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, id := range ids {
		ep, err := dial(ctx, id)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("worker %d: %w", id, err))
			mu.Unlock()
			continue
		}
		d := worker.NewDecider(id, cols, policy, rng.Stream(seed, id))

		wg.Add(1)
		go func() {
			defer wg.Done()
			if c, ok := ep.(interface{ Close() error }); ok {
				defer c.Close()
			}
			if err := worker.Run(ctx, ep, d); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Local runs the coordinator and every worker in this process
// Worker errors after a failed run are expected and not reported
func Local(ctx context.Context, p engine.Params, policy worker.Policy, collectTimeout time.Duration, opts ...engine.Option) (engine.Snapshot, error) {
	link := round.NewLocal(p.Workers, p.Cols, collectTimeout)
	e, err := engine.New(p, link, opts...)
	if err != nil {
		return engine.Snapshot{}, err
	}

	ids := make([]int, p.Workers)
	for i := range ids {
		ids[i] = i
	}

	wctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Workers(wctx, ids, p.Cols, p.Seed, policy, func(_ context.Context, id int) (round.Endpoint, error) {
			return link.Endpoint(id), nil
		})
	}()

	snap, runErr := e.Run(ctx)

	// Workers leave on the sentinel; a lost sentinel must not strand them
	timer := time.NewTimer(parameter.SentinelTimeout)
	defer timer.Stop()
	var workerErr error
	select {
	case workerErr = <-done:
	case <-timer.C:
		cancel()
		workerErr = <-done
	}

	if runErr != nil {
		return snap, runErr
	}
	return snap, workerErr
}
