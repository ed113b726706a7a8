package round

import (
	"context"
	"time"

	"github.com/lixenwraith/invaders/protocol"
)

// Local links a coordinator to in-process worker goroutines over channels
// Each worker owns a one-slot inbox; all workers share one fan-in channel
type Local struct {
	down      []chan protocol.RoundMessage
	up        chan protocol.Response
	collector Collector
}

// NewLocal creates a link for workers entities on a grid cols wide
func NewLocal(workers, cols int, timeout time.Duration) *Local {
	l := &Local{
		down:      make([]chan protocol.RoundMessage, workers),
		up:        make(chan protocol.Response, workers),
		collector: Collector{Workers: workers, Cols: cols, Timeout: timeout},
	}
	for i := range l.down {
		l.down[i] = make(chan protocol.RoundMessage, 1)
	}
	return l
}

// Workers returns the number of endpoints
func (l *Local) Workers() int {
	return len(l.down)
}

// Endpoint returns worker id's side of the link
func (l *Local) Endpoint(id int) Endpoint {
	return &localEndpoint{down: l.down[id], up: l.up}
}

// Broadcast hands each worker its own copy of msg
// A full inbox means the worker never consumed the previous round; delivery
// continues to the remaining workers and the first such violation is returned
func (l *Local) Broadcast(ctx context.Context, msg protocol.RoundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var first error
	for id, ch := range l.down {
		cp := msg
		cp.Frontier = append([]int(nil), msg.Frontier...)
		select {
		case ch <- cp:
		default:
			if first == nil {
				first = Violation(id, msg.Tick, ErrNotConsumed)
			}
		}
	}
	return first
}

// Collect implements Coordinator
func (l *Local) Collect(ctx context.Context, tick int) ([]protocol.Event, error) {
	return l.collector.Collect(ctx, l.up, nil, tick)
}

type localEndpoint struct {
	down <-chan protocol.RoundMessage
	up   chan<- protocol.Response
}

func (e *localEndpoint) Receive(ctx context.Context) (protocol.RoundMessage, error) {
	select {
	case msg := <-e.down:
		return msg, nil
	case <-ctx.Done():
		return protocol.RoundMessage{}, ctx.Err()
	}
}

func (e *localEndpoint) Send(ctx context.Context, resp protocol.Response) error {
	select {
	case e.up <- resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
