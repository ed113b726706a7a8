package worker

import (
	"context"
	"fmt"

	"github.com/lixenwraith/invaders/protocol"
	"github.com/lixenwraith/invaders/round"
)

// Run drives one entity through the protocol until the sentinel arrives
// Exactly one response is sent per non-sentinel round; none after the sentinel
func Run(ctx context.Context, ep round.Endpoint, d *Decider) error {
	for {
		msg, err := ep.Receive(ctx)
		if err != nil {
			return fmt.Errorf("worker %d receive: %w", d.id, err)
		}
		if msg.Terminal() {
			return nil
		}

		resp := protocol.Response{
			Sender: d.id,
			Tick:   msg.Tick,
			Event:  d.Decide(msg),
		}
		if err := ep.Send(ctx, resp); err != nil {
			return fmt.Errorf("worker %d send at tick %d: %w", d.id, msg.Tick, err)
		}
	}
}
