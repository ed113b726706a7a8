package round

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/invaders/protocol"
)

// Collector enforces the many-to-one barrier over a stream of responses
// Shared by every link implementation so the exactly-once rules live in one place
type Collector struct {
	Workers int
	Cols    int
	Timeout time.Duration // 0 waits forever
}

// Collect reads responses until each of the Workers senders has answered tick
// Any duplicate, stale, unknown or malformed response aborts the round
// lost delivers transport failures; nil disables it
func (c Collector) Collect(ctx context.Context, in <-chan protocol.Response, lost <-chan error, tick int) ([]protocol.Event, error) {
	events := make([]protocol.Event, c.Workers)
	seen := make([]bool, c.Workers)
	pending := c.Workers

	var deadline <-chan time.Time
	if c.Timeout > 0 {
		timer := time.NewTimer(c.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for pending > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-deadline:
			return nil, Violation(-1, tick, fmt.Errorf("%w: %d of %d responses after %s", ErrCollectTimeout, c.Workers-pending, c.Workers, c.Timeout))

		case err := <-lost:
			// Transports report undecodable or spoofed frames as violations already
			var v *ViolationError
			if errors.As(err, &v) {
				return nil, err
			}
			return nil, Violation(-1, tick, fmt.Errorf("%w: %v", ErrWorkerLost, err))

		case resp := <-in:
			if resp.Sender < 0 || resp.Sender >= c.Workers {
				return nil, Violation(resp.Sender, tick, ErrUnknownSender)
			}
			if resp.Tick != tick {
				return nil, Violation(resp.Sender, tick, fmt.Errorf("%w: got %d", ErrStaleResponse, resp.Tick))
			}
			if seen[resp.Sender] {
				return nil, Violation(resp.Sender, tick, ErrDuplicateResponse)
			}
			if err := resp.Event.Validate(c.Cols); err != nil {
				return nil, Violation(resp.Sender, tick, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
			}
			seen[resp.Sender] = true
			events[resp.Sender] = resp.Event
			pending--
		}
	}
	return events, nil
}
