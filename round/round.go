// Package round is the lock-step contract between the coordinator and its workers.
//
// Every round the coordinator broadcasts one message to every worker, then
// collects exactly one response from each of them. No worker answers before it
// has received the broadcast, and the coordinator never broadcasts round k+1
// before the collection of round k is complete. The sentinel broadcast ends
// the protocol; workers exit on it without answering.
package round

import (
	"context"

	"github.com/lixenwraith/invaders/protocol"
)

// Coordinator is the coordinator's side of a link: one fan-out, one fan-in
type Coordinator interface {
	// Broadcast delivers msg to every worker
	Broadcast(ctx context.Context, msg protocol.RoundMessage) error

	// Collect blocks until every worker has answered tick exactly once
	// The result is indexed by sender id
	Collect(ctx context.Context, tick int) ([]protocol.Event, error)
}

// Endpoint is one worker's side of a link
type Endpoint interface {
	Receive(ctx context.Context) (protocol.RoundMessage, error)
	Send(ctx context.Context, resp protocol.Response) error
}
