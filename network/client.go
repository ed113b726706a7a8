package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/lixenwraith/invaders/protocol"
	"github.com/lixenwraith/invaders/round"
)

// Client is one worker connection; it implements round.Endpoint for the
// entity claimed during the handshake
type Client struct {
	cfg    *Config
	entity int
	peer   *Peer
	inbox  chan protocol.RoundMessage
}

// Dial connects to the coordinator and claims entity
func Dial(ctx context.Context, cfg *Config, entity int) (*Client, error) {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p := newPeer(entity, conn, cfg.SendQueueSize)

	payload, err := protocol.MarshalHello(protocol.Hello{Entity: int32(entity), Cols: int32(cfg.Cols)})
	if err == nil {
		err = p.writeNow(NewMessage(MsgHello, payload))
	}
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: hello: %v", ErrHandshake, err)
	}

	reply, err := p.readNow(cfg.HandshakeTimeout)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	switch reply.Type {
	case MsgWelcome:
	case MsgReject:
		p.Close()
		return nil, fmt.Errorf("%w: entity %d: %s", ErrRejected, entity, reply.Payload)
	default:
		p.Close()
		return nil, fmt.Errorf("%w: unexpected %s frame", ErrHandshake, reply.Type)
	}

	welcome, err := protocol.UnmarshalWelcome(reply.Payload)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if cfg.Rows > 0 && int(welcome.Rows) != cfg.Rows {
		p.Close()
		return nil, fmt.Errorf("%w: coordinator grid has %d rows, worker expects %d", ErrHandshake, welcome.Rows, cfg.Rows)
	}

	c := &Client{
		cfg:    cfg,
		entity: entity,
		peer:   p,
		// One live round plus the sentinel
		inbox: make(chan protocol.RoundMessage, 2),
	}
	p.start(c.handleFrame)
	return c, nil
}

// Entity returns the claimed entity id
func (c *Client) Entity() int {
	return c.entity
}

func (c *Client) handleFrame(p *Peer, msg *Message) error {
	if msg.Type != MsgRound {
		return fmt.Errorf("%w: unexpected %s frame", protocol.ErrMalformed, msg.Type)
	}
	rm, err := protocol.UnmarshalRound(msg.Payload, c.cfg.Cols)
	if err != nil {
		return err
	}
	select {
	case c.inbox <- rm:
		return nil
	default:
		return fmt.Errorf("entity %d: %w", c.entity, round.ErrNotConsumed)
	}
}

// Receive blocks for the next round message
// Messages already delivered are handed out even after the connection drops
func (c *Client) Receive(ctx context.Context) (protocol.RoundMessage, error) {
	select {
	case msg := <-c.inbox:
		return msg, nil
	case <-ctx.Done():
		return protocol.RoundMessage{}, ctx.Err()
	case <-c.peer.Done():
		select {
		case msg := <-c.inbox:
			return msg, nil
		default:
		}
		if err := c.peer.Err(); err != nil {
			return protocol.RoundMessage{}, fmt.Errorf("%w: %v", round.ErrClosed, err)
		}
		return protocol.RoundMessage{}, round.ErrClosed
	}
}

// Send queues the response frame
func (c *Client) Send(ctx context.Context, resp protocol.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := protocol.MarshalResponse(resp)
	if err != nil {
		return err
	}
	if err := c.peer.Send(NewMessage(MsgResponse, payload)); err != nil {
		if errors.Is(err, ErrPeerClosed) {
			return round.ErrClosed
		}
		return err
	}
	return nil
}

// Close flushes the pending response and drops the connection
func (c *Client) Close() error {
	c.peer.Shutdown(shutdownGrace)
	return nil
}
