package network

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrPeerClosed = errors.New("peer closed")
	ErrQueueFull  = errors.New("send queue full")
)

// Peer is one framed connection
// ID is the entity the connection speaks for
type Peer struct {
	ID       int
	Addr     string
	LastSeen atomic.Int64 // UnixNano

	// Sequence tracking
	OutSeq atomic.Uint32
	InSeq  atomic.Uint32

	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	sendCh chan *Message

	closeCh   chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// newPeer wraps an established connection
func newPeer(id int, conn net.Conn, sendQueueSize int) *Peer {
	if sendQueueSize < 1 {
		sendQueueSize = 1
	}
	p := &Peer{
		ID:      id,
		Addr:    conn.RemoteAddr().String(),
		conn:    conn,
		reader:  bufio.NewReader(conn),
		writer:  bufio.NewWriter(conn),
		sendCh:  make(chan *Message, sendQueueSize),
		closeCh: make(chan struct{}),
	}
	p.LastSeen.Store(time.Now().UnixNano())
	return p
}

// Send queues a frame without blocking
func (p *Peer) Send(msg *Message) error {
	select {
	case <-p.closeCh:
		return ErrPeerClosed
	default:
	}

	msg.Seq = p.OutSeq.Add(1)
	msg.Ack = p.InSeq.Load()

	select {
	case p.sendCh <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Done is closed once the peer is shut down
func (p *Peer) Done() <-chan struct{} {
	return p.closeCh
}

// Err returns the error that closed the peer, nil after a clean close
func (p *Peer) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Close tears the connection down immediately
func (p *Peer) Close() {
	p.closeWith(nil)
}

func (p *Peer) closeWith(err error) {
	p.closeOnce.Do(func() {
		p.errMu.Lock()
		p.err = err
		p.errMu.Unlock()
		close(p.closeCh)
		p.conn.Close()
	})
}

// Shutdown lets the writer flush what is queued, then closes
// Gives up after timeout and closes anyway
func (p *Peer) Shutdown(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p.sendCh <- nil:
		select {
		case <-p.closeCh:
		case <-timer.C:
		}
	case <-p.closeCh:
	case <-timer.C:
	}
	p.Close()
}

// readLoop decodes frames until the connection fails or handler rejects one
func (p *Peer) readLoop(handler func(*Peer, *Message) error) {
	for {
		msg, err := Decode(p.reader)
		if err != nil {
			p.closeWith(err)
			return
		}

		p.LastSeen.Store(time.Now().UnixNano())
		if msg.Seq > p.InSeq.Load() {
			p.InSeq.Store(msg.Seq)
		}

		if err := handler(p, msg); err != nil {
			p.closeWith(err)
			return
		}
	}
}

// writeLoop sends queued frames; a nil frame is the flush-and-close marker
func (p *Peer) writeLoop() {
	for {
		select {
		case <-p.closeCh:
			return
		case msg := <-p.sendCh:
			if msg == nil {
				p.writer.Flush()
				p.Close()
				return
			}
			if err := msg.Encode(p.writer); err != nil {
				p.closeWith(err)
				return
			}
			// Drain what is already queued before paying for a flush
			if len(p.sendCh) > 0 {
				continue
			}
			if err := p.writer.Flush(); err != nil {
				p.closeWith(err)
				return
			}
		}
	}
}

// start runs the I/O loops
func (p *Peer) start(handler func(*Peer, *Message) error) {
	go p.readLoop(handler)
	go p.writeLoop()
}

// writeNow sends one frame synchronously; only valid before start
func (p *Peer) writeNow(msg *Message) error {
	msg.Seq = p.OutSeq.Add(1)
	msg.Ack = p.InSeq.Load()
	if err := msg.Encode(p.writer); err != nil {
		return err
	}
	return p.writer.Flush()
}

// readNow reads one frame synchronously within timeout; only valid before start
func (p *Peer) readNow(timeout time.Duration) (*Message, error) {
	if timeout > 0 {
		p.conn.SetReadDeadline(time.Now().Add(timeout))
		defer p.conn.SetReadDeadline(time.Time{})
	}
	msg, err := Decode(p.reader)
	if err != nil {
		return nil, err
	}
	p.InSeq.Store(msg.Seq)
	return msg, nil
}

// dial establishes a connection with optional TLS
func dial(ctx context.Context, cfg *Config) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}

	if cfg.TLS != nil {
		td := &tls.Dialer{NetDialer: dialer, Config: cfg.TLS}
		return td.DialContext(ctx, "tcp", cfg.Address)
	}
	return dialer.DialContext(ctx, "tcp", cfg.Address)
}
