package network

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/invaders/protocol"
	"github.com/lixenwraith/invaders/round"
)

var (
	ErrRejected  = errors.New("handshake rejected")
	ErrHandshake = errors.New("handshake failed")
)

// shutdownGrace bounds how long queued frames get to drain on Close
const shutdownGrace = time.Second

// Server is the coordinator end of the TCP link
// Each worker connection claims one entity id during the handshake; once every
// id is claimed the server behaves as a round.Coordinator
type Server struct {
	cfg      *Config
	listener net.Listener

	mu     sync.Mutex
	peers  []*Peer // indexed by entity id
	joined int
	ready  chan struct{}

	up        chan protocol.Response
	lost      chan error
	collector round.Collector
	tick      atomic.Int64

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Listen binds the coordinator address and starts accepting workers
func Listen(cfg *Config) (*Server, error) {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return nil, fmt.Errorf("network: invalid grid %dx%d", cfg.Rows, cfg.Cols)
	}

	var ln net.Listener
	var err error
	if cfg.TLS != nil {
		ln, err = tls.Listen("tcp", cfg.Address, cfg.TLS)
	} else {
		ln, err = net.Listen("tcp", cfg.Address)
	}
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers()
	s := &Server{
		cfg:       cfg,
		listener:  ln,
		peers:     make([]*Peer, workers),
		ready:     make(chan struct{}),
		up:        make(chan protocol.Response, workers),
		lost:      make(chan error, workers),
		collector: round.Collector{Workers: workers, Cols: cfg.Cols, Timeout: cfg.CollectTimeout},
		stopCh:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the bound address
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Joined returns the number of entities claimed so far
func (s *Server) Joined() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

// Accept blocks until every entity id has a connected worker
func (s *Server) Accept(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for workers (%d of %d joined): %w", s.Joined(), len(s.peers), ctx.Err())
	case <-s.stopCh:
		return round.ErrClosed
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			log.Printf("[net] accept: %v", err)
			return
		}

		go func() {
			if err := s.handshake(conn); err != nil {
				log.Printf("[net] %s: %v", conn.RemoteAddr(), err)
			}
		}()
	}
}

// handshake reads the hello, claims the entity and answers welcome or reject
func (s *Server) handshake(conn net.Conn) error {
	p := newPeer(-1, conn, s.cfg.SendQueueSize)

	msg, err := p.readNow(s.cfg.HandshakeTimeout)
	if err != nil {
		p.Close()
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if msg.Type != MsgHello {
		return s.reject(p, fmt.Sprintf("expected hello, got %s", msg.Type))
	}
	hello, err := protocol.UnmarshalHello(msg.Payload)
	if err != nil {
		return s.reject(p, err.Error())
	}
	if int(hello.Cols) != s.cfg.Cols {
		return s.reject(p, fmt.Sprintf("grid is %d columns wide, worker expects %d", s.cfg.Cols, hello.Cols))
	}

	id := int(hello.Entity)
	if err := s.claim(id, p); err != nil {
		return s.reject(p, err.Error())
	}

	payload, err := protocol.MarshalWelcome(protocol.Welcome{Rows: int32(s.cfg.Rows), Cols: int32(s.cfg.Cols)})
	if err == nil {
		err = p.writeNow(NewMessage(MsgWelcome, payload))
	}
	if err != nil {
		p.Close()
		s.release(id)
		return fmt.Errorf("%w: welcome: %v", ErrHandshake, err)
	}

	p.start(s.handleFrame)
	go s.monitorPeer(p)

	log.Printf("[net] entity %d joined from %s", id, p.Addr)
	s.markJoined()
	return nil
}

func (s *Server) reject(p *Peer, reason string) error {
	p.writeNow(NewMessage(MsgReject, []byte(reason)))
	p.Close()
	return fmt.Errorf("%w: %s", ErrRejected, reason)
}

func (s *Server) claim(id int, p *Peer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.stopCh:
		return round.ErrClosed
	default:
	}
	if id < 0 || id >= len(s.peers) {
		return fmt.Errorf("entity %d outside 0..%d", id, len(s.peers)-1)
	}
	if s.peers[id] != nil {
		return fmt.Errorf("entity %d already claimed", id)
	}
	p.ID = id
	s.peers[id] = p
	return nil
}

func (s *Server) release(id int) {
	s.mu.Lock()
	s.peers[id] = nil
	s.mu.Unlock()
}

func (s *Server) markJoined() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined++
	if s.joined == len(s.peers) {
		close(s.ready)
	}
}

// handleFrame forwards responses into the collector
// A frame that cannot be trusted closes the peer with a protocol violation
func (s *Server) handleFrame(p *Peer, msg *Message) error {
	tick := int(s.tick.Load())
	if msg.Type != MsgResponse {
		return round.Violation(p.ID, tick, fmt.Errorf("%w: unexpected %s frame", round.ErrMalformedResponse, msg.Type))
	}
	resp, err := protocol.UnmarshalResponse(msg.Payload)
	if err != nil {
		return round.Violation(p.ID, tick, fmt.Errorf("%w: %v", round.ErrMalformedResponse, err))
	}
	if resp.Sender != p.ID {
		return round.Violation(p.ID, tick, fmt.Errorf("%w: connection for entity %d claims %d", round.ErrUnknownSender, p.ID, resp.Sender))
	}

	select {
	case s.up <- resp:
		return nil
	case <-s.stopCh:
		return round.ErrClosed
	}
}

// monitorPeer reports a peer that goes away while the server is running
func (s *Server) monitorPeer(p *Peer) {
	select {
	case <-p.Done():
	case <-s.stopCh:
		return
	}
	select {
	case <-s.stopCh:
		return
	default:
	}

	err := p.Err()
	if err == nil {
		err = ErrPeerClosed
	}
	var v *round.ViolationError
	if !errors.As(err, &v) {
		err = fmt.Errorf("entity %d (%s): %w", p.ID, p.Addr, err)
	}
	select {
	case s.lost <- err:
	default:
	}
}

// Broadcast queues msg on every connection
// A backed-up queue means the worker stopped reading
func (s *Server) Broadcast(ctx context.Context, msg protocol.RoundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := protocol.MarshalRound(msg)
	if err != nil {
		return err
	}
	if !msg.Terminal() {
		s.tick.Store(int64(msg.Tick))
	}

	s.mu.Lock()
	peers := append([]*Peer(nil), s.peers...)
	s.mu.Unlock()

	var first error
	for id, p := range peers {
		var err error
		if p == nil {
			err = round.Violation(id, msg.Tick, fmt.Errorf("%w: never joined", round.ErrWorkerLost))
		} else {
			frame := NewMessage(MsgRound, payload)
			if msg.Terminal() {
				frame.Flags |= FlagTerminal
			}
			switch e := p.Send(frame); {
			case errors.Is(e, ErrQueueFull):
				err = round.Violation(id, msg.Tick, round.ErrNotConsumed)
			case e != nil:
				err = round.Violation(id, msg.Tick, fmt.Errorf("%w: %v", round.ErrWorkerLost, e))
			}
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Collect implements round.Coordinator
func (s *Server) Collect(ctx context.Context, tick int) ([]protocol.Event, error) {
	return s.collector.Collect(ctx, s.up, s.lost, tick)
}

// Close drains queued frames, then drops every connection
func (s *Server) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.listener.Close()

		s.mu.Lock()
		peers := append([]*Peer(nil), s.peers...)
		s.mu.Unlock()

		var wg sync.WaitGroup
		for _, p := range peers {
			if p == nil {
				continue
			}
			wg.Add(1)
			go func(p *Peer) {
				defer wg.Done()
				p.Shutdown(shutdownGrace)
			}(p)
		}
		wg.Wait()
	})
	s.wg.Wait()
	return nil
}
