package network

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/protocol"
	"github.com/lixenwraith/invaders/round"
	"github.com/lixenwraith/invaders/sim"
	"github.com/lixenwraith/invaders/worker"
)

func listen(t *testing.T, rows, cols int) (*Server, *Config) {
	t.Helper()
	cfg := DefaultConfig("127.0.0.1:0", rows, cols)
	cfg.CollectTimeout = 5 * time.Second
	srv, err := Listen(cfg)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	wcfg := *cfg
	wcfg.Address = srv.Addr().String()
	return srv, &wcfg
}

func dialT(t *testing.T, cfg *Config, entity int) *Client {
	t.Helper()
	c, err := Dial(context.Background(), cfg, entity)
	if err != nil {
		t.Fatalf("Dial %d: %v", entity, err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := &Message{Type: MsgRound, Flags: FlagTerminal, Seq: 7, Ack: 3, Payload: []byte{1, 2, 3}}
	if err := in.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != HeaderSize+3 {
		t.Fatalf("frame is %d bytes, want %d", buf.Len(), HeaderSize+3)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("decoded %+v, want %+v", out, in)
	}

	big := NewMessage(MsgRound, make([]byte, MaxPayload+1))
	if err := big.Encode(&buf); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestLoopbackRunMatchesLocalRun(t *testing.T) {
	const rows, cols = 2, 3
	p := engine.DefaultParams(rows, cols)
	p.Seed = 9
	policy := worker.Policy{FireProbability: 0.5, FireCadence: 2}

	srv, cfg := listen(t, rows, cols)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ids := make([]int, rows*cols)
	for i := range ids {
		ids[i] = i
	}
	done := make(chan error, 1)
	go func() {
		done <- sim.Workers(ctx, ids, cols, p.Seed, policy, func(ctx context.Context, id int) (round.Endpoint, error) {
			return Dial(ctx, cfg, id)
		})
	}()

	if err := srv.Accept(ctx); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	e, err := engine.New(p, srv)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	remote, err := e.Run(ctx)
	if err != nil {
		t.Fatalf("remote run: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("workers: %v", err)
	}

	local, err := sim.Local(context.Background(), p, policy, time.Second)
	if err != nil {
		t.Fatalf("local run: %v", err)
	}
	if !reflect.DeepEqual(remote, local) {
		t.Fatalf("remote run diverged from local run:\n%+v\n%+v", remote, local)
	}
}

func TestHandshakeRejections(t *testing.T) {
	_, cfg := listen(t, 1, 2)
	dialT(t, cfg, 0)

	tests := []struct {
		name   string
		entity int
		cols   int
		reason string
	}{
		{"duplicate", 0, 2, "already claimed"},
		{"out of range", 5, 2, "outside"},
		{"wrong width", 1, 3, "columns wide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *cfg
			c.Cols = tt.cols
			_, err := Dial(context.Background(), &c, tt.entity)
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("err = %v, want ErrRejected", err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Fatalf("err = %v, want reason containing %q", err, tt.reason)
			}
		})
	}
}

func TestAcceptHonoursContext(t *testing.T) {
	srv, _ := listen(t, 1, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := srv.Accept(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestSpoofedSenderIsViolation(t *testing.T) {
	srv, cfg := listen(t, 1, 1)
	c := dialT(t, cfg, 0)
	ctx := context.Background()
	if err := srv.Accept(ctx); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := srv.Broadcast(ctx, protocol.RoundMessage{Tick: 0, Frontier: []int{0}}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	msg, err := c.Receive(ctx)
	if err != nil || msg.Tick != 0 {
		t.Fatalf("Receive = %+v, %v", msg, err)
	}
	if err := c.Send(ctx, protocol.Response{Sender: 3, Tick: 0}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	_, err = srv.Collect(ctx, 0)
	if !errors.Is(err, round.ErrUnknownSender) || !errors.Is(err, round.ErrProtocol) {
		t.Fatalf("err = %v, want unknown sender violation", err)
	}
}

func TestLostWorkerFailsCollect(t *testing.T) {
	srv, cfg := listen(t, 1, 2)
	dialT(t, cfg, 0)
	gone := dialT(t, cfg, 1)
	ctx := context.Background()
	if err := srv.Accept(ctx); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	gone.Close()
	_, err := srv.Collect(ctx, 0)
	if !errors.Is(err, round.ErrWorkerLost) {
		t.Fatalf("err = %v, want ErrWorkerLost", err)
	}
}

func TestSentinelReachesWorkersBeforeClose(t *testing.T) {
	srv, cfg := listen(t, 1, 1)
	c := dialT(t, cfg, 0)
	ctx := context.Background()
	if err := srv.Accept(ctx); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := srv.Broadcast(ctx, protocol.Sentinel(1)); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	srv.Close()

	msg, err := c.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !msg.Terminal() {
		t.Fatalf("got tick %d, want sentinel", msg.Tick)
	}
}
