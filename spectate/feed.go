// Package spectate streams round frames to websocket clients.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/parameter"
	"github.com/lixenwraith/invaders/render"
)

// Frame is the JSON document pushed once per round
type Frame struct {
	Tick        int      `json:"tick"`
	Outcome     string   `json:"outcome"`
	Alive       int      `json:"alive"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	DefenderCol int      `json:"defender_col"`
	Projectiles int      `json:"projectiles"`
	Grid        []string `json:"grid"`
	Events      []string `json:"events,omitempty"`
}

// NewFrame flattens a snapshot for the wire
func NewFrame(s engine.Snapshot) Frame {
	f := Frame{
		Tick:        s.Tick,
		Outcome:     s.Outcome.String(),
		Alive:       s.AliveCount,
		Rows:        s.Rows,
		Cols:        s.Cols,
		DefenderCol: s.DefenderCol,
		Projectiles: len(s.Projectiles),
	}
	for _, line := range render.Cells(s) {
		f.Grid = append(f.Grid, string(line))
	}
	for _, ev := range s.Events {
		f.Events = append(f.Events, ev.String())
	}
	return f
}

var upgrader = websocket.Upgrader{
	// Read-only feed, any origin may watch
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// Feed is a sink serving the latest frames over websocket
// New subscribers immediately receive the most recent frame
type Feed struct {
	addr string
	srv  *http.Server
	ln   net.Listener

	mu   sync.Mutex
	subs map[*subscriber]struct{}
	last []byte
}

// NewFeed serves on addr once started; an empty addr only exposes Handler
func NewFeed(addr string) *Feed {
	return &Feed{
		addr: addr,
		subs: make(map[*subscriber]struct{}),
	}
}

func (f *Feed) Name() string { return "spectate" }

// Handler upgrades every request to a frame subscription
func (f *Feed) Handler() http.Handler {
	return http.HandlerFunc(f.serveWS)
}

// Addr returns the bound listen address, empty when not listening
func (f *Feed) Addr() string {
	if f.ln == nil {
		return ""
	}
	return f.ln.Addr().String()
}

func (f *Feed) Start() error {
	if f.addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return err
	}
	f.ln = ln
	mux := http.NewServeMux()
	mux.Handle("/ws", f.Handler())
	f.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := f.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[spectate] serve: %v", err)
		}
	}()
	log.Printf("[spectate] listening on %s", ln.Addr())
	return nil
}

// Observe publishes one frame to every subscriber; slow subscribers are dropped
func (f *Feed) Observe(s engine.Snapshot) error {
	data, err := json.Marshal(NewFrame(s))
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = data
	for sub := range f.subs {
		select {
		case sub.send <- data:
		default:
			log.Printf("[spectate] dropping slow subscriber %s", sub.conn.RemoteAddr())
			delete(f.subs, sub)
			sub.close()
		}
	}
	return nil
}

// Subscribers returns the live subscriber count
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) Stop() error {
	f.mu.Lock()
	for sub := range f.subs {
		delete(f.subs, sub)
		sub.close()
	}
	f.mu.Unlock()

	if f.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), parameter.SpectateWriteTimeout)
	defer cancel()
	return f.srv.Shutdown(ctx)
}

func (f *Feed) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[spectate] upgrade: %v", err)
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, parameter.SpectateSendQueue)}
	f.mu.Lock()
	f.subs[sub] = struct{}{}
	if f.last != nil {
		sub.send <- f.last
	}
	f.mu.Unlock()

	go f.writePump(sub)
	f.readPump(sub)
}

// readPump discards client messages and notices disconnects
func (f *Feed) readPump(sub *subscriber) {
	defer func() {
		f.mu.Lock()
		if _, ok := f.subs[sub]; ok {
			delete(f.subs, sub)
			sub.close()
		}
		f.mu.Unlock()
	}()

	sub.conn.SetReadLimit(1 << 10)
	_ = sub.conn.SetReadDeadline(time.Now().Add(parameter.SpectateReadTimeout))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(parameter.SpectateReadTimeout))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(sub *subscriber) {
	ticker := time.NewTicker(parameter.SpectatePingInterval)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case data, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(parameter.SpectateWriteTimeout))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run over"))
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(parameter.SpectateWriteTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
