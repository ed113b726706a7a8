package spectate

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/invaders/engine"
)

func snap(tick int) engine.Snapshot {
	return engine.Snapshot{
		Tick:        tick,
		Rows:        1,
		Cols:        2,
		DefenderCol: 1,
		DefenderRow: 1,
		AliveCount:  1,
		Cells:       []bool{true, false},
		Events:      []engine.Event{{Kind: engine.EventKill, Tick: tick, Entity: 1, Row: 0, Col: 1}},
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestFeedStreamsFrames(t *testing.T) {
	feed := NewFeed("")
	if err := feed.Start(); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(feed.Handler())
	defer srv.Close()

	if err := feed.Observe(snap(3)); err != nil {
		t.Fatal(err)
	}

	conn := dial(t, srv)
	defer conn.Close()

	first := readFrame(t, conn)
	if first.Tick != 3 || first.Alive != 1 {
		t.Fatalf("first frame = %+v, want latest round on subscribe", first)
	}
	if len(first.Grid) != 2 || first.Grid[0] != "I." || first.Grid[1] != " P" {
		t.Fatalf("grid = %q", first.Grid)
	}
	if len(first.Events) != 1 || !strings.Contains(first.Events[0], "kill entity 1") {
		t.Fatalf("events = %q", first.Events)
	}

	next := snap(4)
	next.Outcome = engine.OutcomeWin
	if err := feed.Observe(next); err != nil {
		t.Fatal(err)
	}
	second := readFrame(t, conn)
	if second.Tick != 4 || second.Outcome != "defender wins" {
		t.Fatalf("second frame = %+v", second)
	}

	if err := feed.Stop(); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("err = %v, want normal close", err)
	}
}

func TestFeedListens(t *testing.T) {
	feed := NewFeed("127.0.0.1:0")
	if err := feed.Start(); err != nil {
		t.Fatal(err)
	}
	defer feed.Stop()
	if feed.Addr() == "" || strings.HasSuffix(feed.Addr(), ":0") {
		t.Fatalf("addr = %q", feed.Addr())
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+feed.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := feed.Observe(snap(0)); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, conn); f.Tick != 0 || f.Cols != 2 {
		t.Fatalf("frame = %+v", f)
	}
}
