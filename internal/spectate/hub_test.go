package spectate

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cancode/hyperworm/internal/core"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(log.New(io.Discard))
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, url string) (*Viewer, Frame) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, hello, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v, hello
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type testSnapshot struct {
	Room int     `json:"room"`
	Head float64 `json:"head"`
}

func TestBroadcast(t *testing.T) {
	hub, srv := newTestHub(t)

	v1, hello1 := dial(t, srv.URL)
	v2, hello2 := dial(t, srv.URL)

	if hello1.ClientID == "" || hello1.ClientID == hello2.ClientID {
		t.Errorf("client ids %q and %q should be unique and non-empty", hello1.ClientID, hello2.ClientID)
	}
	if v1.ID() != hello1.ClientID {
		t.Errorf("ID() = %q, expected %q", v1.ID(), hello1.ClientID)
	}
	if n := hub.Viewers(); n != 2 {
		t.Fatalf("Viewers() = %d, expected 2", n)
	}

	result := core.StepResult{
		State:  core.GameState{Score: 3},
		Events: []core.Event{{Type: "bite", Value: 3}},
	}
	if err := hub.Publish("hyperworm", result, testSnapshot{Room: 2, Head: 1.5}); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	for i, v := range []*Viewer{v1, v2} {
		f, err := v.Next()
		if err != nil {
			t.Fatalf("viewer %d: Next() failed: %v", i, err)
		}
		if f.Type != FrameTick || f.Seq != 1 || f.GameID != "hyperworm" || f.State.Score != 3 {
			t.Errorf("viewer %d: frame = %+v", i, f)
		}
		if len(f.Events) != 1 || f.Events[0].Type != "bite" {
			t.Errorf("viewer %d: events = %v", i, f.Events)
		}
		var snap testSnapshot
		if err := json.Unmarshal(f.Snapshot, &snap); err != nil {
			t.Fatalf("viewer %d: snapshot: %v", i, err)
		}
		if snap.Room != 2 || snap.Head != 1.5 {
			t.Errorf("viewer %d: snapshot = %+v", i, snap)
		}
	}
}

func TestLateViewerGetsLastSnapshot(t *testing.T) {
	hub, srv := newTestHub(t)

	hub.Publish("hyperworm", core.StepResult{State: core.GameState{Score: 7}}, testSnapshot{Room: 4})

	_, hello := dial(t, srv.URL+"/ws")
	if hello.GameID != "hyperworm" || hello.State.Score != 7 {
		t.Errorf("hello = %+v", hello)
	}
	var snap testSnapshot
	if err := json.Unmarshal(hello.Snapshot, &snap); err != nil || snap.Room != 4 {
		t.Errorf("hello snapshot = %s (%v)", hello.Snapshot, err)
	}
}

func TestEndFrame(t *testing.T) {
	hub, srv := newTestHub(t)
	v, _ := dial(t, srv.URL)

	if err := hub.End("hyperworm", core.GameState{Score: 9, GameOver: true}); err != nil {
		t.Fatalf("End() failed: %v", err)
	}
	f, err := v.Next()
	if err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	if f.Type != FrameEnd || !f.State.GameOver || f.State.Score != 9 {
		t.Errorf("frame = %+v", f)
	}
}

func TestViewerDisconnect(t *testing.T) {
	hub, srv := newTestHub(t)
	v, _ := dial(t, srv.URL)

	v.Close()
	waitFor(t, "viewer removal", func() bool { return hub.Viewers() == 0 })

	if err := hub.Publish("hyperworm", core.StepResult{}, nil); err != nil {
		t.Errorf("Publish() with no viewers failed: %v", err)
	}
}

func TestSlowViewerDropped(t *testing.T) {
	hub := NewHub(log.New(io.Discard))
	slow := &client{id: "slow", send: make(chan []byte, 1)}
	hub.clients[slow.id] = slow

	hub.Publish("hyperworm", core.StepResult{}, nil)
	if hub.Viewers() != 1 {
		t.Fatal("viewer dropped with room in its queue")
	}

	hub.Publish("hyperworm", core.StepResult{}, nil)
	if hub.Viewers() != 0 || hub.Dropped() != 1 {
		t.Errorf("Viewers() = %d, Dropped() = %d; expected the full viewer dropped", hub.Viewers(), hub.Dropped())
	}
	if _, ok := <-slow.send; !ok {
		t.Error("queued frame lost")
	}
	if _, ok := <-slow.send; ok {
		t.Error("queue not closed after drop")
	}
}

func TestHubCloseDisconnects(t *testing.T) {
	hub, srv := newTestHub(t)
	v, _ := dial(t, srv.URL)

	hub.Close()
	if _, err := v.Next(); err == nil {
		t.Error("Next() succeeded after hub closed")
	}
	if hub.Viewers() != 0 {
		t.Errorf("Viewers() = %d after Close", hub.Viewers())
	}
}

func TestStatusEndpoint(t *testing.T) {
	hub, srv := newTestHub(t)
	dial(t, srv.URL)
	hub.Publish("hyperworm", core.StepResult{}, nil)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	var status struct {
		Viewers int    `json:"viewers"`
		Seq     uint64 `json:"seq"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Viewers != 1 || status.Seq != 1 {
		t.Errorf("status = %+v", status)
	}

	missing, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope failed: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope = %d, expected 404", missing.StatusCode)
	}
}

func TestServe(t *testing.T) {
	hub := NewHub(log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())

	addrc := make(chan net.Addr, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- hub.Serve(ctx, "127.0.0.1:0", func(a net.Addr) { addrc <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrc:
	case err := <-errc:
		t.Fatalf("Serve() failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	dial(t, "http://"+addr.String())
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve() = %v after cancel", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestWSURL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://example.com/", "wss://example.com/ws"},
		{"ws://host:1/ws", "ws://host:1/ws"},
		{"localhost:9000", "ws://localhost:9000/ws"},
	}

	for _, tc := range tests {
		if got := wsURL(tc.in); got != tc.expected {
			t.Errorf("wsURL(%q) = %q, expected %q", tc.in, got, tc.expected)
		}
	}
}
