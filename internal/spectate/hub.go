// Package spectate streams game snapshots to websocket viewers.
//
// The game loop publishes one frame per tick. Each viewer gets its own
// buffered queue drained by a writer goroutine; a viewer whose queue is
// full is disconnected so the game loop never blocks on the network.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cancode/hyperworm/internal/core"
)

// Frame types.
const (
	FrameHello = "hello"
	FrameTick  = "tick"
	FrameEnd   = "end"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Frame is one message sent to viewers.
type Frame struct {
	Type     string          `json:"type"`
	Seq      uint64          `json:"seq"`
	ClientID string          `json:"client_id,omitempty"`
	GameID   string          `json:"game_id,omitempty"`
	State    core.GameState  `json:"state"`
	Events   []core.Event    `json:"events,omitempty"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
}

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// Hub fans frames out to connected viewers.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
	last    *Frame // replayed to viewers as they join
	closed  bool

	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewHub creates a hub. A nil logger uses the default logger.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		logger:  logger.WithPrefix("spectate"),
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler: /ws upgrades to a viewer stream and
// / reports hub status as JSON.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/", h.serveStatus)
	return mux
}

func (h *Hub) serveStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"viewers": h.Viewers(),
		"seq":     h.seq.Load(),
		"dropped": h.dropped.Load(),
	})
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: r.RemoteAddr,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c.id] = c
	hello := Frame{Type: FrameHello, Seq: h.seq.Load(), ClientID: c.id}
	if h.last != nil {
		hello.GameID = h.last.GameID
		hello.State = h.last.State
		hello.Snapshot = h.last.Snapshot
	}
	if b, err := json.Marshal(hello); err == nil {
		c.send <- b
	}
	h.mu.Unlock()

	h.logger.Info("viewer joined", "id", c.id, "remote", c.remote)

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards viewer messages and keeps the read deadline fresh.
func (h *Hub) readPump(c *client) {
	defer h.remove(c, "disconnected")

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("read error", "id", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c, "write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c, "ping failed")
				return
			}
		}
	}
}

// remove unregisters c and closes its queue. Safe to call more than once.
func (h *Hub) remove(c *client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	if ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		h.logger.Info("viewer left", "id", c.id, "reason", reason)
	}
}

// Publish sends one tick to every viewer. It never blocks: viewers whose
// queue is full are dropped.
func (h *Hub) Publish(gameID string, result core.StepResult, snapshot any) error {
	f := Frame{
		Type:   FrameTick,
		Seq:    h.seq.Add(1),
		GameID: gameID,
		State:  result.State,
		Events: result.Events,
	}
	if snapshot != nil {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("spectate: marshal snapshot: %w", err)
		}
		f.Snapshot = raw
	}
	return h.broadcast(f)
}

// End tells viewers the run is over.
func (h *Hub) End(gameID string, state core.GameState) error {
	return h.broadcast(Frame{Type: FrameEnd, Seq: h.seq.Add(1), GameID: gameID, State: state})
}

func (h *Hub) broadcast(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("spectate: marshal frame: %w", err)
	}

	var slow []*client
	h.mu.Lock()
	h.last = &f
	for _, c := range h.clients {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.dropped.Add(1)
		h.remove(c, "too slow")
	}
	return nil
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many viewers were disconnected for falling behind.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close disconnects every viewer and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*client)
	for _, c := range clients {
		close(c.send)
	}
	h.mu.Unlock()
}

// Serve runs an HTTP server for the hub on addr until ctx is cancelled.
// ready, when non-nil, receives the bound address once listening.
func (h *Hub) Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("spectate: listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}
	h.logger.Info("spectator server listening", "address", ln.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("spectate: serve: %w", err)
	}
}
