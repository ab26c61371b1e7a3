package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alkime/radiopanel/internal/panel"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Websocket event types.
const (
	EventStateInit    = "state_init"
	EventStateChanged = "state_changed"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second

	// coalesceWindow bounds how often a burst of snapshots from one drag is
	// flushed to clients. The latest snapshot in the window wins.
	coalesceWindow = 50 * time.Millisecond
)

// Envelope is the wire format of every websocket message.
type Envelope struct {
	Type string             `json:"type"`
	Ts   time.Time          `json:"ts"`
	Data *panel.DeviceState `json:"data,omitempty"`
}

func marshalEnvelope(typ string, state panel.DeviceState) ([]byte, error) {
	return json.Marshal(Envelope{Type: typ, Ts: time.Now().UTC(), Data: &state})
}

// HubConfig sizes the hub's queues. Zero values pick defaults.
type HubConfig struct {
	SendBuf      int
	BroadcastBuf int
}

// Hub tracks connected websocket clients. Each client has its own write
// pump; a client whose send queue is full is disconnected rather than
// allowed to hold up the others.
type Hub struct {
	logger *slog.Logger

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.Mutex
	clients map[*Client]struct{}
	sendBuf int
}

// NewHub constructs a hub. Call Run(ctx) to start it.
func NewHub(logger *slog.Logger, cfg HubConfig) *Hub {
	sendBuf := cfg.SendBuf
	if sendBuf <= 0 {
		sendBuf = 32
	}

	bcastBuf := cfg.BroadcastBuf
	if bcastBuf <= 0 {
		bcastBuf = 128
	}

	return &Hub{
		logger:     logger,
		broadcast:  make(chan []byte, bcastBuf),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		clients:    make(map[*Client]struct{}),
		sendBuf:    sendBuf,
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Run processes hub events until ctx is canceled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client registered", "remote_addr", c.remoteAddr, "clients", n)

		case c := <-h.unregister:
			h.removeClient(c, "unregister")

		case msg := <-h.broadcast:
			var slow []*Client

			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.Unlock()

			for _, c := range slow {
				h.removeClient(c, "slow_client")
			}
		}
	}
}

// BroadcastBytes enqueues a serialized frame for every client. It never
// blocks; a full hub queue drops the frame.
func (h *Hub) BroadcastBytes(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("ws hub broadcast queue full, dropping message", "bytes", len(msg))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

func (h *Hub) removeClient(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	c.close()
	h.logger.Info("ws client disconnected", "remote_addr", c.remoteAddr, "reason", reason, "clients", n)
}

// Client is one websocket connection.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	logger     *slog.Logger
	closeOnce  sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, hub.sendBuf),
		remoteAddr: remoteAddr,
		logger:     hub.logger,
	}
}

// close shuts the connection and signals the write pump to exit.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		close(c.send)
	})
}

func closeStatus(err error) (code int, text string, ok bool) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text, true
	}

	return 0, "", false
}

func (c *Client) logExit(pump string, err error) {
	if errors.Is(err, websocket.ErrCloseSent) {
		return
	}

	if code, text, ok := closeStatus(err); ok {
		c.logger.Debug("ws pump exiting (close)", "pump", pump, "remote_addr", c.remoteAddr, "code", code, "reason", text)
		return
	}

	c.logger.Debug("ws pump exiting", "pump", pump, "remote_addr", c.remoteAddr, "error", err)
}

// writePump writes queued frames and keepalive pings. It exits on a write
// error or when send is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logExit("write", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logExit("write", err)
				return
			}
		}
	}
}

// readPump discards incoming frames so control frames are handled and a
// disconnect is noticed, then unregisters the client.
func (c *Client) readPump() {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.logExit("read", err)

			select {
			case c.hub.unregister <- c:
			default:
				_ = c.conn.Close()
			}

			return
		}
	}
}

var upgrader = websocket.Upgrader{
	// The monitor is a local tool; any origin may watch the panel.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleStateWS upgrades the connection, registers the client and queues
// the state_init message.
func (s *Server) handleStateWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	client := newClient(s.hub, conn, c.Request.RemoteAddr)

	// The init frame is queued before registration so it is always first.
	initMsg, err := marshalEnvelope(EventStateInit, s.state.State())
	if err != nil {
		s.logger.Warn("ws init marshal failed", "error", err)
		client.close()

		return
	}

	client.send <- initMsg
	s.hub.register <- client

	// Pumps outlive the request; the hub and socket errors end them.
	go client.writePump()
	go client.readPump()
}

// RunBroadcaster forwards panel snapshots to the hub as state_changed
// events. Bursts are coalesced: at most one frame per coalesceWindow, always
// carrying the newest snapshot.
func RunBroadcaster(ctx context.Context, hub *Hub, src <-chan panel.DeviceState, logger *slog.Logger) {
	if hub == nil || src == nil {
		return
	}

	var (
		pending *panel.DeviceState
		timerC  <-chan time.Time
	)

	flush := func() {
		if pending == nil {
			return
		}

		msg, err := marshalEnvelope(EventStateChanged, *pending)
		pending = nil

		if err != nil {
			logger.Warn("ws broadcaster marshal failed", "error", err)
			return
		}

		hub.BroadcastBytes(msg)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case st, ok := <-src:
			if !ok {
				flush()
				return
			}

			pending = &st
			if timerC == nil {
				timerC = time.After(coalesceWindow)
			}

		case <-timerC:
			timerC = nil
			flush()
		}
	}
}
