package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientKey identifies one connected socket by session and node slot,
// the unit the Session actor addresses with Deliver.
type clientKey struct {
	sessionID string
	nodeID    int
}

// Hub fans session events out to connected node sockets, adapted from
// uhyunpark-hyperlicked/pkg/api/websocket.go's register/unregister/
// broadcast channel loop: that Hub keyed clients by connection identity
// alone, this one keys by (session, node) since many sessions share one
// process.
type Hub struct {
	mu      sync.RWMutex
	clients map[clientKey]*Client

	register   chan *Client
	unregister chan *Client

	log *zap.SugaredLogger
}

// NewHub returns an empty hub. Call Run in a goroutine to start it.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:    make(map[clientKey]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run drains register/unregister until ctx is done.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.key] = c
			h.mu.Unlock()
			h.log.Infow("client connected", "session", c.key.sessionID, "node", c.key.nodeID)
		case c := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.clients[c.key]; ok && existing == c {
				delete(h.clients, c.key)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Infow("client disconnected", "session", c.key.sessionID, "node", c.key.nodeID)
		}
	}
}

// Deliver implements session.Broadcaster: marshal payload and hand it to
// the socket for (sessionID, nodeID), if one is connected.
func (h *Hub) Deliver(sessionID string, nodeID int, payload any) {
	h.mu.RLock()
	c, ok := h.clients[clientKey{sessionID, nodeID}]
	h.mu.RUnlock()
	if !ok {
		return
	}
	data, err := json.Marshal(wsOutbound{Type: "message_received", Data: payload})
	if err != nil {
		h.log.Warnw("marshal delivery failed", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		h.log.Warnw("client send buffer full, dropping", "session", sessionID, "node", nodeID)
	}
}

// DeliverEvent sends a typed server->client event (phase_update,
// session_config, connected_nodes, consensus_result, new_round) to one
// client socket.
func (h *Hub) DeliverEvent(sessionID string, nodeID int, eventType string, data any) {
	h.mu.RLock()
	c, ok := h.clients[clientKey{sessionID, nodeID}]
	h.mu.RUnlock()
	if !ok {
		return
	}
	payload, err := json.Marshal(wsOutbound{Type: eventType, Data: data})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// BroadcastEvent sends a typed event to every socket connected to a
// session, regardless of node slot.
func (h *Hub) BroadcastEvent(sessionID string, eventType string, data any) {
	payload, err := json.Marshal(wsOutbound{Type: eventType, Data: data})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for key, c := range h.clients {
		if key.sessionID != sessionID {
			continue
		}
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Client is one connected WebSocket peer bound to a session/node slot.
type Client struct {
	hub  *Hub
	key  clientKey
	conn *websocket.Conn
	send chan []byte

	onInbound func(op string, value int)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg wsInbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if c.onInbound != nil {
			c.onInbound(msg.Op, msg.Value)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
