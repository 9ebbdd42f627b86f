package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cuttlegame/cuttle-server-go/internal/config"
	"github.com/cuttlegame/cuttle-server-go/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsMessage is the envelope for every frame in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsActionRequest is a client frame submitting an action over the
// socket; it carries the same CAS fields as the REST endpoint.
type wsActionRequest struct {
	StateVersion int `json:"state_version"`
	ActionID     int `json:"action_id"`
}

type wsError struct {
	Error string `json:"error"`
}

// Client is one websocket subscriber: a session id plus the seat it
// views the game from.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	viewer    int
}

// Hub fans live session snapshots out to subscribed clients. Every
// applied action triggers a notify; each client receives the state
// redacted for its own seat.
type Hub struct {
	manager *session.Manager
	logger  *zap.Logger
	cfg     config.WebSocketConfig

	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	notify     chan string
}

func NewHub(manager *session.Manager, cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	return &Hub{
		manager:    manager,
		logger:     logger,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		notify:     make(chan string, 64),
	}
}

// Run owns the client set until the context ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client registered",
				zap.String("session_id", client.sessionID),
				zap.Int("viewer", client.viewer),
			)
			h.push(ctx, client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case sessionID := <-h.notify:
			h.broadcast(ctx, sessionID)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Notify schedules a snapshot broadcast for the session. It never
// blocks the caller; a full queue drops the notification because a
// later one supersedes it.
func (h *Hub) Notify(sessionID string) {
	select {
	case h.notify <- sessionID:
	default:
	}
}

func (h *Hub) broadcast(ctx context.Context, sessionID string) {
	h.mu.RLock()
	subscribers := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.sessionID == sessionID {
			subscribers = append(subscribers, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range subscribers {
		h.push(ctx, client)
	}
}

// push sends the client its current snapshot, dropping the frame if
// the client's queue is full.
func (h *Hub) push(ctx context.Context, client *Client) {
	snap, err := h.manager.Get(ctx, client.sessionID, client.viewer)
	if err != nil {
		h.logger.Warn("websocket snapshot fetch failed",
			zap.String("session_id", client.sessionID), zap.Error(err))
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("marshal snapshot", zap.Error(err))
		return
	}
	frame, _ := json.Marshal(wsMessage{Type: "game_state", Data: payload})
	select {
	case client.send <- frame:
	default:
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		if msg.Type != "action" {
			continue
		}
		var req wsActionRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.sendError("malformed action")
			continue
		}
		if _, err := c.hub.manager.SubmitID(ctx, c.sessionID, req.StateVersion, req.ActionID); err != nil {
			c.sendError(err.Error())
			continue
		}
		c.hub.Notify(c.sessionID)
	}
}

func (c *Client) sendError(message string) {
	payload, _ := json.Marshal(wsError{Error: message})
	frame, _ := json.Marshal(wsMessage{Type: "error", Data: payload})
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
