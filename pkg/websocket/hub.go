package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quiz-widget/internal/auth"
	"quiz-widget/internal/models"
)

// Message is the envelope exchanged over the socket in both directions.
//
// Inbound:  select_option {"index": n}, advance, sync.
// Outbound: state <models.View>, error {"message": "..."}.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	MessageSelectOption = models.CommandSelectOption
	MessageAdvance      = models.CommandAdvance
	MessageSync         = "sync"
	MessageState        = "state"
	MessageError        = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// SessionCommands is the part of the quiz service the hub forwards to.
type SessionCommands interface {
	SelectOption(ctx context.Context, id string, index int) (models.Session, error)
	Advance(ctx context.Context, id string) (models.Session, error)
	View(ctx context.Context, id string) (models.View, error)
}

// Hub fans session state out to every socket watching that session. A session
// is normally watched by one widget instance, but a reload or second tab of the
// same frame joins the same room.
type Hub struct {
	rooms      map[string]map[*Client]bool
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	commands   SessionCommands
	upgrader   websocket.Upgrader
}

// NewHub builds a hub. checkOrigin may be nil to accept every origin.
func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Hub) SetCommands(commands SessionCommands) {
	h.commands = commands
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Run processes unregistrations until ctx is done, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.mu.Lock()
			for id, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.sessionID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[client.sessionID] = room
	}
	room[client] = true
	slog.Debug("websocket client registered", "session_id", client.sessionID, "clients", len(room))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.sessionID]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.sessionID)
	}
	slog.Debug("websocket client removed", "session_id", client.sessionID, "clients", len(room))
}

func (h *Hub) requestUnregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns how many sockets watch sessionID.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastMessage sends a typed message to every client of the session.
func (h *Hub) BroadcastMessage(sessionID string, messageType string, data interface{}) {
	messageBytes, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		slog.Error("failed to marshal websocket message", "type", messageType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[sessionID] {
		h.queue(client, messageBytes)
	}
}

func (h *Hub) sendToClient(client *Client, messageType string, data interface{}) {
	messageBytes, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		slog.Error("failed to marshal websocket message", "type", messageType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.rooms[client.sessionID][client] {
		h.queue(client, messageBytes)
	}
}

// queue must be called with h.mu held for reading.
func (h *Hub) queue(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		slog.Warn("websocket send buffer full, dropping client", "session_id", client.sessionID)
		go h.requestUnregister(client)
	}
}

// HandleWebSocket upgrades the request and attaches it to the session found in
// the request context (see auth.SessionMiddleware).
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := auth.SessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.commands.View(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if errors.Is(err, models.ErrSessionCorrupt) {
			http.Error(w, err.Error(), http.StatusGone)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
	}
	h.registerClient(client)
	h.sendToClient(client, MessageState, view)

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.requestUnregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket closed unexpectedly", "session_id", c.sessionID, "error", err)
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.hub.sendToClient(c, MessageError, errorData("malformed message"))
		return
	}

	ctx := context.Background()
	var err error
	switch msg.Type {
	case MessageSelectOption:
		var data struct {
			Index *int `json:"index"`
		}
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.Index == nil {
			c.hub.sendToClient(c, MessageError, errorData("select_option needs an index"))
			return
		}
		_, err = c.hub.commands.SelectOption(ctx, c.sessionID, *data.Index)

	case MessageAdvance:
		_, err = c.hub.commands.Advance(ctx, c.sessionID)

	case MessageSync:
		var view models.View
		view, err = c.hub.commands.View(ctx, c.sessionID)
		if err == nil {
			c.hub.sendToClient(c, MessageState, view)
		}

	default:
		c.hub.sendToClient(c, MessageError, errorData("unknown message type "+msg.Type))
		return
	}

	// Successful commands reach every client through the service's broadcast.
	if err != nil {
		c.hub.sendToClient(c, MessageError, errorData(err.Error()))
	}
}

func errorData(message string) map[string]string {
	return map[string]string{"message": message}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
