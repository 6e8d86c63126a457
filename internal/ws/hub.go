package ws

import (
	"sync"

	"nhooyr.io/websocket"
)

// Event is a single JSON frame sent to clients: {"type": ..., "data": ...}.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub tracks every connected client and the ephemeral room each one is
// subscribed to. Rooms hold no durable state; they are rebuilt from chat
// membership on every join. A Hub instance is owned by the server composition,
// not a package global, so tests run isolated hubs.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{} // userID -> connections
	rooms   map[uint]map[*Client]struct{} // chatID -> subscribers
}

func NewHub() *Hub {
	return &Hub{
		clients: map[uint]map[*Client]struct{}{},
		rooms:   map[uint]map[*Client]struct{}{},
	}
}

// Add registers the client and starts its write and keepalive loops.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = map[*Client]struct{}{}
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()

	if c.conn != nil {
		go c.writeLoop()
		go c.keepAliveLoop()
	}
}

// Remove drops the client from its user set and from every room it joined,
// then closes the connection.
func (h *Hub) Remove(c *Client) {
	c.cancel()

	h.mu.Lock()
	if set, ok := h.clients[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	for chatID := range c.rooms {
		h.dropFromRoom(chatID, c)
	}
	c.rooms = map[uint]struct{}{}
	h.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}
}

func (h *Hub) JoinRoom(chatID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[chatID] == nil {
		h.rooms[chatID] = map[*Client]struct{}{}
	}
	h.rooms[chatID][c] = struct{}{}
	c.rooms[chatID] = struct{}{}
}

func (h *Hub) LeaveRoom(chatID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromRoom(chatID, c)
	delete(c.rooms, chatID)
}

// dropFromRoom requires h.mu to be held.
func (h *Hub) dropFromRoom(chatID uint, c *Client) {
	if set, ok := h.rooms[chatID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// BroadcastAll sends the event to every connected client.
func (h *Hub) BroadcastAll(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, set := range h.clients {
		for c := range set {
			c.trySend(ev)
		}
	}
}

// BroadcastRoom sends the event to every subscriber of the chat's room.
// A non-nil except is skipped, matching socket-scoped emits.
func (h *Hub) BroadcastRoom(chatID uint, ev Event, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[chatID] {
		if c == except {
			continue
		}
		c.trySend(ev)
	}
}

// SendTo delivers an event to a single client only.
func (h *Hub) SendTo(c *Client, ev Event) {
	c.trySend(ev)
}

// InRoom reports whether the client is currently subscribed to the chat's room.
func (h *Hub) InRoom(chatID uint, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.rooms[chatID][c]
	return ok
}
