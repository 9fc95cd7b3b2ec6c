package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// WSHub manages live connections and room-based message delivery.
// Rooms are game-scoped ("game:{id}").
type WSHub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*WSConn // room -> connID -> conn
	closed bool
	logger *slog.Logger
}

// WSConn is one subscriber. The transport drains Send; the hub closes it on shutdown.
type WSConn struct {
	ID       string
	PlayerID string
	Send     chan []byte
}

// WSMessage is the payload sent to subscribers.
type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NewWSConn creates a connection with a buffered send queue.
func NewWSConn(id, playerID string, buffer int) *WSConn {
	return &WSConn{ID: id, PlayerID: playerID, Send: make(chan []byte, buffer)}
}

// NewWSHub creates a new hub.
func NewWSHub(logger *slog.Logger) *WSHub {
	return &WSHub{
		rooms:  make(map[string]map[string]*WSConn),
		logger: logger,
	}
}

// GameRoom returns the room name for a game.
func GameRoom(gameID string) string { return "game:" + gameID }

// Join adds a connection to a room. It reports false once the hub has shut down.
func (h *WSHub) Join(room string, conn *WSConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*WSConn)
	}
	h.rooms[room][conn.ID] = conn
	return true
}

// Leave removes a connection from a room.
func (h *WSHub) Leave(room string, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[room]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish sends a message to all connections in a room. Slow subscribers
// with a full buffer miss the message.
func (h *WSHub) Publish(room string, event string, data interface{}) {
	msg := WSMessage{Event: event, Data: data}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("ws marshal error", "error", err, "room", room, "event", event)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.rooms[room]
	if !ok {
		return
	}

	for _, conn := range conns {
		select {
		case conn.Send <- payload:
		default:
			h.logger.Warn("ws send buffer full", "conn_id", conn.ID, "room", room)
		}
	}
}

// PublishToGame publishes to a game-scoped room.
func (h *WSHub) PublishToGame(gameID string, event string, data interface{}) {
	h.Publish(GameRoom(gameID), event, data)
}

// ConnectionCount returns the total number of active connections.
func (h *WSHub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, conns := range h.rooms {
		count += len(conns)
	}
	return count
}

// RoomCount returns the number of active rooms.
func (h *WSHub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Shutdown closes all connections and refuses new ones.
func (h *WSHub) Shutdown(_ context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for room, conns := range h.rooms {
		for _, conn := range conns {
			close(conn.Send)
		}
		delete(h.rooms, room)
	}
}
