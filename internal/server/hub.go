package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub tracks the websocket connections watching each game table.
type Hub struct {
	mu        sync.RWMutex
	gameConns map[string][]*Connection
	logger    *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		gameConns: make(map[string][]*Connection),
		logger:    logger,
	}
}

// Join subscribes a connection to a game's broadcasts.
func (h *Hub) Join(c *Connection, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.gameID = gameID
	h.gameConns[gameID] = append(h.gameConns[gameID], c)
}

// Leave drops a connection from its game.
func (h *Hub) Leave(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.gameConns[c.gameID]
	for i, conn := range conns {
		if conn == c {
			h.gameConns[c.gameID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.gameConns[c.gameID]) == 0 {
		delete(h.gameConns, c.gameID)
	}
}

// Broadcast sends a message to every connection watching a game.
func (h *Hub) Broadcast(gameID string, msg any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("broadcast encode failed", zap.Error(err))
		return
	}
	for _, c := range h.gameConns[gameID] {
		if err := c.write(websocket.TextMessage, data); err != nil {
			h.logger.Debug("broadcast write failed", zap.String("game_id", gameID), zap.Error(err))
		}
	}
}
