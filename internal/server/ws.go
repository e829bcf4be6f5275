package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/tanfree/tan-server-go/internal/game"
	"github.com/tanfree/tan-server-go/internal/game/rules"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Connection is one websocket client at a table.
type Connection struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	gameID  string
}

func (c *Connection) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(messageType, data)
}

// wsMessage is the envelope for everything sent to clients.
type wsMessage struct {
	Type    string          `json:"type"`
	State   *game.GameState `json:"state,omitempty"`
	Event   string          `json:"event,omitempty"`
	Reason  rules.Reason    `json:"reason,omitempty"`
	Message string          `json:"message,omitempty"`
}

func stateMessage(state *game.GameState, event string) wsMessage {
	return wsMessage{Type: "state", State: state, Event: event}
}

// handleWS upgrades the request and attaches the client to a game table. The
// opening message is the current snapshot, then every applied action is
// broadcast; rejections go back to the sender only.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.engine.Snapshot(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &Connection{ws: ws}
	s.hub.Join(c, id)
	s.logger.Info("client joined table", zap.String("game_id", id))

	if data, err := json.Marshal(stateMessage(state, "")); err == nil {
		_ = c.write(websocket.TextMessage, data)
	}

	go s.readLoop(c)
}

// readLoop decodes action messages from one client and applies them through
// the engine.
func (s *Server) readLoop(c *Connection) {
	defer func() {
		s.hub.Leave(c)
		c.ws.Close()
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var act game.Action
		if err := json.Unmarshal(data, &act); err != nil {
			s.reply(c, wsMessage{Type: "error", Message: "bad action payload"})
			continue
		}

		state, event, err := s.engine.Apply(c.gameID, act)
		if err != nil {
			var rej *rules.Rejection
			if errors.As(err, &rej) {
				s.reply(c, wsMessage{Type: "rejected", Reason: rej.Code, Message: rej.Message})
			} else {
				s.reply(c, wsMessage{Type: "error", Message: err.Error()})
			}
			continue
		}
		s.hub.Broadcast(c.gameID, stateMessage(state, event))
	}
}

func (s *Server) reply(c *Connection, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := c.write(websocket.TextMessage, data); err != nil {
		s.logger.Debug("reply write failed", zap.Error(err))
	}
}
