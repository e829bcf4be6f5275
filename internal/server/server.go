package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tanfree/tan-server-go/internal/game"
	"github.com/tanfree/tan-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Server is the thin presentation boundary over the engine. It holds no game
// logic: requests map onto engine calls and responses are redrawn from the
// returned snapshots.
type Server struct {
	engine *game.Engine
	hub    *Hub
	logger *zap.Logger
	router chi.Router
}

// New wires the HTTP routes and websocket hub over engine.
func New(engine *game.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		hub:    NewHub(logger),
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/health", s.handleHealth)
	r.Post("/api/games", s.handleCreate)
	r.Get("/api/games/{id}", s.handleSnapshot)
	r.Get("/api/games/{id}/events", s.handleEvents)
	r.Post("/api/games/{id}/actions", s.handleAction)
	r.Get("/api/games/{id}/export", s.handleExport)
	r.Post("/api/games/import", s.handleImport)
	r.Get("/ws/{id}", s.handleWS)
	s.router = r
	return s
}

// Handler exposes the router for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type createRequest struct {
	Players int   `json:"players"`
	Seed    int64 `json:"seed"`
}

type createResponse struct {
	ID    string          `json:"id"`
	State *game.GameState `json:"state"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, state, err := s.engine.Create(req.Players, req.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, createResponse{ID: id, State: state})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.engine.Events(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type actionResponse struct {
	State *game.GameState `json:"state"`
	Event string          `json:"event"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var act game.Action
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	state, event, err := s.engine.Apply(id, act)
	if err != nil {
		var rej *rules.Rejection
		if errors.As(err, &rej) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"reason":  rej.Code,
				"message": rej.Message,
			})
			return
		}
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.hub.Broadcast(id, stateMessage(state, event))
	writeJSON(w, http.StatusOK, actionResponse{State: state, Event: event})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.engine.Export(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, state, err := s.engine.Import(data)
	if err != nil {
		var rej *rules.Rejection
		if errors.As(err, &rej) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"reason":  rej.Code,
				"message": rej.Message,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, createResponse{ID: id, State: state})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
