package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cuttlegame/cuttle-server-go/internal/game"
	"github.com/cuttlegame/cuttle-server-go/internal/session"
)

// Server is the HTTP surface over the session coordinator: session
// lifecycle, legal-action queries, action submission with the version
// CAS, history, and the websocket upgrade.
type Server struct {
	manager *session.Manager
	hub     *Hub
	logger  *zap.Logger
}

func New(manager *session.Manager, hub *Hub, logger *zap.Logger) *Server {
	return &Server{manager: manager, hub: hub, logger: logger}
}

// Routes builds the API mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /api/sessions/{id}/actions", s.handleGetActions)
	mux.HandleFunc("POST /api/sessions/{id}/actions", s.handleSubmitAction)
	mux.HandleFunc("GET /api/sessions/{id}/history", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/ws", s.handleWebSocket)
	return s.logRequests(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var opts session.CreateOptions
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}
	snap, err := s.manager.Create(r.Context(), opts)
	if err != nil {
		s.writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.Get(r.Context(), r.PathValue("id"), viewerParam(r))
	if err != nil {
		s.writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetActions(w http.ResponseWriter, r *http.Request) {
	actions, version, err := s.manager.Actions(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state_version": version,
		"actions":       actions,
	})
}

type actionRequest struct {
	StateVersion int `json:"state_version"`
	ActionID     int `json:"action_id"`
}

func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	id := r.PathValue("id")
	snap, err := s.manager.SubmitID(r.Context(), id, req.StateVersion, req.ActionID)
	if err != nil {
		s.writeManagerError(w, err)
		return
	}
	s.hub.Notify(id)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.manager.History(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeManagerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	viewer := viewerParam(r)
	if _, err := s.manager.Get(r.Context(), sessionID, viewer); err != nil {
		s.writeManagerError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{
		hub:       s.hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		viewer:    viewer,
	}
	s.hub.register <- client
	go client.writePump()
	// The request context dies when this handler returns; the hijacked
	// connection outlives it.
	go client.readPump(context.Background())
}

// viewerParam parses the seat the caller views the game from;
// anything but 1 means seat 0.
func viewerParam(r *http.Request) int {
	if viewer, err := strconv.Atoi(r.URL.Query().Get("viewer")); err == nil && viewer == 1 {
		return 1
	}
	return 0
}

func (s *Server) writeManagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrSessionLimit):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, game.ErrIllegalAction), errors.Is(err, game.ErrMalformedAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
