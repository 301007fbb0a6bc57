package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/lobbyserver/game/router"
	"github.com/wricardo/mcp-training/lobbyserver/game/session"
	"github.com/wricardo/mcp-training/lobbyserver/transport/websocket"
)

// Server exposes the websocket endpoint, a read-only inspection API over
// live sessions, an operator broadcast endpoint, and the static demo UI.
type Server struct {
	sessions  *session.Manager
	broadcast *router.Router
	gateway   *websocket.Gateway
	staticDir string
	mux       *mux.Router
}

// NewServer creates the HTTP server. gateway may be nil in tests that only
// exercise the REST endpoints.
func NewServer(sessions *session.Manager, rt *router.Router, gateway *websocket.Gateway, staticDir string) *Server {
	s := &Server{
		sessions:  sessions,
		broadcast: rt,
		gateway:   gateway,
		staticDir: staticDir,
		mux:       mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.mux.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/broadcast", s.handleBroadcast).Methods("POST")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.mux.HandleFunc("/ws", s.handleWebSocket)

	// Static demo UI
	s.mux.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	snapshots := s.sessions.Snapshots()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(snapshots),
		"sessions": snapshots,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	snapshot, err := s.sessions.Snapshot(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// handleBroadcast pushes an arbitrary JSON payload to every connection of a
// session. Operator tooling (and the MCP interface) uses this to inject
// announcements without holding a websocket.
func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	if _, err := s.sessions.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.broadcast.Broadcast(sessionID, payload)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Broadcast sent to session %s", sessionID),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		http.Error(w, "WebSocket not enabled", http.StatusServiceUnavailable)
		return
	}
	s.gateway.ServeWS(w, r)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
