package protocol

import (
	"encoding/json"
	"log"

	"github.com/wricardo/mcp-training/lobbyserver/game/registry"
	"github.com/wricardo/mcp-training/lobbyserver/game/router"
	"github.com/wricardo/mcp-training/lobbyserver/game/session"
)

// Game is the pluggable domain logic hosted by the framework. One
// implementation is selected at startup; it never touches connections
// directly, only the Handle it is given.
type Game interface {
	// OnSessionCreated runs after a host control message created a session.
	OnSessionCreated(h *Handle)

	// OnParticipantJoined runs after a join or rejoin succeeded, before the
	// joined broadcast goes out.
	OnParticipantJoined(h *Handle, p session.Participant, rejoin bool)

	// OnApplicationMessage receives every non-control frame from a bound
	// participant, verbatim. The game may broadcast or send any number of
	// messages in response.
	OnApplicationMessage(h *Handle, p session.Participant, msg json.RawMessage)
}

// Handle is the game's capability to talk to one session's audience.
type Handle struct {
	sessionID string
	router    *router.Router
	sessions  *session.Manager
}

// SessionID returns the id of the bound session.
func (h *Handle) SessionID() string {
	return h.sessionID
}

// Broadcast sends msg to the session's host and every participant.
func (h *Handle) Broadcast(msg any) {
	h.router.Broadcast(h.sessionID, msg)
}

// Send delivers msg to the named sender and recipient only. See
// router.Unicast for the sender-echo contract.
func (h *Handle) Send(fromName, toName string, msg any) {
	h.router.Unicast(h.sessionID, fromName, toName, msg)
}

// Snapshot returns the current wire-visible state of the bound session.
func (h *Handle) Snapshot() (session.Snapshot, error) {
	return h.sessions.Snapshot(h.sessionID)
}

// Data returns the session's opaque domain state.
func (h *Handle) Data() any {
	if s, err := h.sessions.Get(h.sessionID); err == nil {
		return s.Data
	}
	return nil
}

// SetData replaces the session's opaque domain state.
func (h *Handle) SetData(v any) {
	if s, err := h.sessions.Get(h.sessionID); err == nil {
		s.Data = v
	}
}

// Handler is the protocol state machine. It classifies inbound frames as
// control messages (handled against the session manager) or application
// messages (forwarded to the game), and emits all control replies through
// the router and registry.
type Handler struct {
	registry *registry.Registry
	sessions *session.Manager
	router   *router.Router
	game     Game
}

// NewHandler wires the protocol state machine over explicitly injected
// state. Nothing here is global; tests construct handlers over fake
// connections.
func NewHandler(reg *registry.Registry, sessions *session.Manager, rt *router.Router, game Game) *Handler {
	return &Handler{
		registry: reg,
		sessions: sessions,
		router:   rt,
		game:     game,
	}
}

func (h *Handler) handle(sessionID string) *Handle {
	return &Handle{sessionID: sessionID, router: h.router, sessions: h.sessions}
}

// HandleMessage processes one inbound frame from connID. Malformed frames
// are dropped; no inbound frame is ever fatal to the connection or the
// process.
func (h *Handler) HandleMessage(connID string, frame []byte) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		log.Printf("protocol: dropping malformed frame from %s: %v", connID, err)
		return
	}

	switch env.Type {
	case TypeHost:
		h.handleHost(connID)
	case TypeJoin:
		h.handleJoin(connID, env.GameID, env.PlayerName)
	default:
		h.handleApplication(connID, frame)
	}
}

// handleHost creates a session owned by connID. Hosting is allowed from
// any state; the connection's previous binding, if any, is superseded.
func (h *Handler) handleHost(connID string) {
	s := h.sessions.Create(connID)
	log.Printf("protocol: connection %s hosted session %s", connID, s.ID)

	h.game.OnSessionCreated(h.handle(s.ID))

	snapshot, err := h.sessions.Snapshot(s.ID)
	if err != nil {
		return
	}
	h.registry.Deliver(connID, HostedMessage{Type: TypeHosted, Game: snapshot})
}

func (h *Handler) handleJoin(connID, gameID, playerName string) {
	result, err := h.sessions.AddOrRejoinParticipant(gameID, playerName, connID)
	switch {
	case err == session.ErrSessionNotFound:
		h.registry.Deliver(connID, ErrorMessage{Type: TypeGameNotFound})
		return
	case err == session.ErrDuplicateName:
		h.registry.Deliver(connID, ErrorMessage{Type: TypeDuplicatePlayer})
		return
	case err != nil:
		log.Printf("protocol: join of %q to session %s failed: %v", playerName, gameID, err)
		return
	}

	log.Printf("protocol: %q joined session %s (rejoin=%v)", playerName, gameID, result.Rejoin)

	h.game.OnParticipantJoined(h.handle(gameID), result.Participant, result.Rejoin)

	snapshot, err := h.sessions.Snapshot(gameID)
	if err != nil {
		return
	}
	h.router.Broadcast(gameID, JoinedMessage{
		Type:       TypeJoined,
		Game:       snapshot,
		PlayerName: playerName,
	})
}

// handleApplication forwards a non-control frame to the game, attributed to
// the connected participant bound to connID. Frames from connections with
// no participant binding (never joined, or host-only) are dropped silently.
func (h *Handler) handleApplication(connID string, frame []byte) {
	sessionID, p, ok := h.sessions.ParticipantByConnection(connID)
	if !ok {
		log.Printf("protocol: dropping message from unbound connection %s", connID)
		return
	}

	h.game.OnApplicationMessage(h.handle(sessionID), p, json.RawMessage(frame))
}

// HandleDisconnect processes a transport close for connID. If a bound
// participant was affected, the session's remaining audience is told; an
// unbound or host-only connection going away is silent.
func (h *Handler) HandleDisconnect(connID string) {
	sessionID, ok := h.sessions.MarkDisconnected(connID)
	if !ok {
		return
	}

	log.Printf("protocol: connection %s dropped from session %s", connID, sessionID)

	snapshot, err := h.sessions.Snapshot(sessionID)
	if err != nil {
		return
	}
	h.router.Broadcast(sessionID, PlayerDisconnectedMessage{
		Type: TypePlayerDisconnected,
		Game: snapshot,
	})
}
