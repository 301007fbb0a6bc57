package router

import (
	"github.com/wricardo/mcp-training/lobbyserver/game/registry"
	"github.com/wricardo/mcp-training/lobbyserver/game/session"
)

// Router resolves outgoing messages to the set of live connections that
// should receive them and hands them to the connection registry for
// delivery. Delivery is best effort per target; one unreachable connection
// never aborts the rest.
type Router struct {
	registry *registry.Registry
	sessions *session.Manager
}

// New creates a router over the given registry and session manager.
func New(reg *registry.Registry, sessions *session.Manager) *Router {
	return &Router{
		registry: reg,
		sessions: sessions,
	}
}

// Broadcast delivers payload to the session's host and every participant
// connection. Delivery order across targets is unspecified.
func (r *Router) Broadcast(sessionID string, payload any) {
	for _, connID := range r.sessions.BroadcastTargets(sessionID) {
		r.registry.Deliver(connID, payload)
	}
}

// Unicast delivers payload to the connections of the named sender and
// recipient. Including the sender lets them see a copy of their own private
// message, so clients can echo "to: X" without local bookkeeping. A name
// that never joined the session is skipped silently, and a disconnected
// participant simply receives nothing: the message narrows to whichever of
// the two currently resolve.
func (r *Router) Unicast(sessionID, fromName, toName string, payload any) {
	delivered := make(map[string]bool, 2)

	for _, name := range []string{fromName, toName} {
		p, ok := r.sessions.Participant(sessionID, name)
		if !ok || !p.Connected || delivered[p.ConnID] {
			continue
		}
		delivered[p.ConnID] = true
		r.registry.Deliver(p.ConnID, payload)
	}
}
