package registry

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conn is the transport handle held for a registered connection. The
// websocket adapter implements it; tests use in-memory fakes.
type Conn interface {
	// Send serializes v and writes it to the peer. Implementations must not
	// block indefinitely; a full outbound queue is a send failure.
	Send(v any) error
}

// Registry tracks which connection identifiers are currently reachable.
// It is the only component that maps an opaque connection id back to a
// live transport handle.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// New creates an empty connection registry.
func New() *Registry {
	return &Registry{
		conns: make(map[string]Conn),
	}
}

// Register stores the handle and returns a fresh process-unique identifier.
func (r *Registry) Register(c Conn) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.conns[id] = c
	r.mu.Unlock()

	return id
}

// Unregister removes the connection. Removing an absent id is a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// Lookup returns the handle for id, if it is still registered.
func (r *Registry) Lookup(id string) (Conn, bool) {
	r.mu.RLock()
	c, ok := r.conns[id]
	r.mu.RUnlock()
	return c, ok
}

// Deliver sends payload to the connection identified by id, best effort.
// An unknown id or a failed write is logged and swallowed: the peer may
// have disconnected between resolution and delivery, which is a benign
// race rather than an error the caller can act on.
func (r *Registry) Deliver(id string, payload any) {
	c, ok := r.Lookup(id)
	if !ok {
		log.Printf("deliver: connection %s no longer registered, dropping message", id)
		return
	}

	if err := c.Send(payload); err != nil {
		log.Printf("deliver: send to connection %s failed: %v", id, err)
	}
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
