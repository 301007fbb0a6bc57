package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrDuplicateName   = errors.New("player name already connected")
)

// Participant is a named slot inside a session. Slots are permanent for the
// lifetime of the session: a disconnect only flips Connected, it never
// removes the entry, so the same name can later rejoin from a new
// connection.
type Participant struct {
	Name      string
	Connected bool
	ConnID    string // valid only while Connected
}

// Session is one hosted game instance. Participants keeps join order, which
// is meaningful for display. Data is opaque domain state owned by the
// pluggable game.
type Session struct {
	ID           string
	HostConnID   string
	Participants []*Participant
	Data         any
	CreatedAt    time.Time
}

// JoinResult reports the outcome of a successful AddOrRejoinParticipant.
type JoinResult struct {
	Participant Participant // copy, safe to use without the manager lock
	Rejoin      bool
}

// Manager owns all live sessions. Every mutation happens atomically under
// one lock, which is what makes racing control messages (two joins with the
// same name, a join racing a disconnect) resolve deterministically.
//
// byConn is the reverse index from connection id to session id, maintained
// on every host/join and cleared on disconnect. A connection is associated
// with at most one session at a time; the last control action wins.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byConn   map[string]string
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byConn:   make(map[string]string),
	}
}

// Create allocates a session with a fresh unique id and binds hostConnID as
// its host. The host is not a participant.
func (m *Manager) Create(hostConnID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateSessionID()
	for _, exists := m.sessions[id]; exists; _, exists = m.sessions[id] {
		id = generateSessionID()
	}

	session := &Session{
		ID:         id,
		HostConnID: hostConnID,
		CreatedAt:  time.Now(),
	}

	m.sessions[id] = session
	m.byConn[hostConnID] = id

	return session
}

// Get retrieves a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetByConnection resolves the session a connection is currently bound to,
// as host or participant. Used to route application messages back to the
// sender's session.
func (m *Manager) GetByConnection(connID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id, ok := m.byConn[connID]; ok {
		if session, exists := m.sessions[id]; exists {
			return session, nil
		}
	}
	return nil, ErrSessionNotFound
}

// AddOrRejoinParticipant joins connID to the session under name.
//
// A name never seen before appends a new connected participant. A name
// whose participant is disconnected is a rejoin: the slot keeps its
// position and is rebound to the new connection. A name whose participant
// is still connected is rejected with ErrDuplicateName and nothing is
// mutated.
func (m *Manager) AddOrRejoinParticipant(sessionID, name, connID string) (JoinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return JoinResult{}, ErrSessionNotFound
	}

	for _, p := range session.Participants {
		if p.Name != name {
			continue
		}
		if p.Connected {
			return JoinResult{}, ErrDuplicateName
		}
		p.Connected = true
		p.ConnID = connID
		m.byConn[connID] = sessionID
		return JoinResult{Participant: *p, Rejoin: true}, nil
	}

	p := &Participant{Name: name, Connected: true, ConnID: connID}
	session.Participants = append(session.Participants, p)
	m.byConn[connID] = sessionID

	return JoinResult{Participant: *p}, nil
}

// MarkDisconnected records that connID's transport closed. The matching
// participant, if any, flips to disconnected but stays in the roster. The
// affected session id is returned so the caller can notify its audience; ok
// is false when no participant was bound to the connection (an unbound or
// host-only connection going away needs no notification).
func (m *Manager) MarkDisconnected(connID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessionID, indexed := m.byConn[connID]
	delete(m.byConn, connID)

	if indexed {
		if session, exists := m.sessions[sessionID]; exists {
			if disconnectParticipant(session, connID) {
				return session.ID, true
			}
		}
	}

	// The index tracks only the last control action, so a participant slot
	// can outlive its index entry when the same connection later hosted or
	// joined elsewhere. Session counts are small; fall back to a scan.
	for _, session := range m.sessions {
		if disconnectParticipant(session, connID) {
			return session.ID, true
		}
	}

	return "", false
}

func disconnectParticipant(session *Session, connID string) bool {
	for _, p := range session.Participants {
		if p.Connected && p.ConnID == connID {
			p.Connected = false
			return true
		}
	}
	return false
}

// Participant returns a copy of the named participant in sessionID.
func (m *Manager) Participant(sessionID, name string) (Participant, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return Participant{}, false
	}
	for _, p := range session.Participants {
		if p.Name == name {
			return *p, true
		}
	}
	return Participant{}, false
}

// ParticipantByConnection resolves the connected participant bound to
// connID, along with its session id.
func (m *Manager) ParticipantByConnection(connID string) (string, Participant, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id, ok := m.byConn[connID]; ok {
		if session, exists := m.sessions[id]; exists {
			for _, p := range session.Participants {
				if p.Connected && p.ConnID == connID {
					return id, *p, true
				}
			}
		}
	}
	return "", Participant{}, false
}

// BroadcastTargets resolves the delivery set for a session broadcast: the
// host connection plus every participant's bound connection, deduplicated.
// Stale ids of disconnected participants are harmless; they are no longer
// registered and delivery to them silently drops.
func (m *Manager) BroadcastTargets(sessionID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil
	}

	seen := map[string]bool{session.HostConnID: true}
	targets := []string{session.HostConnID}
	for _, p := range session.Participants {
		if p.ConnID == "" || seen[p.ConnID] {
			continue
		}
		seen[p.ConnID] = true
		targets = append(targets, p.ConnID)
	}
	return targets
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a random 4-character hex id. Uniqueness among
// live sessions is enforced by the caller with a collision retry.
func generateSessionID() string {
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
