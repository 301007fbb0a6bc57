package session

// PlayerSnapshot is the wire-visible view of one participant. Connection
// ids deliberately stay out of it.
type PlayerSnapshot struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// Snapshot is the wire-visible view of a session, sent in control replies
// and exposed over the inspection API. Players preserve join order.
type Snapshot struct {
	ID         string           `json:"id"`
	HostConnID string           `json:"hostConnId"`
	Players    []PlayerSnapshot `json:"players"`
}

// Snapshot returns a consistent copy of the session's wire-visible state.
func (m *Manager) Snapshot(sessionID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return Snapshot{}, ErrSessionNotFound
	}
	return snapshotLocked(session), nil
}

// Snapshots returns copies of every live session.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Snapshot, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, snapshotLocked(session))
	}
	return result
}

func snapshotLocked(session *Session) Snapshot {
	players := make([]PlayerSnapshot, 0, len(session.Participants))
	for _, p := range session.Participants {
		players = append(players, PlayerSnapshot{Name: p.Name, Connected: p.Connected})
	}
	return Snapshot{
		ID:         session.ID,
		HostConnID: session.HostConnID,
		Players:    players,
	}
}
