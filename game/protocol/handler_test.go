package protocol

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/wricardo/mcp-training/lobbyserver/game/registry"
	"github.com/wricardo/mcp-training/lobbyserver/game/router"
	"github.com/wricardo/mcp-training/lobbyserver/game/session"
)

// fakeConn records every delivered payload.
type fakeConn struct {
	sent []any
}

func (c *fakeConn) Send(v any) error {
	c.sent = append(c.sent, v)
	return nil
}

// typeOf extracts the wire type of a recorded payload.
func typeOf(t *testing.T, v any) string {
	t.Helper()
	switch m := v.(type) {
	case HostedMessage:
		return m.Type
	case JoinedMessage:
		return m.Type
	case PlayerDisconnectedMessage:
		return m.Type
	case ErrorMessage:
		return m.Type
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Unmarshalable payload: %v", err)
		}
		var probe struct {
			Type string `json:"type"`
		}
		json.Unmarshal(data, &probe)
		return probe.Type
	}
}

// MockGame implements Game for testing, teacher-style: every callback is
// overridable and invocations are recorded.
type MockGame struct {
	OnSessionCreatedFunc     func(h *Handle)
	OnParticipantJoinedFunc  func(h *Handle, p session.Participant, rejoin bool)
	OnApplicationMessageFunc func(h *Handle, p session.Participant, msg json.RawMessage)

	created  int
	joined   []session.Participant
	rejoins  []bool
	messages []json.RawMessage
}

func (g *MockGame) OnSessionCreated(h *Handle) {
	g.created++
	if g.OnSessionCreatedFunc != nil {
		g.OnSessionCreatedFunc(h)
	}
}

func (g *MockGame) OnParticipantJoined(h *Handle, p session.Participant, rejoin bool) {
	g.joined = append(g.joined, p)
	g.rejoins = append(g.rejoins, rejoin)
	if g.OnParticipantJoinedFunc != nil {
		g.OnParticipantJoinedFunc(h, p, rejoin)
	}
}

func (g *MockGame) OnApplicationMessage(h *Handle, p session.Participant, msg json.RawMessage) {
	g.messages = append(g.messages, msg)
	if g.OnApplicationMessageFunc != nil {
		g.OnApplicationMessageFunc(h, p, msg)
	}
}

type env struct {
	reg      *registry.Registry
	sessions *session.Manager
	game     *MockGame
	handler  *Handler
}

func newEnv() *env {
	reg := registry.New()
	sessions := session.NewManager()
	rt := router.New(reg, sessions)
	game := &MockGame{}
	return &env{
		reg:      reg,
		sessions: sessions,
		game:     game,
		handler:  NewHandler(reg, sessions, rt, game),
	}
}

func (e *env) connect() (string, *fakeConn) {
	conn := &fakeConn{}
	return e.reg.Register(conn), conn
}

func (e *env) host(t *testing.T) (string, *fakeConn, string) {
	t.Helper()
	id, conn := e.connect()
	e.handler.HandleMessage(id, []byte(`{"type":"host"}`))
	if len(conn.sent) == 0 {
		t.Fatal("Expected hosted reply")
	}
	hosted, ok := conn.sent[len(conn.sent)-1].(HostedMessage)
	if !ok {
		t.Fatalf("Expected HostedMessage, got %T", conn.sent[len(conn.sent)-1])
	}
	return id, conn, hosted.Game.ID
}

func (e *env) join(t *testing.T, gameID, name string) (string, *fakeConn) {
	t.Helper()
	id, conn := e.connect()
	frame := fmt.Sprintf(`{"type":"join","gameId":"%s","playerName":"%s"}`, gameID, name)
	e.handler.HandleMessage(id, []byte(frame))
	return id, conn
}

func TestHandler_Host(t *testing.T) {
	e := newEnv()

	_, conn, gameID := e.host(t)

	if e.game.created != 1 {
		t.Errorf("Expected OnSessionCreated once, got %d", e.game.created)
	}
	hosted := conn.sent[0].(HostedMessage)
	if hosted.Type != TypeHosted {
		t.Errorf("Expected type hosted, got %s", hosted.Type)
	}
	if hosted.Game.ID != gameID || gameID == "" {
		t.Errorf("Expected fresh session id, got %q", gameID)
	}
	if len(hosted.Game.Players) != 0 {
		t.Errorf("Expected empty roster, got %d", len(hosted.Game.Players))
	}

	t.Run("every host yields a distinct session", func(t *testing.T) {
		seen := map[string]bool{gameID: true}
		for i := 0; i < 20; i++ {
			_, _, id := e.host(t)
			if seen[id] {
				t.Fatalf("Duplicate session id %s", id)
			}
			seen[id] = true
		}
	})
}

func TestHandler_Join(t *testing.T) {
	t.Run("successful join broadcasts to host and joiner", func(t *testing.T) {
		e := newEnv()
		_, hostConn, gameID := e.host(t)

		_, aliceConn := e.join(t, gameID, "alice")

		if len(e.game.joined) != 1 || e.game.joined[0].Name != "alice" {
			t.Fatalf("Expected OnParticipantJoined for alice, got %+v", e.game.joined)
		}
		if e.game.rejoins[0] {
			t.Error("First join must report rejoin=false")
		}

		// both the host and alice see the joined broadcast
		if typeOf(t, hostConn.sent[len(hostConn.sent)-1]) != TypeJoined {
			t.Error("Host should receive the joined broadcast")
		}
		joined, ok := aliceConn.sent[len(aliceConn.sent)-1].(JoinedMessage)
		if !ok {
			t.Fatalf("Expected JoinedMessage, got %T", aliceConn.sent[len(aliceConn.sent)-1])
		}
		if joined.PlayerName != "alice" {
			t.Errorf("Expected playerName alice, got %s", joined.PlayerName)
		}
		if len(joined.Game.Players) != 1 || !joined.Game.Players[0].Connected {
			t.Errorf("Expected roster with connected alice, got %+v", joined.Game.Players)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		e := newEnv()
		_, conn := e.join(t, "zzzz", "alice")

		if len(conn.sent) != 1 || typeOf(t, conn.sent[0]) != TypeGameNotFound {
			t.Errorf("Expected exactly game_not_found, got %v", conn.sent)
		}
		if e.sessions.Count() != 0 {
			t.Error("Join to unknown session must not create one")
		}
		if len(e.game.joined) != 0 {
			t.Error("Game must not see a failed join")
		}
	})

	t.Run("duplicate connected name", func(t *testing.T) {
		e := newEnv()
		_, hostConn, gameID := e.host(t)
		e.join(t, gameID, "alice")

		hostSeen := len(hostConn.sent)
		_, imposter := e.join(t, gameID, "alice")

		if len(imposter.sent) != 1 || typeOf(t, imposter.sent[0]) != TypeDuplicatePlayer {
			t.Errorf("Expected duplicate_playername, got %v", imposter.sent)
		}
		if len(hostConn.sent) != hostSeen {
			t.Error("A rejected join must not broadcast anything")
		}
	})

	t.Run("rejoin after disconnect", func(t *testing.T) {
		e := newEnv()
		_, _, gameID := e.host(t)
		aliceID, _ := e.join(t, gameID, "alice")

		e.reg.Unregister(aliceID)
		e.handler.HandleDisconnect(aliceID)

		_, conn2 := e.join(t, gameID, "alice")

		joined, ok := conn2.sent[len(conn2.sent)-1].(JoinedMessage)
		if !ok {
			t.Fatalf("Expected JoinedMessage, got %v", conn2.sent)
		}
		if !joined.Game.Players[0].Connected {
			t.Error("Rejoined participant should be connected")
		}
		if len(e.game.rejoins) != 2 || !e.game.rejoins[1] {
			t.Errorf("Expected rejoin=true on second join, got %v", e.game.rejoins)
		}
	})
}

func TestHandler_ApplicationMessage(t *testing.T) {
	t.Run("forwarded verbatim from bound participant", func(t *testing.T) {
		e := newEnv()
		_, _, gameID := e.host(t)
		aliceID, _ := e.join(t, gameID, "alice")

		frame := []byte(`{"type":"custom_move","x":3}`)
		e.handler.HandleMessage(aliceID, frame)

		if len(e.game.messages) != 1 {
			t.Fatalf("Expected 1 forwarded message, got %d", len(e.game.messages))
		}
		if string(e.game.messages[0]) != string(frame) {
			t.Errorf("Message not forwarded verbatim: %s", e.game.messages[0])
		}
	})

	t.Run("dropped from unbound connection", func(t *testing.T) {
		e := newEnv()
		id, _ := e.connect()

		e.handler.HandleMessage(id, []byte(`{"type":"custom_move"}`))

		if len(e.game.messages) != 0 {
			t.Error("Unbound connection's message must be dropped")
		}
	})

	t.Run("dropped from host connection", func(t *testing.T) {
		e := newEnv()
		hostID, _, _ := e.host(t)

		e.handler.HandleMessage(hostID, []byte(`{"type":"custom_move"}`))

		if len(e.game.messages) != 0 {
			t.Error("Host has no participant identity; message must be dropped")
		}
	})

	t.Run("malformed frame dropped", func(t *testing.T) {
		e := newEnv()
		_, _, gameID := e.host(t)
		aliceID, _ := e.join(t, gameID, "alice")

		e.handler.HandleMessage(aliceID, []byte(`{not json`))

		if len(e.game.messages) != 0 {
			t.Error("Malformed frame must not reach the game")
		}
	})

	t.Run("game can respond through the handle", func(t *testing.T) {
		e := newEnv()
		e.game.OnApplicationMessageFunc = func(h *Handle, p session.Participant, msg json.RawMessage) {
			h.Broadcast(map[string]string{"type": "echo", "from": p.Name})
		}

		_, hostConn, gameID := e.host(t)
		aliceID, aliceConn := e.join(t, gameID, "alice")

		e.handler.HandleMessage(aliceID, []byte(`{"type":"anything"}`))

		if typeOf(t, hostConn.sent[len(hostConn.sent)-1]) != "echo" {
			t.Error("Host should receive the game's broadcast")
		}
		if typeOf(t, aliceConn.sent[len(aliceConn.sent)-1]) != "echo" {
			t.Error("Sender should receive the game's broadcast")
		}
	})
}

func TestHandler_Disconnect(t *testing.T) {
	t.Run("participant disconnect broadcasts once", func(t *testing.T) {
		e := newEnv()
		_, hostConn, gameID := e.host(t)
		aliceID, _ := e.join(t, gameID, "alice")
		e.join(t, gameID, "bob")

		e.reg.Unregister(aliceID)
		e.handler.HandleDisconnect(aliceID)

		count := 0
		var last PlayerDisconnectedMessage
		for _, v := range hostConn.sent {
			if m, ok := v.(PlayerDisconnectedMessage); ok {
				count++
				last = m
			}
		}
		if count != 1 {
			t.Fatalf("Expected exactly one player_disconnected, got %d", count)
		}
		if last.Game.Players[0].Connected {
			t.Error("Snapshot should show alice disconnected")
		}
		if len(last.Game.Players) != 2 {
			t.Error("Disconnected participant must stay in the roster")
		}
	})

	t.Run("unbound disconnect is silent", func(t *testing.T) {
		e := newEnv()
		_, hostConn, _ := e.host(t)
		id, _ := e.connect()

		e.reg.Unregister(id)
		e.handler.HandleDisconnect(id)

		for _, v := range hostConn.sent {
			if _, ok := v.(PlayerDisconnectedMessage); ok {
				t.Error("No broadcast expected for an unbound disconnect")
			}
		}
	})

	t.Run("host-only disconnect is silent", func(t *testing.T) {
		e := newEnv()
		hostID, _, gameID := e.host(t)
		_, aliceConn := e.join(t, gameID, "alice")

		e.reg.Unregister(hostID)
		e.handler.HandleDisconnect(hostID)

		for _, v := range aliceConn.sent {
			if _, ok := v.(PlayerDisconnectedMessage); ok {
				t.Error("Host disconnect must not broadcast player_disconnected")
			}
		}
	})
}

// TestHandler_FullScenario walks the host/join/drop/rejoin flow end to end.
func TestHandler_FullScenario(t *testing.T) {
	e := newEnv()

	// C1 hosts
	_, c1, gameID := e.host(t)

	// C2 joins as alice; both C1 and C2 see joined
	c2ID, c2 := e.join(t, gameID, "alice")
	if typeOf(t, c1.sent[len(c1.sent)-1]) != TypeJoined {
		t.Fatal("Host should see alice join")
	}
	if typeOf(t, c2.sent[len(c2.sent)-1]) != TypeJoined {
		t.Fatal("Alice should see her own join")
	}

	// C2 drops; C1 sees player_disconnected with alice offline
	e.reg.Unregister(c2ID)
	e.handler.HandleDisconnect(c2ID)

	last := c1.sent[len(c1.sent)-1]
	pd, ok := last.(PlayerDisconnectedMessage)
	if !ok {
		t.Fatalf("Expected PlayerDisconnectedMessage, got %T", last)
	}
	if pd.Game.Players[0].Name != "alice" || pd.Game.Players[0].Connected {
		t.Errorf("Expected alice disconnected, got %+v", pd.Game.Players[0])
	}

	// C3 rejoins as alice
	_, c3 := e.join(t, gameID, "alice")
	joined, ok := c3.sent[len(c3.sent)-1].(JoinedMessage)
	if !ok {
		t.Fatalf("Expected JoinedMessage, got %v", c3.sent)
	}
	if len(joined.Game.Players) != 1 {
		t.Errorf("Rejoin must reuse the slot, got %d players", len(joined.Game.Players))
	}
	if !e.game.rejoins[len(e.game.rejoins)-1] {
		t.Error("Expected rejoin=true for C3")
	}
}
