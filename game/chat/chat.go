// Package chat is the reference game hosted by the session framework: a
// lobby-wide chat room with optional private messages between players.
package chat

import (
	"encoding/json"
	"log"

	"github.com/wricardo/mcp-training/lobbyserver/game/protocol"
	"github.com/wricardo/mcp-training/lobbyserver/game/session"
)

// Inbound application message types.
const (
	TypePublicMsg  = "public_msg"
	TypePrivateMsg = "private_msg"
)

// inboundMessage covers both chat message shapes; PlayerID is only set on
// private messages and names the addressee.
type inboundMessage struct {
	Type     string `json:"type"`
	Msg      string `json:"msg"`
	PlayerID string `json:"playerId"`
}

// ChatMessage is the single outbound shape. Private marks messages that
// went player-to-player instead of to the whole room.
type ChatMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName"`
	Msg        string `json:"msg"`
	Private    bool   `json:"private"`
}

// serverName attributes framework-generated chat lines.
const serverName = "Server"

// Game implements protocol.Game.
type Game struct{}

// New creates the chat game.
func New() *Game {
	return &Game{}
}

// OnSessionCreated greets the freshly created room.
func (g *Game) OnSessionCreated(h *protocol.Handle) {
	h.Broadcast(ChatMessage{
		Type:       "chat_msg",
		PlayerName: serverName,
		Msg:        "Chat started...",
	})
}

// OnParticipantJoined needs no chat-level action; the framework's joined
// broadcast already updates every client's roster.
func (g *Game) OnParticipantJoined(h *protocol.Handle, p session.Participant, rejoin bool) {
}

// OnApplicationMessage relays public messages to the room and private
// messages to sender and addressee only.
func (g *Game) OnApplicationMessage(h *protocol.Handle, p session.Participant, raw json.RawMessage) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("chat: dropping unreadable message from %q: %v", p.Name, err)
		return
	}

	switch msg.Type {
	case TypePublicMsg:
		h.Broadcast(ChatMessage{
			Type:       "chat_msg",
			PlayerName: p.Name,
			Msg:        msg.Msg,
		})
	case TypePrivateMsg:
		h.Send(p.Name, msg.PlayerID, ChatMessage{
			Type:       "chat_msg",
			PlayerName: p.Name,
			Msg:        msg.Msg,
			Private:    true,
		})
	}
}
