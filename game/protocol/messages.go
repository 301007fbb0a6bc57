package protocol

import "github.com/wricardo/mcp-training/lobbyserver/game/session"

// Control message types. Any other inbound type is an application message
// for the pluggable game.
const (
	TypeHost = "host"
	TypeJoin = "join"

	TypeHosted             = "hosted"
	TypeJoined             = "joined"
	TypeGameNotFound       = "game_not_found"
	TypeDuplicatePlayer    = "duplicate_playername"
	TypePlayerDisconnected = "player_disconnected"
)

// envelope is the minimal shape every inbound frame is probed with. Fields
// beyond Type only matter for join.
type envelope struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

// HostedMessage confirms session creation to the hosting connection.
type HostedMessage struct {
	Type string           `json:"type"`
	Game session.Snapshot `json:"game"`
}

// JoinedMessage announces a successful join to the whole session audience.
type JoinedMessage struct {
	Type       string           `json:"type"`
	Game       session.Snapshot `json:"game"`
	PlayerName string           `json:"playerName"`
}

// PlayerDisconnectedMessage announces that a participant's transport
// closed. The roster in the snapshot shows who dropped.
type PlayerDisconnectedMessage struct {
	Type string           `json:"type"`
	Game session.Snapshot `json:"game"`
}

// ErrorMessage carries the reply-to-origin error types (game_not_found,
// duplicate_playername).
type ErrorMessage struct {
	Type string `json:"type"`
}
