// Package protocol implements the control-message state machine at the
// heart of the lobby server.
//
// Every connection is implicitly in one of three states: unbound, bound as
// the host of a session, or bound as a participant. Inbound frames drive
// the transitions:
//
//   - {type:"host"} creates a session and binds the sender as its host.
//     Hosting is allowed from any state; the previous binding is dropped.
//   - {type:"join", gameId, playerName} binds the sender as a participant,
//     replying game_not_found or duplicate_playername on failure and
//     broadcasting joined to the session's audience on success.
//   - Any other type from a bound participant is an application message and
//     is forwarded verbatim to the pluggable Game.
//   - A transport close marks the participant disconnected and broadcasts
//     player_disconnected, once, to the remaining audience.
//
// Games:
//
// Domain logic plugs in through the Game interface, one implementation per
// deployed server, selected at startup. A Game never sees connections; it
// talks to its session's audience through the Handle it receives with every
// callback.
//
// Failure semantics:
//
// Malformed frames and messages from unbound connections are dropped with a
// log line. Unknown message types from non-participants are dropped
// silently. No inbound frame is ever fatal to a connection or the process.
package protocol
