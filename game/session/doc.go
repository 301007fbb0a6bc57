// Package session provides the in-memory session store for the lobby
// server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation with collision retry
//   - Participant rosters with permanent, rejoinable name slots
//   - A connection-to-session reverse index for O(1) sender routing
//   - Wire-safe session snapshots
//
// Core Types:
//
// Manager is the session store handling all session operations. Session
// represents one hosted game instance with its host connection and ordered
// participant list. Participant is a named slot that toggles between
// connected and disconnected but is never removed, so a player who drops
// can rejoin under the same name and keep their place in the roster.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. The manager ensures
// IDs are unique among live sessions using cryptographic randomness plus a
// collision retry.
//
// Concurrency:
//
// Every mutation runs atomically under one lock. Two connections racing to
// join the same session under the same name resolve deterministically: one
// wins, the other observes ErrDuplicateName. Reads used for routing take a
// shared lock and return copies.
//
// Lifecycle:
//
// Sessions live for the process lifetime. There is no destroy path and no
// expiry; disconnected participants stay in the roster awaiting a rejoin.
package session
