// Package websocket provides the WebSocket transport for the lobby server.
//
// The websocket package implements:
//   - Real-time bidirectional communication
//   - Connection registration with opaque per-socket identifiers
//   - Frame forwarding into the protocol handler
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// Gateway upgrades HTTP requests and creates one Client per socket. Each
// Client runs the classic two-goroutine pump: readPump feeds inbound frames
// to the protocol handler, writePump drains a buffered send channel to the
// peer. The Client implements the connection registry's Conn interface, so
// all outbound routing happens by connection id; nothing in the core ever
// holds a raw socket.
//
// Connection Lifecycle:
//
//  1. Client connects to /ws
//  2. Connection is registered and assigned an id
//  3. Frames flow through the protocol handler
//  4. Disconnection unregisters the id and reports the close exactly once
//
// Delivery:
//
// Sends are best effort. A peer that stops draining its queue fails the
// send instead of blocking the caller; the registry logs and drops.
package websocket
