// Package mcp exposes the lobby server over the Model Context Protocol.
//
// The client here is a thin proxy: every tool call turns into a request
// against the REST API, so the MCP surface never bypasses the server's own
// routing. Tools cover session inspection (list_sessions, get_session) and
// operator broadcasts (broadcast_message).
//
// It can be served over stdio (mode "stdio-mcp") or mounted as the /mcp
// HTTP endpoint next to the API.
package mcp
