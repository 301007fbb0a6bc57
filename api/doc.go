// Package api provides the HTTP surface of the lobby server.
//
// Endpoints:
//
// WebSocket:
//   - GET /ws - upgrade to the session protocol
//
// Inspection:
//   - GET /api/sessions - list live sessions with rosters
//   - GET /api/sessions/{id} - one session's snapshot
//   - GET /api/health - health check
//
// Operator:
//   - POST /api/sessions/{id}/broadcast - push a JSON payload to every
//     connection of a session (used by the MCP interface)
//
// Static files are served from the configured directory for the demo UI.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
