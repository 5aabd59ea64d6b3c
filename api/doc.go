// Package api provides the HTTP REST API for grid battle matches.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a match ({"config_id": "classic"})
//   - GET /api/sessions - List matches (?sort=created|accessed&order=asc|desc&limit=N&phase=setup)
//   - GET /api/sessions/{id} - Session info with the public match summary
//   - GET /api/sessions/{id}/state - Public match summary only
//   - DELETE /api/sessions/{id} - Delete a match
//
// Players:
//   - POST /api/sessions/{id}/join - Take the next free slot ({"name": "alice"}).
//     The response carries a bearer token for the player endpoints below.
//   - POST /api/sessions/{id}/leave - Leave the match (forfeits during combat)
//   - GET /api/sessions/{id}/view - The caller's own board, shots and the public grid
//
// Match Operations (bearer token required):
//   - POST /api/sessions/{id}/place - {"row": 0, "col": 3, "place": true}
//   - POST /api/sessions/{id}/auto-place - Replace the board with a random valid fleet
//   - POST /api/sessions/{id}/attack - {"row": 2, "col": 5} in public grid coordinates
//
// Configuration:
//   - GET /api/configs - List configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration
//
// WebSocket:
//   - GET /ws?session={id}[&token={token}] - Live match updates. Without a
//     token the connection only receives public events.
//
// Tokens are HS256 JWTs naming the session, player id and slot. They are
// accepted as "Authorization: Bearer <token>" or as a token query parameter.
//
// Errors are returned as JSON:
//
//	{"error": "not your turn"}
//
// with 404 for unknown sessions or configs, 409 for actions the match
// state rejects, 400 for malformed input, 401 for missing or bad tokens
// and 403 when the token does not belong to a player of the match.
package api
