// Package mcp provides a Model Context Protocol server for grid battle
// matches.
//
// The server is a thin client over the REST API: every tool call becomes
// one or more HTTP requests against the api package's endpoints. It keeps
// the bearer token of each player it joined, keyed by player id, so an
// agent can play one or both seats of a match.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: match management
//   - join_game, leave_game: take or give up a slot
//   - place_cell, place_ship, auto_place: fleet setup
//   - my_view: the caller's board, shots and the public grid
//   - attack: fire at a public grid cell
//   - list_configs, game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp on the main server, handled with HandleMessage
package mcp
