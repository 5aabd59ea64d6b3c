// Package websocket pushes match updates to browsers and bots.
//
// A Hub groups connections by session ID. Each connection has an Audience:
// a player id (authenticated with the player's token) or a spectator. The
// player's slot is taken from the seats recorded with each broadcast, so a
// player who left stops receiving the private events of that slot.
// Every message is filtered per connection, so notifications about a
// player's private grid reach only that player; a message whose events are
// all hidden from a connection is not sent to it at all.
//
// Clients act through the REST API and only read from the socket:
//
//	{"session_id": "a1b2", "event": "match_update", "phase": "combat",
//	 "turn": "second", "events": [...], "match": {...}}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	hub.ServeWS(w, r, sessionID, websocket.PlayerAudience(claims.Subject))
//	hub.BroadcastResult(result, summary)
//
// The session map belongs to the Run goroutine; registration, broadcasts and
// client counts all go through channels.
package websocket
