// Package service hosts grid battle matches for the transports.
//
// The service package implements:
//   - Multi-session match management
//   - Player identities (UUIDs) bound to match slots
//   - Turning REST, WebSocket and MCP calls into engine events
//   - Rendering notifications into config-defined messages
//   - Driving countdown ticks for every session
//
// Core Interfaces:
//
// GameService is the main service interface providing match operations.
// SessionManager handles session creation, retrieval, and persistence.
// ConfigManager manages match configuration loading and validation.
//
// Every mutating call takes the service lock, so all events for all matches
// run one at a time in arrival order, and a countdown tick can never
// interleave with a placement.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	alice, _ := gameService.Join(ctx, info.ID, "alice")
//	gameService.AutoPlace(ctx, info.ID, alice.PlayerID)
package service
