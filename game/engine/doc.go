// Package engine provides the core rules of the grid battle minigame.
//
// The engine package implements:
//   - A fixed 7x7 private grid per player and a shared public grid
//   - Fleet validation: straight, non-touching ships of lengths 5,4,3,2,2
//   - Coordinate transforms between each player's frame and the public frame
//   - The match state machine: setup, countdown, combat, resolved
//   - Hit counting and winner detection
//
// Core Types:
//
// MatchSession is the whole state of a match and is a plain value. Apply
// takes a session and one Event and returns the next session plus the
// Notifications the host should present. Engine wraps a MatchSession for
// callers that prefer a stateful handle.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	notes, err := eng.Apply(engine.JoinEvent("p1", "Alice"))
//	notes, err = eng.Apply(engine.PlaceEvent("p1", engine.Coord{Row: 0, Col: 0}, true))
//
// Frames:
//
// Players place ships in their own frame and attack the public grid. The
// Orientation of a match decides how each frame maps onto the public one;
// ToPublic, ToLocal and MirrorForOpponent are the only places that know.
package engine
