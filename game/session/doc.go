// Package session stores grid battle matches.
//
// Manager keeps sessions in memory under 4-character hex IDs (looked up
// case-insensitively) and optionally mirrors them to a SessionPersistence
// backend:
//   - FilePersistence writes one JSON document per session
//   - SQLitePersistence keeps the same document in a sessions table
//
// A persisted session records its config ID and a copy of the config, so it
// can be restored even after the config file is gone.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("data/sessions.db", configMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store, logger)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "classic", configMgr.GetDefault())
//
// Expiry (CleanupExpiredSessions) only drops the in-memory copy; Delete
// removes a session everywhere.
package session
