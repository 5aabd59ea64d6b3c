package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/gridbattle/game/service"
)

// SQLitePersistence implements SessionPersistence in a single SQLite table.
// The match itself is stored as the same JSON document the file backend
// writes.
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewSQLitePersistence opens (or creates) the database at path and runs
// migrations
func NewSQLitePersistence(path string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	p := &SQLitePersistence{db: db, configManager: configManager}
	if err := p.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// Migrate creates the sessions table
func (p *SQLitePersistence) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			config_name TEXT NOT NULL,
			phase TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at DESC)`,
	}
	for _, migration := range migrations {
		if _, err := p.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (p *SQLitePersistence) Close() error {
	return p.db.Close()
}

// Save upserts a session row
func (p *SQLitePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := snapshot(session)
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	_, err = p.db.Exec(`
		INSERT INTO sessions (id, config_name, phase, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_name = excluded.config_name,
			phase = excluded.phase,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		strings.ToLower(session.ID), data.ConfigName, string(data.Match.Phase), string(jsonData),
		session.CreatedAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves a session row
func (p *SQLitePersistence) Load(id string) (*service.Session, error) {
	var raw string
	err := p.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return restore(data, p.configManager)
}

// Delete removes a session row
func (p *SQLitePersistence) Delete(id string) error {
	res, err := p.db.Exec(`DELETE FROM sessions WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs, most recently updated first
func (p *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := p.db.Query(`SELECT id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (p *SQLitePersistence) Exists(id string) bool {
	var one int
	err := p.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	return err == nil
}
