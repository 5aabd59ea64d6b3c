package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session, shared by every
// backend
type PersistedSessionData struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Config         *engine.GameConfig  `json:"config"`
	Match          engine.MatchSession `json:"match"`
}

func snapshot(session *service.Session) PersistedSessionData {
	return PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Config:         session.Config,
		Match:          session.Engine.State(),
	}
}

// restore rebuilds a session. The named config is reloaded so edits on disk
// apply; the stored copy is used when it no longer exists.
func restore(data PersistedSessionData, configs service.ConfigManager) (*service.Session, error) {
	config := data.Config
	if configs != nil && data.ConfigName != "" {
		if loaded, err := configs.LoadConfig(data.ConfigName); err == nil {
			config = loaded
		}
	}
	if config == nil {
		return nil, fmt.Errorf("no config available for session %s (%q)", data.ID, data.ConfigName)
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := eng.SetState(data.Match); err != nil {
		return nil, fmt.Errorf("failed to set match state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		ConfigID:       data.ConfigName,
		Engine:         eng,
		Config:         config,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

func sortByCreation(sessions []*service.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}
