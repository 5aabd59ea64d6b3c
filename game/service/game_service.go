package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("config not found")
)

// GameService defines all match operations exposed to transports
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Players
	Join(ctx context.Context, sessionID, name string) (*JoinResult, error)
	Leave(ctx context.Context, sessionID, playerID string) (*ActionResult, error)
	SlotOf(ctx context.Context, sessionID, playerID string) (engine.PlayerSlot, error)

	// Match Operations
	Place(ctx context.Context, sessionID, playerID string, at engine.Coord, place bool) (*ActionResult, error)
	AutoPlace(ctx context.Context, sessionID, playerID string) (*ActionResult, error)
	Attack(ctx context.Context, sessionID, playerID string, target engine.Coord) (*ActionResult, error)
	Tick(ctx context.Context, sessionID string) (*ActionResult, error)
	TickAll(ctx context.Context) ([]*ActionResult, error)

	// Views
	GetView(ctx context.Context, sessionID, playerID string) (*engine.PlayerView, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles match configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active match
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.Engine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
