package service

import (
	"time"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

// SessionInfo is the public summary of a match. It never carries private
// grids.
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Match          *MatchSummary      `json:"match"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MatchSummary is the state both players and spectators may see
type MatchSummary struct {
	Phase       engine.Phase       `json:"phase"`
	Orientation engine.Orientation `json:"orientation"`
	Turn        engine.PlayerSlot  `json:"turn"`
	Countdown   int                `json:"countdown,omitempty"`
	Players     []PlayerInfo       `json:"players"`
	Winner      *engine.PlayerSlot `json:"winner,omitempty"`
	Public      []string           `json:"public"`
}

// PlayerInfo describes one slot without its grid
type PlayerInfo struct {
	Slot     engine.PlayerSlot `json:"slot"`
	Joined   bool              `json:"joined"`
	Name     string            `json:"name,omitempty"`
	Ready    bool              `json:"ready"`
	Occupied int               `json:"occupied"`
	Hits     int               `json:"hits"`
}

// GameEvent pairs an engine notification with its rendered message
type GameEvent struct {
	Type         engine.NotificationType `json:"type"`
	Message      string                  `json:"message,omitempty"`
	Timestamp    time.Time               `json:"timestamp"`
	Notification engine.Notification     `json:"notification"`
}

// VisibleTo reports whether a viewer in slot may see the event
func (e GameEvent) VisibleTo(slot engine.PlayerSlot, ok bool) bool {
	return e.Notification.VisibleTo(slot, ok)
}

// ActionResult is returned by every operation that feeds the engine
type ActionResult struct {
	SessionID string             `json:"session_id"`
	Phase     engine.Phase       `json:"phase"`
	Turn      engine.PlayerSlot  `json:"turn"`
	Events    []GameEvent        `json:"events"`
	View      *engine.PlayerView `json:"view,omitempty"`

	// Seats holds the player id in each slot after the action. It routes
	// private events and is never sent to clients.
	Seats [2]string `json:"-"`
}

// JoinResult identifies the player who joined
type JoinResult struct {
	ActionResult
	PlayerID string            `json:"player_id"`
	Name     string            `json:"name"`
	Slot     engine.PlayerSlot `json:"slot"`
	Welcome  string            `json:"welcome"`
}

// ConfigInfo provides information about a match configuration
type ConfigInfo struct {
	Filename       string             `json:"filename"`
	ConfigID       string             `json:"config_id"` // The identifier to use for session creation
	Name           string             `json:"name"`      // Display name
	Description    string             `json:"description"`
	Orientation    engine.Orientation `json:"orientation"`
	CountdownTicks int                `json:"countdown_ticks"`
}
