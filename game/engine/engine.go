package engine

import "fmt"

// Engine holds one match and feeds events through Apply
type Engine struct {
	state  MatchSession
	config *GameConfig
}

// NewEngine creates an engine in Setup for the provided configuration
func NewEngine(config *GameConfig) (*Engine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return &Engine{
		config: config,
		state:  NewMatchSession(config),
	}, nil
}

// State returns a copy of the current match
func (e *Engine) State() MatchSession {
	return e.state
}

// SetState replaces the match (used when loading persisted sessions)
func (e *Engine) SetState(state MatchSession) error {
	if !state.Orientation.Valid() {
		return fmt.Errorf("invalid orientation %q", state.Orientation)
	}
	switch state.Phase {
	case PhaseSetup, PhaseCountdown, PhaseCombat, PhaseResolved:
	default:
		return fmt.Errorf("invalid phase %q", state.Phase)
	}
	e.state = state
	return nil
}

// Config returns the engine configuration
func (e *Engine) Config() *GameConfig {
	return e.config
}

// Apply applies ev and keeps the resulting state
func (e *Engine) Apply(ev Event) ([]Notification, error) {
	next, notes, err := Apply(e.state, ev)
	if err != nil {
		return nil, err
	}
	e.state = next
	return notes, nil
}

// Phase returns the current phase
func (e *Engine) Phase() Phase {
	return e.state.Phase
}

// Winner returns the winning slot once resolved
func (e *Engine) Winner() (PlayerSlot, bool) {
	return e.state.Winner()
}

// View returns player's view, or false when player is not in the match
func (e *Engine) View(player string) (PlayerView, bool) {
	slot, ok := e.state.SlotOf(player)
	if !ok {
		return PlayerView{}, false
	}
	return ViewFor(e.state, slot), true
}

// Reset returns the match to an empty Setup, keeping the configuration
func (e *Engine) Reset() MatchSession {
	e.state = NewMatchSession(e.config)
	return e.state
}
