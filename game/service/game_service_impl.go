package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

// gameServiceImpl implements the GameService interface. Its mutex is the
// single execution context for every match: events, auto placement and
// countdown ticks are applied one at a time in arrival order.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	rng      *rand.Rand
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. A nil logger disables
// logging.
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := uint64(time.Now().UnixNano())
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.Named("service"),
		rng:      rand.New(rand.NewPCG(seed, seed>>17|1)),
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new match in Setup
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	// Let session manager generate a 4-character ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("session", sess.ID),
		zap.String("config", configID),
		zap.String("orientation", string(config.Orientation)))

	return sessionInfo(sess), nil
}

// GetSession retrieves the public summary of a match
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession tears a match down
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", zap.String("session", sessionID))
	return nil
}

// Join binds a new player identity to the next free slot
func (s *gameServiceImpl) Join(ctx context.Context, sessionID, name string) (*JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	playerID := uuid.NewString()
	if name == "" {
		name = "player-" + playerID[:8]
	}

	result, err := s.apply(sess, engine.JoinEvent(playerID, name))
	if err != nil {
		return nil, err
	}

	slot, _ := sess.Engine.State().SlotOf(playerID)
	s.attachView(sess, playerID, result)
	return &JoinResult{
		ActionResult: *result,
		PlayerID:     playerID,
		Name:         name,
		Slot:         slot,
		Welcome:      sess.Config.ResolvedMessages().Welcome,
	}, nil
}

// Leave removes a player from the match
func (s *gameServiceImpl) Leave(ctx context.Context, sessionID, playerID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.apply(sess, engine.LeaveEvent(playerID))
}

// SlotOf returns the slot held by playerID
func (s *gameServiceImpl) SlotOf(ctx context.Context, sessionID, playerID string) (engine.PlayerSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return engine.First, err
	}
	slot, ok := sess.Engine.State().SlotOf(playerID)
	if !ok {
		return engine.First, fmt.Errorf("%w: %q", engine.ErrUnknownPlayer, playerID)
	}
	return slot, nil
}

// Place sets or clears one cell of the player's grid
func (s *gameServiceImpl) Place(ctx context.Context, sessionID, playerID string, at engine.Coord, place bool) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	result, err := s.apply(sess, engine.PlaceEvent(playerID, at, place))
	if err != nil {
		return nil, err
	}
	s.attachView(sess, playerID, result)
	return result, nil
}

// AutoPlace replaces the player's grid with a random valid fleet. The
// placements run as ordinary place events on a copy of the match and are
// committed together.
func (s *gameServiceImpl) AutoPlace(ctx context.Context, sessionID, playerID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Engine.State()
	slot, ok := before.SlotOf(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownPlayer, playerID)
	}
	if before.Phase != engine.PhaseSetup && before.Phase != engine.PhaseCountdown {
		return nil, fmt.Errorf("%w: cannot place ships during %s", engine.ErrWrongPhase, before.Phase)
	}

	fleet := engine.RandomFleet(s.rng)
	current := before.Players[slot].Grid
	var events []engine.Event
	for _, c := range current.Cells() {
		if fleet[c.Row][c.Col] != engine.Occupied {
			events = append(events, engine.PlaceEvent(playerID, c, false))
		}
	}
	for _, c := range fleet.Cells() {
		if current[c.Row][c.Col] != engine.Occupied {
			events = append(events, engine.PlaceEvent(playerID, c, true))
		}
	}

	next := before
	var notes []engine.Notification
	for _, ev := range events {
		var n []engine.Notification
		next, n, err = engine.Apply(next, ev)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n...)
	}
	if err := sess.Engine.SetState(next); err != nil {
		return nil, err
	}

	s.logger.Info("fleet auto placed",
		zap.String("session", sess.ID),
		zap.String("slot", slot.String()),
		zap.Int("events", len(events)))

	result := s.finish(sess, before, notes)
	s.attachView(sess, playerID, result)
	return result, nil
}

// Attack fires at a public-grid coordinate
func (s *gameServiceImpl) Attack(ctx context.Context, sessionID, playerID string, target engine.Coord) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	result, err := s.apply(sess, engine.AttackEvent(playerID, target))
	if err != nil {
		return nil, err
	}
	s.attachView(sess, playerID, result)
	return result, nil
}

// Tick advances one session's countdown
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.apply(sess, engine.TickEvent())
}

// TickAll advances every session that is counting down and returns the
// results that produced events
func (s *gameServiceImpl) TickAll(ctx context.Context) ([]*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*ActionResult
	for _, sess := range s.sessions.List() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if sess.Engine.Phase() != engine.PhaseCountdown {
			continue
		}
		result, err := s.apply(sess, engine.TickEvent())
		if err != nil {
			s.logger.Warn("tick failed", zap.String("session", sess.ID), zap.Error(err))
			continue
		}
		if len(result.Events) > 0 {
			results = append(results, result)
		}
	}
	return results, nil
}

// GetView returns the player's own view of the match
func (s *gameServiceImpl) GetView(ctx context.Context, sessionID, playerID string) (*engine.PlayerView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	view, ok := sess.Engine.View(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownPlayer, playerID)
	}
	return &view, nil
}

// ListConfigs returns available match configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific match configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a match configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sess.ID)
	return sess, nil
}

// apply feeds one event to the session engine and renders the result
func (s *gameServiceImpl) apply(sess *Session, ev engine.Event) (*ActionResult, error) {
	before := sess.Engine.State()
	notes, err := sess.Engine.Apply(ev)
	if err != nil {
		s.logger.Debug("event rejected",
			zap.String("session", sess.ID),
			zap.String("event", string(ev.Type)),
			zap.Error(err))
		return nil, err
	}
	if ev.Type != engine.EventTick || len(notes) > 0 {
		s.logger.Debug("event applied",
			zap.String("session", sess.ID),
			zap.String("event", string(ev.Type)),
			zap.String("phase", string(sess.Engine.Phase())),
			zap.Int("notifications", len(notes)))
	}
	return s.finish(sess, before, notes), nil
}

// finish renders notifications and persists the session
func (s *gameServiceImpl) finish(sess *Session, before engine.MatchSession, notes []engine.Notification) *ActionResult {
	after := sess.Engine.State()
	if len(notes) > 0 {
		if err := s.sessions.Save(sess.ID); err != nil {
			s.logger.Warn("failed to persist session", zap.String("session", sess.ID), zap.Error(err))
		}
	}
	if winner, ok := after.Winner(); ok && before.Phase != engine.PhaseResolved {
		s.logger.Info("match resolved",
			zap.String("session", sess.ID),
			zap.String("winner", winner.String()),
			zap.Int("hits", after.Score.HitsFor(winner)))
	}

	result := &ActionResult{
		SessionID: sess.ID,
		Phase:     after.Phase,
		Turn:      after.Turn,
		Events:    renderEvents(sess.Config.ResolvedMessages(), before, after, notes),
	}
	for _, slot := range []engine.PlayerSlot{engine.First, engine.Second} {
		result.Seats[slot] = after.Players[slot].ID
	}
	return result
}

func (s *gameServiceImpl) attachView(sess *Session, playerID string, result *ActionResult) {
	if view, ok := sess.Engine.View(playerID); ok {
		result.View = &view
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Match:          Summarize(sess.Engine.State()),
		GameConfig:     sess.Config,
	}
}

// Summarize builds the public summary of a match
func Summarize(st engine.MatchSession) *MatchSummary {
	summary := &MatchSummary{
		Phase:       st.Phase,
		Orientation: st.Orientation,
		Turn:        st.Turn,
		Countdown:   st.Countdown,
		Public:      engine.PublicRows(st.Public),
	}
	for _, slot := range []engine.PlayerSlot{engine.First, engine.Second} {
		p := st.Players[slot]
		summary.Players = append(summary.Players, PlayerInfo{
			Slot:     slot,
			Joined:   p.Present(),
			Name:     p.Name,
			Ready:    p.Ready,
			Occupied: p.Grid.CountOccupied(),
			Hits:     st.Score.HitsFor(slot),
		})
	}
	if winner, ok := st.Winner(); ok {
		summary.Winner = &winner
	}
	return summary
}
