package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/gridbattle/game/config"
	"github.com/wricardo/mcp-training/gridbattle/game/engine"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
	"github.com/wricardo/mcp-training/gridbattle/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	tokens  *TokenIssuer
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub may be nil, in which case
// nothing is broadcast and /ws is not routed.
func NewServer(gameService service.GameService, hub *websocket.Hub, tokens *TokenIssuer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		tokens:  tokens,
		router:  mux.NewRouter(),
		logger:  logger.Named("api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/state", s.handleGetMatchState).Methods("GET")

	// Players
	api.HandleFunc("/sessions/{id}/join", s.handleJoin).Methods("POST")
	api.HandleFunc("/sessions/{id}/leave", s.withPlayer(s.handleLeave)).Methods("POST")
	api.HandleFunc("/sessions/{id}/view", s.withPlayer(s.handleView)).Methods("GET")

	// Match operations
	api.HandleFunc("/sessions/{id}/place", s.withPlayer(s.handlePlace)).Methods("POST")
	api.HandleFunc("/sessions/{id}/auto-place", s.withPlayer(s.handleAutoPlace)).Methods("POST")
	api.HandleFunc("/sessions/{id}/attack", s.withPlayer(s.handleAttack)).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and engine errors onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var verr *engine.ValidationError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownPlayer):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrAlreadyAttacked),
		errors.Is(err, engine.ErrSessionFull),
		errors.Is(err, engine.ErrAlreadyJoined):
		return http.StatusConflict
	case errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrUnknownEvent),
		errors.Is(err, config.ErrInvalidConfig),
		errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type playerHandler func(w http.ResponseWriter, r *http.Request, claims *PlayerClaims)

// withPlayer requires a token issued for the session in the path
func (s *Server) withPlayer(next playerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.tokens.Parse(tokenFromRequest(r))
		if err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !strings.EqualFold(claims.SessionID, mux.Vars(r)["id"]) {
			respondError(w, http.StatusForbidden, "token was issued for another session")
			return
		}
		next(w, r, claims)
	}
}

// broadcast pushes an action's events and the new public summary to the
// session's WebSocket clients
func (s *Server) broadcast(ctx context.Context, result *service.ActionResult) {
	if s.hub == nil || result == nil {
		return
	}
	var summary *service.MatchSummary
	if info, err := s.service.GetSession(ctx, result.SessionID); err == nil {
		summary = info.Match
	}
	s.hub.BroadcastResult(result, summary)
}

// BroadcastResults forwards results produced outside a request, such as
// countdown ticks
func (s *Server) BroadcastResults(ctx context.Context, results []*service.ActionResult) {
	for _, result := range results {
		s.broadcast(ctx, result)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	session, err := s.service.CreateSession(r.Context(), req.ConfigID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if phase := query.Get("phase"); phase != "" {
		filtered := sessions[:0]
		for _, sess := range sessions {
			if sess.Match != nil && string(sess.Match.Phase) == phase {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "session_deleted", nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

func (s *Server) handleGetMatchState(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session.Match)
}

// Player Handlers

// joinResponse adds the player's bearer token to the join result
type joinResponse struct {
	*service.JoinResult
	Token string `json:"token"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Name string `json:"name"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := s.service.Join(r.Context(), sessionID, strings.TrimSpace(req.Name))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := s.tokens.Issue(result.SessionID, result.PlayerID, result.Slot)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to issue token: %v", err))
		return
	}

	s.broadcast(r.Context(), &result.ActionResult)
	s.logger.Info("[JOIN]",
		zap.String("session", sessionID),
		zap.String("name", result.Name),
		zap.Stringer("slot", result.Slot))

	respondJSON(w, http.StatusCreated, joinResponse{JoinResult: result, Token: token})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request, claims *PlayerClaims) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Leave(r.Context(), sessionID, claims.Subject)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(r.Context(), result)
	s.logger.Info("[LEAVE]",
		zap.String("session", sessionID),
		zap.Stringer("slot", claims.Slot),
		zap.String("phase", string(result.Phase)))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request, claims *PlayerClaims) {
	view, err := s.service.GetView(r.Context(), mux.Vars(r)["id"], claims.Subject)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// Match Operation Handlers

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request, claims *PlayerClaims) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Row   *int  `json:"row"`
		Col   *int  `json:"col"`
		Place *bool `json:"place,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Row == nil || req.Col == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: row and col are required")
		return
	}
	place := true
	if req.Place != nil {
		place = *req.Place
	}

	at := engine.Coord{Row: *req.Row, Col: *req.Col}
	result, err := s.service.Place(r.Context(), sessionID, claims.Subject, at, place)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(r.Context(), result)
	s.logger.Debug("[PLACE]",
		zap.String("session", sessionID),
		zap.Stringer("slot", claims.Slot),
		zap.Stringer("at", at),
		zap.Bool("place", place),
		zap.Int("occupied", result.View.Occupied))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAutoPlace(w http.ResponseWriter, r *http.Request, claims *PlayerClaims) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.AutoPlace(r.Context(), sessionID, claims.Subject)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(r.Context(), result)
	s.logger.Info("[AUTO-PLACE]",
		zap.String("session", sessionID),
		zap.Stringer("slot", claims.Slot),
		zap.String("phase", string(result.Phase)))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request, claims *PlayerClaims) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Row *int `json:"row"`
		Col *int `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Row == nil || req.Col == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: row and col are required")
		return
	}

	target := engine.Coord{Row: *req.Row, Col: *req.Col}
	result, err := s.service.Attack(r.Context(), sessionID, claims.Subject, target)
	if err != nil {
		s.logger.Info("[ATTACK] rejected",
			zap.String("session", sessionID),
			zap.Stringer("slot", claims.Slot),
			zap.Stringer("target", target),
			zap.Error(err))
		respondServiceError(w, err)
		return
	}

	s.broadcast(r.Context(), result)
	outcome := "MISS"
	for _, ev := range result.Events {
		if ev.Type == engine.NotifyAttackResolved && ev.Notification.Hit {
			outcome = "HIT"
		}
	}
	s.logger.Info("[ATTACK]",
		zap.String("session", sessionID),
		zap.Stringer("slot", claims.Slot),
		zap.Stringer("target", target),
		zap.String("result", outcome),
		zap.String("phase", string(result.Phase)))

	respondJSON(w, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.GameConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.Name
	}
	if configID == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}
	if err := engine.ValidateGameConfig(&req.GameConfig); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.SaveConfig(r.Context(), configID, &req.GameConfig); err != nil {
		respondServiceError(w, fmt.Errorf("failed to save config: %w", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

// handleWebSocket upgrades the connection. A valid token for the session
// subscribes the connection to that player's private events; without one
// the client is a spectator.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	audience := websocket.Spectator
	if tok := tokenFromRequest(r); tok != "" {
		claims, err := s.tokens.Parse(tok)
		if err != nil || !strings.EqualFold(claims.SessionID, sessionID) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if _, err := s.service.SlotOf(r.Context(), sessionID, claims.Subject); err == nil {
			audience = websocket.PlayerAudience(claims.Subject)
		}
	}

	s.hub.ServeWS(w, r, info.ID, audience)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"sessions": len(sessions),
	})
}
