package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
)

// Client is a thin MCP client that proxies to the REST API. It remembers
// the bearer token of every player it joined so tools only need the
// player id.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer

	mu     sync.Mutex
	tokens map[string]string // player id -> token
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokens: make(map[string]string),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Battle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Battle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players each hide a fleet of ships (lengths 5, 4, 3, 2, 2) on a private 7x7 grid,
then take turns firing at a shared public grid. The first to score 16 hits wins.

AVAILABLE TOOLS:
- create_session: Create a new match
- list_sessions / get_session: Inspect matches
- join_game: Take a player slot (remembers your token)
- place_cell / place_ship / auto_place: Build your fleet
- my_view: Your own board, your shots and the public grid
- attack: Fire at a public grid cell - requires intent explanation
- leave_game: Leave (forfeits during combat)
- list_configs: List match configurations
- game_instructions: Full rules

NOTE: The 'intent' parameter on attack serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func playerProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Player ID returned by join_game",
	}
}

func coordProps(props map[string]interface{}, what string) map[string]interface{} {
	props["row"] = map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"maximum":     engine.GridSize - 1,
		"description": "Row of the " + what + " (0-based)",
	}
	props["col"] = map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"maximum":     engine.GridSize - 1,
		"description": "Column of the " + what + " (0-based)",
	}
	return props
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new match with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all matches",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the public state of a match: phase, players, turn and the public grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Players
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join a match in the next free slot. Keep the returned player_id for all other tools.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleJoin)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leave_game",
		Description: "Leave a match. Leaving during combat forfeits.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player_id":  playerProp(),
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleLeave)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "my_view",
		Description: "Show your board, your shots at the opponent and the public grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player_id":  playerProp(),
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleMyView)

	// Placement
	placeProps := coordProps(map[string]interface{}{
		"session_id": sessionProp(),
		"player_id":  playerProp(),
		"place": map[string]interface{}{
			"type":        "boolean",
			"description": "true to place a ship cell (default), false to clear it",
		},
	}, "cell on your own board")
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_cell",
		Description: "Place or clear one ship cell on your own board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: placeProps,
			Required:   []string{"session_id", "player_id", "row", "col"},
		},
	}, c.handlePlaceCell)

	shipProps := coordProps(map[string]interface{}{
		"session_id": sessionProp(),
		"player_id":  playerProp(),
		"length": map[string]interface{}{
			"type":        "integer",
			"minimum":     engine.MinShipLength,
			"maximum":     engine.MaxShipLength,
			"description": "Ship length",
		},
		"direction": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"horizontal", "vertical"},
			"description": "Horizontal ships extend right, vertical ships extend down",
		},
	}, "ship's first cell")
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_ship",
		Description: "Place a whole straight ship cell by cell. Stops at the first rejected cell.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: shipProps,
			Required:   []string{"session_id", "player_id", "row", "col", "length", "direction"},
		},
	}, c.handlePlaceShip)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "auto_place",
		Description: "Replace your board with a random valid fleet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player_id":  playerProp(),
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleAutoPlace)

	// Combat
	attackProps := coordProps(map[string]interface{}{
		"session_id": sessionProp(),
		"player_id":  playerProp(),
		"intent": map[string]interface{}{
			"type":        "string",
			"description": "Brief explanation of why you chose this cell (serves as a rubber duck to help explain your reasoning)",
		},
	}, "public grid cell to fire at")
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "attack",
		Description: "Fire at a cell of the public grid. Only allowed on your turn during combat.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: attackProps,
			Required:   []string{"session_id", "player_id", "row", "col"},
		},
	}, c.handleAttack)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available match configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules of Grid Battle",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path, token string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) token(playerID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok, ok := c.tokens[playerID]
	if !ok {
		return "", fmt.Errorf("unknown player_id %q: join the game with join_game first", playerID)
	}
	return tok, nil
}

func (c *Client) rememberToken(playerID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[playerID] = token
}

func (c *Client) forgetToken(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, playerID)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func coordArg(args map[string]interface{}) (engine.Coord, error) {
	row, ok := intArg(args, "row")
	if !ok {
		return engine.Coord{}, fmt.Errorf("row must be an integer")
	}
	col, ok := intArg(args, "col")
	if !ok {
		return engine.Coord{}, fmt.Errorf("col must be an integer")
	}
	return engine.Coord{Row: row, Col: col}, nil
}

// playerCall resolves the player's token and performs an authenticated call
func (c *Client) playerCall(ctx context.Context, args map[string]interface{}, method, action string, body, result interface{}) (string, error) {
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)
	if sessionID == "" || playerID == "" {
		return "", fmt.Errorf("session_id and player_id are required")
	}
	tok, err := c.token(playerID)
	if err != nil {
		return "", err
	}
	return sessionID, c.apiCall(ctx, method, fmt.Sprintf("/api/sessions/%s/%s", sessionID, action), tok, body, result)
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", "", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	orientation := ""
	if session.Match != nil {
		orientation = string(session.Match.Orientation)
	}
	result := fmt.Sprintf("Created session: %s\nConfig: %s\nOrientation: %s\nNext: join_game twice (one per player).\n",
		session.ID, session.ConfigName, orientation)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var list struct {
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", "", nil, &list); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list.Sessions) == 0 {
		return mcp.NewToolResultText("No sessions. Use create_session to start one."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sessions (%d):\n", len(list.Sessions))
	for _, s := range list.Sessions {
		phase, players := "", 0
		if s.Match != nil {
			phase = string(s.Match.Phase)
			for _, p := range s.Match.Players {
				if p.Joined {
					players++
				}
			}
		}
		fmt.Fprintf(&b, "- %s (config: %s, phase: %s, players: %d/2)\n", s.ID, s.ConfigName, phase, players)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, "", nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleJoin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	name, _ := args["name"].(string)

	var joined struct {
		service.JoinResult
		Token string `json:"token"`
	}
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/join", sessionID), "", map[string]string{"name": name}, &joined)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c.rememberToken(joined.PlayerID, joined.Token)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", joined.Welcome)
	fmt.Fprintf(&b, "Joined session %s as %s (%s player)\n", sessionID, joined.Name, joined.Slot)
	fmt.Fprintf(&b, "player_id: %s\n", joined.PlayerID)
	b.WriteString(formatEvents(joined.Events))
	b.WriteString("Next: place your fleet with place_ship, place_cell or auto_place.\n")
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLeave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var result service.ActionResult
	if _, err := c.playerCall(ctx, args, "POST", "leave", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	playerID, _ := args["player_id"].(string)
	c.forgetToken(playerID)

	return mcp.NewToolResultText("Left the match.\n" + formatEvents(result.Events)), nil
}

func (c *Client) handleMyView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var view engine.PlayerView
	if _, err := c.playerCall(ctx, args, "GET", "view", nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatView(&view)), nil
}

func (c *Client) handlePlaceCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	at, err := coordArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	place := true
	if p, ok := args["place"].(bool); ok {
		place = p
	}

	body := map[string]interface{}{"row": at.Row, "col": at.Col, "place": place}
	var result service.ActionResult
	if _, err := c.playerCall(ctx, args, "POST", "place", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handlePlaceShip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	start, err := coordArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	length, ok := intArg(args, "length")
	if !ok || length < engine.MinShipLength || length > engine.MaxShipLength {
		return mcp.NewToolResultError(fmt.Sprintf("length must be between %d and %d", engine.MinShipLength, engine.MaxShipLength)), nil
	}
	direction, _ := args["direction"].(string)
	dr, dc := 0, 1
	switch direction {
	case "horizontal":
	case "vertical":
		dr, dc = 1, 0
	default:
		return mcp.NewToolResultError("direction must be horizontal or vertical"), nil
	}

	var last service.ActionResult
	var events []service.GameEvent
	for i := 0; i < length; i++ {
		at := engine.Coord{Row: start.Row + i*dr, Col: start.Col + i*dc}
		body := map[string]interface{}{"row": at.Row, "col": at.Col, "place": true}
		var result service.ActionResult
		if _, err := c.playerCall(ctx, args, "POST", "place", body, &result); err != nil {
			msg := fmt.Sprintf("placing %s failed after %d of %d cells: %v", at, i, length, err)
			return mcp.NewToolResultError(msg), nil
		}
		events = append(events, result.Events...)
		last = result
	}
	last.Events = events
	return mcp.NewToolResultText(formatActionResult(&last)), nil
}

func (c *Client) handleAutoPlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var result service.ActionResult
	if _, err := c.playerCall(ctx, args, "POST", "auto-place", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleAttack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	target, err := coordArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	var result service.ActionResult
	if _, err := c.playerCall(ctx, args, "POST", "attack", target, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", "", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available configurations:\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (orientation: %s, countdown: %d ticks)\n  %s\n",
			cfg.ConfigID, cfg.Name, cfg.Orientation, cfg.CountdownTicks, cfg.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Grid Battle - Complete Instructions

GAME OBJECTIVE:
Sink the opponent's fleet. Every ship cell you hit scores one point; the first
player to reach 16 hits wins.

BOARDS:
- Your board: a private 7x7 grid only you can see. Rows and columns are 0-based.
- Public grid: a shared 7x7 grid both players fire at. Its frame is fixed by the
  match orientation, so your board appears rotated or mirrored on it.
- Use my_view: it draws your board, your own shots at the opponent in your frame,
  and the public grid, so you never have to convert coordinates by hand.

GRID LEGEND:
- '#' your ship cell
- '.' water or unknown
- 'X' hit
- 'o' miss

FLEET RULES:
- Exactly five straight ships: lengths 5, 4, 3, 2 and 2 (16 cells in total).
- Ships are horizontal or vertical runs; no bends.
- Ships may not touch each other, not even diagonally.
- The board is checked when your 16th cell is placed. A valid board makes you ready;
  clearing any cell makes you unready again.

MATCH PHASES:
1. setup: both players join and place their fleets.
2. countdown: both boards are valid; a short countdown runs. Changing your board
   cancels it.
3. combat: the first player fires first, then turns alternate after every shot.
4. resolved: someone reached 16 hits, or the opponent left.

ATTACKING:
- attack takes public grid coordinates.
- You may not fire at a cell you already fired at.
- Firing out of turn or outside combat is rejected and changes nothing.

LEAVING:
- Leaving during combat forfeits: the remaining player wins.
- Leaving earlier frees your slot and resets the other player to setup.

Good luck, admiral!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nCreated: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"))
	if session.Match != nil {
		b.WriteString(formatSummary(session.Match))
	}
	return b.String()
}

func formatSummary(m *service.MatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s | Orientation: %s", m.Phase, m.Orientation)
	switch m.Phase {
	case engine.PhaseCountdown:
		fmt.Fprintf(&b, " | Countdown: %d", m.Countdown)
	case engine.PhaseCombat:
		fmt.Fprintf(&b, " | Turn: %s", m.Turn)
	}
	b.WriteString("\n")
	for _, p := range m.Players {
		if !p.Joined {
			fmt.Fprintf(&b, "- %s: open\n", p.Slot)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s (ready: %t, hits: %d/%d)\n", p.Slot, p.Name, p.Ready, p.Hits, engine.FleetCells)
	}
	if m.Winner != nil {
		fmt.Fprintf(&b, "Winner: %s\n", *m.Winner)
	}
	b.WriteString("\nPublic grid:\n")
	b.WriteString(formatGrid(m.Public))
	return b.String()
}

// formatGrid draws rows with column and row indices
func formatGrid(rows []string) string {
	var b strings.Builder
	b.WriteString("  ")
	for c := 0; c < engine.GridSize; c++ {
		fmt.Fprintf(&b, "%d", c)
	}
	b.WriteString("\n")
	for r, row := range rows {
		fmt.Fprintf(&b, "%d %s\n", r, row)
	}
	return b.String()
}

func formatView(v *engine.PlayerView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s player | Phase: %s | Orientation: %s\n", v.Slot, v.Phase, v.Orientation)
	switch v.Phase {
	case engine.PhaseSetup:
		fmt.Fprintf(&b, "Ship cells placed: %d/%d | Ready: %t\n", v.Occupied, engine.FleetCells, v.Ready)
	case engine.PhaseCountdown:
		fmt.Fprintf(&b, "Countdown: %d | Ready: %t\n", v.Countdown, v.Ready)
	case engine.PhaseCombat:
		turn := "opponent's turn"
		if v.YourTurn {
			turn = "YOUR TURN"
		}
		fmt.Fprintf(&b, "%s | Hits: %d/%d | Hits taken: %d/%d\n", turn, v.Hits, engine.FleetCells, v.HitsTaken, engine.FleetCells)
	case engine.PhaseResolved:
		if v.Winner != nil && *v.Winner == v.Slot {
			b.WriteString("🎉 VICTORY!\n")
		} else {
			b.WriteString("💀 DEFEAT\n")
		}
	}

	b.WriteString("\nYour board:\n")
	b.WriteString(formatGrid(v.Own))
	b.WriteString("\nYour shots (your frame):\n")
	b.WriteString(formatGrid(v.Target))
	b.WriteString("\nPublic grid (attack coordinates):\n")
	b.WriteString(formatGrid(v.Public))
	return b.String()
}

func formatEvents(events []service.GameEvent) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Message == "" {
			continue
		}
		fmt.Fprintf(&b, "» %s\n", ev.Message)
	}
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	b.WriteString(formatEvents(result.Events))
	for _, ev := range result.Events {
		if v := ev.Notification.Validation; v != nil {
			fmt.Fprintf(&b, "Board rejected: %s at %s\n", ev.Notification.Reason, v.At)
		}
	}
	if result.View != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatView(result.View))
	} else {
		fmt.Fprintf(&b, "Phase: %s\n", result.Phase)
	}
	return b.String()
}
