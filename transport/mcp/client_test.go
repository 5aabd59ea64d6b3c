package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/gridbattle/api"
	"github.com/wricardo/mcp-training/gridbattle/game/config"
	"github.com/wricardo/mcp-training/gridbattle/game/engine"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
	"github.com/wricardo/mcp-training/gridbattle/game/session"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"path": r.URL.Path, "row": body["row"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall(context.Background(), "POST", "/api/x", "tok", map[string]int{"row": 3}, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["path"] != "/api/x" || response["row"] != float64(3) {
		t.Errorf("Unexpected response %v", response)
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall(context.Background(), "GET", "/api", "", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"not your turn"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/api", "", nil, nil)
	if err == nil || err.Error() != "not your turn" {
		t.Errorf("Expected API error message, got %v", err)
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{
		"float": float64(4),
		"frac":  4.5,
		"int":   2,
		"str":   "3",
	}
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"float", 4, true},
		{"frac", 4, false},
		{"int", 2, true},
		{"str", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := intArg(args, tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("intArg(%s) = %d, %t; want %d, %t", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content", name)
	}
	return text.Text, result.IsError
}

// newBackend starts the REST API over real layers with a single-tick
// "quick" config
func newBackend(t *testing.T) (*Client, service.GameService) {
	t.Helper()
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	quick := &engine.GameConfig{
		Name:           "quick",
		Description:    "One tick countdown",
		Orientation:    engine.East,
		CountdownTicks: 1,
	}
	if err := configs.SaveConfig("quick", quick); err != nil {
		t.Fatal(err)
	}
	svc := service.NewGameService(session.NewManager(nil), configs, nil)
	server := httptest.NewServer(api.NewServer(svc, nil, api.NewTokenIssuer("secret", time.Hour), nil))
	t.Cleanup(server.Close)
	return NewClient(server.URL), svc
}

func playerIDFrom(t *testing.T, text string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if id, ok := strings.CutPrefix(line, "player_id: "); ok {
			return id
		}
	}
	t.Fatalf("no player_id in %q", text)
	return ""
}

func sessionIDFrom(t *testing.T, text string) string {
	t.Helper()
	line, _, _ := strings.Cut(text, "\n")
	id, ok := strings.CutPrefix(line, "Created session: ")
	if !ok {
		t.Fatalf("no session id in %q", text)
	}
	return id
}

func TestClient_PlaceShip(t *testing.T) {
	client, _ := newBackend(t)

	text, _ := call(t, client.handleCreateSession, "create_session", map[string]interface{}{"config_id": "quick"})
	sessionID := sessionIDFrom(t, text)
	if !strings.Contains(text, "Orientation: east") {
		t.Errorf("Expected east orientation, got %s", text)
	}

	text, _ = call(t, client.handleJoin, "join_game", map[string]interface{}{"session_id": sessionID, "name": "alice"})
	alice := playerIDFrom(t, text)
	if !strings.Contains(text, "as alice (first player)") {
		t.Errorf("Unexpected join text %s", text)
	}

	args := map[string]interface{}{
		"session_id": sessionID, "player_id": alice,
		"row": float64(0), "col": float64(0), "length": float64(5), "direction": "horizontal",
	}
	text, isErr := call(t, client.handlePlaceShip, "place_ship", args)
	if isErr {
		t.Fatalf("place_ship failed: %s", text)
	}
	if !strings.Contains(text, "Ship cells placed: 5/16") || !strings.Contains(text, "0 #####..") {
		t.Errorf("Expected five placed cells, got:\n%s", text)
	}

	args["row"], args["col"], args["direction"] = float64(4), float64(6), "vertical"
	text, isErr = call(t, client.handlePlaceShip, "place_ship", args)
	if !isErr || !strings.Contains(text, "after 3 of 5 cells") {
		t.Errorf("Expected place_ship to stop at the edge, got %s", text)
	}

	args["direction"] = "diagonal"
	if _, isErr := call(t, client.handlePlaceShip, "place_ship", args); !isErr {
		t.Error("Expected bad direction to fail")
	}

	text, isErr = call(t, client.handlePlaceCell, "place_cell", map[string]interface{}{
		"session_id": sessionID, "player_id": "stranger", "row": float64(0), "col": float64(0),
	})
	if !isErr || !strings.Contains(text, "join_game") {
		t.Errorf("Expected unknown player error, got %s", text)
	}
}

func TestClient_Integration(t *testing.T) {
	client, svc := newBackend(t)

	text, _ := call(t, client.handleCreateSession, "create_session", map[string]interface{}{"config_id": "quick"})
	sessionID := sessionIDFrom(t, text)

	text, _ = call(t, client.handleJoin, "join_game", map[string]interface{}{"session_id": sessionID, "name": "alice"})
	alice := playerIDFrom(t, text)
	text, _ = call(t, client.handleJoin, "join_game", map[string]interface{}{"session_id": sessionID, "name": "bob"})
	bob := playerIDFrom(t, text)

	for _, id := range []string{alice, bob} {
		text, isErr := call(t, client.handleAutoPlace, "auto_place", map[string]interface{}{"session_id": sessionID, "player_id": id})
		if isErr {
			t.Fatalf("auto_place failed: %s", text)
		}
	}
	if _, err := svc.TickAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	text, _ = call(t, client.handleGetSession, "get_session", map[string]interface{}{"session_id": sessionID})
	if !strings.Contains(text, "Phase: combat") || !strings.Contains(text, "Turn: first") {
		t.Errorf("Expected combat with first to move, got:\n%s", text)
	}

	text, _ = call(t, client.handleMyView, "my_view", map[string]interface{}{"session_id": sessionID, "player_id": alice})
	if !strings.Contains(text, "YOUR TURN") || !strings.Contains(text, "Public grid (attack coordinates):") {
		t.Errorf("Unexpected view:\n%s", text)
	}

	attack := map[string]interface{}{
		"session_id": sessionID, "player_id": bob,
		"row": float64(3), "col": float64(3), "intent": "center first",
	}
	text, isErr := call(t, client.handleAttack, "attack", attack)
	if !isErr || !strings.Contains(text, "not your turn") {
		t.Errorf("Expected out of turn rejection, got %s", text)
	}

	attack["player_id"] = alice
	text, isErr = call(t, client.handleAttack, "attack", attack)
	if isErr {
		t.Fatalf("attack failed: %s", text)
	}
	if !strings.Contains(text, "opponent's turn") {
		t.Errorf("Expected turn to pass, got:\n%s", text)
	}

	text, _ = call(t, client.handleListSessions, "list_sessions", map[string]interface{}{})
	if !strings.Contains(text, sessionID+" (config: quick, phase: combat, players: 2/2)") {
		t.Errorf("Unexpected session list:\n%s", text)
	}

	text, isErr = call(t, client.handleLeave, "leave_game", map[string]interface{}{"session_id": sessionID, "player_id": bob})
	if isErr || !strings.Contains(text, "alice wins by forfeit.") {
		t.Errorf("Expected forfeit message, got %s", text)
	}
	if _, isErr := call(t, client.handleMyView, "my_view", map[string]interface{}{"session_id": sessionID, "player_id": bob}); !isErr {
		t.Error("Expected the departed player's token to be forgotten")
	}

	text, _ = call(t, client.handleListConfigs, "list_configs", map[string]interface{}{})
	if !strings.Contains(text, "- quick: quick (orientation: east, countdown: 1 ticks)") {
		t.Errorf("Unexpected config list:\n%s", text)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	text, _ := call(t, client.handleGameInstructions, "game_instructions", map[string]interface{}{})

	expectedContent := []string{
		"Grid Battle - Complete Instructions",
		"GAME OBJECTIVE:",
		"GRID LEGEND:",
		"FLEET RULES:",
		"MATCH PHASES:",
		"ATTACKING:",
		"LEAVING:",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

func TestFormatView(t *testing.T) {
	winner := engine.Second
	v := &engine.PlayerView{
		Slot:        engine.Second,
		Phase:       engine.PhaseResolved,
		Orientation: engine.North,
		Winner:      &winner,
		Own:         []string{"X......", ".......", ".......", ".......", ".......", ".......", "......."},
		Target:      []string{"o......", ".......", ".......", ".......", ".......", ".......", "......."},
		Public:      []string{".......", ".......", ".......", ".......", ".......", ".......", "......X"},
	}

	text := formatView(v)
	for _, want := range []string{"You are the second player", "VICTORY", "  0123456\n0 X......", "6 ......X"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestFormatActionResult_Validation(t *testing.T) {
	result := &service.ActionResult{
		Phase: engine.PhaseSetup,
		Events: []service.GameEvent{{
			Type:    engine.NotifyValidationFailed,
			Message: "alice: board rejected",
			Notification: engine.Notification{
				Type:       engine.NotifyValidationFailed,
				Reason:     "ship is bent at (1,1)",
				Validation: &engine.ValidationError{Err: engine.ErrBentShip, At: engine.Coord{Row: 1, Col: 1}},
			},
		}},
	}

	text := formatActionResult(result)
	if !strings.Contains(text, "» alice: board rejected") || !strings.Contains(text, "Board rejected: ship is bent at (1,1) at (1,1)") {
		t.Errorf("Unexpected text:\n%s", text)
	}
	if !strings.Contains(text, "Phase: setup") {
		t.Errorf("Expected phase without a view, got:\n%s", text)
	}
}
