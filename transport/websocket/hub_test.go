package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
)

func testClient(hub *Hub, sessionID string, audience Audience) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
		audience:  audience,
	}
}

func privateEvent(slot engine.PlayerSlot) service.GameEvent {
	c := engine.Coord{Row: 1, Col: 2}
	return service.GameEvent{
		Type: engine.NotifyCellChanged,
		Notification: engine.Notification{
			Type: engine.NotifyCellChanged, Slot: slot, Private: true,
			Grid: engine.PrivateGrid, Coord: &c, State: "occupied",
		},
	}
}

func publicEvent() service.GameEvent {
	return service.GameEvent{
		Type:         engine.NotifyPlayerJoined,
		Message:      "alice joined as first player",
		Notification: engine.Notification{Type: engine.NotifyPlayerJoined},
	}
}

func receive(t *testing.T, client *Client) *Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return &message
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No message received within timeout")
		return nil
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := testClient(hub, "test-session", Spectator)

	hub.registerClient(client)
	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}

	hub.unregisterClient(client)
	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(nil)
	client1 := testClient(hub, "multi", Spectator)
	client2 := testClient(hub, "multi", PlayerAudience("p1"))

	hub.registerClient(client1)
	hub.registerClient(client2)
	if len(hub.sessions["multi"]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions["multi"]))
	}

	hub.unregisterClient(client1)
	if !hub.sessions["multi"][client2] || len(hub.sessions["multi"]) != 1 {
		t.Error("client2 should still be the only registered client")
	}
}

func TestHubBroadcastFiltersPrivateEvents(t *testing.T) {
	hub := NewHub(nil)
	first := testClient(hub, "s1", PlayerAudience("p1"))
	second := testClient(hub, "s1", PlayerAudience("p2"))
	spectator := testClient(hub, "s1", Spectator)
	other := testClient(hub, "s2", Spectator)
	for _, c := range []*Client{first, second, spectator, other} {
		hub.registerClient(c)
	}

	hub.broadcastMessage(&Message{
		SessionID: "s1",
		Event:     "match_update",
		Events:    []service.GameEvent{publicEvent(), privateEvent(engine.Second)},
		seats:     [2]string{"p1", "p2"},
	})

	if msg := receive(t, second); len(msg.Events) != 2 {
		t.Errorf("Expected owner to receive 2 events, got %d", len(msg.Events))
	}
	for name, c := range map[string]*Client{"first": first, "spectator": spectator} {
		msg := receive(t, c)
		if len(msg.Events) != 1 || msg.Events[0].Type != engine.NotifyPlayerJoined {
			t.Errorf("%s: expected only the public event, got %+v", name, msg.Events)
		}
	}
	if len(other.send) != 0 {
		t.Error("Client of another session received the broadcast")
	}

	// a message holding only a private event is not sent to anyone else
	hub.broadcastMessage(&Message{
		SessionID: "s1",
		Event:     "match_update",
		Events:    []service.GameEvent{privateEvent(engine.First)},
		seats:     [2]string{"p1", "p2"},
	})
	receive(t, first)
	if len(second.send) != 0 || len(spectator.send) != 0 {
		t.Error("Private-only message leaked to other clients")
	}
}

func TestHubBroadcastRoutesBySeatHolder(t *testing.T) {
	hub := NewHub(nil)
	departed := testClient(hub, "s1", PlayerAudience("p1"))
	newcomer := testClient(hub, "s1", PlayerAudience("p3"))
	hub.registerClient(departed)
	hub.registerClient(newcomer)

	// p1 left and p3 now holds the first slot
	hub.broadcastMessage(&Message{
		SessionID: "s1",
		Event:     "match_update",
		Events:    []service.GameEvent{publicEvent(), privateEvent(engine.First)},
		seats:     [2]string{"p3", "p2"},
	})

	if msg := receive(t, newcomer); len(msg.Events) != 2 {
		t.Errorf("Expected the seat holder to receive 2 events, got %d", len(msg.Events))
	}
	msg := receive(t, departed)
	if len(msg.Events) != 1 || msg.Events[0].Type != engine.NotifyPlayerJoined {
		t.Errorf("Expected the departed player to see only the public event, got %+v", msg.Events)
	}

	hub.broadcastMessage(&Message{
		SessionID: "s1",
		Event:     "match_update",
		Events:    []service.GameEvent{privateEvent(engine.First)},
		seats:     [2]string{"p3", ""},
	})
	receive(t, newcomer)
	if len(departed.send) != 0 {
		t.Error("Private event reached a player no longer seated")
	}
}

func TestHubRunBroadcastEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(nil)
	go hub.Run(ctx)

	client := testClient(hub, "event-test", Spectator)
	hub.register <- client
	hub.BroadcastEvent("event-test", "session_deleted", "bye")

	msg := receive(t, client)
	if msg.Event != "session_deleted" || msg.Data != "bye" {
		t.Errorf("Unexpected message %+v", msg)
	}
	if counts := hub.ClientCounts(); counts["event-test"] != 1 {
		t.Errorf("Expected 1 client, got %v", counts)
	}

	cancel()
	<-hub.done
	// broadcasting after shutdown must not block
	hub.BroadcastEvent("event-test", "late", nil)
	if counts := hub.ClientCounts(); len(counts) != 0 {
		t.Errorf("Expected no counts after shutdown, got %v", counts)
	}
}

func TestWebSocketEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(nil)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		audience := Spectator
		if r.URL.Query().Get("slot") == "second" {
			audience = PlayerAudience("p2")
		}
		hub.ServeWS(w, r, r.URL.Query().Get("session"), audience)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	owner, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=e2e&slot=second", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer owner.Close()
	watcher, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=e2e", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer watcher.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCounts()["e2e"] != 2 {
		if time.Now().After(deadline) {
			t.Fatal("clients never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastResult(&service.ActionResult{
		SessionID: "e2e",
		Phase:     engine.PhaseSetup,
		Events:    []service.GameEvent{publicEvent(), privateEvent(engine.Second)},
		Seats:     [2]string{"p1", "p2"},
	}, &service.MatchSummary{Phase: engine.PhaseSetup})

	read := func(conn *websocket.Conn) Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON failed: %v", err)
		}
		return msg
	}

	if msg := read(owner); len(msg.Events) != 2 || msg.Match == nil {
		t.Errorf("Expected owner to get both events and the summary, got %+v", msg)
	}
	if msg := read(watcher); len(msg.Events) != 1 {
		t.Errorf("Expected spectator to get the public event only, got %+v", msg)
	}
}
