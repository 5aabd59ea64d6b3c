package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is a WebSocket frame sent to clients of one session
type Message struct {
	SessionID string                `json:"session_id"`
	Event     string                `json:"event"`
	Phase     engine.Phase          `json:"phase,omitempty"`
	Turn      *engine.PlayerSlot    `json:"turn,omitempty"`
	Events    []service.GameEvent   `json:"events,omitempty"`
	Match     *service.MatchSummary `json:"match,omitempty"`
	Data      interface{}           `json:"data,omitempty"`

	// seats are the player ids holding each slot when the events happened
	seats [2]string
}

// Audience says who is listening on a connection. A player connection is
// bound to the player id; its slot is resolved from each message's seats,
// so after the player leaves it sees only public events. Spectators only
// receive public events.
type Audience struct {
	PlayerID string
}

// Spectator is the audience of an unauthenticated connection
var Spectator = Audience{}

// PlayerAudience is the audience of a connection owned by playerID
func PlayerAudience(playerID string) Audience {
	return Audience{PlayerID: playerID}
}

// seatOf returns the slot playerID held when the message was produced
func (m *Message) seatOf(playerID string) (engine.PlayerSlot, bool) {
	if playerID == "" {
		return engine.First, false
	}
	for _, slot := range []engine.PlayerSlot{engine.First, engine.Second} {
		if m.seats[slot] == playerID {
			return slot, true
		}
	}
	return engine.First, false
}

// forAudience encodes the message with the events a can see. It reports
// false when the message only carried events hidden from a.
func (m *Message) forAudience(a Audience) ([]byte, bool) {
	out := *m
	if len(m.Events) > 0 {
		slot, seated := m.seatOf(a.PlayerID)
		out.Events = nil
		for _, ev := range m.Events {
			if ev.VisibleTo(slot, seated) {
				out.Events = append(out.Events, ev)
			}
		}
		if len(out.Events) == 0 {
			return nil, false
		}
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	audience  Audience
}

// Hub maintains the set of active clients and broadcasts messages. The
// session map is owned by the Run goroutine; everything else talks to it
// through channels.
type Hub struct {
	sessions   map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	counts     chan chan map[string]int
	done       chan struct{}
	logger     *zap.Logger
}

// NewHub creates a new WebSocket hub. A nil logger disables logging.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan chan map[string]int),
		done:       make(chan struct{}),
		logger:     logger.Named("ws"),
	}
}

// Run starts the hub's event loop and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					close(client.send)
				}
			}
			h.sessions = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case reply := <-h.counts:
			counts := make(map[string]int, len(h.sessions))
			for id, clients := range h.sessions {
				counts[id] = len(clients)
			}
			reply <- counts
		}
	}
}

// ServeWS upgrades the request and registers the connection for sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, audience Audience) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		audience:  audience,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Broadcast queues a message for every client of its session
func (h *Hub) Broadcast(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// BroadcastResult sends the events of an action to the session's clients
func (h *Hub) BroadcastResult(result *service.ActionResult, match *service.MatchSummary) {
	if result == nil {
		return
	}
	turn := result.Turn
	h.Broadcast(&Message{
		SessionID: result.SessionID,
		Event:     "match_update",
		Phase:     result.Phase,
		Turn:      &turn,
		Events:    result.Events,
		Match:     match,
		seats:     result.Seats,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.Broadcast(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// ClientCounts returns the number of connected clients per session
func (h *Hub) ClientCounts() map[string]int {
	reply := make(chan map[string]int, 1)
	select {
	case h.counts <- reply:
		return <-reply
	case <-h.done:
		return map[string]int{}
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.logger.Debug("client registered",
		zap.String("session", client.sessionID),
		zap.Bool("player", client.audience.PlayerID != ""),
		zap.Int("clients", len(h.sessions[client.sessionID])))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			h.logger.Debug("client unregistered",
				zap.String("session", client.sessionID),
				zap.Int("clients", len(clients)))
		}
	}
}

// broadcastMessage sends a message to all clients in a session, filtered
// per audience
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}
	for client := range clients {
		data, ok := message.forAudience(client.audience)
		if !ok {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.unregisterClient(client)
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients act through the REST API; reads only keep the connection alive
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
