package network

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/outbreakworks/cordon/internal/events"
	"github.com/outbreakworks/cordon/internal/platform/metrics"
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
	// Minimum spacing between card plays from one connection.
	actionCooldown = 2 * time.Second
)

// CardAction represents an incoming command from the frontend.
type CardAction struct {
	Type    string `json:"type"` // "TAX", "QUARANTINE", "AID", "START_WORK", "STOP_WORK"
	ActorID string `json:"actor_id"`
	Block   int    `json:"block"`  // Arena index of the target block
	Period  int    `json:"period"` // Quarantine cards only; 0 = default
}

// Client holds one websocket connection and its hub registration.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	lastActionTime time.Time
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket read error: " + err.Error())
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action CardAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse CardAction from WebSocket: " + err.Error())
			continue
		}

		c.handleCardAction(action)
	}
}

func (c *Client) handleCardAction(action CardAction) {
	// 1. Rate limiting per connection.
	if time.Since(c.lastActionTime) < actionCooldown {
		c.hub.logger.Warn("Rate limit exceeded for card action from " + action.ActorID)
		return
	}
	c.lastActionTime = time.Now()

	// 2. Target validation against the live board.
	snap := c.hub.engine.Snapshot()
	if action.Block < 0 || action.Block >= len(snap.Blocks) {
		c.hub.logger.Error("CardAction for unknown block from " + action.ActorID)
		return
	}

	actor := action.ActorID
	if actor == "" {
		actor = "ANONYMOUS"
	}

	// 3. Route by card type. The engine applies the mutation between
	// rounds; nothing here touches block state directly.
	switch action.Type {
	case "TAX":
		c.hub.engine.PlayCard(events.EventTypeCardTax, action.Block, 0, actor)
	case "QUARANTINE":
		c.hub.engine.PlayCard(events.EventTypeCardQuarantine, action.Block, action.Period, actor)
	case "AID":
		c.hub.engine.PlayCard(events.EventTypeCardAid, action.Block, 0, actor)
	case "START_WORK":
		c.hub.engine.PlayCard(events.EventTypeWorkOrderStart, action.Block, 0, actor)
	case "STOP_WORK":
		c.hub.engine.PlayCard(events.EventTypeWorkOrderStop, action.Block, 0, actor)
	default:
		c.hub.logger.Warn("Unknown CardAction type: " + action.Type)
		return
	}
	c.hub.logger.Event("CARD_PLAYED", actor, action.Type+" on block "+strconv.Itoa(action.Block))
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				metrics.Get().RecordWSError()
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
