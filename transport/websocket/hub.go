package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/toy-robot/game/engine"
	"github.com/wricardo/toy-robot/game/service"
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

// EventStateUpdate is the only event the hub emits
const EventStateUpdate = "state_update"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one state update pushed to subscribers
type Message struct {
	Event  string            `json:"event"`
	Placed bool              `json:"placed"`
	State  *engine.UnitState `json:"state,omitempty"`
	Report string            `json:"report,omitempty"`
}

// NewStateMessage builds a state_update message
func NewStateMessage(info *service.StateInfo) *Message {
	m := &Message{Event: EventStateUpdate}
	if info != nil {
		m.Placed = info.Placed
		m.State = info.State
		m.Report = info.Report
	}
	return m
}

// Snapshot reads the current board state for a new subscriber
type Snapshot func() (*service.StateInfo, error)

// Client represents a WebSocket client
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	snapshot Snapshot
}

// Hub maintains the set of subscribers and broadcasts state updates.
// The clients map is only touched from Run.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// StateChanged queues a state update for every subscriber.
// It never blocks the caller; updates are dropped when the queue is full.
func (h *Hub) StateChanged(info *service.StateInfo) {
	select {
	case h.broadcast <- NewStateMessage(info):
	default:
		log.Printf("WebSocket broadcast queue full, dropping update")
	}
}

// ServeWS upgrades the request and subscribes the connection.
// responseHeader is sent with the handshake. snapshot, when set, is read
// once the client is registered so no committed change is missed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, responseHeader http.Header, snapshot Snapshot) {
	conn, err := upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, engine.WebSocketBufferSize),
		snapshot: snapshot,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// registerClient runs on the hub loop, so the snapshot is queued ahead of
// any broadcast for a later change.
func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	log.Printf("WebSocket client registered (total clients: %d)", len(h.clients))

	if client.snapshot == nil {
		return
	}
	info, err := client.snapshot()
	if err != nil {
		log.Printf("Failed to read state for new client: %v", err)
		return
	}
	data, err := json.Marshal(NewStateMessage(info))
	if err != nil {
		log.Printf("Failed to marshal initial state: %v", err)
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		log.Printf("WebSocket client unregistered (remaining clients: %d)", len(h.clients))
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow subscriber.
			h.unregisterClient(client)
		}
	}
}

// readPump keeps the connection alive and detects disconnects.
// Incoming messages are ignored.
func (c *Client) readPump() {
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
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump sends queued messages, one frame per message, and pings
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
