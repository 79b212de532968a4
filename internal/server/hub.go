package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/san-kum/pocketphys/internal/sim"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type bodyMessage struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
	Mass float64 `json:"mass"`
}

type frameMessage struct {
	Type   string        `json:"type"`
	Time   float64       `json:"time"`
	Bodies []bodyMessage `json:"bodies"`
}

type collisionMessage struct {
	Type string  `json:"type"`
	Time float64 `json:"time"`
	A    int     `json:"a"`
	B    int     `json:"b"`
}

// Client is one connected viewer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames and collisions out to every connected viewer. It is a
// sim.Observer and a sim.CollisionObserver, so it can be attached directly
// to a Simulator.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues data for every client. Clients whose buffer is full miss
// the message rather than stalling the simulation.
func (h *Hub) Broadcast(message any) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] marshal: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) OnStep(f sim.Frame) {
	msg := frameMessage{Type: "frame", Time: f.Time, Bodies: make([]bodyMessage, len(f.Bodies))}
	for i, b := range f.Bodies {
		msg.Bodies[i] = bodyMessage{
			X:    b.Position.X,
			Y:    b.Position.Y,
			VX:   b.Velocity.X,
			VY:   b.Velocity.Y,
			Mass: b.Mass,
		}
	}
	h.Broadcast(msg)
}

func (h *Hub) OnCollision(t float64, i, j int) {
	h.Broadcast(collisionMessage{Type: "collision", Time: t, A: i, B: j})
}

// ServeWS upgrades the request and streams to it until the peer goes away.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade: %v", err)
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(client)

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the connection closing; viewers send nothing.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
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
