// Package ws fans out block and trade events to connected WebSocket clients.
// It mirrors the push-on-action broadcast style of a node forwarding new
// transactions and blocks to its peers: nothing is polled, every event is
// pushed to the hub exactly once by the caller that produced it.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	klog "github.com/ledgersim/ledgersim/internal/log"
	"github.com/ledgersim/ledgersim/internal/exchange"
	"github.com/ledgersim/ledgersim/pkg/block"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Hub tracks connected clients and fans out events to every one of them.
// Registration, unregistration, and broadcast all flow through a single
// goroutine (run) so the client set never needs its own lock.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// event is the envelope every broadcast message is wrapped in.
type event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// New creates a Hub and starts its dispatch loop in the background.
func New() *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	logger := klog.WithComponent("ws")
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					logger.Warn().Msg("dropping slow client")
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

func (h *Hub) publish(kind string, data any) {
	msg, err := json.Marshal(event{Type: kind, Data: data})
	if err != nil {
		return
	}
	h.broadcast <- msg
}

// BroadcastTrade fans a single executed trade out to every subscriber.
func (h *Hub) BroadcastTrade(t exchange.Trade) {
	h.publish("trade", t)
}

// BroadcastBlock fans a newly accepted block's header out to every
// subscriber; the full block body is available via the REST surface.
func (h *Hub) BroadcastBlock(b *block.Block) {
	h.publish("block", b.Header)
}

// ServeHTTP upgrades the request to a WebSocket and pumps outbound events to
// it until the connection closes. Inbound messages are not a control channel
// for this hub; they are drained and discarded so pings/pongs still work.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register <- c

	go c.writePump()
	c.readPump(h)
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
