/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 16
)

type Client struct {
	id   string
	peer string
	conn *websocket.Conn
	send chan []byte
}

type inbound struct {
	client *Client
	data   []byte
}

// Hub fans sensor readings out to every connected client. The client set
// is owned by the run loop; mu guards what handlers read from outside it.
type Hub struct {
	secret string

	clients  map[*Client]bool
	register chan *Client
	unreg    chan *Client
	readings chan inbound
	done     chan struct{}

	mu     sync.RWMutex
	count  int
	last   []byte
	lastAt time.Time
}

func newHub(secret string) *Hub {
	return &Hub{
		secret:   secret,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		readings: make(chan inbound),
		done:     make(chan struct{}),
	}
}

func (h *Hub) run(ctx context.Context, cfg *Config) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()

			return

		case c := <-h.register:
			h.clients[c] = true

			h.mu.Lock()
			h.count = len(h.clients)
			last := h.last
			h.mu.Unlock()

			logf(cfg, "HUB: Registered client %s (%s), %d connected", c.id, c.peer, len(h.clients))

			if last != nil {
				c.send <- last
			}

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)

				logf(cfg, "HUB: Unregistered client %s (%s), %d connected", c.id, c.peer, len(h.clients))
			}

			h.mu.Lock()
			h.count = len(h.clients)
			h.mu.Unlock()

		case in := <-h.readings:
			h.handleReading(cfg, in)
		}
	}
}

func (h *Hub) handleReading(cfg *Config, in inbound) {
	reading, id, err := parseReading(in.data)
	if err != nil {
		logf(cfg, "HUB: Dropped message from %s: %v", in.client.peer, err)

		return
	}

	// Readings from anything but the sensor are audience input, which
	// nothing consumes yet.
	if !isSensor(id, h.secret) {
		logf(cfg, "HUB: Dropped audience message from %s", in.client.peer)

		return
	}

	payload, err := json.Marshal(reading)
	if err != nil {
		logf(cfg, "HUB: Failed to encode reading: %v", err)

		return
	}

	h.broadcast(cfg, payload)
}

func (h *Hub) broadcast(cfg *Config, payload []byte) {
	h.mu.Lock()
	h.last = payload
	h.lastAt = time.Now()
	h.mu.Unlock()

	logf(cfg, "HUB: Broadcasting %s to %d clients", payload, len(h.clients))

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			close(c.send)

			logf(cfg, "HUB: Dropped slow client %s (%s)", c.id, c.peer)
		}
	}

	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// closeAll disconnects every client; used on shutdown.
func (h *Hub) closeAll() {
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}

	h.mu.Lock()
	h.count = 0
	h.mu.Unlock()
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.count
}

// lastColor returns the most recent broadcast payload and when it was sent.
func (h *Hub) lastColor() ([]byte, time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.last, h.lastAt
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "HUB: Upgrade failed for %s: %v", realIP(r), err)

			return
		}

		client := &Client{
			id:   uuid.NewString(),
			peer: realIP(r),
			conn: conn,
			send: make(chan []byte, sendQueueSize),
		}

		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()

			return
		}

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		select {
		case h.readings <- inbound{client: c, data: data}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
