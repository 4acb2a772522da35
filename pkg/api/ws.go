package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/atelierhq/pulse/pkg/cache"
	"github.com/atelierhq/pulse/pkg/models"
)

// Subscriber abstracts a streaming client so the hub can be tested
// without websocket connections.
type Subscriber interface {
	Send(payload []byte) error
	Close()
}

// Hub fans alert events out to every connected dashboard. A failed send
// drops the client; slow consumers never block the alerting path.
type Hub struct {
	clients   map[Subscriber]struct{}
	register  chan Subscriber
	unreg     chan Subscriber
	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[Subscriber]struct{}),
		register:  make(chan Subscriber),
		unreg:     make(chan Subscriber),
		broadcast: make(chan []byte, 16),
		done:      make(chan struct{}),
	}

	go h.run()

	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}

			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unreg:
			delete(h.clients, c)
		case payload := <-h.broadcast:
			for c := range h.clients {
				if err := c.Send(payload); err != nil {
					c.Close()
					delete(h.clients, c)
				}
			}
		}
	}
}

// Register adds a client to the alert stream.
func (h *Hub) Register(c Subscriber) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(c Subscriber) {
	select {
	case h.unreg <- c:
	case <-h.done:
	}
}

// Broadcast queues a payload for every connected client. Drops the
// payload when the queue is full rather than blocking the caller.
func (h *Hub) Broadcast(payload []byte) {
	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
		log.Printf("alert stream backlogged, dropping broadcast")
	}
}

// Close shuts the hub down and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// Notify implements alerting.Notifier: each raised alert is pushed to
// every connected dashboard as JSON.
func (h *Hub) Notify(_ context.Context, alert *models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	h.Broadcast(payload)

	return nil
}

// wsClient wraps a websocket connection as a Subscriber.
type wsClient struct {
	conn *websocket.Conn
}

func (c *wsClient) Send(payload []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsClient) Close() {
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST routes already answer cross-origin; the stream follows suit
	CheckOrigin: func(*http.Request) bool { return true },
}

const backlogLimit = 20

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn}

	// Replay recent alerts before live delivery starts so a fresh
	// dashboard is not blank until the next breach
	if s.feed != nil {
		if backlog, err := s.feed.Recent(r.Context(), cache.AlertFeed, backlogLimit); err == nil {
			for i := len(backlog) - 1; i >= 0; i-- {
				if err := client.Send(backlog[i]); err != nil {
					break
				}
			}
		}
	}

	s.hub.Register(client)

	// Drain inbound frames so pings are answered; drop the client when
	// the peer goes away
	go func() {
		defer func() {
			s.hub.Unregister(client)
			client.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
