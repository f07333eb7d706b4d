package net

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const EventSaved = "saved"

// writeTimeout bounds how long one slow client can hold up a broadcast.
const writeTimeout = 5 * time.Second

// Event is pushed to every live client when an annotation changes.
type Event struct {
	Type         string `json:"type"`
	AnnotateType string `json:"annotate_type"`
	ImageURL     string `json:"image_url,omitempty"`
}

// Hub keeps the open live connections of a store.
type Hub struct {
	upgrader    websocket.Upgrader
	connections map[*websocket.Conn]bool
	mu          sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		connections: make(map[*websocket.Conn]bool),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[LIVE] Upgrade failed: %v", err)
		return
	}
	h.add(conn)
	go func() {
		defer h.remove(conn)
		// Clients only listen; reading detects when they go away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn] = true
	log.Printf("[LIVE] Added connection: %s", conn.RemoteAddr())
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, conn)
	conn.Close()
	log.Printf("[LIVE] Removed connection: %s", conn.RemoteAddr())
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// Broadcast sends ev to every client. Writes happen under the hub lock so a
// connection never has two concurrent writers; each write has a deadline and
// a client that fails one is dropped.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("[LIVE] Dropping %s: %v", conn.RemoteAddr(), err)
			delete(h.connections, conn)
			conn.Close()
		}
	}
}

// LiveURL derives the live feed URL from an annotation endpoint URL.
func LiveURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = LivePath
	u.RawQuery = ""
	return u.String(), nil
}

// Watch connects to a live feed and calls fn for each event until ctx is done
// or the connection drops.
func Watch(ctx context.Context, liveURL string, fn func(Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, liveURL, nil)
	if err != nil {
		return fmt.Errorf("dial live feed: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read live feed: %w", err)
		}
		fn(ev)
	}
}
