package websocket

import (
	"context"
	"sync"
	"time"

	ws "github.com/coder/websocket"
	"github.com/goccy/go-json"

	"github.com/dukerupert/packlist/internal/remote"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// WatchRequest is the only message a client sends. It limits notifications
// to the named collections; an empty list restores all of them.
type WatchRequest struct {
	Type        string   `json:"type"`
	Collections []string `json:"collections"`
}

// Client is one WebSocket connection of a user.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	userID string
	send   chan []byte

	mu      sync.RWMutex
	watched map[string]bool
}

func NewClient(hub *Hub, conn *ws.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Run registers the client and serves the connection until it closes.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// wants reports whether notifications for collection should be sent.
func (c *Client) wants(collection string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.watched) == 0 || c.watched[collection]
}

// watch applies a WatchRequest. Unknown collection names are ignored.
func (c *Client) watch(req WatchRequest) {
	watched := make(map[string]bool, len(req.Collections))
	for _, name := range req.Collections {
		if remote.Collection(name).Valid() {
			watched[name] = true
		}
	}
	c.mu.Lock()
	c.watched = watched
	c.mu.Unlock()
}

// readPump applies watch requests and returns when the connection closes.
// Malformed messages are dropped.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var req WatchRequest
		if json.Unmarshal(data, &req) != nil || req.Type != "watch" {
			continue
		}
		c.watch(req)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
