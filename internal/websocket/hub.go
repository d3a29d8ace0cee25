package websocket

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"

	"github.com/dukerupert/packlist/internal/remote"
)

// Message is a change notification pushed to a user's open connections.
// Clients re-read the named collection when they receive one.
type Message struct {
	Type       string   `json:"type"`
	Collection string   `json:"collection"`
	Action     string   `json:"action"`
	IDs        []string `json:"ids,omitempty"`
}

// NewMessage creates a Message with the Type field derived from collection and action.
func NewMessage(collection, action string, ids []string) Message {
	return Message{
		Type:       fmt.Sprintf("%s_%s", collection, action),
		Collection: collection,
		Action:     action,
		IDs:        ids,
	}
}

// Hub tracks open connections per user and fans notifications out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends a message to every connection of userID that watches
// the message's collection.
func (h *Hub) Broadcast(userID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		if !c.wants(msg.Collection) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Buffer full, the client re-syncs on its next message.
		}
	}
}

// HandleChange forwards a committed store change to the user's connections.
func (h *Hub) HandleChange(ch remote.Change) {
	h.Broadcast(ch.UserID, NewMessage(string(ch.Collection), "changed", ch.IDs))
}

// ClientCount returns the number of connected clients across all users.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
