// Package undo keeps the bounded per-user stack of reversible actions.
package undo

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/packlist/internal/model"
)

const DefaultLimit = 20

// NewAction stamps an action with a fresh id and the current time.
func NewAction(typ model.UndoActionType, description string, data model.UndoData) model.UndoAction {
	return model.UndoAction{
		ID:          uuid.NewString(),
		Type:        typ,
		Description: description,
		Data:        data,
		Timestamp:   time.Now().UTC(),
	}
}

// History is a LIFO stack that drops its oldest entry once limit is
// exceeded. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	limit   int
	actions []model.UndoAction
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

func (h *History) Push(a model.UndoAction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, a)
	if over := len(h.actions) - h.limit; over > 0 {
		h.actions = append([]model.UndoAction(nil), h.actions[over:]...)
	}
}

// Pop removes and returns the most recent action.
func (h *History) Pop() (model.UndoAction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.actions) == 0 {
		return model.UndoAction{}, false
	}
	a := h.actions[len(h.actions)-1]
	h.actions = h.actions[:len(h.actions)-1]
	return a, true
}

func (h *History) Peek() (model.UndoAction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.actions) == 0 {
		return model.UndoAction{}, false
	}
	return h.actions[len(h.actions)-1], true
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.actions)
}

// Actions returns the stack newest first.
func (h *History) Actions() []model.UndoAction {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.UndoAction, len(h.actions))
	for i, a := range h.actions {
		out[len(h.actions)-1-i] = a
	}
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	h.actions = nil
	h.mu.Unlock()
}

// Registry hands out one History per user.
type Registry struct {
	mu        sync.Mutex
	limit     int
	histories map[string]*History
}

func NewRegistry(limit int) *Registry {
	return &Registry{limit: limit, histories: make(map[string]*History)}
}

func (r *Registry) For(userID string) *History {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.histories[userID]
	if !ok {
		h = NewHistory(r.limit)
		r.histories[userID] = h
	}
	return h
}
