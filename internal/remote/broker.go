package remote

import (
	"log/slog"
	"sync"
)

// Change announces that a committed batch touched a collection of a user.
type Change struct {
	UserID     string     `json:"user_id"`
	Collection Collection `json:"collection"`
	IDs        []string   `json:"ids,omitempty"`
	Origin     string     `json:"origin,omitempty"`

	// Relayed is set on changes that arrived from another instance.
	Relayed bool `json:"-"`
}

type subscription struct {
	userID string
	coll   Collection
	notify chan struct{}
}

// Broker fans committed changes out to the subscriptions of every client in
// this process and to registered listeners such as the websocket hub and the
// cross-instance relay.
type Broker struct {
	mu        sync.RWMutex
	subs      map[string]map[*subscription]struct{}
	listeners []func(Change)
	logger    *slog.Logger
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		subs:   make(map[string]map[*subscription]struct{}),
		logger: logger,
	}
}

// OnChange registers fn to be called for every published or delivered change.
func (b *Broker) OnChange(fn func(Change)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Publish announces a change committed by this process.
func (b *Broker) Publish(c Change) {
	b.dispatch(c)
}

// Deliver announces a change committed by another instance.
func (b *Broker) Deliver(c Change) {
	c.Relayed = true
	b.dispatch(c)
}

func (b *Broker) dispatch(c Change) {
	b.mu.RLock()
	for s := range b.subs[c.UserID] {
		if s.coll != c.Collection {
			continue
		}
		select {
		case s.notify <- struct{}{}:
		default:
			// A refresh is already pending and will see this change.
		}
	}
	listeners := append([]func(Change){}, b.listeners...)
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(c)
	}
	b.logger.Debug("change dispatched", "user", c.UserID, "collection", c.Collection, "relayed", c.Relayed)
}

func (b *Broker) add(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[s.userID]
	if !ok {
		set = make(map[*subscription]struct{})
		b.subs[s.userID] = set
	}
	set[s] = struct{}{}
}

func (b *Broker) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[s.userID]
	delete(set, s)
	if len(set) == 0 {
		delete(b.subs, s.userID)
	}
}

// SubscriptionCount returns the number of live subscriptions of userID.
func (b *Broker) SubscriptionCount(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
