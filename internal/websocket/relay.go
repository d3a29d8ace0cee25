package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dukerupert/packlist/internal/remote"
)

const DefaultRelayChannel = "packlist:changes"

// Relay shares committed changes between server instances over Redis
// pub/sub, so a user's subscribers and sockets on every instance refresh.
type Relay struct {
	rdb     *redis.Client
	broker  *remote.Broker
	channel string
	origin  string
	owned   bool
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRelayFromURL connects to redisURL and verifies the connection.
func NewRelayFromURL(redisURL string, broker *remote.Broker, logger *slog.Logger) (*Relay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	r := NewRelay(rdb, broker, DefaultRelayChannel, logger)
	r.owned = true
	return r, nil
}

func NewRelay(rdb *redis.Client, broker *remote.Broker, channel string, logger *slog.Logger) *Relay {
	return &Relay{
		rdb:     rdb,
		broker:  broker,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger.With("component", "relay"),
	}
}

// Start subscribes to the channel and begins forwarding local changes out
// and remote changes in. It returns once the subscription is active.
func (r *Relay) Start(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	r.mu.Lock()
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	r.broker.OnChange(r.forward)

	go func() {
		defer close(done)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.receive(msg.Payload)
			}
		}
	}()
	r.logger.Info("relay started", "channel", r.channel, "origin", r.origin)
	return nil
}

// Stop ends the subscription and waits for the receive loop to exit. A
// client opened by NewRelayFromURL is closed as well.
func (r *Relay) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if r.owned {
		r.rdb.Close()
	}
}

func (r *Relay) forward(c remote.Change) {
	r.mu.Lock()
	running := r.cancel != nil
	r.mu.Unlock()
	if c.Relayed || !running {
		return
	}
	c.Origin = r.origin
	data, err := json.Marshal(c)
	if err != nil {
		r.logger.Error("marshal change", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.rdb.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Error("publish change", "error", err)
	}
}

func (r *Relay) receive(payload string) {
	var c remote.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		r.logger.Warn("decode relayed change", "error", err)
		return
	}
	if c.Origin == r.origin {
		return
	}
	r.broker.Deliver(c)
}
