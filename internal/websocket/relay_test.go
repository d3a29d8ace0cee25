package websocket

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dukerupert/packlist/internal/remote"
)

func setupTestRelay(t *testing.T, s *miniredis.Miniredis) (*Relay, *remote.Broker) {
	t.Helper()
	broker := remote.NewBroker(slog.Default())
	relay, err := NewRelayFromURL("redis://"+s.Addr(), broker, slog.Default())
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start relay: %v", err)
	}
	t.Cleanup(relay.Stop)
	return relay, broker
}

func TestRelayDeliversToOtherInstance(t *testing.T) {
	s := miniredis.RunT(t)
	_, brokerA := setupTestRelay(t, s)
	_, brokerB := setupTestRelay(t, s)

	received := make(chan remote.Change, 4)
	brokerB.OnChange(func(c remote.Change) { received <- c })

	brokerA.Publish(remote.Change{UserID: "alice", Collection: remote.PackItems, IDs: []string{"i1"}})

	select {
	case c := <-received:
		if c.UserID != "alice" || c.Collection != remote.PackItems {
			t.Errorf("got = %+v", c)
		}
		if !c.Relayed {
			t.Error("relayed change should be marked as relayed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change was not relayed")
	}

	// The relayed change must not bounce back out of instance B.
	select {
	case c := <-received:
		t.Errorf("unexpected second change %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelayIgnoresOwnOrigin(t *testing.T) {
	s := miniredis.RunT(t)
	_, broker := setupTestRelay(t, s)

	received := make(chan remote.Change, 4)
	broker.OnChange(func(c remote.Change) { received <- c })

	broker.Publish(remote.Change{UserID: "alice", Collection: remote.Members})

	// The local publish is seen once; the echo from Redis is dropped.
	<-received
	select {
	case c := <-received:
		t.Errorf("own change delivered twice: %+v", c)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestRelayIgnoresGarbage(t *testing.T) {
	s := miniredis.RunT(t)
	_, broker := setupTestRelay(t, s)

	received := make(chan remote.Change, 1)
	broker.OnChange(func(c remote.Change) { received <- c })

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	if err := rdb.Publish(context.Background(), DefaultRelayChannel, "not json").Err(); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case c := <-received:
		t.Errorf("garbage produced a change: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewRelayFromURLBadURL(t *testing.T) {
	if _, err := NewRelayFromURL("not a url", remote.NewBroker(slog.Default()), slog.Default()); err == nil {
		t.Error("expected error for bad url")
	}
}
