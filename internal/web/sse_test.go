package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastDeliversToSubscribedClientsOnly(t *testing.T) {
	hub := NewHub()
	a := newClient("a", "order-1")
	b := newClient("b", "order-2")
	hub.Register(a)
	hub.Register(b)
	defer hub.Unregister(a)
	defer hub.Unregister(b)

	hub.Broadcast("order-1", Event{Type: "message"})

	select {
	case e := <-a.events:
		assert.Equal(t, "message", e.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event for order-1 subscriber")
	}

	select {
	case <-b.events:
		t.Fatal("order-2 subscriber must not receive order-1's event")
	default:
	}
}

func TestHubUnregisterClosesEventsChannel(t *testing.T) {
	hub := NewHub()
	c := newClient("a", "order-1")
	hub.Register(c)
	hub.Unregister(c)

	_, ok := <-c.events
	assert.False(t, ok)
}

func TestHubAwaitCompletionWakesOnBroadcast(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.AwaitCompletion(context.Background(), "order-1")
		close(done)
	}()

	// give AwaitCompletion a moment to register its waiter
	time.Sleep(10 * time.Millisecond)
	hub.BroadcastCompletion("order-1")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitCompletion did not wake up")
	}
}

func TestHubAwaitCompletionRespectsContextCancellation(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	hub.AwaitCompletion(ctx, "order-1")
	require.Less(t, time.Since(start), time.Second)
}

func TestHubClientCount(t *testing.T) {
	hub := NewHub()
	a := newClient("a", "order-1")
	hub.Register(a)
	assert.Equal(t, 1, hub.ClientCount("order-1"))
	hub.Unregister(a)
	assert.Equal(t, 0, hub.ClientCount("order-1"))
}
