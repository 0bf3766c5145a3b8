package web

import (
	"context"
	"sync"
)

// Hub fans out per-order events to connected SSE clients and lets a
// handler block until another goroutine's in-flight order for the same
// path completes (the AlreadyInProgress branch of SPEC_FULL.md §4.9).
// Adapted from the teacher's channel-driven SSE hub; routing here is keyed
// per order path rather than global, so a mutex-guarded map replaces the
// single event-loop goroutine.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]struct{}
	waiters map[string][]chan struct{}
}

// Client represents one connected browser, subscribed to a single order's
// events.
type Client struct {
	id     string
	path   string
	events chan Event
}

func newClient(id, path string) *Client {
	return &Client{id: id, path: path, events: make(chan Event, 256)}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		waiters: make(map[string][]chan struct{}),
	}
}

// Register subscribes c to events for its order path.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.path]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.path] = set
	}
	set[c] = struct{}{}
}

// Unregister removes c and closes its event channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.path]; ok {
		if _, present := set[c]; present {
			delete(set, c)
			close(c.events)
		}
		if len(set) == 0 {
			delete(h.clients, c.path)
		}
	}
}

// Broadcast delivers e to every client subscribed to path. A client whose
// buffer is full is skipped rather than blocking the producer.
func (h *Hub) Broadcast(path string, e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[path] {
		select {
		case c.events <- e:
		default:
		}
	}
}

// AwaitCompletion blocks until BroadcastCompletion(path) is called for the
// same path, or ctx is done, whichever comes first.
func (h *Hub) AwaitCompletion(ctx context.Context, path string) {
	ch := make(chan struct{})
	h.mu.Lock()
	h.waiters[path] = append(h.waiters[path], ch)
	h.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
	}
}

// BroadcastCompletion wakes every goroutine blocked in AwaitCompletion for
// path.
func (h *Hub) BroadcastCompletion(path string) {
	h.mu.Lock()
	waiters := h.waiters[path]
	delete(h.waiters, path)
	h.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}

// ClientCount returns how many clients are subscribed to path, for tests
// and diagnostics.
func (h *Hub) ClientCount(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[path])
}
