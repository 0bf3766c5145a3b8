package web

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/mirrorproxy/flexo/internal/cache"
	"github.com/mirrorproxy/flexo/internal/mirror"
)

// OrderHandler serves GET /orders/{path}: it drives jc.TrySchedule and
// streams the resulting file to the caller, per SPEC_FULL.md §4.9.
func OrderHandler(jc *cache.JobContext, hub *Hub, cacheDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		relPath := strings.TrimPrefix(r.URL.Path, "/orders/")
		if relPath == "" {
			http.Error(w, "missing order path", http.StatusBadRequest)
			return
		}

		order := mirror.HTTPOrder{Path: relPath, Cacheable: true, CacheDir: cacheDir}
		outcome, err := jc.TrySchedule(r.Context(), order, 0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		switch outcome.Kind {
		case cache.OutcomeCached:
			serveCachedFile(w, r, cacheDir, relPath)
		case cache.OutcomeUncacheable:
			proxyDirect(w, r, outcome.Provider, relPath)
		case cache.OutcomeAlreadyInProgress:
			waitThenServe(w, r, hub, cacheDir, relPath)
		case cache.OutcomeScheduled:
			serveScheduled(w, r, hub, cacheDir, relPath, outcome.Handle)
		}
	}
}

func serveCachedFile(w http.ResponseWriter, r *http.Request, cacheDir, relPath string) {
	http.ServeFile(w, r, filepath.Join(cacheDir, filepath.FromSlash(relPath)))
}

// proxyDirect relays relPath straight from provider to w, per spec.md
// §4.5 step 1: an uncacheable order must never touch the disk cache.
func proxyDirect(w http.ResponseWriter, r *http.Request, provider cache.Provider, relPath string) {
	p, ok := provider.(mirror.HTTPProvider)
	if !ok {
		http.Error(w, "order is not cacheable and provider cannot be proxied directly", http.StatusNotImplemented)
		return
	}

	resp, err := p.FetchDirect(r.Context(), relPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Length", resp.Header.Get("Content-Length"))
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

// waitThenServe blocks for a completion broadcast on hub before re-serving
// the file directly from disk, per the AlreadyInProgress branch of
// SPEC_FULL.md §4.9.
func waitThenServe(w http.ResponseWriter, r *http.Request, hub *Hub, cacheDir, relPath string) {
	hub.AwaitCompletion(r.Context(), relPath)
	serveCachedFile(w, r, cacheDir, relPath)
}

// serveScheduled relays the worker's message/progress streams onto hub for
// any SSE subscriber, then serves the file from disk once the worker
// reports completion.
func serveScheduled(w http.ResponseWriter, r *http.Request, hub *Hub, cacheDir, relPath string, handle *cache.Handle) {
	ctx := r.Context()
	go relayMessages(hub, relPath, handle)
	go relayProgress(hub, relPath, handle)

	if _, err := handle.Join(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
		return
	}
	hub.BroadcastCompletion(relPath)
	serveCachedFile(w, r, cacheDir, relPath)
}

func relayMessages(hub *Hub, relPath string, handle *cache.Handle) {
	for {
		msg, ok := handle.Messages().Recv()
		if !ok {
			return
		}
		hub.Broadcast(relPath, Event{Type: "message", Message: ptr(wireMessage(msg))})
	}
}

func relayProgress(hub *Hub, relPath string, handle *cache.Handle) {
	for {
		p, ok := handle.Progress().Recv()
		if !ok {
			return
		}
		hub.Broadcast(relPath, Event{Type: "progress", Progress: ptr(wireProgress(p))})
	}
}

func ptr[T any](v T) *T { return &v }

// EventsHandler provides the SSE event stream for one order's
// message/progress events. GET /events/{path}
func EventsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		relPath := strings.TrimPrefix(r.URL.Path, "/events/")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fmt.Fprintf(w, ": connected\n\n")
		flusher.Flush()

		client := newClient(generateID(), relPath)
		hub.Register(client)
		defer hub.Unregister(client)

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-client.events:
				if !ok {
					return
				}
				data, err := json.Marshal(event)
				if err != nil {
					log.Printf("web: marshal SSE event: %v", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
				flusher.Flush()
			}
		}
	}
}

// generateID returns a time-sortable client identifier, the same
// ulid.Make() the teacher's daemon job manager uses for job IDs.
func generateID() string {
	return ulid.Make().String()
}
