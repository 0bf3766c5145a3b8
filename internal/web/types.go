// Package web is the minimal HTTP front-end demo: it drives a
// cache.JobContext for incoming order requests and relays an order's
// message/progress streams to any subscribed client over Server-Sent
// Events. Explicitly out of the core engine's scope (see spec.md §1); it
// exists so the repository is runnable end to end.
package web

import "github.com/mirrorproxy/flexo/internal/cache"

// Config holds web server configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":7878".
	Addr string
	// CacheDir is the on-disk cache root, used to serve already-cached
	// orders directly.
	CacheDir string
}

// Event is the JSON shape pushed to SSE clients for one order.
type Event struct {
	Type     string        `json:"type"` // "message" or "progress"
	Message  *MessageWire  `json:"message,omitempty"`
	Progress *ProgressWire `json:"progress,omitempty"`
}

// MessageWire is the JSON-friendly projection of cache.Message.
type MessageWire struct {
	Kind          string `json:"kind"`
	Provider      string `json:"provider,omitempty"`
	Establishment string `json:"establishment,omitempty"`
}

// ProgressWire is the JSON-friendly projection of cache.Progress.
type ProgressWire struct {
	Kind  string `json:"kind"`
	Bytes uint64 `json:"bytes,omitempty"`
}

func messageKindString(k cache.MessageKind) string {
	switch k {
	case cache.ProviderSelected:
		return "provider_selected"
	case cache.ChannelEstablished:
		return "channel_established"
	case cache.MessageOrderError:
		return "order_error"
	default:
		return "unknown"
	}
}

func progressKindString(k cache.ProgressKind) string {
	switch k {
	case cache.JobSize:
		return "job_size"
	case cache.ProgressBytes:
		return "progress_bytes"
	case cache.Completed:
		return "completed"
	case cache.ProgressUnavailable:
		return "unavailable"
	case cache.ProgressOrderError:
		return "order_error"
	default:
		return "unknown"
	}
}

func wireMessage(m cache.Message) MessageWire {
	w := MessageWire{Kind: messageKindString(m.Kind), Establishment: m.Establishment.String()}
	if m.Provider != nil {
		w.Provider = m.Provider.Description()
	}
	return w
}

func wireProgress(p cache.Progress) ProgressWire {
	return ProgressWire{Kind: progressKindString(p.Kind), Bytes: p.Bytes}
}
