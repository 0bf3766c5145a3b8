package mirror

import (
	"sync/atomic"

	"github.com/mirrorproxy/flexo/internal/cache"
)

// HTTPChannel is a reusable, per-provider connection slot. It carries a
// served-bytes counter plus the current attempt's progress stream (the
// JobState.tx analogue); the actual TCP connection reuse happens inside
// the provider's shared *http.Transport.
type HTTPChannel struct {
	served   atomic.Uint64
	progress *cache.ProgressStream
}

// ProgressIndicator reports bytes served by the most recent (or current)
// job on this channel.
func (c *HTTPChannel) ProgressIndicator() (uint64, bool) {
	return c.served.Load(), true
}

// ReleaseJobResources clears the served counter so the channel sits idle
// in the pool without reporting stale progress for the next attempt.
func (c *HTTPChannel) ReleaseJobResources() {
	c.served.Store(0)
}

func (c *HTTPChannel) reset() {
	c.served.Store(0)
}

func (c *HTTPChannel) addServed(n uint64) {
	c.served.Add(n)
}

func (c *HTTPChannel) sendJobSize(n uint64) {
	if c.progress != nil {
		c.progress.Send(cache.Progress{Kind: cache.JobSize, Bytes: n})
	}
}

func (c *HTTPChannel) sendProgress(servedSoFar uint64) {
	if c.progress != nil {
		c.progress.Send(cache.Progress{Kind: cache.ProgressBytes, Bytes: servedSoFar})
	}
}

func (c *HTTPChannel) sendCompleted() {
	if c.progress != nil {
		c.progress.Send(cache.Progress{Kind: cache.Completed})
	}
}

func (c *HTTPChannel) sendUnavailable() {
	if c.progress != nil {
		c.progress.Send(cache.Progress{Kind: cache.ProgressUnavailable})
	}
}
