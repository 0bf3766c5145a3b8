package cache

import "sync"

// ChannelPool holds at most one idle, open Channel per Provider, available
// for reuse by a future attempt against the same provider.
type ChannelPool struct {
	mu       sync.Mutex
	channels map[Provider]Channel
}

// NewChannelPool creates an empty ChannelPool.
func NewChannelPool() *ChannelPool {
	return &ChannelPool{channels: make(map[Provider]Channel)}
}

// Take atomically removes and returns the pooled channel for p, if any.
func (cp *ChannelPool) Take(p Provider) (Channel, bool) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	c, ok := cp.channels[p]
	if ok {
		delete(cp.channels, p)
	}
	return c, ok
}

// Put inserts c as the idle channel for p, overwriting any prior entry
// (which should not occur if invariants hold: Take always removes before a
// worker starts using a channel, and workers return channels to the pool at
// most once).
func (cp *ChannelPool) Put(p Provider, c Channel) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.channels[p] = c
}

// AcquireOrCreate obtains a Channel for the given order/provider pair,
// reusing a pooled channel when one is available and creating a fresh one
// otherwise. It reports which of the two occurred.
func AcquireOrCreate(pool *ChannelPool, p Provider, order Order, properties Properties, progress *ProgressStream, lastChance bool) (Channel, Establishment, error) {
	if existing, ok := pool.Take(p); ok {
		c, err := order.ReuseChannel(properties, progress, lastChance, existing)
		if err != nil {
			return nil, EstablishedExisting, err
		}
		return c, EstablishedExisting, nil
	}
	c, err := order.NewChannel(properties, progress, lastChance)
	if err != nil {
		return nil, EstablishedNew, err
	}
	return c, EstablishedNew, nil
}
