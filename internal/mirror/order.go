package mirror

import "github.com/mirrorproxy/flexo/internal/cache"

// HTTPOrder identifies one artifact by its path relative to a mirror's
// base URL and the local cache root it is written under.
type HTTPOrder struct {
	// Path is the artifact's path relative to both a provider's BaseURL
	// and the on-disk cache root.
	Path string
	// Cacheable mirrors spec.md §3's per-order flag: false bypasses the
	// cache entirely (see cache.Order.IsCacheable).
	Cacheable bool
	// Custom pins this order to a single provider, bypassing the working
	// set (see cache.Order.CustomProvider). Nil means no pin.
	Custom *HTTPProvider

	CacheDir string
}

// IsCacheable reports whether this order may be served from, and written
// into, the disk cache.
func (o HTTPOrder) IsCacheable() bool { return o.Cacheable }

// CustomProvider returns o's pinned provider, if any.
func (o HTTPOrder) CustomProvider() (cache.Provider, bool) {
	if o.Custom == nil {
		return nil, false
	}
	return *o.Custom, true
}

// NewChannel opens a fresh HTTPChannel; connections themselves are kept
// alive by the provider's shared keep-alive client. lastChance is ignored.
// progress is kept so the job this channel serves can report
// JobSize/Progress/Completed as bytes arrive.
func (o HTTPOrder) NewChannel(properties cache.Properties, progress *cache.ProgressStream, lastChance bool) (cache.Channel, error) {
	return &HTTPChannel{progress: progress}, nil
}

// ReuseChannel re-initializes an idle HTTPChannel for a new attempt: the
// served counter is reset and progress is rebound to the new attempt's
// stream. The provider's pooled TCP connections are untouched.
func (o HTTPOrder) ReuseChannel(properties cache.Properties, progress *cache.ProgressStream, lastChance bool, existing cache.Channel) (cache.Channel, error) {
	ch, _ := existing.(*HTTPChannel)
	ch.reset()
	ch.progress = progress
	return ch, nil
}
