package cache

import (
	"context"
	"fmt"
	"sync"
)

// fakeWorld is the shared harness backing the fake Provider/Order/Job/
// Channel/Properties implementations used across this package's tests. It
// holds call recordings and a scripted outcome function, keyed on provider
// description and attempt index, so tests can model multi-attempt retry
// sequences (e.g. "A errors, then B completes").
type fakeWorld struct {
	mu       sync.Mutex
	attempts map[string]int // per-provider attempt counter

	// script decides the JobResult for a given provider description on its
	// Nth call (1-indexed). Tests set this directly.
	script func(providerDesc string, call int) JobResult

	newChannelErr   map[string]error // provider desc -> error from NewChannel
	reuseChannelErr map[string]error

	// gate, when non-nil, is read from by ServeFromProvider before
	// consulting script. Tests use it to hold a worker "in flight" so a
	// concurrent TrySchedule can observe admitAlreadyInProgress.
	gate chan struct{}
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		attempts:        make(map[string]int),
		newChannelErr:   make(map[string]error),
		reuseChannelErr: make(map[string]error),
	}
}

func (w *fakeWorld) nextCall(desc string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[desc]++
	return w.attempts[desc]
}

type fakeProperties struct{ world *fakeWorld }

func (p fakeProperties) Clone() Properties { return p }

type fakeProvider struct {
	ID    string
	Rank  int64
	World *fakeWorld
}

func (p fakeProvider) NewJob(properties Properties, order Order) Job {
	return &fakeJob{provider: p}
}

func (p fakeProvider) InitialScore() int64 { return p.Rank }
func (p fakeProvider) Description() string { return p.ID }

type fakeChannel struct {
	releaseCount int
}

func (c *fakeChannel) ProgressIndicator() (uint64, bool) { return 0, false }
func (c *fakeChannel) ReleaseJobResources()              { c.releaseCount++ }

type fakeJob struct {
	provider fakeProvider
}

func (j *fakeJob) ServeFromProvider(ctx context.Context, channel Channel, properties Properties, cachedSize uint64) JobResult {
	if j.provider.World.gate != nil {
		<-j.provider.World.gate
	}
	call := j.provider.World.nextCall(j.provider.ID)
	if j.provider.World.script == nil {
		return JobResult{Kind: Complete, Channel: channel, Size: 1}
	}
	r := j.provider.World.script(j.provider.ID, call)
	r.Channel = channel
	return r
}

func (j *fakeJob) HandleError(err error) JobResult {
	return JobResult{Kind: Error, Err: err}
}

type fakeOrder struct {
	ID          string
	Cacheable   bool
	CustomProv  *fakeProvider
	World       *fakeWorld
	channelDesc string // which provider this order is currently attempting, set by test harness if needed
}

func (o fakeOrder) IsCacheable() bool { return o.Cacheable }

func (o fakeOrder) CustomProvider() (Provider, bool) {
	if o.CustomProv == nil {
		return nil, false
	}
	return *o.CustomProv, true
}

func (o fakeOrder) NewChannel(properties Properties, progress *ProgressStream, lastChance bool) (Channel, error) {
	return &fakeChannel{}, nil
}

func (o fakeOrder) ReuseChannel(properties Properties, progress *ProgressStream, lastChance bool, existing Channel) (Channel, error) {
	return existing, nil
}

// erroringOrder always fails channel acquisition; used to exercise the
// ChannelError path.
type erroringOrder struct {
	fakeOrder
}

func (o erroringOrder) NewChannel(properties Properties, progress *ProgressStream, lastChance bool) (Channel, error) {
	return nil, fmt.Errorf("simulated channel failure")
}

func (o erroringOrder) ReuseChannel(properties Properties, progress *ProgressStream, lastChance bool, existing Channel) (Channel, error) {
	return nil, fmt.Errorf("simulated channel failure")
}
