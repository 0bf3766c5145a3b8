package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttemptLoop(w *fakeWorld, order Order, providers []Provider) (*attemptLoop, *Registry) {
	reg := NewRegistry(providers)
	return &attemptLoop{
		order:      order,
		working:    reg.WorkingSet(),
		registry:   reg,
		pool:       NewChannelPool(),
		properties: fakeProperties{world: w},
		messages:   newMessageStream(),
		progress:   newProgressStream(),
	}, reg
}

func TestAttemptLoopHappyPath(t *testing.T) {
	w := newFakeWorld()
	a := fakeProvider{ID: "A", Rank: 0, World: w}
	order := fakeOrder{ID: "o1", Cacheable: true, World: w}
	w.script = func(desc string, call int) JobResult {
		return JobResult{Kind: Complete, Size: 42}
	}

	loop, _ := newAttemptLoop(w, order, []Provider{a})
	result := loop.run(context.Background())

	require.Equal(t, Complete, result.Kind)
	assert.Equal(t, a, result.Provider)
	assert.EqualValues(t, 42, result.Size)
}

func TestAttemptLoopRetriesOnErrorThenSucceeds(t *testing.T) {
	w := newFakeWorld()
	a := fakeProvider{ID: "A", Rank: 0, World: w}
	b := fakeProvider{ID: "B", Rank: 1, World: w}
	order := fakeOrder{ID: "o1", Cacheable: true, World: w}
	w.script = func(desc string, call int) JobResult {
		if desc == "A" {
			return JobResult{Kind: Error}
		}
		return JobResult{Kind: Complete, Size: 7}
	}

	loop, reg := newAttemptLoop(w, order, []Provider{a, b})
	result := loop.run(context.Background())

	require.Equal(t, Complete, result.Kind)
	assert.Equal(t, b, result.Provider)

	snap := reg.FailuresSnapshot()
	assert.Equal(t, 1, snap[a], "A stays punished: pardon only fires when the whole attempt ultimately fails")
}

func TestAttemptLoopGlobalUnavailability(t *testing.T) {
	w := newFakeWorld()
	a := fakeProvider{ID: "A", Rank: 0, World: w}
	b := fakeProvider{ID: "B", Rank: 1, World: w}
	order := fakeOrder{ID: "o1", Cacheable: true, World: w}
	w.script = func(desc string, call int) JobResult {
		return JobResult{Kind: Unavailable}
	}

	loop, reg := newAttemptLoop(w, order, []Provider{a, b})
	result := loop.run(context.Background())

	assert.Equal(t, Unavailable, result.Kind)
	snap := reg.FailuresSnapshot()
	assert.Zero(t, snap[a])
	assert.Zero(t, snap[b])
}

func TestAttemptLoopExhaustionPardonsAllPunished(t *testing.T) {
	w := newFakeWorld()
	a := fakeProvider{ID: "A", Rank: 0, World: w}
	b := fakeProvider{ID: "B", Rank: 1, World: w}
	order := fakeOrder{ID: "o1", Cacheable: true, World: w}
	w.script = func(desc string, call int) JobResult {
		return JobResult{Kind: Error}
	}

	loop, reg := newAttemptLoop(w, order, []Provider{a, b})
	result := loop.run(context.Background())

	assert.NotEqual(t, Complete, result.Kind)
	snap := reg.FailuresSnapshot()
	assert.Zero(t, snap[a], "exhausting every provider pardons every provider punished this attempt")
	assert.Zero(t, snap[b])
}

func TestAttemptLoopClientErrorIsTerminalImmediately(t *testing.T) {
	w := newFakeWorld()
	a := fakeProvider{ID: "A", Rank: 0, World: w}
	b := fakeProvider{ID: "B", Rank: 1, World: w}
	order := fakeOrder{ID: "o1", Cacheable: true, World: w}
	w.script = func(desc string, call int) JobResult {
		return JobResult{Kind: ClientError}
	}

	loop, _ := newAttemptLoop(w, order, []Provider{a, b})
	result := loop.run(context.Background())

	assert.Equal(t, ClientError, result.Kind)
	assert.Equal(t, 1, w.attempts["A"], "a client error must not trigger a retry against B")
	assert.Equal(t, 0, w.attempts["B"])
}

func TestAttemptLoopCustomProviderBypassesWorkingSet(t *testing.T) {
	w := newFakeWorld()
	a := fakeProvider{ID: "A", Rank: 0, World: w}
	pinned := fakeProvider{ID: "pinned", Rank: 99, World: w}
	order := fakeOrder{ID: "o1", Cacheable: true, CustomProv: &pinned, World: w}
	w.script = func(desc string, call int) JobResult {
		return JobResult{Kind: Complete, Size: 1}
	}

	loop, _ := newAttemptLoop(w, order, []Provider{a})
	result := loop.run(context.Background())

	assert.Equal(t, pinned, result.Provider)
	assert.Zero(t, w.attempts["A"], "a pinned custom provider must never touch the registry's working set")
}
