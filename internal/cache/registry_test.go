package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProviders(w *fakeWorld, n int) []Provider {
	ps := make([]Provider, n)
	for i := 0; i < n; i++ {
		ps[i] = fakeProvider{ID: string(rune('A' + i)), Rank: int64(i), World: w}
	}
	return ps
}

func TestRegistrySelectAndRemovePrefersLowestRankWhenTied(t *testing.T) {
	w := newFakeWorld()
	providers := newTestProviders(w, 3)
	r := NewRegistry(providers)

	selected, remaining, empty := r.SelectAndRemove(r.WorkingSet())
	assert.Equal(t, providers[0], selected)
	assert.Len(t, remaining, 2)
	assert.False(t, empty)
}

func TestRegistrySelectAndRemoveHonorsFailures(t *testing.T) {
	w := newFakeWorld()
	providers := newTestProviders(w, 2)
	r := NewRegistry(providers)

	r.Punish(providers[0])
	r.Punish(providers[0])

	selected, _, _ := r.SelectAndRemove(r.WorkingSet())
	assert.Equal(t, providers[1], selected, "a more-punished provider must lose even with a better static rank")
}

func TestRegistrySelectAndRemoveDrainsToEmpty(t *testing.T) {
	w := newFakeWorld()
	providers := newTestProviders(w, 2)
	r := NewRegistry(providers)

	working := r.WorkingSet()
	_, working, empty := r.SelectAndRemove(working)
	require.False(t, empty)
	_, working, empty = r.SelectAndRemove(working)
	require.True(t, empty)
	assert.Empty(t, working)
}

func TestRegistryPardonOnlyDecrementsExistingNonzeroEntries(t *testing.T) {
	w := newFakeWorld()
	providers := newTestProviders(w, 2)
	r := NewRegistry(providers)

	// providers[1] never punished: pardon must be a no-op for it.
	r.Punish(providers[0])
	r.Pardon(providers[:])

	snap := r.FailuresSnapshot()
	assert.Equal(t, 0, snap[providers[0]])
	_, ok := snap[providers[1]]
	assert.False(t, ok, "pardon must not create an entry for an untouched provider")
}

func TestRegistryRewardCanGoNegative(t *testing.T) {
	w := newFakeWorld()
	providers := newTestProviders(w, 1)
	r := NewRegistry(providers)

	r.Reward(providers[0])
	snap := r.FailuresSnapshot()
	assert.Equal(t, -1, snap[providers[0]])
}

func TestRegistryUsageIncrementDecrementRoundTrips(t *testing.T) {
	w := newFakeWorld()
	providers := newTestProviders(w, 2)
	r := NewRegistry(providers)

	r.IncrementUsage(providers[0])
	selected, _, _ := r.SelectAndRemove(r.WorkingSet())
	assert.Equal(t, providers[1], selected, "the busier provider must lose selection")

	r.DecrementUsage(providers[0])
	selected, _, _ = r.SelectAndRemove(r.WorkingSet())
	assert.Equal(t, providers[0], selected, "once usage clears, rank breaks the tie again")
}
