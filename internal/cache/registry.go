package cache

import "sync"

// Registry holds the list of available providers plus the two mutable,
// process-wide tallies that feed DynamicScore: cumulative failure score and
// current-in-use count. The provider list itself (Registry.providers) is
// fixed for the process lifetime; only the two maps mutate.
type Registry struct {
	providers []Provider // fixed at construction, assumed sorted best-to-worst

	failuresMu sync.Mutex
	failures   map[Provider]int

	usagesMu sync.Mutex
	usages   map[Provider]int
}

// NewRegistry creates a Registry over the given providers, which are
// assumed to already be sorted from best to worst static rank.
func NewRegistry(providers []Provider) *Registry {
	return &Registry{
		providers: providers,
		failures:  make(map[Provider]int),
		usages:    make(map[Provider]int),
	}
}

// Providers returns the registered provider list. The returned slice must
// not be mutated by the caller.
func (r *Registry) Providers() []Provider {
	return r.providers
}

// WorkingSet returns a private, per-attempt-sequence copy of the registered
// providers. SelectAndRemove operates on this copy, never on the registry's
// own list.
func (r *Registry) WorkingSet() []Provider {
	cp := make([]Provider, len(r.providers))
	copy(cp, r.providers)
	return cp
}

// SelectAndRemove computes the DynamicScore of every provider remaining in
// working, removes the minimum, and returns it along with the remaining
// providers and whether they are now empty. The remaining providers are
// returned as a new slice; the contents of working are left unchanged.
func (r *Registry) SelectAndRemove(working []Provider) (Provider, []Provider, bool) {
	r.failuresMu.Lock()
	r.usagesMu.Lock()
	bestIdx := 0
	best := scoreOf(working[0], r.failures, r.usages)
	for i := 1; i < len(working); i++ {
		s := scoreOf(working[i], r.failures, r.usages)
		if s.Less(best) {
			best = s
			bestIdx = i
		}
	}
	r.usagesMu.Unlock()
	r.failuresMu.Unlock()

	selected := working[bestIdx]
	remaining := append(working[:bestIdx:bestIdx], working[bestIdx+1:]...)
	return selected, remaining, len(remaining) == 0
}

// Punish increments p's failure score by one.
func (r *Registry) Punish(p Provider) {
	r.failuresMu.Lock()
	r.failures[p]++
	r.failuresMu.Unlock()
}

// Reward decrements p's failure score by one.
func (r *Registry) Reward(p Provider) {
	r.failuresMu.Lock()
	r.failures[p]--
	r.failuresMu.Unlock()
}

// Pardon decrements the failure score of every provider in ps that is
// currently present with a nonzero entry, by one. Providers missing from
// the failures map are silently skipped.
func (r *Registry) Pardon(ps []Provider) {
	r.failuresMu.Lock()
	defer r.failuresMu.Unlock()
	for _, p := range ps {
		if v, ok := r.failures[p]; ok && v != 0 {
			r.failures[p] = v - 1
		}
	}
}

// IncrementUsage increments p's current-in-use count by one, recording that
// a worker has selected p for an attempt.
func (r *Registry) IncrementUsage(p Provider) {
	r.usagesMu.Lock()
	r.usages[p]++
	r.usagesMu.Unlock()
}

// DecrementUsage decrements p's current-in-use count by one. Per the policy
// documented in SPEC_FULL.md §9.1, this is called by the Attempt Loop
// exactly once for every IncrementUsage, as soon as the attempt that used p
// concludes (success or failure) — so the count always reflects providers
// actively being fetched from right now, not a running total.
func (r *Registry) DecrementUsage(p Provider) {
	r.usagesMu.Lock()
	r.usages[p]--
	r.usagesMu.Unlock()
}

// FailuresSnapshot returns a copy of the current failures map, suitable for
// publishing as a WorkerOutcome.
func (r *Registry) FailuresSnapshot() map[Provider]int {
	r.failuresMu.Lock()
	defer r.failuresMu.Unlock()
	snap := make(map[Provider]int, len(r.failures))
	for p, v := range r.failures {
		snap[p] = v
	}
	return snap
}
