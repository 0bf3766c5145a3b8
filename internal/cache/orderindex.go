package cache

import "sync"

// OrderIndex is the authoritative deduplication structure: a mapping from
// order to order-state. At most one entry exists per order identity, and if
// an order is InProgress exactly one worker is responsible for transitioning
// it out of that state.
type OrderIndex struct {
	mu     sync.Mutex
	states map[Order]OrderState
}

// NewOrderIndex creates an OrderIndex seeded from an initial scan (normally
// the result of a collaborator's InitializeCache call).
func NewOrderIndex(initial map[Order]OrderState) *OrderIndex {
	states := make(map[Order]OrderState, len(initial))
	for o, s := range initial {
		states[o] = s
	}
	return &OrderIndex{states: states}
}

// admitDecision is the result of evaluating an order against the state
// table in SPEC_FULL.md §4.5.
type admitDecision int

const (
	admitProceed admitDecision = iota
	admitAlreadyInProgress
	admitCached
	admitUncacheable
)

// evaluate inspects (and, when proceeding, mutates) the index entry for
// order under the index lock, implementing the state table of
// SPEC_FULL.md §4.5 exactly. It returns the decision and, when proceeding,
// the cached_size to hand to the Attempt Loop.
func (idx *OrderIndex) evaluate(order Order, resumeFrom uint64) (admitDecision, uint64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	state, exists := idx.states[order]
	switch {
	case !exists && resumeFrom == 0:
		idx.states[order] = OrderState{Kind: StateInProgress}
		return admitProceed, 0

	case !exists && resumeFrom > 0:
		return admitUncacheable, 0

	case state.Kind == StateCached && state.Item.CachedSize < resumeFrom:
		return admitUncacheable, 0

	case state.Kind == StateCached && state.Item.CompleteSizeKnown && state.Item.CompleteSize == state.Item.CachedSize:
		return admitCached, 0

	case state.Kind == StateCached:
		cachedSize := state.Item.CachedSize
		idx.states[order] = OrderState{Kind: StateInProgress}
		return admitProceed, cachedSize

	default: // state.Kind == StateInProgress
		return admitAlreadyInProgress, 0
	}
}

// Remove deletes the order's entry. Called by a worker after it has
// computed the terminal state to write back (or, on abandonment, in place
// of writing one).
func (idx *OrderIndex) Remove(order Order) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.states, order)
}

// MarkCached inserts a terminal Cached entry for order. Called by a worker
// after a successful Complete outcome.
func (idx *OrderIndex) MarkCached(order Order, item CachedItem) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.states[order] = OrderState{Kind: StateCached, Item: item}
}

// Lookup returns a copy of the current state for order, for diagnostics and
// tests.
func (idx *OrderIndex) Lookup(order Order) (OrderState, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	s, ok := idx.states[order]
	return s, ok
}
