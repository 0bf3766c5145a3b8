package cache

import (
	"context"
	"fmt"
)

// JobContext is the public entry point: it owns the Order Index, Provider
// Registry, Channel Pool, and Worker Supervisor, and exposes TrySchedule as
// the sole way a front-end drives the cache.
type JobContext struct {
	registry   *Registry
	pool       *ChannelPool
	index      *OrderIndex
	supervisor *Supervisor
	properties Properties
}

// NewJobContext seeds a JobContext from the given providers (assumed sorted
// best-to-worst) and an initial cache scan (normally the result of a
// collaborator's disk-scan InitializeCache call).
func NewJobContext(providers []Provider, properties Properties, initialCache map[Order]OrderState) *JobContext {
	return &JobContext{
		registry:   NewRegistry(providers),
		pool:       NewChannelPool(),
		index:      NewOrderIndex(initialCache),
		supervisor: NewSupervisor(),
		properties: properties,
	}
}

// Handle is returned to the caller when TrySchedule spawns a new worker. It
// exposes the message/progress streams and a way to wait for the worker's
// terminal outcome.
type Handle struct {
	messages *MessageStream
	progress *ProgressStream
	done     chan WorkerOutcome
}

// Messages returns the order's message stream.
func (h *Handle) Messages() *MessageStream { return h.messages }

// Progress returns the order's progress stream.
func (h *Handle) Progress() *ProgressStream { return h.progress }

// Join blocks until the worker terminates and returns its outcome.
func (h *Handle) Join(ctx context.Context) (WorkerOutcome, error) {
	select {
	case o := <-h.done:
		return o, nil
	case <-ctx.Done():
		return WorkerOutcome{}, ctx.Err()
	}
}

// bestProvider implements SPEC_FULL.md §4.5 step 1's helper: the order's
// custom provider if set, else the first (best-ranked) registered provider.
func (jc *JobContext) bestProvider(order Order) Provider {
	if p, ok := order.CustomProvider(); ok {
		return p
	}
	providers := jc.registry.Providers()
	return providers[0]
}

// TrySchedule is the Scheduler's public entry point, implementing the state
// table of SPEC_FULL.md §4.5 exactly.
func (jc *JobContext) TrySchedule(ctx context.Context, order Order, resumeFrom uint64) (ScheduleOutcome, error) {
	if err := jc.supervisor.Sweep(); err != nil {
		return ScheduleOutcome{}, err
	}

	if !order.IsCacheable() {
		return ScheduleOutcome{Kind: OutcomeUncacheable, Provider: jc.bestProvider(order)}, nil
	}

	decision, cachedSize := jc.index.evaluate(order, resumeFrom)
	switch decision {
	case admitUncacheable:
		return ScheduleOutcome{Kind: OutcomeUncacheable, Provider: jc.bestProvider(order)}, nil
	case admitCached:
		return ScheduleOutcome{Kind: OutcomeCached}, nil
	case admitAlreadyInProgress:
		return ScheduleOutcome{Kind: OutcomeAlreadyInProgress}, nil
	}

	if _, hasCustom := order.CustomProvider(); !hasCustom && len(jc.registry.Providers()) == 0 {
		// See SPEC_FULL.md §9.2: an empty provider list with no pinned
		// provider is a precondition violation, not a state the Attempt
		// Loop should ever have to handle.
		jc.index.Remove(order)
		return ScheduleOutcome{}, fmt.Errorf("cache: cannot schedule order %v: no providers registered and no custom provider set", order)
	}

	handle := jc.spawn(ctx, order, cachedSize)
	return ScheduleOutcome{Kind: OutcomeScheduled, Handle: handle}, nil
}

// spawn starts the worker goroutine for order and returns its Handle
// immediately; the goroutine runs the Attempt Loop and performs the worker
// post-processing of SPEC_FULL.md §4.5.
func (jc *JobContext) spawn(ctx context.Context, order Order, cachedSize uint64) *Handle {
	h := &Handle{
		messages: newMessageStream(),
		progress: newProgressStream(),
		done:     make(chan WorkerOutcome, 1),
	}

	tok := jc.supervisor.track()

	go tok.run(func() {
		defer h.messages.close()
		defer h.progress.close()

		loop := &attemptLoop{
			order:      order,
			working:    jc.registry.WorkingSet(),
			registry:   jc.registry,
			pool:       jc.pool,
			properties: jc.properties,
			cachedSize: cachedSize,
			messages:   h.messages,
			progress:   h.progress,
		}
		result := loop.run(ctx)

		jc.index.Remove(order)

		var outcome WorkerOutcome
		switch result.Kind {
		case Complete:
			if result.Channel != nil {
				result.Channel.ReleaseJobResources()
				jc.pool.Put(result.Provider, result.Channel)
			}
			jc.index.MarkCached(order, CachedItem{
				CachedSize:        result.Size,
				CompleteSize:      result.Size,
				CompleteSizeKnown: true,
			})
			outcome = WorkerOutcome{Kind: WorkerSuccess, Provider: result.Provider}
		case Partial, Error, Unavailable:
			if result.Channel != nil {
				result.Channel.ReleaseJobResources()
			}
			outcome = WorkerOutcome{Kind: WorkerError, Failures: jc.registry.FailuresSnapshot()}
		default: // ClientError, UnexpectedInternalError
			outcome = WorkerOutcome{Kind: WorkerError, Failures: jc.registry.FailuresSnapshot()}
		}

		h.done <- outcome
	})

	return h
}
