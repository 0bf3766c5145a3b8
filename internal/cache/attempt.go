package cache

import (
	"context"
	"fmt"
)

// attemptLoop drives a single order to completion, per SPEC_FULL.md §4.4.
// It owns a private working copy of the provider list and mutates the
// shared registry/channel pool as it goes. The returned JobResult is the
// final, terminal result (success, exhaustion, or a terminal error kind).
type attemptLoop struct {
	order      Order
	working    []Provider
	registry   *Registry
	pool       *ChannelPool
	properties Properties
	cachedSize uint64
	messages   *MessageStream
	progress   *ProgressStream
}

func (a *attemptLoop) run(ctx context.Context) JobResult {
	var punished []Provider
	var result JobResult
	attempt := 0

	for {
		attempt++

		provider, isLastProvider := a.nextProvider()
		lastChance := attempt >= MaxAttempts || isLastProvider

		a.messages.send(Message{Kind: ProviderSelected, Provider: provider})
		a.registry.IncrementUsage(provider)

		job := provider.NewJob(a.properties, a.order)
		channel, establishment, err := AcquireOrCreate(a.pool, provider, a.order, a.properties, a.progress, lastChance)
		if err != nil {
			a.messages.send(Message{Kind: MessageOrderError})
			a.progress.Send(Progress{Kind: ProgressOrderError})
			result = job.HandleError(err)
		} else {
			a.messages.send(Message{Kind: ChannelEstablished, Establishment: establishment})
			result = job.ServeFromProvider(ctx, channel, a.properties, a.cachedSize)
		}

		a.registry.DecrementUsage(provider)
		result.Provider = provider

		switch result.Kind {
		case Complete:
			a.registry.Reward(provider)
		case Partial:
			a.registry.Punish(provider)
			punished = append(punished, provider)
		case Error:
			a.registry.Punish(provider)
			punished = append(punished, provider)
		case Unavailable:
			// no tally change
		case ClientError, UnexpectedInternalError:
			// terminal: neither reward nor punish, no further attempts
		}

		if result.isSuccess() || len(a.working) == 0 || lastChance ||
			result.Kind == ClientError || result.Kind == UnexpectedInternalError {
			break
		}
	}

	if !result.isSuccess() {
		a.registry.Pardon(punished)
	}
	return result
}

// nextProvider implements step 2.b of SPEC_FULL.md §4.4: a pinned custom
// provider is single-shot and bypasses the working list entirely; otherwise
// the best remaining provider is selected and removed from the working
// copy.
func (a *attemptLoop) nextProvider() (Provider, bool) {
	if p, ok := a.order.CustomProvider(); ok {
		return p, true
	}
	if len(a.working) == 0 {
		// Precondition violation: the Scheduler must never start an
		// Attempt Loop with an empty working set and no custom provider
		// (see SPEC_FULL.md §9.2). Surfacing a clear panic here is
		// preferable to silently misbehaving.
		panic(fmt.Sprintf("cache: attempt loop started for order %v with no providers and no custom provider", a.order))
	}
	provider, remaining, isLast := a.registry.SelectAndRemove(a.working)
	a.working = remaining
	return provider, isLast
}
