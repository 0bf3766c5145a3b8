// Package cache implements the scheduling and mirror-selection engine of
// the caching download proxy: deduplication of concurrent requests for the
// same order, dynamic provider scoring, retry-with-accounting across
// providers, and channel reuse across orders.
package cache

import "context"

// MaxAttempts bounds how many providers a single order will try before the
// Attempt Loop gives up, regardless of how many providers remain.
const MaxAttempts = 100

// Provider is one upstream mirror capable of serving orders.
//
// Implementations must be valid map keys (no slice/map/func fields) and
// safe to share across goroutines; the registry and channel pool both key
// maps by Provider.
type Provider interface {
	// NewJob builds a Job that will attempt to serve order via this
	// provider using the given properties.
	NewJob(properties Properties, order Order) Job

	// InitialScore is the static rank used as the DynamicScore tie-break.
	// Providers are conventionally ranked so that a lower score means a
	// more preferred provider.
	InitialScore() int64

	// Description is a short human-readable label used in log messages.
	Description() string
}

// Order is an immutable request identity for a specific artifact.
//
// Implementations must be valid map keys; the Order Index keys its map by
// Order.
type Order interface {
	// IsCacheable reports whether this order may be served from, and
	// written into, the cache.
	IsCacheable() bool

	// CustomProvider returns the provider this order must be served from,
	// if any. When set, the Attempt Loop does not consult the working
	// provider list.
	CustomProvider() (Provider, bool)

	// NewChannel establishes a fresh Channel to carry this order.
	NewChannel(properties Properties, progress *ProgressStream, lastChance bool) (Channel, error)

	// ReuseChannel re-initializes an existing, idle Channel to carry this
	// order.
	ReuseChannel(properties Properties, progress *ProgressStream, lastChance bool, existing Channel) (Channel, error)
}

// Job is one attempt at fulfilling one order via one provider over one
// channel.
type Job interface {
	// ServeFromProvider runs the fetch. cachedSize is the number of bytes
	// already on disk for this order, which the Job may use to issue a
	// range request.
	ServeFromProvider(ctx context.Context, channel Channel, properties Properties, cachedSize uint64) JobResult

	// HandleError converts a channel-acquisition error into a terminal
	// JobResult, without running the fetch.
	HandleError(err error) JobResult
}

// Channel is a reusable connection-and-state bundle to one provider. At
// most one worker owns a Channel at a time.
type Channel interface {
	// ProgressIndicator reports bytes served so far for the current job,
	// if known.
	ProgressIndicator() (uint64, bool)

	// ReleaseJobResources drops any resources (open files, sockets)
	// acquired for the job that just terminated, so the channel can sit
	// idle in the pool without holding them.
	ReleaseJobResources()
}

// Properties is an opaque, shareable, cloneable configuration bag passed
// through to collaborators.
type Properties interface {
	Clone() Properties
}

// Establishment reports whether AcquireOrCreate reused a pooled channel or
// created a new one.
type Establishment int

const (
	EstablishedNew Establishment = iota
	EstablishedExisting
)

func (e Establishment) String() string {
	if e == EstablishedExisting {
		return "existing channel"
	}
	return "new channel"
}

// JobResultKind identifies the outcome of a single attempt.
type JobResultKind int

const (
	// Complete indicates the order was fully served.
	Complete JobResultKind = iota
	// Partial indicates the upstream disconnected mid-stream.
	Partial
	// Error indicates the upstream returned an error.
	Error
	// Unavailable indicates the upstream reports the order does not exist.
	Unavailable
	// ClientError indicates the request is malformed per the Job's contract.
	ClientError
	// UnexpectedInternalError indicates an invariant violation inside the Job.
	UnexpectedInternalError
)

// JobResult is the outcome of one attempt, as returned by a Job.
type JobResult struct {
	Kind JobResultKind

	// Channel is the channel the attempt ran over. It is nil for results
	// produced by HandleError (no channel was obtained), and may be nil for
	// ClientError and UnexpectedInternalError, which may terminate before
	// the channel was used.
	Channel Channel

	// Provider is the provider this attempt ran against. Always populated
	// except for ClientError and UnexpectedInternalError returned by
	// HandleError before a provider was selected for this result (in
	// practice the Attempt Loop always fills it in before returning).
	Provider Provider

	// Size is the total number of bytes served, valid only when
	// Kind == Complete.
	Size uint64

	// ContinueAt is the byte offset at which a future attempt should
	// resume, valid only when Kind == Partial.
	ContinueAt uint64

	// Err carries the failure detail for Partial, Error,
	// UnexpectedInternalError, or a channel-acquisition error surfaced via
	// HandleError.
	Err error
}

func (r JobResult) isSuccess() bool {
	return r.Kind == Complete
}

// CachedItem is the value type held inside OrderState when cached.
type CachedItem struct {
	// CachedSize is the number of bytes currently on disk for the order.
	CachedSize uint64
	// CompleteSize is the full size of the order, when known.
	CompleteSize uint64
	// CompleteSizeKnown reports whether CompleteSize is meaningful.
	CompleteSizeKnown bool
}

// OrderStateKind distinguishes the two states an Order Index entry can be in.
type OrderStateKind int

const (
	StateInProgress OrderStateKind = iota
	StateCached
)

// OrderState is the Order Index's per-order state.
type OrderState struct {
	Kind OrderStateKind
	Item CachedItem // only meaningful when Kind == StateCached
}

// MessageKind identifies a value on the message stream.
type MessageKind int

const (
	ProviderSelected MessageKind = iota
	ChannelEstablished
	MessageOrderError
)

// Message is one value on an order's message stream.
type Message struct {
	Kind          MessageKind
	Provider      Provider      // populated for ProviderSelected
	Establishment Establishment // populated for ChannelEstablished
}

// ProgressKind identifies a value on the progress stream.
type ProgressKind int

const (
	JobSize ProgressKind = iota
	ProgressBytes
	Completed
	ProgressUnavailable
	ProgressOrderError
)

// Progress is one value on an order's progress stream.
type Progress struct {
	Kind  ProgressKind
	Bytes uint64 // populated for JobSize and ProgressBytes
}

// ScheduleOutcomeKind distinguishes the four results of TrySchedule.
type ScheduleOutcomeKind int

const (
	OutcomeAlreadyInProgress ScheduleOutcomeKind = iota
	OutcomeCached
	OutcomeUncacheable
	OutcomeScheduled
)

// ScheduleOutcome is the result of a call to JobContext.TrySchedule.
type ScheduleOutcome struct {
	Kind ScheduleOutcomeKind

	// Provider is populated when Kind == OutcomeUncacheable: the caller
	// should bypass the cache and fetch directly from this provider.
	Provider Provider

	// Handle is populated when Kind == OutcomeScheduled.
	Handle *Handle
}

// WorkerOutcomeKind distinguishes the two final results delivered via a
// worker's join handle.
type WorkerOutcomeKind int

const (
	WorkerSuccess WorkerOutcomeKind = iota
	WorkerError
)

// WorkerOutcome is the terminal result of one scheduled order, delivered
// via Handle.Join.
type WorkerOutcome struct {
	Kind WorkerOutcomeKind

	// Provider is populated when Kind == WorkerSuccess: the provider that
	// ultimately served the order.
	Provider Provider

	// Failures is populated when Kind == WorkerError: a snapshot of the
	// registry's failures map at the moment the order gave up.
	Failures map[Provider]int
}
